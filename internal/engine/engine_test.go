package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestMetadata_Field(t *testing.T) {
	meta := NewMetadata([]byte(`{"channel": "", "uploader": "@JohnDoe", "view_count": 42}`))

	tests := []struct {
		name  string
		field string
		want  string
	}{
		{"empty string field", "channel", ""},
		{"populated field", "uploader", "@JohnDoe"},
		{"absent field", "creator", ""},
		{"numeric field stringified", "view_count", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meta.Field(tt.field); got != tt.want {
				t.Errorf("Field(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestMetadata_Empty(t *testing.T) {
	if !NewMetadata(nil).Empty() {
		t.Error("nil payload should be empty")
	}
	if NewMetadata([]byte(`{}`)).Empty() {
		t.Error("non-nil payload should not be empty")
	}
	if NewMetadata(nil).Field("channel") != "" {
		t.Error("empty metadata should read every field as absent")
	}
}

func TestDownloadError(t *testing.T) {
	inner := errors.New("exit status 1")
	err := &DownloadError{URL: "https://youtu.be/abc", Stderr: "ERROR: boom", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("DownloadError should unwrap to the inner error")
	}

	var dlErr *DownloadError
	if !errors.As(error(err), &dlErr) {
		t.Error("errors.As should match *DownloadError")
	}

	msg := err.Error()
	for _, part := range []string{"https://youtu.be/abc", "ERROR: boom", "exit status 1"} {
		if !strings.Contains(msg, part) {
			t.Errorf("error message %q missing %q", msg, part)
		}
	}
}

type recordingLogger struct {
	debugs   []string
	warnings []string
	errs     []string
}

func (l *recordingLogger) Debug(msg string)   { l.debugs = append(l.debugs, msg) }
func (l *recordingLogger) Warning(msg string) { l.warnings = append(l.warnings, msg) }
func (l *recordingLogger) Error(msg string)   { l.errs = append(l.errs, msg) }

func TestRouteStderrLine(t *testing.T) {
	logger := &recordingLogger{}

	RouteStderrLine(logger, "ERROR: unable to download video")
	RouteStderrLine(logger, "WARNING: requested format not available")
	RouteStderrLine(logger, "some other stderr noise")
	RouteStderrLine(nil, "must not panic")

	if len(logger.errs) != 1 || logger.errs[0] != "ERROR: unable to download video" {
		t.Errorf("error channel = %v", logger.errs)
	}
	if len(logger.warnings) != 2 {
		t.Errorf("warning channel = %v", logger.warnings)
	}
	if len(logger.debugs) != 0 {
		t.Errorf("debug channel should stay empty, got %v", logger.debugs)
	}
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantOK      bool
		wantPercent float64
		wantETA     string
	}{
		{
			name:        "full progress line",
			line:        "[download]  42.7% of 123.45MiB at 3.21MiB/s ETA 00:23",
			wantOK:      true,
			wantPercent: 42.7,
			wantETA:     "00:23",
		},
		{
			name:        "estimated size",
			line:        "[download]   5.0% of ~ 1.20GiB at 500.00KiB/s ETA 41:12",
			wantOK:      true,
			wantPercent: 5.0,
			wantETA:     "41:12",
		},
		{
			name:        "completed",
			line:        "[download] 100% of 10.00MiB",
			wantOK:      true,
			wantPercent: 100,
		},
		{name: "destination line", line: "[download] Destination: video.mkv", wantOK: false},
		{name: "unrelated line", line: "[youtube] abc: Downloading webpage", wantOK: false},
		{name: "blank", line: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseProgress(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseProgress(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Percent != tt.wantPercent {
				t.Errorf("percent = %v, want %v", got.Percent, tt.wantPercent)
			}
			if tt.wantETA != "" && got.ETA != tt.wantETA {
				t.Errorf("eta = %q, want %q", got.ETA, tt.wantETA)
			}
		})
	}
}
