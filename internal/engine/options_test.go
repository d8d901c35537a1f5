package engine

import (
	"strings"
	"testing"
)

func TestDefaultOptions_FreshValueEveryCall(t *testing.T) {
	a := DefaultOptions(nil)
	b := DefaultOptions(nil)

	if a == b {
		t.Fatal("DefaultOptions returned the same pointer twice")
	}

	a.OutputTemplates["default"] = "mutated"
	if b.OutputTemplates["default"] != "" {
		t.Error("mutating one base configuration leaked into another")
	}

	a.HTTPHeaders["X-Test"] = "1"
	if _, ok := b.HTTPHeaders["X-Test"]; ok {
		t.Error("header mutation leaked between base configurations")
	}
}

func TestDefaultOptions_Contents(t *testing.T) {
	opts := DefaultOptions(nil)

	if !strings.HasPrefix(opts.Format, "bestvideo+bestaudio[language^=ru]") {
		t.Errorf("format ladder should prefer russian audio first, got %q", opts.Format)
	}
	if !strings.HasSuffix(opts.Format, "/best") {
		t.Errorf("format ladder should degrade to best overall, got %q", opts.Format)
	}
	if opts.Retries != 15 || opts.FragmentRetries != 15 {
		t.Errorf("retry policy = (%d, %d), want (15, 15)", opts.Retries, opts.FragmentRetries)
	}
	if got := opts.OutputTemplates["pl_thumbnail"]; got != "" {
		t.Errorf("pl_thumbnail template = %q, want empty", got)
	}
	if ua := opts.HTTPHeaders["User-Agent"]; !strings.Contains(ua, "FireKeepers") {
		t.Errorf("missing client identification in User-Agent: %q", ua)
	}
	if len(opts.SubtitleLangs) != 2 || opts.SubtitleLangs[0] != "ru" || opts.SubtitleLangs[1] != "en" {
		t.Errorf("subtitle languages = %v, want [ru en]", opts.SubtitleLangs)
	}

	wantKeys := []string{"FFmpegEmbedSubtitle", "FFmpegMetadata", "EmbedThumbnail", "FFmpegConcat"}
	if len(opts.Postprocessors) != len(wantKeys) {
		t.Fatalf("got %d postprocessors, want %d", len(opts.Postprocessors), len(wantKeys))
	}
	for i, key := range wantKeys {
		if opts.Postprocessors[i].Key != key {
			t.Errorf("postprocessor[%d] = %q, want %q", i, opts.Postprocessors[i].Key, key)
		}
	}
}

func TestOptions_CloneIsolation(t *testing.T) {
	base := DefaultOptions(nil)
	clone := base.Clone()

	clone.OutputTemplates["default"] = "Author - %(title)s.%(ext)s"
	clone.HTTPHeaders["Cookie"] = "secret"
	clone.SubtitleLangs[0] = "de"
	clone.Postprocessors[0].Key = "Changed"
	clone.CookieFile = "/tmp/cookies.txt"

	if base.OutputTemplates["default"] != "" {
		t.Error("clone output-template mutation affected the base")
	}
	if _, ok := base.HTTPHeaders["Cookie"]; ok {
		t.Error("clone header mutation affected the base")
	}
	if base.SubtitleLangs[0] != "ru" {
		t.Error("clone subtitle-language mutation affected the base")
	}
	if base.Postprocessors[0].Key != "FFmpegEmbedSubtitle" {
		t.Error("clone postprocessor mutation affected the base")
	}
	if base.CookieFile != "" {
		t.Error("clone cookie-file mutation affected the base")
	}
}

func TestOptions_Args(t *testing.T) {
	opts := DefaultOptions(nil)
	opts.OutputTemplates["default"] = "JohnDoe - %(title)s.%(ext)s"
	opts.CookieFile = "/home/user/cookies.txt"

	args := opts.Args()
	joined := strings.Join(args, " ")

	tests := []struct {
		name string
		want string
	}{
		{"format", "--format " + defaultFormat},
		{"retries", "--retries 15"},
		{"fragment retries", "--fragment-retries 15"},
		{"retry sleep", "--retry-sleep 5"},
		{"merge format", "--merge-output-format mkv/mp4"},
		{"subtitle langs", "--sub-langs ru,en"},
		{"embed subs", "--embed-subs"},
		{"embed metadata", "--embed-metadata"},
		{"embed chapters", "--embed-chapters"},
		{"embed thumbnail", "--embed-thumbnail"},
		{"playlist concat", "--concat-playlist multi_video"},
		{"output template", "-o JohnDoe - %(title)s.%(ext)s"},
		{"thumbnail template suppressed", "-o pl_thumbnail:"},
		{"abort on missing fragments", "--abort-on-unavailable-fragments"},
		{"continue", "--continue"},
		{"cookies", "--cookies /home/user/cookies.txt"},
		{"user agent header", "--add-headers User-Agent:"},
		{"windows filenames", "--windows-filenames"},
		{"no progress", "--no-progress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(joined, tt.want) {
				t.Errorf("args missing %q\nargs: %s", tt.want, joined)
			}
		})
	}
}

func TestOptions_ArgsStableOrder(t *testing.T) {
	opts := DefaultOptions(nil)
	first := strings.Join(opts.Args(), " ")
	second := strings.Join(opts.Args(), " ")
	if first != second {
		t.Errorf("argument rendering not stable:\n%s\n%s", first, second)
	}
}
