// Package engine wraps the external yt-dlp extraction and download engine.
//
// The engine is an opaque collaborator: format negotiation, fragment
// retrieval, retry/backoff and muxing all happen inside it. This package
// only builds its configuration, invokes it, and routes its log output.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrEngineNotFound indicates the yt-dlp binary is missing or not runnable.
var ErrEngineNotFound = errors.New("yt-dlp binary not found")

// DownloadError wraps any failure reported by the external engine, kept
// distinct from generic errors so callers can map it to its own exit code.
type DownloadError struct {
	URL    string
	Stderr string
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("download failed for %s: %v: %s", e.URL, e.Err, e.Stderr)
	}
	return fmt.Sprintf("download failed for %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Logger is the narrow logging capability set the external engine expects:
// three text channels. The engine multiplexes informational and debug lines
// onto the debug channel.
type Logger interface {
	Debug(msg string)
	Warning(msg string)
	Error(msg string)
}

// Metadata is the read-only view over the engine's extracted video info.
// It lives only long enough to derive an output filename template.
type Metadata struct {
	raw []byte
}

// NewMetadata wraps raw extractor JSON. A nil or empty payload yields
// metadata whose every field reads as absent.
func NewMetadata(raw []byte) Metadata {
	return Metadata{raw: raw}
}

// Field returns the string value of a top-level metadata field, or "" when
// the field is absent or not a string-like value.
func (m Metadata) Field(name string) string {
	if len(m.raw) == 0 {
		return ""
	}
	return gjson.GetBytes(m.raw, name).String()
}

// Empty reports whether no metadata was extracted at all.
func (m Metadata) Empty() bool { return len(m.raw) == 0 }

// Engine is the boundary to the external extraction/download system.
type Engine interface {
	// Extract performs a metadata-only pre-flight fetch; nothing is
	// downloaded.
	Extract(ctx context.Context, opts *Options, url string) (Metadata, error)

	// Download fetches the given URLs, applying the full option set
	// including post-processing. Errors from the engine are returned as
	// *DownloadError.
	Download(ctx context.Context, opts *Options, urls ...string) error
}
