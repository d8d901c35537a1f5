// Package download orchestrates single-video and playlist downloads through
// the external engine.
package download

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/firekeepers/ytd/internal/engine"
)

const unknownAuthor = "Unknown Author"

// playlistTemplate places playlist items in a channel-and-title folder with
// zero-padded indices; fields are resolved by the engine at write time.
const playlistTemplate = "%(channel)s - %(playlist_title)s/%(playlist_index)03d - %(title)s.%(ext)s"

// Orchestrator drives the external engine for classified URLs. It never
// retries: retry policy lives in the base options and is executed by the
// engine itself.
type Orchestrator struct {
	engine engine.Engine
	base   *engine.Options
	log    zerolog.Logger
}

// New creates an orchestrator over the given engine and base options.
func New(eng engine.Engine, base *engine.Options, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{engine: eng, base: base, log: log}
}

// SingleVideo downloads one video. It clones the base options, performs a
// metadata-only pre-flight to derive the author for the output filename,
// then invokes the engine for exactly this URL. Engine errors propagate
// unmodified.
func (o *Orchestrator) SingleVideo(ctx context.Context, url, cookieFile string) error {
	opts := o.base.Clone()
	if cookieFile != "" {
		opts.CookieFile = cookieFile
	}

	log := o.sessionLogger(url)

	meta, err := o.engine.Extract(ctx, opts, url)
	if err != nil {
		// Pre-flight failure is not fatal: fall back to empty metadata and
		// let the download itself succeed or fail on its own.
		log.Warn().Err(err).Msg("metadata_preflight_failed")
		meta = engine.NewMetadata(nil)
	}

	author := deriveAuthor(meta)
	opts.OutputTemplates["default"] = fmt.Sprintf("%s - %%(title)s.%%(ext)s", author)

	log.Info().Str("author", author).Msg("downloading_single_video")
	return o.engine.Download(ctx, opts, url)
}

// Playlist downloads a playlist into a dedicated folder. No pre-flight is
// needed: the nested template is resolved per item by the engine.
func (o *Orchestrator) Playlist(ctx context.Context, url, cookieFile string) error {
	opts := o.base.Clone()
	opts.OutputTemplates["default"] = playlistTemplate
	if cookieFile != "" {
		opts.CookieFile = cookieFile
	}

	log := o.sessionLogger(url)
	log.Info().Msg("downloading_playlist")
	return o.engine.Download(ctx, opts, url)
}

func (o *Orchestrator) sessionLogger(url string) zerolog.Logger {
	return o.log.With().
		Str("session_id", uuid.NewString()).
		Str("url", url).
		Logger()
}

// deriveAuthor picks the author label for the output filename: the first
// non-empty of channel, uploader, creator, uploader_id, with one leading @
// stripped, falling back to a literal label when everything is absent.
func deriveAuthor(meta engine.Metadata) string {
	author := coalesce(
		meta.Field("channel"),
		meta.Field("uploader"),
		meta.Field("creator"),
		meta.Field("uploader_id"),
	)
	if author == "" {
		return unknownAuthor
	}
	return strings.TrimPrefix(author, "@")
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
