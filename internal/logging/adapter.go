package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

const debugMarker = "[debug]"

// EngineAdapter routes the external engine's three text log channels into
// structured events. The engine sends both informational and debug lines to
// the debug channel; they are demultiplexed here by the internal debug
// marker prefix.
type EngineAdapter struct {
	log zerolog.Logger
}

// NewEngineAdapter binds an adapter to the given logger.
func NewEngineAdapter(log zerolog.Logger) *EngineAdapter {
	return &EngineAdapter{log: log}
}

// Debug handles the engine's combined info/debug channel. Blank lines are
// dropped. Marker-prefixed lines become debug events, the rest info events.
func (a *EngineAdapter) Debug(msg string) {
	if strings.TrimSpace(msg) == "" {
		return
	}

	if strings.HasPrefix(msg, debugMarker) {
		detail := strings.TrimSpace(strings.Replace(msg, debugMarker, "", 1))
		a.log.Debug().Str("detail", detail).Msg("ytdlp_debug")
		return
	}

	a.log.Info().Str("detail", strings.TrimSpace(msg)).Msg("ytdlp_info")
}

// Warning handles the engine's warning channel, stripping one leading
// WARNING: marker if present.
func (a *EngineAdapter) Warning(msg string) {
	if strings.TrimSpace(msg) == "" {
		return
	}

	detail := strings.TrimSpace(strings.Replace(msg, "WARNING:", "", 1))
	a.log.Warn().Str("detail", detail).Msg("ytdlp_warning")
}

// Error handles the engine's error channel, stripping one leading ERROR:
// marker if present.
func (a *EngineAdapter) Error(msg string) {
	if strings.TrimSpace(msg) == "" {
		return
	}

	detail := strings.TrimSpace(strings.Replace(msg, "ERROR:", "", 1))
	a.log.Error().Str("detail", detail).Msg("ytdlp_error")
}
