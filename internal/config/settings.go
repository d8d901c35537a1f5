package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds ambient configuration: where the engine binary lives, how
// long operations may run, and where logs go. Download behavior itself is
// configured per request via engine.Options.
type Settings struct {
	// Engine settings
	YtdlpPath      string        `json:"ytdlp_path" env:"YTD_YTDLP_PATH"`
	ExtractTimeout time.Duration `json:"extract_timeout" env:"YTD_EXTRACT_TIMEOUT"`

	// Logging settings
	LogFilePath   string `json:"log_file_path" env:"YTD_LOG_FILE"`
	LogMaxSizeMB  int    `json:"log_max_size_mb" env:"YTD_LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `json:"log_max_backups" env:"YTD_LOG_MAX_BACKUPS"`

	// CookieFile is a default Netscape-format cookie file applied when the
	// command line does not name one.
	CookieFile string `json:"cookie_file" env:"YTD_COOKIE_FILE"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		YtdlpPath:      "yt-dlp",
		ExtractTimeout: 5 * time.Minute,
		LogFilePath:    "ytd.log",
		LogMaxSizeMB:   10,
		LogMaxBackups:  7,
	}
}

// Load reads settings from a JSON file, then applies environment variable
// overrides. A missing file yields defaults rather than an error.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return nil, err
		default:
			if err := json.Unmarshal(data, settings); err != nil {
				return nil, err
			}
		}
	}

	if err := env.Parse(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
