// Package logging configures the process-wide structured logging sinks and
// adapts the external engine's text log channels onto them.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the logging sinks.
type Config struct {
	// FilePath is the rotating JSON log file. Empty disables the file sink.
	FilePath string
	// MaxSizeMB is the size of one log segment before rotation.
	MaxSizeMB int
	// MaxBackups is the number of rotated segments kept.
	MaxBackups int
}

// Setup initializes the process-wide sinks and returns the root logger and
// a closer that flushes the file sink. Call it once at startup and close at
// process exit.
//
// Sinks:
//   - stdout: human-readable console rendering, colorized when attached to
//     a terminal, info level and above
//   - stderr: same rendering, error level and above
//   - rotating file: one JSON object per line, info level and above
func Setup(cfg Config) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = "2006-01-02 15:04:05"

	stdoutWriter := &zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
		}},
		Level: zerolog.InfoLevel,
	}

	stderrWriter := &zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		}},
		Level: zerolog.ErrorLevel,
	}

	writers := []io.Writer{stdoutWriter, stderrWriter}

	var closer io.Closer = nopCloser{}
	if cfg.FilePath != "" {
		fileSink := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: fileSink},
			Level:  zerolog.InfoLevel,
		})
		closer = fileSink
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()

	return logger, closer, nil
}

// SetupFile initializes only the rotating file sink, for front-ends that
// own the terminal and render log output themselves.
func SetupFile(cfg Config) (zerolog.Logger, io.Closer, error) {
	if cfg.FilePath == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	zerolog.TimeFieldFormat = "2006-01-02 15:04:05"
	fileSink := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	logger := zerolog.New(fileSink).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
	return logger, fileSink, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
