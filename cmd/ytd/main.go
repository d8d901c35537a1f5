// ytd downloads YouTube videos and playlists by driving yt-dlp with a
// curated configuration.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/firekeepers/ytd/internal/config"
	"github.com/firekeepers/ytd/internal/download"
	"github.com/firekeepers/ytd/internal/engine"
	"github.com/firekeepers/ytd/internal/logging"
	"github.com/firekeepers/ytd/internal/youtube"
)

// Exit codes.
const (
	exitOK         = 0
	exitUnhandled  = 1
	exitDownload   = 2
	exitInvalidURL = 3
	exitUsage      = 64
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		cookiesFlag string
		configFlag  string
		dryRunFlag  bool
	)

	// Set once RunE starts; an Execute error before that is a usage error.
	var executed bool

	cmd := &cobra.Command{
		Use:           "ytd <url> [url...]",
		Short:         "Download YouTube videos and playlists",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, urls []string) error {
			executed = true
			return runDownloads(urls, cookiesFlag, configFlag, dryRunFlag)
		},
	}

	cmd.Flags().StringVar(&cookiesFlag, "cookies", "", "path to a Netscape-formatted cookies file")
	cmd.Flags().StringVar(&configFlag, "config", "", "path to a settings file")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "classify and pre-flight only, download nothing")
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		if !executed {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, cmd.UsageString())
			return exitUsage
		}
		return exitCodeFor(err)
	}
	return exitOK
}

// runDownloads wires logging, configuration, the engine and the
// orchestrator, then processes each URL sequentially: validate, classify,
// download. The first failure stops the run.
func runDownloads(urls []string, cookiesFlag, configPath string, dryRun bool) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger, closer, err := logging.Setup(logging.Config{
		FilePath:   settings.LogFilePath,
		MaxSizeMB:  settings.LogMaxSizeMB,
		MaxBackups: settings.LogMaxBackups,
	})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer closer.Close()

	logger.Info().Msg("application_started")

	eng := engine.NewYtdlp()
	eng.Path = settings.YtdlpPath
	eng.ExtractTimeout = settings.ExtractTimeout

	base := engine.DefaultOptions(logging.NewEngineAdapter(logger))
	orch := download.New(eng, base, logger)

	cookieFile := cookiesFlag
	if cookieFile == "" {
		cookieFile = settings.CookieFile
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, url := range urls {
		if err := processURL(ctx, logger, orch, eng, base, url, cookieFile, dryRun); err != nil {
			logExitError(logger, err)
			return err
		}
	}
	return nil
}

// processURL runs one URL through validation, classification and the
// matching download operation.
func processURL(ctx context.Context, logger zerolog.Logger, orch *download.Orchestrator,
	eng engine.Engine, base *engine.Options, url, cookieFile string, dryRun bool) error {

	if !youtube.IsYouTubeURL(url) {
		logger.Error().Str("url", url).Msg("invalid_url")
		return fmt.Errorf("%w: %q", youtube.ErrNotYouTube, url)
	}

	single, err := youtube.IsSingleVideo(url)
	if err != nil {
		return err
	}

	if dryRun {
		return dryRunURL(ctx, logger, eng, base, url, cookieFile, single)
	}

	if single {
		logger.Info().Str("url", url).Msg("downloading_single_video")
		return orch.SingleVideo(ctx, url, cookieFile)
	}

	logger.Info().Str("url", url).Msg("downloading_playlist")
	return orch.Playlist(ctx, url, cookieFile)
}

// dryRunURL reports what a real run would do. Single videos still get the
// metadata pre-flight so the resolved title and author are shown.
func dryRunURL(ctx context.Context, logger zerolog.Logger, eng engine.Engine,
	base *engine.Options, url, cookieFile string, single bool) error {

	if !single {
		logger.Info().Str("url", url).Msg("dry_run_playlist")
		return nil
	}

	opts := base.Clone()
	if cookieFile != "" {
		opts.CookieFile = cookieFile
	}

	meta, err := eng.Extract(ctx, opts, url)
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("metadata_preflight_failed")
		return nil
	}

	logger.Info().
		Str("url", url).
		Str("title", meta.Field("title")).
		Str("channel", meta.Field("channel")).
		Msg("dry_run_single_video")
	return nil
}

// logExitError emits the structured error event matching the error kind
// before the process exits.
func logExitError(logger zerolog.Logger, err error) {
	var dlErr *engine.DownloadError
	switch {
	case isValidationError(err):
		logger.Error().Err(err).Msg("validation_error")
	case errors.As(err, &dlErr):
		logger.Error().Err(err).Msg("download_error")
	default:
		logger.Error().Err(err).Msg("unhandled_error")
	}
}

// exitCodeFor maps an error to the process exit code. Both URL validation
// error kinds share one code on purpose; they stay distinct types for
// callers and logs.
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}

	var dlErr *engine.DownloadError
	switch {
	case isValidationError(err):
		return exitInvalidURL
	case errors.As(err, &dlErr):
		return exitDownload
	default:
		return exitUnhandled
	}
}

func isValidationError(err error) bool {
	var structErr *youtube.InvalidStructureError
	return errors.Is(err, youtube.ErrNotYouTube) || errors.As(err, &structErr)
}
