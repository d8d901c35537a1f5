package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBinary         = "yt-dlp"
	defaultExtractTimeout = 5 * time.Minute
)

// Ytdlp drives the yt-dlp binary as a subprocess. It satisfies Engine.
//
// Stdout lines are routed to the configured Logger's debug channel (the
// engine multiplexes info and debug there); stderr lines go to the warning
// or error channel depending on their prefix.
type Ytdlp struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp" on PATH.
	Path string

	// ExtractTimeout bounds the metadata pre-flight. Defaults to 5 minutes.
	// Downloads are bounded only by the caller's context.
	ExtractTimeout time.Duration

	checkOnce sync.Once
	checkErr  error
}

// NewYtdlp creates an engine wrapper with default binary resolution.
func NewYtdlp() *Ytdlp {
	return &Ytdlp{Path: defaultBinary, ExtractTimeout: defaultExtractTimeout}
}

var _ Engine = (*Ytdlp)(nil)

// Extract runs a metadata-only pre-flight: the engine dumps the video's
// info JSON without downloading anything.
func (y *Ytdlp) Extract(ctx context.Context, opts *Options, url string) (Metadata, error) {
	if err := y.checkInstalled(ctx); err != nil {
		return Metadata{}, err
	}

	timeout := y.ExtractTimeout
	if timeout == 0 {
		timeout = defaultExtractTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"--dump-single-json", "--skip-download", "--no-warnings"}
	if opts.CookieFile != "" {
		args = append(args, "--cookies", opts.CookieFile)
	}
	if ua, ok := opts.HTTPHeaders["User-Agent"]; ok {
		args = append(args, "--user-agent", ua)
	}
	args = append(args, url)

	cmd := exec.CommandContext(cmdCtx, y.binary(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Metadata{}, &DownloadError{
			URL:    url,
			Stderr: lastLine(stderr.String()),
			Err:    fmt.Errorf("metadata extraction failed: %w", err),
		}
	}

	return NewMetadata(stdout.Bytes()), nil
}

// Download invokes the engine for the given URLs with the full option set.
// The subprocess's lifetime is scoped to this call; the context tears it
// down on cancellation.
func (y *Ytdlp) Download(ctx context.Context, opts *Options, urls ...string) error {
	if err := y.checkInstalled(ctx); err != nil {
		return err
	}

	args := opts.Args()
	args = append(args, "--newline")
	args = append(args, urls...)

	cmd := exec.CommandContext(ctx, y.binary(), args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return &DownloadError{URL: strings.Join(urls, " "), Err: err}
	}

	var errTail string
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if opts.Logger != nil {
				opts.Logger.Debug(scanner.Text())
			}
		}
		return scanner.Err()
	})
	g.Go(func() error {
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			RouteStderrLine(opts.Logger, line)
			if strings.HasPrefix(line, "ERROR") {
				errTail = line
			}
		}
		return scanner.Err()
	})

	scanErr := g.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil {
		return &DownloadError{URL: strings.Join(urls, " "), Stderr: errTail, Err: waitErr}
	}
	if scanErr != nil {
		return &DownloadError{URL: strings.Join(urls, " "), Err: scanErr}
	}
	return nil
}

// RouteStderrLine sends one engine stderr line to the matching logger
// channel: ERROR-prefixed lines to the error channel, everything else to
// the warning channel. Blank lines are handled by the logger itself.
func RouteStderrLine(logger Logger, line string) {
	if logger == nil {
		return
	}
	if strings.HasPrefix(line, "ERROR") {
		logger.Error(line)
		return
	}
	logger.Warning(line)
}

// checkInstalled verifies once that the binary is runnable.
func (y *Ytdlp) checkInstalled(ctx context.Context) error {
	y.checkOnce.Do(func() {
		cmd := exec.CommandContext(ctx, y.binary(), "--version")
		if err := cmd.Run(); err != nil {
			y.checkErr = fmt.Errorf("%w: %s", ErrEngineNotFound, y.binary())
		}
	})
	return y.checkErr
}

func (y *Ytdlp) binary() string {
	if y.Path != "" {
		return y.Path
	}
	return defaultBinary
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
