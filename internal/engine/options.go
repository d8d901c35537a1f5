package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Postprocessor describes one engine post-processing step.
type Postprocessor struct {
	Key                 string
	AlreadyHaveSubtitle bool
	AlreadyHaveThumb    bool
	AddChapters         bool
	AddMetadata         bool
	AddInfoJSON         string // "", "if_exists"
	OnlyMultiVideo      bool
	When                string // "", "playlist"
}

// Options is the full configuration handed to the external engine for one
// invocation. It is a data object only: it has no behavior beyond cloning
// and argument rendering, and performs no I/O itself.
type Options struct {
	// Format selection: layered fallback preferring separate best video +
	// best audio with language-ordered audio, degrading to best overall.
	Format            string
	MergeOutputFormat string

	// Subtitles and embedding.
	SubtitleLangs    []string
	WriteSubtitles   bool
	WriteThumbnail   bool
	EmbedDescription bool
	Postprocessors   []Postprocessor

	// Output naming. Keys are template names ("default", "pl_thumbnail");
	// values are engine output templates resolved at write time.
	OutputTemplates map[string]string

	// Retry policy, owned by the engine. This layer never retries.
	Retries                  int
	FragmentRetries          int
	RetrySleep               time.Duration
	SkipUnavailableFragments bool
	ContinueDL               bool

	// Request shaping.
	HTTPHeaders map[string]string
	CookieFile  string

	// Engine behavior toggles. ExtractFlat is honored only during the
	// metadata pre-flight; forcing flat extraction on a download would
	// suppress playlist entries.
	AllowMultipleAudioStreams bool
	ExtractFlat               string // "discard_in_playlist"
	IgnoreErrors              string // "only_download"
	UpdateTime                bool
	WindowsFilenames          bool
	NoProgress                bool

	// Logger receives the engine's debug/warning/error text channels.
	Logger Logger
}

// defaultUserAgent is the fixed client identification string sent with
// every engine request.
const defaultUserAgent = "Mozilla/5.0 (iPhone17,5; CPU iPhone OS 18_3_2 like Mac OS X) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 FireKeepers/1.7.0"

// defaultFormat prefers best video plus best audio with russian-then-english
// language ordering, degrading stepwise to best overall.
const defaultFormat = "bestvideo+bestaudio[language^=ru]+bestaudio[language^=en]/" +
	"bestvideo+bestaudio[language^=ru]/" +
	"bestvideo+bestaudio[language^=en]/" +
	"bestvideo+bestaudio/best"

const defaultRetries = 15

// DefaultOptions returns a fresh base configuration bound to the given
// logger. Every call returns a new value; callers clone it again per
// request, so no two downloads ever share mutable state.
func DefaultOptions(logger Logger) *Options {
	return &Options{
		Format:            defaultFormat,
		MergeOutputFormat: "mkv/mp4",

		SubtitleLangs:    []string{"ru", "en"},
		WriteSubtitles:   true,
		WriteThumbnail:   true,
		EmbedDescription: true,
		Postprocessors: []Postprocessor{
			{Key: "FFmpegEmbedSubtitle", AlreadyHaveSubtitle: false},
			{Key: "FFmpegMetadata", AddChapters: true, AddMetadata: true, AddInfoJSON: "if_exists"},
			{Key: "EmbedThumbnail", AlreadyHaveThumb: false},
			{Key: "FFmpegConcat", OnlyMultiVideo: true, When: "playlist"},
		},

		OutputTemplates: map[string]string{
			"default":      "",
			"pl_thumbnail": "",
		},

		Retries:                  defaultRetries,
		FragmentRetries:          defaultRetries,
		RetrySleep:               5 * time.Second,
		SkipUnavailableFragments: false,
		ContinueDL:               true,

		HTTPHeaders: map[string]string{
			"User-Agent": defaultUserAgent,
		},

		AllowMultipleAudioStreams: true,
		ExtractFlat:               "discard_in_playlist",
		IgnoreErrors:              "only_download",
		UpdateTime:                true,
		WindowsFilenames:          true,
		NoProgress:                true,

		Logger: logger,
	}
}

// Clone deep-copies the options. Mutating the clone, including its nested
// maps and slices, never affects the source.
func (o *Options) Clone() *Options {
	clone := *o

	clone.SubtitleLangs = append([]string(nil), o.SubtitleLangs...)
	clone.Postprocessors = append([]Postprocessor(nil), o.Postprocessors...)

	clone.OutputTemplates = make(map[string]string, len(o.OutputTemplates))
	for k, v := range o.OutputTemplates {
		clone.OutputTemplates[k] = v
	}

	clone.HTTPHeaders = make(map[string]string, len(o.HTTPHeaders))
	for k, v := range o.HTTPHeaders {
		clone.HTTPHeaders[k] = v
	}

	return &clone
}

// Args renders the options as engine command-line arguments. The ordering
// is stable so invocations are reproducible in logs.
func (o *Options) Args() []string {
	args := []string{
		"--format", o.Format,
		"--retries", strconv.Itoa(o.Retries),
		"--fragment-retries", strconv.Itoa(o.FragmentRetries),
		"--retry-sleep", strconv.Itoa(int(o.RetrySleep / time.Second)),
	}

	if o.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", o.MergeOutputFormat)
	}

	if len(o.SubtitleLangs) > 0 {
		args = append(args, "--sub-langs", strings.Join(o.SubtitleLangs, ","))
	}
	if o.WriteSubtitles {
		args = append(args, "--write-subs")
	}
	if o.WriteThumbnail {
		args = append(args, "--write-thumbnail")
	}

	for _, pp := range o.Postprocessors {
		switch pp.Key {
		case "FFmpegEmbedSubtitle":
			args = append(args, "--embed-subs")
		case "FFmpegMetadata":
			if pp.AddMetadata {
				args = append(args, "--embed-metadata")
			}
			if pp.AddChapters {
				args = append(args, "--embed-chapters")
			}
			if pp.AddInfoJSON == "if_exists" {
				args = append(args, "--embed-info-json")
			}
		case "EmbedThumbnail":
			args = append(args, "--embed-thumbnail")
		case "FFmpegConcat":
			if pp.OnlyMultiVideo && pp.When == "playlist" {
				args = append(args, "--concat-playlist", "multi_video")
			}
		}
	}
	if o.EmbedDescription {
		args = append(args, "--write-description")
	}

	for _, flags := range sortedTemplates(o.OutputTemplates) {
		args = append(args, flags...)
	}

	if !o.SkipUnavailableFragments {
		args = append(args, "--abort-on-unavailable-fragments")
	}
	if o.ContinueDL {
		args = append(args, "--continue")
	}

	for _, k := range sortedKeys(o.HTTPHeaders) {
		args = append(args, "--add-headers", fmt.Sprintf("%s:%s", k, o.HTTPHeaders[k]))
	}
	if o.CookieFile != "" {
		args = append(args, "--cookies", o.CookieFile)
	}

	if o.AllowMultipleAudioStreams {
		args = append(args, "--audio-multistreams")
	}
	if o.IgnoreErrors == "only_download" {
		args = append(args, "--no-abort-on-error")
	}
	if o.UpdateTime {
		args = append(args, "--mtime")
	}
	if o.WindowsFilenames {
		args = append(args, "--windows-filenames")
	}
	if o.NoProgress {
		args = append(args, "--no-progress")
	}

	return args
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedTemplates renders output templates as repeated -o flags in stable
// key order, skipping empty values (an empty pl_thumbnail suppresses the
// playlist thumbnail sidecar, which stays explicit).
func sortedTemplates(m map[string]string) [][]string {
	var out [][]string
	for _, k := range sortedKeys(m) {
		v := m[k]
		if k == "default" {
			if v != "" {
				out = append(out, []string{"-o", v})
			}
			continue
		}
		out = append(out, []string{"-o", fmt.Sprintf("%s:%s", k, v)})
	}
	return out
}
