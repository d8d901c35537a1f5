// Package youtube classifies YouTube URLs into single videos and playlists.
package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotYouTube indicates the URL does not belong to a known YouTube domain.
var ErrNotYouTube = errors.New("not a valid YouTube URL")

// InvalidStructureError indicates a YouTube URL whose path shape is neither a
// recognized single-video form nor a playlist. Unknown shapes are rejected
// rather than guessed.
type InvalidStructureError struct {
	URL string
}

func (e *InvalidStructureError) Error() string {
	return fmt.Sprintf("unsupported or invalid YouTube URL structure: %q", e.URL)
}

// validDomains are matched exactly or as a dot-suffix, so www., m., music.
// and other subdomains all pass.
var validDomains = []string{
	"youtube.com",
	"youtu.be",
}

// singleVideoPrefixes are path prefixes that always designate one video.
var singleVideoPrefixes = []string{
	"/watch",
	"/shorts/",
	"/live/",
}

const playlistPrefix = "/playlist"

// EnsureScheme prepends https:// when the URL carries no http scheme, so
// that bare "youtube.com/..." inputs parse with a proper host. Idempotent.
func EnsureScheme(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

// IsYouTubeURL reports whether the URL points to a known YouTube domain.
func IsYouTubeURL(rawURL string) bool {
	parsed, err := url.Parse(EnsureScheme(rawURL))
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	for _, domain := range validDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// IsSingleVideo reports whether a YouTube URL designates a single video as
// opposed to a playlist. URLs with an unrecognized path shape return an
// *InvalidStructureError.
func IsSingleVideo(rawURL string) (bool, error) {
	normalized := EnsureScheme(rawURL)
	parsed, err := url.Parse(normalized)
	if err != nil {
		return false, &InvalidStructureError{URL: rawURL}
	}
	host := parsed.Hostname()
	path := parsed.Path

	// Short links are always single videos, whatever the path.
	if host == "youtu.be" || host == "www.youtu.be" {
		return true, nil
	}

	for _, prefix := range singleVideoPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true, nil
		}
	}

	if strings.HasPrefix(path, playlistPrefix) {
		return false, nil
	}

	return false, &InvalidStructureError{URL: normalized}
}
