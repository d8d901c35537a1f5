package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Progress is one parsed engine download progress update.
type Progress struct {
	Percent float64
	Size    string
	Speed   string
	ETA     string
}

// Format: [download]  42.7% of 123.45MiB at 3.21MiB/s ETA 00:23
var progressRegex = regexp.MustCompile(
	`^\[download\]\s+([\d.]+)%(?:\s+of\s+~?\s*(\S+))?(?:\s+at\s+(\S+))?(?:\s+ETA\s+(\S+))?`)

// ParseProgress extracts a progress update from an engine output line.
// Lines that are not download progress report ok=false.
func ParseProgress(line string) (Progress, bool) {
	matches := progressRegex.FindStringSubmatch(strings.TrimSpace(line))
	if matches == nil {
		return Progress{}, false
	}

	percent, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return Progress{}, false
	}

	return Progress{
		Percent: percent,
		Size:    matches[2],
		Speed:   matches[3],
		ETA:     matches[4],
	}, true
}
