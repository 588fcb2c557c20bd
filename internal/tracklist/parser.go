package tracklist

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/handiism/splitmix/internal/model"
)

// linePattern matches "TIMESTAMP - TITLE" anchored at the start of a trimmed
// line. The leading unit has one or two digits, the rest exactly two.
var linePattern = regexp.MustCompile(`^(\d{1,2}:\d{2}(?::\d{2})?)\s*-\s*(.+)$`)

// ParseError is returned when no line of the input could be recognized as a
// track.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse tracklist: " + e.Reason
}

// Stats describes what Parse did with the input.
type Stats struct {
	// Lines is the number of non-blank lines seen.
	Lines int

	// Matched is the number of lines that produced a track.
	Matched int

	// Skipped holds the non-blank lines that did not match, in input order.
	Skipped []string
}

// Parse turns raw tracklist text into track requests sorted by start time.
//
// Non-matching lines are dropped silently. A ParseError is returned only
// when the text yields no tracks at all.
func Parse(text string) ([]model.TrackRequest, error) {
	tracks, _, err := ParseWithStats(text)
	return tracks, err
}

// ParseWithStats is Parse but also reports which lines were skipped, so
// callers can show them to the user.
func ParseWithStats(text string) ([]model.TrackRequest, Stats, error) {
	var (
		tracks []model.TrackRequest
		stats  Stats
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		stats.Lines++

		track, ok := parseLine(line)
		if !ok {
			stats.Skipped = append(stats.Skipped, line)
			continue
		}
		tracks = append(tracks, track)
	}
	stats.Matched = len(tracks)

	if len(tracks) == 0 {
		return nil, stats, &ParseError{Reason: "no tracks recognized"}
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].StartMs < tracks[j].StartMs
	})

	return tracks, stats, nil
}

func parseLine(line string) (model.TrackRequest, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return model.TrackRequest{}, false
	}

	title := strings.TrimSpace(m[2])
	if title == "" {
		return model.TrackRequest{}, false
	}

	ms, err := ParseTimeToMs(m[1])
	if err != nil {
		return model.TrackRequest{}, false
	}

	return model.TrackRequest{StartMs: ms, Title: title}, true
}

// ParseTimeToMs converts "MM:SS" or "HH:MM:SS" to milliseconds.
//
// Fields are not range checked: "0:61" is 61 seconds. Plausibility against
// the actual recording is decided when tracks are planned.
func ParseTimeToMs(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		total = total*60 + n
	}

	return total * 1000, nil
}

// FormatMs renders a millisecond offset the way tracklists write it:
// "M:SS" below an hour, "H:MM:SS" above.
func FormatMs(ms int64) string {
	secs := ms / 1000
	h, m, s := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
