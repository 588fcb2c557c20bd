package model

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	ioutils "github.com/handiism/splitmix/internal/io"
)

// fallbackTitle is used in file names when a title sanitizes to nothing.
const fallbackTitle = "Track"

// TrackRequest is one parsed tracklist line: where a track starts and what it
// is called.
//
// StartMs is never negative and Title is never empty. A parsed tracklist is
// ordered by StartMs, with lines sharing a timestamp kept in authoring order.
type TrackRequest struct {
	// StartMs is the offset of the track in the source recording.
	StartMs int64

	// Title is the track title exactly as written after the separator, trimmed.
	Title string
}

// Start returns StartMs as a time.Duration.
func (r TrackRequest) Start() time.Duration {
	return time.Duration(r.StartMs) * time.Millisecond
}

// TrackPlan is the time range a single track will be cut from.
//
// EndMs is the StartMs of the following request, or the source duration for
// the last one. A plan is exportable only when 0 <= StartMs < EndMs <= duration.
type TrackPlan struct {
	// Index is the 1-based position in the sorted tracklist.
	Index int

	StartMs int64
	EndMs   int64
	Title   string
}

// LengthMs returns the planned track length, which is zero or negative for a
// degenerate plan.
func (p TrackPlan) LengthMs() int64 {
	return p.EndMs - p.StartMs
}

// ExportedTrack is an audio file written to disk for one TrackPlan.
type ExportedTrack struct {
	// Path is the full path of the encoded file.
	Path string

	Index   int
	Title   string
	StartMs int64
	EndMs   int64

	// Warnings holds non-fatal problems, such as cover art that could not be
	// embedded. The file and its text tags are valid regardless.
	Warnings []error
}

// Duration returns the length of the exported audio.
func (t ExportedTrack) Duration() time.Duration {
	return time.Duration(t.EndMs-t.StartMs) * time.Millisecond
}

// FileName returns the base name of the exported file.
func (t ExportedTrack) FileName() string {
	return filepath.Base(t.Path)
}

// IndexWidth returns how many digits track numbers are padded to for a
// tracklist of total entries: two, or more when total exceeds 99.
func IndexWidth(total int) int {
	return max(2, len(strconv.Itoa(total)))
}

// TrackFileName builds the file name for a track:
//
//	TrackFileName(1, 3, "Intro", "mp3")     // "01 - Intro.mp3"
//	TrackFileName(7, 120, "A/B", "mp3")     // "007 - AB.mp3"
//
// The title is sanitized with ioutils.SanitizeFileName and cut so the whole
// name fits in ioutils.MaxFileNameBytes. The index prefix keeps names unique
// even when two titles sanitize or truncate to the same text.
func TrackFileName(index, total int, title, ext string) string {
	prefix := fmt.Sprintf("%0*d - ", IndexWidth(total), index)
	suffix := "." + ext

	name := ioutils.SanitizeFileName(title)
	name = ioutils.TruncateFileName(name, ioutils.MaxFileNameBytes-len(prefix)-len(suffix))
	if name == "" {
		name = fallbackTitle
	}
	return prefix + name + suffix
}

// TrackNumberTag formats the ID3 track number frame value, "index/total".
func TrackNumberTag(index, total int) string {
	return fmt.Sprintf("%d/%d", index, total)
}
