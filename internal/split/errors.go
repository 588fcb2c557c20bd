package split

import (
	"errors"
	"fmt"

	"github.com/handiism/splitmix/internal/tracklist"
)

// ErrAllTracksFailed is wrapped by the ExportError of a run in which not a
// single track was written.
var ErrAllTracksFailed = errors.New("all tracks failed")

// ParseError is returned by Run when the tracklist yields no tracks.
type ParseError = tracklist.ParseError

// TrackFailure is a per-track error that kept one track from being exported.
// The run itself carries on unless ContinueOnError is off.
type TrackFailure interface {
	error

	// TrackIndex is the 1-based position of the track in the tracklist.
	TrackIndex() int

	// TrackTitle is the title as written in the tracklist.
	TrackTitle() string
}

// trackRef identifies the track an error belongs to.
type trackRef struct {
	Index int
	Title string
}

func (r trackRef) TrackIndex() int    { return r.Index }
func (r trackRef) TrackTitle() string { return r.Title }

func (r trackRef) label() string {
	return fmt.Sprintf("track %d %q", r.Index, r.Title)
}

// OutOfRangeError reports a track whose range holds no audio: it starts at or
// past the end of the source, or shares its timestamp with the next track.
type OutOfRangeError struct {
	trackRef
	StartMs    int64
	EndMs      int64
	DurationMs int64
}

func (e *OutOfRangeError) Error() string {
	if e.StartMs >= e.DurationMs {
		return fmt.Sprintf("%s: starts at %d ms, source is %d ms long", e.label(), e.StartMs, e.DurationMs)
	}
	return fmt.Sprintf("%s: empty range [%d, %d) ms", e.label(), e.StartMs, e.EndMs)
}

// EncodeError reports a failed encode. No file is left behind.
type EncodeError struct {
	trackRef
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: encode %s: %v", e.label(), e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// TagWriteError reports that the text tags could not be written. The encoded
// file is removed since untagged audio is not a valid result.
type TagWriteError struct {
	trackRef
	Path string
	Err  error
}

func (e *TagWriteError) Error() string {
	return fmt.Sprintf("%s: write tags %s: %v", e.label(), e.Path, e.Err)
}

func (e *TagWriteError) Unwrap() error { return e.Err }

// CoverArtError is a warning: the track was exported with its text tags but
// without the cover picture.
type CoverArtError struct {
	trackRef
	Err error
}

func (e *CoverArtError) Error() string {
	return fmt.Sprintf("%s: cover art: %v", e.label(), e.Err)
}

func (e *CoverArtError) Unwrap() error { return e.Err }

// ExportError is a run-level failure. The Report returned next to it still
// describes every track processed before the run stopped.
type ExportError struct {
	// Op is what the run was doing, e.g. "decode source".
	Op  string
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export: %s: %v", e.Op, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
