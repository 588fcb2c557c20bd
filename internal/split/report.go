package split

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/handiism/splitmix/internal/model"
)

// Report is the outcome of one export run.
type Report struct {
	// Total is the number of tracks in the tracklist.
	Total int

	// Exported holds the written tracks in tracklist order.
	Exported []model.ExportedTrack

	// Failures holds one error per track that was not written.
	Failures []TrackFailure

	// PlaylistPath and ArtworkPath are set when those files were written.
	PlaylistPath string
	ArtworkPath  string
}

// Succeeded returns the number of exported tracks.
func (r *Report) Succeeded() int {
	return len(r.Exported)
}

// Failed returns the number of tracks that were not exported.
func (r *Report) Failed() int {
	return len(r.Failures)
}

// Warnings returns every non-fatal problem attached to exported tracks.
func (r *Report) Warnings() []error {
	var warnings []error
	for _, t := range r.Exported {
		warnings = append(warnings, t.Warnings...)
	}
	return warnings
}

// OK reports whether every track of the tracklist was exported.
func (r *Report) OK() bool {
	return r.Failed() == 0 && r.Succeeded() == r.Total
}

// FailedIndexes returns the 1-based indexes of failed tracks.
func (r *Report) FailedIndexes() []int {
	indexes := make([]int, len(r.Failures))
	for i, f := range r.Failures {
		indexes[i] = f.TrackIndex()
	}
	return indexes
}

// Summary describes the run in one line:
//
//	18 of 20 tracks succeeded; tracks 7 and 13 failed: <reasons>
func (r *Report) Summary() string {
	s := fmt.Sprintf("%d of %d tracks succeeded", r.Succeeded(), r.Total)
	if r.Failed() == 0 {
		return s
	}

	noun := "track"
	if r.Failed() > 1 {
		noun = "tracks"
	}

	reasons := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		reasons[i] = f.Error()
	}

	return fmt.Sprintf("%s; %s %s failed: %s", s, noun, joinIndexes(r.FailedIndexes()), strings.Join(reasons, "; "))
}

// Err returns the failures joined into one error, or nil.
func (r *Report) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// joinIndexes renders 7 / 7 and 13 / 2, 7 and 13.
func joinIndexes(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, n := range indexes {
		parts[i] = strconv.Itoa(n)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
