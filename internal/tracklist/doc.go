// Package tracklist parses human-authored tracklists into ordered track
// boundaries.
//
// A tracklist is plain text with one track per line:
//
//	00:00 - Intro
//	03:24 - Track 2
//	1:07:15 - Closing Theme
//
// Timestamps are M:SS, MM:SS, H:MM:SS or HH:MM:SS. The separator is a dash
// with optional whitespace around it. Lines that do not look like a track are
// skipped, so pasted comments and headings are tolerated:
//
//	tracks, err := tracklist.Parse(text)
//	var perr *tracklist.ParseError
//	if errors.As(err, &perr) {
//	    // nothing in the text looked like a track
//	}
//
// The result is sorted by start time. Lines sharing a timestamp keep the order
// they were written in.
package tracklist
