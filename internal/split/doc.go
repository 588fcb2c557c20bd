// Package split cuts one long recording into tagged MP3 tracks.
//
// # Engine
//
// The Engine runs the whole pipeline:
//
//  1. Parse the tracklist
//  2. Decode the source and prepare cover art (concurrently)
//  3. Plan a [start, end) range per track
//  4. For each track: slice, encode, write tags, embed cover
//  5. Write the playlist and folder cover (optional)
//
// # Basic Usage
//
//	engine := split.NewEngine(settings, nil, func(event split.Event) {
//	    fmt.Println(event.Message)
//	})
//
//	report, err := engine.Run(ctx, split.Request{
//	    Job: split.Job{
//	        Metadata:  model.Metadata{Artist: "DJ", Album: "Live Set"},
//	        OutputDir: "/music/live",
//	        CoverPath: "cover.jpg",
//	    },
//	    SourcePath: "input.wav",
//	    Tracklist:  "0:00 - Intro\n1:30 - Main\n5:00 - Outro",
//	})
//	fmt.Println(report.Summary())
//
// # Failure Policy
//
// Per-track problems are TrackFailures (OutOfRangeError, EncodeError,
// TagWriteError) collected in the Report; the run moves on to the next track.
// With Settings.ContinueOnError off the first failure stops the run instead.
// Cover art problems never fail a track and are attached as CoverArtError
// warnings.
//
// Run-level problems are returned as *ExportError next to the partial Report.
// A run in which every track failed wraps ErrAllTracksFailed.
package split
