// Package model defines the core data structures shared by the tracklist
// parser and the export engine.
//
// # Tracks
//
// A tracklist goes through three shapes:
//
//	TrackRequest  // parsed line: start offset + title
//	TrackPlan     // 1-based index + [start, end) range cut from the source
//	ExportedTrack // file written to disk, with any non-fatal warnings
//
// File names are built with TrackFileName:
//
//	model.TrackFileName(2, 12, "Main: Theme", "mp3") // "02 - Main Theme.mp3"
//
// # Album
//
// Album groups the shared Metadata, the output directory and the exported
// tracks; it is what playlists are generated from:
//
//	album := model.NewAlbum(meta, outputDir, pathConfig)
//	fmt.Println(album.PlaylistPath)
package model
