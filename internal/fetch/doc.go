// Package fetch downloads the source recording and its thumbnail from a
// video URL with yt-dlp, ready to be split.
//
//	fetcher := fetch.NewFetcher(settings, onEvent)
//	res, err := fetcher.Fetch(ctx, "https://www.youtube.com/watch?v=...")
//	// res.AudioPath: <work dir>/<uuid>/input.wav
//	// res.CoverPath: <work dir>/<uuid>/cover.jpg, or "" without thumbnail
//
// The run directory also receives metadata.json (see config.SaveMetadata) so
// a later split can pick up title and file locations.
package fetch
