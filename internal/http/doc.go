// Package http provides the HTTP client used to download remote cover art.
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	// Download a thumbnail with progress callback
//	client.DownloadFile(ctx, thumbnailURL, "/tmp/run/cover.jpg", func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
//
//	// Or keep it in memory, capped at 10 MiB
//	data, err := client.DownloadBytes(ctx, thumbnailURL, 10<<20)
//
// Any response other than 200 OK is returned as a *StatusError.
package http
