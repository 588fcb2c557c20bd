package model

import (
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/splitmix/internal/io"
)

// Metadata holds the tag values shared by every track of one run.
type Metadata struct {
	Artist string
	Album  string
}

// Album represents the result of one split run: the shared metadata, where
// the files went, and which tracks were exported.
//
// Paths are computed by NewAlbum from a PathConfig:
//
//	cfg := &PathConfig{
//	    CoverArtFileNameFormat: "cover",
//	    PlaylistFileNameFormat: "{album}",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	}
//	album := NewAlbum(Metadata{Artist: "DJ", Album: "Live Set"}, "/music/live", cfg)
//	// album.PlaylistPath = "/music/live/Live Set.m3u"
type Album struct {
	Metadata

	// Path is the directory the tracks are exported to.
	Path string

	// ArtworkPath is where cover art is saved when it is kept next to the tracks.
	ArtworkPath string

	// PlaylistPath is the computed local file path for the playlist file.
	PlaylistPath string

	// Tracks contains the successfully exported tracks in tracklist order.
	Tracks []ExportedTrack
}

// NewAlbum creates an Album rooted at dir with paths computed from cfg.
//
// File name templates support the {artist} and {album} placeholders.
// Invalid filename characters are stripped.
func NewAlbum(meta Metadata, dir string, cfg *PathConfig) *Album {
	album := &Album{
		Metadata: meta,
		Path:     dir,
	}

	playlistExt := cfg.PlaylistFormat.Extension()
	album.PlaylistPath = filepath.Join(dir, album.expand(cfg.PlaylistFileNameFormat, "playlist", len(playlistExt))+playlistExt)
	album.ArtworkPath = filepath.Join(dir, album.expand(cfg.CoverArtFileNameFormat, "cover", len(".jpg"))+".jpg")

	return album
}

// expand replaces placeholders in a file name template and sanitizes the
// result, leaving extLen bytes of the name limit for the extension.
func (a *Album) expand(format, fallback string, extLen int) string {
	name := strings.ReplaceAll(format, "{artist}", a.Artist)
	name = strings.ReplaceAll(name, "{album}", a.Album)
	name = ioutils.SanitizeFileName(name)
	name = ioutils.TruncateFileName(name, ioutils.MaxFileNameBytes-extLen)
	if name == "" {
		return fallback
	}
	return name
}

// PathConfig holds file naming settings for the files written next to the
// tracks.
type PathConfig struct {
	// CoverArtFileNameFormat is the filename template for cover art (without extension).
	// Example: "cover" or "{album}"
	CoverArtFileNameFormat string

	// PlaylistFileNameFormat is the filename template for playlists (without extension).
	// Example: "{album}"
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a settings value ("m3u", "pls", "wpl", "zpl") to a
// PlaylistFormat. Unknown values fall back to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(s) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}
