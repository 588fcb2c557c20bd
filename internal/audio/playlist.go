package audio

import (
	"fmt"
	"strings"

	"github.com/handiism/splitmix/internal/model"
)

// PlaylistCreator generates playlist files for the tracks of an Album.
//
// Track paths in the playlist are relative (just the file name), so the
// playlist is expected to live next to the tracks.
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(album)
//	os.WriteFile(album.PlaylistPath, []byte(content), 0644)
//
//	// #EXTM3U
//	// #EXTINF:90,Artist - Intro
//	// 01 - Intro.mp3
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only affects
// the M3U format.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for an album.
func (p *PlaylistCreator) CreatePlaylist(album *model.Album) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(album)
	case model.PlaylistFormatWPL:
		return p.createSMIL(album, false)
	case model.PlaylistFormatZPL:
		return p.createSMIL(album, true)
	default:
		return p.createM3U(album)
	}
}

// createM3U generates an M3U playlist, with #EXTINF lines when extended.
func (p *PlaylistCreator) createM3U(album *model.Album) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, track := range album.Tracks {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", int(track.Duration().Seconds()), album.Artist, track.Title)
		}
		sb.WriteString(track.FileName() + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist.
func (p *PlaylistCreator) createPLS(album *model.Album) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, track := range album.Tracks {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, track.FileName())
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, track.Title)
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, int(track.Duration().Seconds()))
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(album.Tracks))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createSMIL generates the XML playlists of Windows Media Player (WPL) and
// Zune (ZPL). ZPL carries extra per-track metadata attributes.
func (p *PlaylistCreator) createSMIL(album *model.Album, zune bool) string {
	var sb strings.Builder

	if zune {
		sb.WriteString("<?zpl version=\"2.0\"?>\n")
	} else {
		sb.WriteString("<?wpl version=\"1.0\"?>\n")
	}
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(album.Album))
	if zune {
		sb.WriteString("    <meta name=\"Generator\" content=\"splitmix\"/>\n")
		fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(album.Tracks))
	}
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, track := range album.Tracks {
		if !zune {
			fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(track.FileName()))
			continue
		}
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(track.FileName()),
			escapeXML(album.Album),
			escapeXML(album.Artist),
			escapeXML(track.Title),
			escapeXML(album.Artist),
			track.Duration().Milliseconds())
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
