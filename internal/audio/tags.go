package audio

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// TagInfo is what a media player would read back from an exported file.
type TagInfo struct {
	Artist string
	Album  string
	Title  string
	Track  int
	Total  int

	// PictureMIME is the MIME type of the embedded picture, empty if none.
	PictureMIME string
}

// ReadTags reads the tags of an audio file with an independent reader, so
// callers can confirm what was actually written.
func ReadTags(path string) (*TagInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read tags %s: %w", path, err)
	}

	info := &TagInfo{
		Artist: m.Artist(),
		Album:  m.Album(),
		Title:  m.Title(),
	}
	info.Track, info.Total = m.Track()
	if pic := m.Picture(); pic != nil {
		info.PictureMIME = pic.MIMEType
	}
	return info, nil
}
