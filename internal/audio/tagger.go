package audio

import (
	"fmt"
	"os"

	"github.com/bogem/id3v2"

	ioutils "github.com/handiism/splitmix/internal/io"
	"github.com/handiism/splitmix/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value of the current run.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig controls the optional ID3 frames.
//
// The lead artist (TPE1), album (TALB), title (TIT2) and track number (TRCK)
// frames are always written; a track without them is not a finished export.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags:  true,
//	    AlbumArtist: TagDoNotModify,
//	    Comments:    TagEmpty,
//	}
type TagConfig struct {
	// ModifyTags is a master switch for the optional frames. If false, they
	// are left as they are.
	ModifyTags bool

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Comments controls the COMM (Comments) frames.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration: the album artist is
// written and comments are cleared.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		AlbumArtist: TagModify,
		Comments:    TagEmpty,
	}
}

// TrackTags are the text tag values of one exported track.
type TrackTags struct {
	model.Metadata

	Title string
	Index int
	Total int
}

// Cover is embedded as the front cover picture of every track.
type Cover struct {
	Data     []byte
	MIMEType string
}

// NewCover validates image bytes for embedding. Only JPEG and PNG are accepted.
func NewCover(data []byte) (*Cover, error) {
	mime, err := ioutils.DetectImageMIME(data)
	if err != nil {
		return nil, err
	}
	return &Cover{Data: data, MIMEType: mime}, nil
}

// LoadCover reads and validates an image file.
func LoadCover(path string) (*Cover, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cover, err := NewCover(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cover, nil
}

// Tagger writes ID3v2 tags to MP3 files.
//
// Tags are written in two passes: WriteTags sets the text frames and saves,
// then EmbedCover attaches the picture in a second save. A failing cover
// never leaves a track without its text tags.
//
//	tagger := NewTagger(DefaultTagConfig())
//	if err := tagger.WriteTags(path, tags); err != nil {
//	    return err
//	}
//	if err := tagger.EmbedCover(path, cover); err != nil {
//	    log.Printf("cover art: %v", err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// WriteTags sets the text frames of the MP3 at path and saves the file.
// The file must exist.
func (t *Tagger) WriteTags(path string, tags TrackTags) error {
	tag, err := openTag(path)
	if err != nil {
		return err
	}
	defer tag.Close()

	setRequiredTags(tag, tags)
	if t.config.ModifyTags {
		t.updateOptionalTags(tag, tags)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags %s: %w", path, err)
	}
	return nil
}

// EmbedCover attaches cover as the front cover picture of the MP3 at path,
// replacing any existing pictures.
func (t *Tagger) EmbedCover(path string, cover *Cover) error {
	if cover == nil || len(cover.Data) == 0 {
		return fmt.Errorf("embed cover %s: no image data", path)
	}

	tag, err := openTag(path)
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    cover.MIMEType,
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     cover.Data,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save cover %s: %w", path, err)
	}
	return nil
}

func openTag(path string) (*id3v2.Tag, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("open tags %s: %w", path, err)
	}
	// UTF-8 text needs ID3v2.4
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	return tag, nil
}

func setRequiredTags(tag *id3v2.Tag, tags TrackTags) {
	tag.SetArtist(tags.Artist)
	tag.SetAlbum(tags.Album)
	tag.SetTitle(tags.Title)
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, model.TrackNumberTag(tags.Index, tags.Total))
}

// updateOptionalTags updates the configurable frames.
func (t *Tagger) updateOptionalTags(tag *id3v2.Tag, tags TrackTags) {
	// Album Artist (TPE2)
	switch t.config.AlbumArtist {
	case TagEmpty:
		tag.DeleteFrames("TPE2")
	case TagModify:
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, tags.Artist)
	}

	// Comments (COMM)
	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
}
