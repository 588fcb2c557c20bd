package audio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"

	ioutils "github.com/handiism/splitmix/internal/io"
	"github.com/handiism/splitmix/internal/model"
)

func writeFakeMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "01 - Intro.mp3")
	if err := os.WriteFile(path, []byte("fake mpeg frames"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testTags() TrackTags {
	return TrackTags{
		Metadata: model.Metadata{Artist: "DJ Test", Album: "Live Set"},
		Title:    "Intro",
		Index:    1,
		Total:    3,
	}
}

func TestTagger_WriteTags(t *testing.T) {
	path := writeFakeMP3(t)

	if err := NewTagger(nil).WriteTags(path, testTags()); err != nil {
		t.Fatalf("WriteTags() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if tag.Artist() != "DJ Test" {
		t.Errorf("TPE1 = %q", tag.Artist())
	}
	if tag.Album() != "Live Set" {
		t.Errorf("TALB = %q", tag.Album())
	}
	if tag.Title() != "Intro" {
		t.Errorf("TIT2 = %q", tag.Title())
	}
	if got := tag.GetTextFrame("TRCK").Text; got != "1/3" {
		t.Errorf("TRCK = %q, want 1/3", got)
	}
	if got := tag.GetTextFrame("TPE2").Text; got != "DJ Test" {
		t.Errorf("TPE2 = %q", got)
	}
}

func TestTagger_WriteTagsKeepsAudio(t *testing.T) {
	path := writeFakeMP3(t)

	if err := NewTagger(nil).WriteTags(path, testTags()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("ID3")) {
		t.Error("file should start with an ID3 header")
	}
	if !bytes.HasSuffix(data, []byte("fake mpeg frames")) {
		t.Error("audio payload should follow the tag unchanged")
	}
}

func TestTagger_DoNotModify(t *testing.T) {
	path := writeFakeMP3(t)
	if err := NewTagger(nil).WriteTags(path, testTags()); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultTagConfig()
	cfg.AlbumArtist = TagDoNotModify

	tags := testTags()
	tags.Artist = "Someone Else"
	if err := NewTagger(cfg).WriteTags(path, tags); err != nil {
		t.Fatal(err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if got := tag.GetTextFrame("TPE2").Text; got != "DJ Test" {
		t.Errorf("TPE2 = %q, want unchanged", got)
	}
	if tag.Artist() != "Someone Else" {
		t.Errorf("TPE1 = %q, want updated", tag.Artist())
	}
}

func TestTagger_EmptyAlbumArtist(t *testing.T) {
	path := writeFakeMP3(t)
	if err := NewTagger(nil).WriteTags(path, testTags()); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultTagConfig()
	cfg.AlbumArtist = TagEmpty
	if err := NewTagger(cfg).WriteTags(path, testTags()); err != nil {
		t.Fatal(err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if got := tag.GetTextFrame("TPE2").Text; got != "" {
		t.Errorf("TPE2 = %q, want cleared", got)
	}
}

func TestTagger_RequiredTagsWithoutModifyTags(t *testing.T) {
	path := writeFakeMP3(t)

	cfg := DefaultTagConfig()
	cfg.ModifyTags = false
	if err := NewTagger(cfg).WriteTags(path, testTags()); err != nil {
		t.Fatalf("WriteTags() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if tag.Artist() != "DJ Test" || tag.Album() != "Live Set" || tag.Title() != "Intro" {
		t.Errorf("required frames = %q / %q / %q", tag.Artist(), tag.Album(), tag.Title())
	}
	if got := tag.GetTextFrame("TRCK").Text; got != "1/3" {
		t.Errorf("TRCK = %q, want 1/3", got)
	}
	if got := tag.GetTextFrame("TPE2").Text; got != "" {
		t.Errorf("TPE2 = %q, optional frames should be left alone", got)
	}
}

func TestTagger_EmbedCover(t *testing.T) {
	path := writeFakeMP3(t)
	tagger := NewTagger(nil)
	if err := tagger.WriteTags(path, testTags()); err != nil {
		t.Fatal(err)
	}

	cover, err := NewCover(pngBytes(t))
	if err != nil {
		t.Fatal(err)
	}
	// embedding twice must not duplicate the picture
	for i := 0; i < 2; i++ {
		if err := tagger.EmbedCover(path, cover); err != nil {
			t.Fatalf("EmbedCover() error = %v", err)
		}
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	frames := tag.GetFrames(tag.CommonID("Attached picture"))
	if len(frames) != 1 {
		t.Fatalf("APIC frames = %d, want 1", len(frames))
	}
	pic, ok := frames[0].(id3v2.PictureFrame)
	if !ok {
		t.Fatalf("frame type = %T", frames[0])
	}
	if pic.MimeType != "image/png" || pic.PictureType != id3v2.PTFrontCover {
		t.Errorf("picture = %q type %d", pic.MimeType, pic.PictureType)
	}
	if !bytes.Equal(pic.Picture, cover.Data) {
		t.Error("picture data differs")
	}
	if tag.Title() != "Intro" {
		t.Errorf("TIT2 after cover = %q, text tags must survive", tag.Title())
	}
}

func TestTagger_EmbedCoverEmpty(t *testing.T) {
	path := writeFakeMP3(t)
	if err := NewTagger(nil).EmbedCover(path, nil); err == nil {
		t.Error("EmbedCover(nil) should fail")
	}
}

func TestTagger_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.mp3")
	if err := NewTagger(nil).WriteTags(path, testTags()); err == nil {
		t.Error("WriteTags() on a missing file should fail")
	}
}

func TestNewCover(t *testing.T) {
	cover, err := NewCover(pngBytes(t))
	if err != nil {
		t.Fatalf("NewCover(png) error = %v", err)
	}
	if cover.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q", cover.MIMEType)
	}

	if _, err := NewCover([]byte("GIF89a.......")); !errors.Is(err, ioutils.ErrUnsupportedImage) {
		t.Errorf("NewCover(gif) error = %v, want ErrUnsupportedImage", err)
	}
}

func TestLoadCover(t *testing.T) {
	if _, err := LoadCover(filepath.Join(t.TempDir(), "missing.jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadCover(missing) error = %v, want os.ErrNotExist", err)
	}

	path := filepath.Join(t.TempDir(), "cover.png")
	if err := os.WriteFile(path, pngBytes(t), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCover(path); err != nil {
		t.Errorf("LoadCover(png) error = %v", err)
	}
}

func TestReadTags(t *testing.T) {
	path := writeFakeMP3(t)
	tagger := NewTagger(nil)
	if err := tagger.WriteTags(path, testTags()); err != nil {
		t.Fatal(err)
	}
	cover, _ := NewCover(pngBytes(t))
	if err := tagger.EmbedCover(path, cover); err != nil {
		t.Fatal(err)
	}

	info, err := ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags() error = %v", err)
	}

	want := TagInfo{Artist: "DJ Test", Album: "Live Set", Title: "Intro", Track: 1, Total: 3, PictureMIME: "image/png"}
	if *info != want {
		t.Errorf("ReadTags() = %+v, want %+v", *info, want)
	}
}
