package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var (
	// ErrReleased is returned when a Source is used after Release.
	ErrReleased = errors.New("audio source released")

	// ErrEmptySlice is returned when a requested range holds no samples.
	ErrEmptySlice = errors.New("empty audio slice")
)

// Source is a fully decoded recording held in memory.
//
// A Source is read-only once built: every slice streams from the same
// buffer and never modifies it.
type Source struct {
	buf    *beep.Buffer
	format beep.Format
}

// NewSource buffers every sample of s.
func NewSource(format beep.Format, s beep.Streamer) (*Source, error) {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("buffer audio: %w", err)
	}
	return &Source{buf: buf, format: format}, nil
}

// Format returns the sample format of the decoded audio.
func (s *Source) Format() beep.Format {
	return s.format
}

// Len returns the number of sample frames, or 0 after Release.
func (s *Source) Len() int {
	if s.buf == nil {
		return 0
	}
	return s.buf.Len()
}

// Duration returns the total length of the recording.
func (s *Source) Duration() time.Duration {
	return s.format.SampleRate.D(s.Len())
}

// DurationMs returns the total length of the recording in milliseconds.
func (s *Source) DurationMs() int64 {
	return s.Duration().Milliseconds()
}

// Slice returns a streamer over [startMs, endMs). The range is clamped to
// the recording; ErrEmptySlice is returned if nothing is left. An endMs at or
// past DurationMs reaches the last frame, including the sub-millisecond tail
// DurationMs truncates.
func (s *Source) Slice(startMs, endMs int64) (beep.StreamSeeker, error) {
	if s.buf == nil {
		return nil, ErrReleased
	}

	from := min(max(s.sampleAt(startMs), 0), s.buf.Len())
	to := s.buf.Len()
	if endMs < s.DurationMs() {
		to = min(max(s.sampleAt(endMs), 0), to)
	}
	if from >= to {
		return nil, fmt.Errorf("%w: [%d, %d) ms", ErrEmptySlice, startMs, endMs)
	}

	return s.buf.Streamer(from, to), nil
}

// Release drops the decoded samples. The Source is unusable afterwards.
func (s *Source) Release() {
	s.buf = nil
}

func (s *Source) sampleAt(ms int64) int {
	return s.format.SampleRate.N(time.Duration(ms) * time.Millisecond)
}

// Decoder reads audio files into a Source.
//
// WAV, MP3, FLAC and Ogg Vorbis are decoded natively. Any other container is
// first converted to a temporary WAV file with ffmpeg.
type Decoder struct {
	// FFmpegPath is the ffmpeg binary used for containers without a native decoder.
	FFmpegPath string

	// TempDir holds intermediate WAV files. Empty means os.TempDir().
	TempDir string
}

// NewDecoder creates a Decoder using the given ffmpeg binary.
func NewDecoder(ffmpegPath string) *Decoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Decoder{FFmpegPath: ffmpegPath}
}

// Decode opens path and buffers the whole recording.
func (d *Decoder) Decode(ctx context.Context, path string) (*Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !nativeFormat(ext) {
		return d.decodeWithFFmpeg(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	streamer, format, err := decodeStream(f, ext)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	src, err := NewSource(format, streamer)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return src, nil
}

func nativeFormat(ext string) bool {
	switch ext {
	case ".wav", ".wave", ".mp3", ".flac", ".ogg":
		return true
	}
	return false
}

func decodeStream(rc io.ReadCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".mp3":
		return mp3.Decode(rc)
	case ".flac":
		return flac.Decode(rc)
	case ".ogg":
		return vorbis.Decode(rc)
	default:
		return wav.Decode(rc)
	}
}

// decodeWithFFmpeg converts path to 16-bit PCM WAV in a temporary file and
// decodes that.
func (d *Decoder) decodeWithFFmpeg(ctx context.Context, path string) (*Source, error) {
	tmp, err := os.CreateTemp(d.TempDir, "splitmix-*.wav")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, d.FFmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", path,
		"-vn",
		"-acodec", "pcm_s16le",
		"-f", "wav",
		tmpPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}

	return d.Decode(ctx, tmpPath)
}
