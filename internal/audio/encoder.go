package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/faiface/beep"
)

// DefaultBitrate is the MP3 bitrate in kbps used when none is configured.
const DefaultBitrate = 320

// pcmChunk is the number of frames converted per write.
const pcmChunk = 4096

// Encoder writes a stream of samples to an encoded audio file.
//
// Encode is blocking and is not cancellable: a started encode always runs to
// completion so no half-written file is left behind.
type Encoder interface {
	// Extension is the file extension without the dot, e.g. "mp3".
	Extension() string

	// Encode drains s and writes the encoded result to dst.
	Encode(s beep.Streamer, format beep.Format, dst string) error
}

// FFmpegEncoder encodes MP3 files by piping raw PCM into ffmpeg/libmp3lame.
type FFmpegEncoder struct {
	// Path is the ffmpeg binary.
	Path string

	// Bitrate is the constant bitrate in kbps.
	Bitrate int
}

// NewFFmpegEncoder creates an MP3 encoder. Zero values fall back to "ffmpeg"
// and DefaultBitrate.
func NewFFmpegEncoder(path string, bitrate int) *FFmpegEncoder {
	if path == "" {
		path = "ffmpeg"
	}
	if bitrate <= 0 {
		bitrate = DefaultBitrate
	}
	return &FFmpegEncoder{Path: path, Bitrate: bitrate}
}

// Extension implements Encoder.
func (e *FFmpegEncoder) Extension() string {
	return "mp3"
}

// Encode implements Encoder.
func (e *FFmpegEncoder) Encode(s beep.Streamer, format beep.Format, dst string) error {
	channels := pcmChannels(format)

	cmd := exec.Command(e.Path,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "s16le",
		"-ar", strconv.Itoa(int(format.SampleRate)),
		"-ac", strconv.Itoa(channels),
		"-i", "pipe:0",
		"-map_metadata", "-1",
		"-codec:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", e.Bitrate),
		"-f", "mp3",
		dst,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	_, writeErr := WritePCM(stdin, s, channels)
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encode %s: %w: %s", dst, err, strings.TrimSpace(stderr.String()))
	}
	if writeErr != nil {
		return fmt.Errorf("stream pcm to ffmpeg: %w", writeErr)
	}
	return nil
}

// WritePCM drains s as interleaved signed 16-bit little-endian PCM with the
// given channel count (1 or 2) and returns the number of frames written.
func WritePCM(w io.Writer, s beep.Streamer, channels int) (int, error) {
	samples := make([][2]float64, pcmChunk)
	buf := make([]byte, pcmChunk*channels*2)
	frames := 0

	for {
		n, ok := s.Stream(samples)
		if n > 0 {
			b := buf[:0]
			for _, frame := range samples[:n] {
				for c := 0; c < channels; c++ {
					b = binary.LittleEndian.AppendUint16(b, uint16(toInt16(frame[c])))
				}
			}
			if _, err := w.Write(b); err != nil {
				return frames, err
			}
			frames += n
		}
		if !ok {
			break
		}
	}

	return frames, s.Err()
}

func pcmChannels(format beep.Format) int {
	if format.NumChannels == 1 {
		return 1
	}
	return 2
}

// toInt16 converts a [-1, 1] sample, clipping out of range values.
func toInt16(v float64) int16 {
	v = math.Round(v * 32767)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
