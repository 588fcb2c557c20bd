package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/handiism/splitmix/internal/config"
	"github.com/handiism/splitmix/internal/http"
	ioutils "github.com/handiism/splitmix/internal/io"
	"github.com/handiism/splitmix/internal/split"
)

const (
	audioFileName = "input.wav"
	coverBaseName = "cover"
	tempBaseName  = "temp_audio"
)

// ErrNoAudio is returned when the downloader finished without an audio file.
var ErrNoAudio = errors.New("downloaded audio file not found")

// thumbnailPatterns are tried in order; the downloader may leave names such
// as temp_audio.webp.jpg behind.
var thumbnailPatterns = []string{
	tempBaseName + "*.jpg",
	tempBaseName + "*.png",
	tempBaseName + "*.webp",
}

// Result describes the media of one fetch.
type Result struct {
	Title string

	// Dir is the run directory holding every file of this fetch.
	Dir string

	// AudioPath is the WAV file to split.
	AudioPath string

	// CoverPath is the thumbnail, empty if none could be found.
	CoverPath string

	// Duration is the length as H:MM:SS or M:SS.
	Duration string
}

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// info is the subset of the yt-dlp info JSON that is used.
type info struct {
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

// Fetcher downloads the audio and thumbnail of a video with yt-dlp.
//
// Each fetch gets its own directory under the work dir, named with a random
// UUID, so concurrent fetches never share files.
type Fetcher struct {
	ytdlpPath string
	workDir   string
	client    *http.Client

	// Run executes yt-dlp. Tests replace it.
	Run Runner

	onEvent func(split.Event)
}

// NewFetcher creates a Fetcher. onEvent may be nil.
func NewFetcher(settings *config.Settings, onEvent func(split.Event)) *Fetcher {
	ytdlp := settings.YtDLPPath
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	return &Fetcher{
		ytdlpPath: ytdlp,
		workDir:   settings.WorkDir,
		client:    http.NewClient(),
		Run:       execRunner,
		onEvent:   onEvent,
	}
}

// WorkDir returns the directory holding every run directory.
func (f *Fetcher) WorkDir() string {
	return f.workDir
}

// Fetch downloads url into a new run directory and records the session
// metadata there for the split that follows.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	dir := filepath.Join(f.workDir, uuid.NewString())
	if err := ioutils.EnsureDir(dir); err != nil {
		return nil, err
	}

	f.event(split.LevelInfo, "Downloading %s", url)

	out, err := f.Run(ctx, f.ytdlpPath,
		"--no-playlist",
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "wav",
		"--write-thumbnail",
		"--convert-thumbnails", "jpg",
		"--write-info-json",
		"--output", filepath.Join(dir, tempBaseName+".%(ext)s"),
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp %s: %w: %s", url, err, strings.TrimSpace(string(out)))
	}

	meta, err := readInfo(filepath.Join(dir, tempBaseName+".info.json"))
	if err != nil {
		return nil, err
	}

	res := &Result{
		Title:    meta.Title,
		Dir:      dir,
		Duration: FormatDuration(int(meta.Duration)),
	}
	if res.Title == "" {
		res.Title = "Unknown Title"
	}

	res.AudioPath = filepath.Join(dir, audioFileName)
	if err := ioutils.MoveFile(ctx, filepath.Join(dir, tempBaseName+".wav"), res.AudioPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoAudio
		}
		return nil, err
	}

	res.CoverPath = f.findThumbnail(ctx, dir, meta.Thumbnail)

	session := &config.SessionMetadata{
		Artist: res.Title,
		Album:  res.Title,
		Title:  res.Title,
		Source: res.AudioPath,
		Cover:  res.CoverPath,
	}
	if err := config.SaveMetadata(dir, session); err != nil {
		f.event(split.LevelWarning, "Error saving metadata: %v", err)
	}

	f.event(split.LevelSuccess, "Downloaded %q (%s)", res.Title, res.Duration)
	return res, nil
}

// findThumbnail moves the thumbnail written by yt-dlp to cover.<ext>, falling
// back to downloading thumbnailURL. It returns "" when there is no cover.
func (f *Fetcher) findThumbnail(ctx context.Context, dir, thumbnailURL string) string {
	for _, pattern := range thumbnailPatterns {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		if len(matches) == 0 {
			continue
		}
		dst := filepath.Join(dir, coverBaseName+filepath.Ext(matches[0]))
		if err := ioutils.MoveFile(ctx, matches[0], dst); err != nil {
			f.event(split.LevelWarning, "Error moving thumbnail: %v", err)
			return ""
		}
		return dst
	}

	if thumbnailURL == "" {
		return ""
	}

	f.event(split.LevelWarning, "Thumbnail not found in downloaded files, downloading %s", thumbnailURL)
	dst := filepath.Join(dir, coverBaseName+".jpg")
	if err := f.client.DownloadFile(ctx, thumbnailURL, dst, nil); err != nil {
		f.event(split.LevelWarning, "Failed to download thumbnail: %v", err)
		return ""
	}
	return dst
}

// Clean removes every run directory.
func (f *Fetcher) Clean() error {
	return os.RemoveAll(f.workDir)
}

func readInfo(path string) (*info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read video info: %w", err)
	}
	var meta info
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse video info: %w", err)
	}
	return &meta, nil
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int) string {
	seconds = max(seconds, 0)
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func (f *Fetcher) event(level split.ProgressLevel, format string, args ...any) {
	if f.onEvent != nil {
		f.onEvent(split.Event{Message: fmt.Sprintf(format, args...), Level: level})
	}
}
