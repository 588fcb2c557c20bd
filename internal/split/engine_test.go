package split

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/splitmix/internal/audio"
	"github.com/handiism/splitmix/internal/config"
	"github.com/handiism/splitmix/internal/model"
	"github.com/handiism/splitmix/internal/tracklist"
)

// testFormat makes one sample frame exactly one millisecond.
var testFormat = beep.Format{SampleRate: 1000, NumChannels: 2, Precision: 2}

const sixMinutes = 6 * 60 * 1000

// fakeEncoder drains the slice and writes a stand-in MP3 payload that the
// ID3 tagger can work on.
type fakeEncoder struct {
	frames map[string]int

	// fail makes Encode return an error after writing a partial file.
	fail map[string]error

	// asDir creates a directory at the destination so tagging fails.
	asDir map[string]bool
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{
		frames: make(map[string]int),
		fail:   make(map[string]error),
		asDir:  make(map[string]bool),
	}
}

func (f *fakeEncoder) Extension() string { return "mp3" }

func (f *fakeEncoder) Encode(s beep.Streamer, format beep.Format, dst string) error {
	n, err := audio.WritePCM(io.Discard, s, format.NumChannels)
	if err != nil {
		return err
	}

	name := filepath.Base(dst)
	if f.asDir[name] {
		return os.Mkdir(dst, 0755)
	}
	if err := os.WriteFile(dst, []byte("fake mpeg frames"), 0644); err != nil {
		return err
	}
	if err := f.fail[name]; err != nil {
		return err
	}

	f.frames[name] = n
	return nil
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.CoverArtInTagsResize = false
	return s
}

func newTestSource(t *testing.T, ms int) *audio.Source {
	t.Helper()
	src, err := audio.NewSource(testFormat, beep.Silence(ms))
	require.NoError(t, err)
	return src
}

func parse(t *testing.T, text string) []model.TrackRequest {
	t.Helper()
	tracks, err := tracklist.Parse(text)
	require.NoError(t, err)
	return tracks
}

func testJob(t *testing.T) Job {
	return Job{
		Metadata:  model.Metadata{Artist: "DJ Test", Album: "Live Set"},
		OutputDir: filepath.Join(t.TempDir(), "out"),
	}
}

func pngCover(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestExport_ThreeTrackScenario(t *testing.T) {
	enc := newFakeEncoder()
	engine := NewEngine(testSettings(), enc, nil)
	job := testJob(t)

	report, err := engine.Export(context.Background(), newTestSource(t, sixMinutes),
		parse(t, "0:00 - Intro\n1:30 - Main\n5:00 - Outro"), job)
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, 3, report.Succeeded())
	assert.Equal(t, "3 of 3 tracks succeeded", report.Summary())

	assert.Equal(t, map[string]int{
		"01 - Intro.mp3": 90000,
		"02 - Main.mp3":  210000,
		"03 - Outro.mp3": 60000,
	}, enc.frames)

	last := report.Exported[2]
	assert.Equal(t, int64(300000), last.StartMs)
	assert.Equal(t, int64(sixMinutes), last.EndMs)

	info, err := audio.ReadTags(filepath.Join(job.OutputDir, "02 - Main.mp3"))
	require.NoError(t, err)
	assert.Equal(t, audio.TagInfo{Artist: "DJ Test", Album: "Live Set", Title: "Main", Track: 2, Total: 3}, *info)
}

func TestExport_OutOfRangeTrack(t *testing.T) {
	job := testJob(t)
	engine := NewEngine(testSettings(), newFakeEncoder(), nil)

	report, err := engine.Export(context.Background(), newTestSource(t, sixMinutes),
		parse(t, "0:00 - Opener\n10:00 - Ghost"), job)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded())
	require.Len(t, report.Failures, 1)

	var oor *OutOfRangeError
	require.ErrorAs(t, report.Failures[0], &oor)
	assert.Equal(t, 2, oor.TrackIndex())
	assert.Equal(t, "Ghost", oor.TrackTitle())
	assert.Equal(t, int64(sixMinutes), oor.DurationMs)

	assert.NoFileExists(t, filepath.Join(job.OutputDir, "02 - Ghost.mp3"))
	assert.Equal(t, int64(sixMinutes), report.Exported[0].EndMs)
}

func TestExport_SameTimestampIsEmptyRange(t *testing.T) {
	engine := NewEngine(testSettings(), newFakeEncoder(), nil)

	report, err := engine.Export(context.Background(), newTestSource(t, 5000),
		parse(t, "0:00 - First\n0:00 - Second"), testJob(t))
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Failures[0].TrackIndex())
	assert.Contains(t, report.Failures[0].Error(), "empty range")
	assert.Equal(t, "Second", report.Exported[0].Title)
}

func TestExport_SanitizedTitlesStayUnique(t *testing.T) {
	enc := newFakeEncoder()
	engine := NewEngine(testSettings(), enc, nil)
	job := testJob(t)

	_, err := engine.Export(context.Background(), newTestSource(t, 10000),
		parse(t, "0:00 - A/B\n0:05 - AB"), job)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(job.OutputDir, "01 - AB.mp3"))
	assert.FileExists(t, filepath.Join(job.OutputDir, "02 - AB.mp3"))
}

func TestExport_LongMultibyteTitle(t *testing.T) {
	engine := NewEngine(testSettings(), newFakeEncoder(), nil)
	job := testJob(t)
	title := strings.Repeat("曲", 90)

	report, err := engine.Export(context.Background(), newTestSource(t, 4000),
		parse(t, "0:00 - "+title+"\n0:02 - Short"), job)
	require.NoError(t, err)

	assert.True(t, report.OK(), "failures: %v", report.Failures)
	require.Len(t, report.Exported, 2)

	name := report.Exported[0].FileName()
	assert.LessOrEqual(t, len(name), 255)
	assert.True(t, strings.HasPrefix(name, "01 - 曲"))
	assert.FileExists(t, report.Exported[0].Path)

	info, err := audio.ReadTags(report.Exported[0].Path)
	require.NoError(t, err)
	assert.Equal(t, title, info.Title)
}

func TestExport_MissingCoverIsWarning(t *testing.T) {
	job := testJob(t)
	job.CoverPath = filepath.Join(t.TempDir(), "missing.jpg")
	engine := NewEngine(testSettings(), newFakeEncoder(), nil)

	report, err := engine.Export(context.Background(), newTestSource(t, sixMinutes),
		parse(t, "0:00 - Intro\n1:30 - Main\n5:00 - Outro"), job)
	require.NoError(t, err)

	assert.True(t, report.OK())
	warnings := report.Warnings()
	require.Len(t, warnings, 3)

	var coverErr *CoverArtError
	require.ErrorAs(t, warnings[0], &coverErr)
	assert.ErrorIs(t, coverErr, os.ErrNotExist)

	info, err := audio.ReadTags(report.Exported[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "Intro", info.Title)
	assert.Empty(t, info.PictureMIME)
}

func TestExport_UnsupportedCoverIsWarning(t *testing.T) {
	job := testJob(t)
	job.Cover = []byte("GIF89a not a supported cover")
	engine := NewEngine(testSettings(), newFakeEncoder(), nil)

	report, err := engine.Export(context.Background(), newTestSource(t, 2000), parse(t, "0:00 - Only"), job)
	require.NoError(t, err)

	require.Len(t, report.Warnings(), 1)
	assert.Equal(t, 0, report.Failed())
}

func TestExport_EmbedsCover(t *testing.T) {
	job := testJob(t)
	job.Cover = pngCover(t)
	engine := NewEngine(testSettings(), newFakeEncoder(), nil)

	report, err := engine.Export(context.Background(), newTestSource(t, 4000),
		parse(t, "0:00 - One\n0:02 - Two"), job)
	require.NoError(t, err)
	assert.Empty(t, report.Warnings())

	for _, track := range report.Exported {
		info, err := audio.ReadTags(track.Path)
		require.NoError(t, err)
		assert.Equal(t, "image/png", info.PictureMIME)
	}
}

func TestExport_EncodeFailureContinues(t *testing.T) {
	enc := newFakeEncoder()
	enc.fail["02 - Main.mp3"] = errors.New("lame exploded")
	job := testJob(t)

	var events []Event
	engine := NewEngine(testSettings(), enc, func(e Event) { events = append(events, e) })

	report, err := engine.Export(context.Background(), newTestSource(t, sixMinutes),
		parse(t, "0:00 - Intro\n1:30 - Main\n5:00 - Outro"), job)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, 2, report.Succeeded())
	assert.Equal(t, []int{2}, report.FailedIndexes())

	var encErr *EncodeError
	require.ErrorAs(t, report.Failures[0], &encErr)
	assert.EqualError(t, encErr.Err, "lame exploded")
	assert.NoFileExists(t, filepath.Join(job.OutputDir, "02 - Main.mp3"))
	assert.FileExists(t, filepath.Join(job.OutputDir, "03 - Outro.mp3"))

	assert.Contains(t, report.Summary(), "2 of 3 tracks succeeded; track 2 failed: ")

	var errorEvents int
	for _, e := range events {
		if e.Level == LevelError {
			errorEvents++
		}
	}
	assert.Equal(t, 1, errorEvents)
}

func TestExport_AbortOnFirstFailure(t *testing.T) {
	enc := newFakeEncoder()
	enc.fail["02 - Main.mp3"] = errors.New("disk full")
	settings := testSettings()
	settings.ContinueOnError = false
	job := testJob(t)

	report, err := NewEngine(settings, enc, nil).Export(context.Background(), newTestSource(t, sixMinutes),
		parse(t, "0:00 - Intro\n1:30 - Main\n5:00 - Outro"), job)

	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	var encErr *EncodeError
	assert.ErrorAs(t, err, &encErr)

	assert.Equal(t, 1, report.Succeeded())
	assert.Equal(t, 1, report.Failed())
	assert.NoFileExists(t, filepath.Join(job.OutputDir, "03 - Outro.mp3"))
}

func TestExport_AllTracksFailed(t *testing.T) {
	engine := NewEngine(testSettings(), newFakeEncoder(), nil)

	report, err := engine.Export(context.Background(), newTestSource(t, 1000),
		parse(t, "1:00 - Late\n2:00 - Later"), testJob(t))

	require.ErrorIs(t, err, ErrAllTracksFailed)
	var oor *OutOfRangeError
	assert.ErrorAs(t, err, &oor)
	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, "0 of 2 tracks succeeded; tracks 1 and 2 failed: "+
		report.Failures[0].Error()+"; "+report.Failures[1].Error(), report.Summary())
}

func TestExport_TagFailureRemovesFile(t *testing.T) {
	enc := newFakeEncoder()
	enc.asDir["01 - Intro.mp3"] = true
	job := testJob(t)

	report, err := NewEngine(testSettings(), enc, nil).Export(context.Background(), newTestSource(t, 4000),
		parse(t, "0:00 - Intro\n0:02 - Next"), job)
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	var tagErr *TagWriteError
	require.ErrorAs(t, report.Failures[0], &tagErr)
	assert.NoDirExists(t, filepath.Join(job.OutputDir, "01 - Intro.mp3"))
	assert.NoFileExists(t, filepath.Join(job.OutputDir, "01 - Intro.mp3"))
}

func TestExport_ProgressForEveryTrack(t *testing.T) {
	type call struct {
		current, total int
		title          string
	}
	var calls []call

	job := testJob(t)
	job.OnProgress = func(current, total int, title string) {
		calls = append(calls, call{current, total, title})
	}

	engine := NewEngine(testSettings(), newFakeEncoder(), nil)
	_, err := engine.Export(context.Background(), newTestSource(t, sixMinutes),
		parse(t, "0:00 - Intro\n1:30 - Main\n9:00 - Ghost"), job)
	require.NoError(t, err)

	assert.Equal(t, []call{{1, 3, "Intro"}, {2, 3, "Main"}, {3, 3, "Ghost"}}, calls)

	done, total := engine.GetProgress()
	assert.Equal(t, 3, done)
	assert.Equal(t, 3, total)
}

func TestExport_CancelBetweenTracks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := testJob(t)
	job.OnProgress = func(current, total int, title string) {
		if current == 1 {
			cancel()
		}
	}

	report, err := NewEngine(testSettings(), newFakeEncoder(), nil).Export(ctx, newTestSource(t, sixMinutes),
		parse(t, "0:00 - Intro\n1:30 - Main\n5:00 - Outro"), job)

	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Succeeded())
	assert.FileExists(t, filepath.Join(job.OutputDir, "01 - Intro.mp3"))
	assert.NoFileExists(t, filepath.Join(job.OutputDir, "02 - Main.mp3"))
}

func TestExport_PlaylistAndFolderCover(t *testing.T) {
	settings := testSettings()
	settings.CreatePlaylist = true
	settings.SaveCoverArtInFolder = true
	job := testJob(t)
	job.Cover = pngCover(t)

	report, err := NewEngine(settings, newFakeEncoder(), nil).Export(context.Background(), newTestSource(t, 4000),
		parse(t, "0:00 - One\n0:02 - Two"), job)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(job.OutputDir, "Live Set.m3u"), report.PlaylistPath)
	playlist, err := os.ReadFile(report.PlaylistPath)
	require.NoError(t, err)
	assert.Contains(t, string(playlist), "01 - One.mp3")
	assert.Contains(t, string(playlist), "02 - Two.mp3")

	assert.Equal(t, filepath.Join(job.OutputDir, "cover.jpg"), report.ArtworkPath)
	assert.FileExists(t, report.ArtworkPath)
}

func TestExport_OutputDirFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	job := testJob(t)
	job.OutputDir = filepath.Join(blocker, "out")

	report, err := NewEngine(testSettings(), newFakeEncoder(), nil).Export(context.Background(),
		newTestSource(t, 1000), parse(t, "0:00 - One"), job)

	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "create output directory", exportErr.Op)
	assert.Equal(t, 0, report.Succeeded())
}

func TestRun_DecodesAndExports(t *testing.T) {
	source := filepath.Join(t.TempDir(), "input.wav")
	f, err := os.Create(source)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, beep.Silence(3000), testFormat))
	require.NoError(t, f.Close())

	enc := newFakeEncoder()
	job := testJob(t)

	report, err := NewEngine(testSettings(), enc, nil).Run(context.Background(), Request{
		Job:        job,
		SourcePath: source,
		Tracklist:  "not a track\n0:00 - A\n0:01 - B\n",
	})
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, map[string]int{"01 - A.mp3": 1000, "02 - B.mp3": 2000}, enc.frames)
}

func TestRun_EventsDuringParallelPreparation(t *testing.T) {
	source := filepath.Join(t.TempDir(), "input.wav")
	f, err := os.Create(source)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, beep.Silence(2000), testFormat))
	require.NoError(t, f.Close())

	var (
		mu     sync.Mutex
		events []Event
	)
	record := func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	settings := testSettings()
	settings.SaveCoverArtInFolder = true
	job := testJob(t)
	job.Cover = pngCover(t)

	report, err := NewEngine(settings, newFakeEncoder(), record).Run(context.Background(), Request{
		Job:        job,
		SourcePath: source,
		Tracklist:  "0:00 - A\n0:01 - B\n",
	})
	require.NoError(t, err)
	assert.True(t, report.OK())

	mu.Lock()
	defer mu.Unlock()
	var messages []string
	for _, e := range events {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "Decoding input.wav")
}

func TestRun_ParseError(t *testing.T) {
	_, err := NewEngine(testSettings(), newFakeEncoder(), nil).Run(context.Background(), Request{
		Job:        testJob(t),
		SourcePath: "never-read.wav",
		Tracklist:  "  \n\n",
	})

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestRun_MissingSource(t *testing.T) {
	report, err := NewEngine(testSettings(), newFakeEncoder(), nil).Run(context.Background(), Request{
		Job:        testJob(t),
		SourcePath: filepath.Join(t.TempDir(), "missing.wav"),
		Tracklist:  "0:00 - A",
	})

	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "decode source", exportErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 1, report.Total)
}
