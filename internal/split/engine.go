package split

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/splitmix/internal/audio"
	"github.com/handiism/splitmix/internal/config"
	ioutils "github.com/handiism/splitmix/internal/io"
	"github.com/handiism/splitmix/internal/model"
	"github.com/handiism/splitmix/internal/tracklist"
)

// Job describes where and how the tracks of one run are written.
type Job struct {
	model.Metadata

	// OutputDir receives the tracks. It is created if missing.
	OutputDir string

	// Cover is embedded into every track. CoverPath is read instead when
	// Cover is empty. Leaving both empty exports without artwork.
	Cover     []byte
	CoverPath string

	// OnProgress is optional.
	OnProgress ProgressFunc
}

// Request is a full run: the tracklist text and the recording it refers to.
type Request struct {
	Job

	SourcePath string
	Tracklist  string
}

// artwork is the cover prepared once per run. err is reported as a warning
// on every track.
type artwork struct {
	tags   *audio.Cover
	folder []byte
	err    error
}

// Engine slices a decoded recording into tagged tracks.
//
// Tracks are exported one after the other. The source is shared read-only
// between tracks and cancellation is honoured between tracks only; an encode
// that has started always finishes.
type Engine struct {
	settings     *config.Settings
	decoder      *audio.Decoder
	encoder      audio.Encoder
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	done  atomic.Int32
	total atomic.Int32

	onEvent func(Event)
}

// NewEngine creates an Engine. A nil encoder selects ffmpeg MP3 encoding with
// the configured bitrate; onEvent may be nil.
//
// Run decodes the source and prepares cover art in parallel, so onEvent must
// be safe for concurrent use.
func NewEngine(settings *config.Settings, encoder audio.Encoder, onEvent func(Event)) *Engine {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if encoder == nil {
		encoder = audio.NewFFmpegEncoder(settings.FFmpegPath, settings.Bitrate)
	}

	return &Engine{
		settings:     settings,
		decoder:      audio.NewDecoder(settings.FFmpegPath),
		encoder:      encoder,
		tagger:       audio.NewTagger(settings.ToTagConfig()),
		playlist:     audio.NewPlaylistCreator(model.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		onEvent:      onEvent,
	}
}

// GetProgress returns how many tracks of the current run were processed.
func (e *Engine) GetProgress() (done, total int) {
	return int(e.done.Load()), int(e.total.Load())
}

// Run parses the tracklist, decodes the source and exports every track.
//
// Decoding and cover preparation run concurrently. A tracklist without tracks
// returns a *tracklist.ParseError before anything is decoded.
func (e *Engine) Run(ctx context.Context, req Request) (*Report, error) {
	tracks, stats, err := tracklist.ParseWithStats(req.Tracklist)
	if err != nil {
		return nil, err
	}
	e.event(LevelVerbose, "Parsed %d tracks, skipped %d of %d lines", stats.Matched, len(stats.Skipped), stats.Lines)

	var (
		src *audio.Source
		art *artwork
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.event(LevelInfo, "Decoding %s", filepath.Base(req.SourcePath))
		var err error
		src, err = e.decoder.Decode(gctx, req.SourcePath)
		return err
	})
	g.Go(func() error {
		art = e.loadArtwork(gctx, req.Job)
		return nil
	})
	if err := g.Wait(); err != nil {
		return &Report{Total: len(tracks)}, &ExportError{Op: "decode source", Err: err}
	}
	defer src.Release()

	e.event(LevelVerbose, "Decoded %s (%s)", filepath.Base(req.SourcePath), tracklist.FormatMs(src.DurationMs()))

	return e.export(ctx, src, tracks, req.Job, art)
}

// Export writes one file per track from an already decoded source. The
// returned Report is never nil.
func (e *Engine) Export(ctx context.Context, src *audio.Source, tracks []model.TrackRequest, job Job) (*Report, error) {
	return e.export(ctx, src, tracks, job, e.loadArtwork(ctx, job))
}

func (e *Engine) export(ctx context.Context, src *audio.Source, tracks []model.TrackRequest, job Job, art *artwork) (*Report, error) {
	durationMs := src.DurationMs()
	plans := Plan(tracks, durationMs)
	report := &Report{Total: len(plans)}

	e.done.Store(0)
	e.total.Store(int32(len(plans)))

	if err := ioutils.EnsureDir(job.OutputDir); err != nil {
		return report, &ExportError{Op: "create output directory", Err: err}
	}

	album := model.NewAlbum(job.Metadata, job.OutputDir, e.settings.ToPathConfig())

	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			e.event(LevelWarning, "Cancelled after %d of %d tracks", plan.Index-1, len(plans))
			return report, &ExportError{Op: "cancelled", Err: err}
		}

		e.event(LevelVerbose, "Exporting [%d/%d]: %s", plan.Index, len(plans), plan.Title)

		track, failure := e.exportTrack(src, plan, len(plans), durationMs, job, art)
		e.done.Add(1)

		if failure != nil {
			report.Failures = append(report.Failures, failure)
			e.event(LevelError, "Failed: %v", failure)
		} else {
			report.Exported = append(report.Exported, track)
			album.Tracks = append(album.Tracks, track)
			for _, w := range track.Warnings {
				e.event(LevelWarning, "%v", w)
			}
			e.event(LevelSuccess, "Exported: %s", track.FileName())
		}

		if job.OnProgress != nil {
			job.OnProgress(plan.Index, len(plans), plan.Title)
		}

		if failure != nil && !e.settings.ContinueOnError {
			return report, &ExportError{Op: "export track", Err: failure}
		}
	}

	e.finishAlbum(ctx, album, art, report)

	if report.Total > 0 && report.Succeeded() == 0 {
		return report, &ExportError{Op: "export", Err: fmt.Errorf("%w: %w", ErrAllTracksFailed, report.Failures[0])}
	}

	if report.OK() {
		e.event(LevelSuccess, "%s", report.Summary())
	} else {
		e.event(LevelWarning, "%s", report.Summary())
	}
	return report, nil
}

// exportTrack slices, encodes and tags a single track.
func (e *Engine) exportTrack(src *audio.Source, plan model.TrackPlan, total int, durationMs int64, job Job, art *artwork) (model.ExportedTrack, TrackFailure) {
	ref := trackRef{Index: plan.Index, Title: plan.Title}

	if !Valid(plan, durationMs) {
		return model.ExportedTrack{}, &OutOfRangeError{trackRef: ref, StartMs: plan.StartMs, EndMs: plan.EndMs, DurationMs: durationMs}
	}

	slice, err := src.Slice(plan.StartMs, plan.EndMs)
	if err != nil {
		if errors.Is(err, audio.ErrEmptySlice) {
			return model.ExportedTrack{}, &OutOfRangeError{trackRef: ref, StartMs: plan.StartMs, EndMs: plan.EndMs, DurationMs: durationMs}
		}
		return model.ExportedTrack{}, &EncodeError{trackRef: ref, Err: err}
	}

	path := filepath.Join(job.OutputDir, model.TrackFileName(plan.Index, total, plan.Title, e.encoder.Extension()))

	if err := e.encoder.Encode(slice, src.Format(), path); err != nil {
		_ = ioutils.RemoveIfExists(path)
		return model.ExportedTrack{}, &EncodeError{trackRef: ref, Path: path, Err: err}
	}

	tags := audio.TrackTags{Metadata: job.Metadata, Title: plan.Title, Index: plan.Index, Total: total}
	if err := e.tagger.WriteTags(path, tags); err != nil {
		_ = ioutils.RemoveIfExists(path)
		return model.ExportedTrack{}, &TagWriteError{trackRef: ref, Path: path, Err: err}
	}

	track := model.ExportedTrack{
		Path:    path,
		Index:   plan.Index,
		Title:   plan.Title,
		StartMs: plan.StartMs,
		EndMs:   plan.EndMs,
	}

	switch {
	case art.err != nil:
		track.Warnings = append(track.Warnings, &CoverArtError{trackRef: ref, Err: art.err})
	case art.tags != nil:
		if err := e.tagger.EmbedCover(path, art.tags); err != nil {
			track.Warnings = append(track.Warnings, &CoverArtError{trackRef: ref, Err: err})
		}
	}

	return track, nil
}

// loadArtwork reads and prepares the cover of a job. It never fails: a cover
// that cannot be used is carried as a per-track warning.
func (e *Engine) loadArtwork(ctx context.Context, job Job) *artwork {
	art := &artwork{}

	data := job.Cover
	if len(data) == 0 {
		if job.CoverPath == "" {
			return art
		}
		var err error
		data, err = os.ReadFile(job.CoverPath)
		if err != nil {
			art.err = err
			return art
		}
	}

	if _, err := ioutils.DetectImageMIME(data); err != nil {
		art.err = err
		return art
	}

	if e.settings.SaveCoverArtInFolder {
		folder, err := e.prepareImage(ctx, data, e.settings.CoverArtInFolderResize, e.settings.CoverArtInFolderMaxSize, true)
		if err != nil {
			e.event(LevelWarning, "Cover art for folder: %v", err)
		} else {
			art.folder = folder
		}
	}

	if e.settings.SaveCoverArtInTags {
		tagData, err := e.prepareImage(ctx, data, e.settings.CoverArtInTagsResize, e.settings.CoverArtInTagsMaxSize, e.settings.ConvertCoverArtToJPG)
		if err != nil {
			art.err = err
			return art
		}
		art.tags, art.err = audio.NewCover(tagData)
	}

	return art
}

// prepareImage applies the resize and JPEG conversion settings to cover data.
func (e *Engine) prepareImage(ctx context.Context, data []byte, resize bool, maxSize int, toJPEG bool) ([]byte, error) {
	if resize && maxSize > 0 {
		return e.imageService.ResizeImage(ctx, data, maxSize, maxSize)
	}
	if toJPEG {
		return e.imageService.ConvertToJPEG(ctx, data)
	}
	return data, nil
}

// finishAlbum writes the playlist and the folder cover. Failures are warnings.
func (e *Engine) finishAlbum(ctx context.Context, album *model.Album, art *artwork, report *Report) {
	if e.settings.CreatePlaylist && len(album.Tracks) > 0 {
		content := e.playlist.CreatePlaylist(album)
		if err := ioutils.WriteFile(ctx, album.PlaylistPath, []byte(content)); err != nil {
			e.event(LevelWarning, "Error creating playlist: %v", err)
		} else {
			report.PlaylistPath = album.PlaylistPath
			e.event(LevelVerbose, "Created playlist %s", filepath.Base(album.PlaylistPath))
		}
	}

	if len(art.folder) > 0 {
		if err := ioutils.WriteFile(ctx, album.ArtworkPath, art.folder); err != nil {
			e.event(LevelWarning, "Error saving artwork: %v", err)
		} else {
			report.ArtworkPath = album.ArtworkPath
		}
	}
}

func (e *Engine) event(level ProgressLevel, format string, args ...any) {
	if e.onEvent != nil {
		e.onEvent(Event{Message: fmt.Sprintf(format, args...), Level: level})
	}
}
