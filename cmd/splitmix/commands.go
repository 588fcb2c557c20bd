package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/handiism/splitmix/internal/audio"
	"github.com/handiism/splitmix/internal/config"
	"github.com/handiism/splitmix/internal/fetch"
	"github.com/handiism/splitmix/internal/model"
	"github.com/handiism/splitmix/internal/split"
	"github.com/handiism/splitmix/internal/tracklist"
)

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Show the tracks a tracklist file yields, without touching audio",
		ArgsUsage: "<tracklist file | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "duration", Usage: "source length (M:SS or H:MM:SS) to show end times"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("parse needs exactly one tracklist file", 1)
			}

			text, err := readTracklist(c.Args().First())
			if err != nil {
				return err
			}

			tracks, stats, err := tracklist.ParseWithStats(text)
			if err != nil {
				return err
			}

			if c.Bool("verbose") {
				for _, line := range stats.Skipped {
					fmt.Printf("   skipped: %s\n", line)
				}
			}

			var durationMs int64 = -1
			if d := c.String("duration"); d != "" {
				if durationMs, err = tracklist.ParseTimeToMs(d); err != nil {
					return fmt.Errorf("--duration: %w", err)
				}
			}

			width := model.IndexWidth(len(tracks))
			if durationMs < 0 {
				for i, t := range tracks {
					fmt.Printf("%0*d  %8s  %s\n", width, i+1, tracklist.FormatMs(t.StartMs), t.Title)
				}
			} else {
				for _, p := range split.Plan(tracks, durationMs) {
					mark := ""
					if !split.Valid(p, durationMs) {
						mark = "  (out of range)"
					}
					fmt.Printf("%0*d  %8s - %-8s  %s%s\n", width, p.Index, tracklist.FormatMs(p.StartMs), tracklist.FormatMs(p.EndMs), p.Title, mark)
				}
			}

			fmt.Printf("\n%d tracks, %d of %d lines skipped\n", stats.Matched, len(stats.Skipped), stats.Lines)
			return nil
		},
	}
}

func splitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Cut a recording into tagged MP3 tracks",
		ArgsUsage: "<source audio>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tracklist", Aliases: []string{"t"}, Usage: "tracklist file, - for stdin", Required: true},
			&cli.StringFlag{Name: "artist", Usage: "artist tag"},
			&cli.StringFlag{Name: "album", Usage: "album tag"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output directory (overrides config)"},
			&cli.StringFlag{Name: "cover", Usage: "JPEG or PNG image to embed as cover art"},
			&cli.StringFlag{Name: "session", Usage: "fetch run directory to take source, title and cover from"},
			&cli.IntFlag{Name: "bitrate", Usage: "MP3 bitrate in kbps"},
			&cli.BoolFlag{Name: "playlist", Usage: "create playlist file"},
			&cli.StringFlag{Name: "playlist-format", Usage: "m3u, pls, wpl or zpl"},
			&cli.BoolFlag{Name: "abort-on-error", Usage: "stop at the first track that fails"},
			&cli.BoolFlag{Name: "list", Usage: "list the written tags after exporting"},
		},
		Action: runSplit,
	}
}

func runSplit(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	applySplitFlags(c, settings)

	req := split.Request{
		Job: split.Job{
			Metadata: model.Metadata{
				Artist: c.String("artist"),
				Album:  c.String("album"),
			},
			CoverPath: c.String("cover"),
		},
		SourcePath: c.Args().First(),
	}

	if dir := c.String("session"); dir != "" {
		if err := applySession(dir, &req); err != nil {
			return err
		}
	}

	if req.SourcePath == "" {
		return cli.Exit("split needs a source audio file or --session", 1)
	}
	if req.Artist == "" || req.Album == "" {
		return cli.Exit("--artist and --album are required", 1)
	}

	if req.Tracklist, err = readTracklist(c.String("tracklist")); err != nil {
		return err
	}

	req.OutputDir = settings.OutputDir(req.Metadata)
	if out := c.String("output"); out != "" {
		req.OutputDir = out
	}

	verbose := c.Bool("verbose")
	var bar *progressbar.ProgressBar
	logEvent := printEvent(verbose)

	engine := split.NewEngine(settings, nil, func(event split.Event) {
		if bar != nil {
			bar.Clear()
		}
		logEvent(event)
	})

	req.OnProgress = func(current, total int, title string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Exporting"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe(title)
		bar.Set(current)
	}

	fmt.Println("🎵 splitmix")
	fmt.Printf("   %s → %s\n\n", filepath.Base(req.SourcePath), req.OutputDir)

	report, err := engine.Run(c.Context, req)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		if report != nil && report.Total > 0 {
			fmt.Println(report.Summary())
		}
		return err
	}

	if c.Bool("list") {
		listTags(report)
	}

	fmt.Println()
	fmt.Printf("✨ %s\n", report.Summary())
	fmt.Printf("   Output: %s\n", req.OutputDir)
	if !report.OK() {
		return cli.Exit("", exitPartial)
	}
	return nil
}

func applySplitFlags(c *cli.Context, settings *config.Settings) {
	if c.IsSet("bitrate") {
		settings.Bitrate = c.Int("bitrate")
	}
	if c.Bool("playlist") {
		settings.CreatePlaylist = true
	}
	if f := c.String("playlist-format"); f != "" {
		settings.PlaylistFormat = f
	}
	if c.Bool("abort-on-error") {
		settings.ContinueOnError = false
	}
}

// applySession fills what the command line left open from a fetch run.
func applySession(dir string, req *split.Request) error {
	session, err := config.LoadMetadata(dir)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("no %s in %s", config.MetadataFileName, dir)
	}

	if req.SourcePath == "" {
		req.SourcePath = session.Source
	}
	if req.CoverPath == "" {
		req.CoverPath = session.Cover
	}
	if req.Artist == "" {
		req.Artist = session.Artist
	}
	if req.Album == "" {
		req.Album = session.Album
	}
	return nil
}

// listTags prints the tags of every exported file as a player would read them.
func listTags(report *split.Report) {
	fmt.Println()
	for _, track := range report.Exported {
		info, err := audio.ReadTags(track.Path)
		if err != nil {
			fmt.Printf("   %s: %v\n", track.FileName(), err)
			continue
		}
		cover := "no cover"
		if info.PictureMIME != "" {
			cover = info.PictureMIME
		}
		fmt.Printf("   %s  [%d/%d] %s / %s / %s (%s)\n",
			track.FileName(), info.Track, info.Total, info.Artist, info.Album, info.Title, cover)
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Download audio and thumbnail of a video with yt-dlp",
		ArgsUsage: "<url>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("fetch needs exactly one URL", 1)
			}

			settings, err := loadSettings(c)
			if err != nil {
				return err
			}

			fetcher := fetch.NewFetcher(settings, printEvent(c.Bool("verbose")))
			res, err := fetcher.Fetch(c.Context, c.Args().First())
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Printf("   Title:    %s\n", res.Title)
			fmt.Printf("   Duration: %s\n", res.Duration)
			fmt.Printf("   Audio:    %s\n", res.AudioPath)
			if res.CoverPath != "" {
				fmt.Printf("   Cover:    %s\n", res.CoverPath)
			}
			fmt.Printf("\nSplit with: splitmix split --session %s --tracklist <file>\n", res.Dir)
			return nil
		},
	}
}

func cleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Delete every fetched file",
		Action: func(c *cli.Context) error {
			settings, err := loadSettings(c)
			if err != nil {
				return err
			}

			fetcher := fetch.NewFetcher(settings, nil)
			if err := fetcher.Clean(); err != nil {
				return err
			}
			fmt.Printf("✅ Removed %s\n", fetcher.WorkDir())
			return nil
		},
	}
}

func readTracklist(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("tracklist file %s not found", path)
	}
	return string(data), err
}
