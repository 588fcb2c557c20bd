package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/handiism/splitmix/internal/config"
	"github.com/handiism/splitmix/internal/split"
)

// Exit codes besides 0 and 1.
const (
	exitPartial   = 2
	exitCancelled = 130
)

func main() {
	app := &cli.App{
		Name:  "splitmix",
		Usage: "Split a long recording into tagged MP3 tracks from a timestamped tracklist",
		Description: "Tracklist lines look like \"1:30 - Title\" or \"1:02:03 - Title\".\n" +
			"For interactive mode, use: splitmix-tui",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to settings file", Value: config.DefaultPath()},
			&cli.StringFlag{Name: "env", Usage: ".env file with SPLITMIX_* overrides", Value: ".env"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "show verbose output"},
		},
		Commands: []*cli.Command{
			parseCommand(),
			splitCommand(),
			fetchCommand(),
			cleanCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if ctx.Err() != nil {
			os.Exit(exitCancelled)
		}
		os.Exit(1)
	}
}

// loadSettings reads the settings file, then the SPLITMIX_* overrides.
func loadSettings(c *cli.Context) (*config.Settings, error) {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	env, err := config.LoadEnv(c.String("env"))
	if err != nil {
		return nil, err
	}
	if err := settings.ApplyEnv(env); err != nil {
		return nil, err
	}
	return settings, nil
}

// printEvent renders an engine event, hiding verbose ones unless asked.
func printEvent(verbose bool) func(split.Event) {
	return func(event split.Event) {
		if event.Level == split.LevelVerbose && !verbose {
			return
		}

		prefix := ""
		switch event.Level {
		case split.LevelError:
			prefix = "❌ "
		case split.LevelWarning:
			prefix = "⚠️  "
		case split.LevelSuccess:
			prefix = "✅ "
		case split.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	}
}
