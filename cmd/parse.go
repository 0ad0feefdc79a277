package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"csvmp3/internal/formatter"
	"csvmp3/internal/playlist"
	"csvmp3/internal/shared"
)

// Parse previews a playlist CSV without downloading anything.
func (r *Runner) Parse(ctx context.Context, cmd *cli.Command) error {
	csvPath := cmd.Args().First()
	if csvPath == "" {
		return fmt.Errorf("%w: path to a playlist CSV", shared.ErrMissingArgument)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	tracks, skipped, err := playlist.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))

	switch cmd.String("format") {
	case "json":
		return r.writeJSON(map[string]any{
			"playlist": name,
			"tracks":   tracks,
			"skipped":  skipped,
		}, true)
	case "markdown":
		return r.writePlain("%s", formatter.TracksMarkdown(name, tracks))
	default:
		r.writePlainln("Playlist: %s", name)
		r.writePlainln("Tracks: %d", len(tracks))
		for i, track := range tracks {
			r.writePlainln("%d. %s - %s", i+1, track.Artist, track.Title)
		}
		for _, row := range skipped {
			r.writePlainln("skipped line %d: %s", row.Line, row.Reason)
		}
		return nil
	}
}

func parseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Preview the tracks in a playlist CSV",
		ArgsUsage: "<playlist.csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown",
				Value:   "text",
			},
		},
		Action: r.Parse,
	}
}
