package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"csvmp3/internal/playlist"
	"csvmp3/internal/services"
	"csvmp3/internal/shared"
	"csvmp3/internal/tasks"
	"csvmp3/internal/ui"
)

// TUI launches the interactive terminal UI for downloading a playlist CSV.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	csvPath := cmd.Args().First()
	if csvPath == "" {
		return fmt.Errorf("%w: path to a playlist CSV", shared.ErrMissingArgument)
	}

	if err := services.CheckDependencies(r.config.Tools.YtdlpPath, r.config.Tools.FfmpegPath); err != nil {
		return err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}

	tracks, skipped, err := playlist.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no usable tracks in %s", shared.ErrInvalidRow, csvPath)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/csvmp3-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	for _, row := range skipped {
		r.logger.Warn("skipping unusable row", "line", row.Line, "reason", row.Reason)
	}

	opts := r.runOpts(cmd.String("output"), 0, false, true)

	// Finished downloads are always recorded; SkipArchived only controls
	// whether the archive is consulted before dispatch.
	var archive tasks.TrackArchiver
	if db, adapter, err := r.openArchive(); err != nil {
		r.logger.Warn("archive unavailable, downloads will not be recorded", "error", err)
	} else {
		defer db.Close()
		archive = adapter
	}

	name := strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
	model := ui.NewModel(ctx, r.newEngine(archive), tracks, name, opts)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Interactive terminal UI for downloading a playlist CSV",
		ArgsUsage: "<playlist.csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for MP3 files",
			},
		},
		Action: r.TUI,
	}
}
