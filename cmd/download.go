package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"csvmp3/internal/formatter"
	"csvmp3/internal/playlist"
	"csvmp3/internal/services"
	"csvmp3/internal/shared"
	"csvmp3/internal/tasks"
)

// Download parses a playlist CSV and downloads every track as MP3.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
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

	for _, row := range skipped {
		r.logger.Warn("skipping unusable row", "line", row.Line, "reason", row.Reason)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no usable tracks in %s", shared.ErrInvalidRow, csvPath)
	}

	r.logger.Info("parsed playlist", "tracks", len(tracks), "skipped_rows", len(skipped))

	opts := r.runOpts(
		cmd.String("output"),
		int(cmd.Int("workers")),
		cmd.Bool("embed"),
		!cmd.Bool("no-skip"),
	)

	// Finished downloads are always recorded; SkipArchived only controls
	// whether the archive is consulted before dispatch.
	var archive tasks.TrackArchiver
	if db, adapter, err := r.openArchive(); err != nil {
		r.logger.Warn("archive unavailable, downloads will not be recorded", "error", err)
	} else {
		defer db.Close()
		archive = adapter
	}

	engine := r.newEngine(archive)

	// Ctrl-C cancels the run; in-flight tool processes are killed and the
	// partial aggregate is still reported.
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	prog := make(chan tasks.ProgressUpdate, 100)
	progDone := make(chan struct{})
	go func() {
		defer close(progDone)
		for update := range prog {
			r.writePlainln("%s", update.Message)
		}
	}()

	result, err := engine.Run(runCtx, prog, tracks, opts)
	close(prog)
	<-progDone
	if err != nil {
		return fmt.Errorf("download run failed: %w", err)
	}

	r.writePlain("\n%s", formatter.SummaryText(result))

	manifestPath := filepath.Join(result.OutputDirectory, "run_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		r.logger.Warn("failed to write manifest", "error", err)
	} else {
		r.writePlainln("Manifest: %s", manifestPath)
	}

	retryPath := filepath.Join(result.OutputDirectory, "failed_tracks.csv")
	if ok, err := formatter.WriteFailedTracksCSV(result, retryPath); err != nil {
		r.logger.Warn("failed to write retry CSV", "error", err)
	} else if ok {
		r.writePlainln("Retry CSV: %s", retryPath)
	}

	return nil
}

func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download all tracks in a playlist CSV as MP3 files",
		ArgsUsage: "<playlist.csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for MP3 files",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of concurrent downloads",
			},
			&cli.BoolFlag{
				Name:  "embed",
				Usage: "Embed ID3 metadata into finished files",
			},
			&cli.BoolFlag{
				Name:  "no-skip",
				Usage: "Re-download tracks recorded in the archive",
			},
		},
		Action: r.Download,
	}
}
