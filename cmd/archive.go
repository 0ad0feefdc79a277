package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"csvmp3/internal/repositories"
	"csvmp3/internal/shared"
)

// ArchiveList prints every track recorded in the download archive.
func (r *Runner) ArchiveList(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open archive database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repositories.NewDownloadRepository(db)
	downloads, err := repo.List()
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(downloads, true)
	}

	if len(downloads) == 0 {
		return r.writePlainln("Archive is empty.")
	}

	r.writePlainln("Archived downloads: %d", len(downloads))
	for _, dl := range downloads {
		r.writePlainln("%4d. %s - %s → %s", dl.Sequence, dl.Artist, dl.Title, dl.OutputPath)
	}

	return nil
}

// ArchiveClear soft-deletes every archive record so tracks download again.
func (r *Runner) ArchiveClear(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open archive database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repositories.NewDownloadRepository(db)
	cleared, err := repo.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear archive: %w", err)
	}

	r.logger.Info("archive cleared", "records", cleared)
	return r.writePlainln("Cleared %d archive records.", cleared)
}

// archiveCommand manages the download archive
func archiveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Inspect and manage the download archive",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List archived downloads",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				},
				Action: r.ArchiveList,
			},
			{
				Name:   "clear",
				Usage:  "Forget all archived downloads",
				Action: r.ArchiveClear,
			},
		},
	}
}
