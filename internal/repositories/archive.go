package repositories

import (
	"fmt"
	"strings"

	"csvmp3/internal/models"
)

// ArchiveAdapter implements tasks.TrackArchiver using DownloadRepository.
//
// Duplicate archive writes are silently ignored (UNIQUE constraint
// violations), so concurrent workers finishing the same track cannot fail
// a run.
type ArchiveAdapter struct {
	repo *DownloadRepository
}

// NewArchiveAdapter creates a new ArchiveAdapter with the given repository
func NewArchiveAdapter(repo *DownloadRepository) *ArchiveAdapter {
	return &ArchiveAdapter{repo: repo}
}

// IsArchived reports whether the track already has an active archive record,
// returning the recorded output path when it does.
func (a *ArchiveAdapter) IsArchived(track models.Track) (string, bool) {
	dl, err := a.repo.GetByTrackKey(track.Key())
	if err != nil || dl == nil {
		return "", false
	}
	return dl.OutputPath, true
}

// Archive records a finished download.
// Returns nil if the track is already archived (deduplication).
// Only returns errors for actual failures (not constraint violations).
func (a *ArchiveAdapter) Archive(track models.Track, outputPath string) error {
	dl := &models.Download{
		TrackKey:   track.Key(),
		Artist:     track.Artist,
		Title:      track.Title,
		Album:      track.Album,
		OutputPath: outputPath,
	}

	if err := a.repo.Create(dl); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to archive download: %w", err)
	}

	return nil
}
