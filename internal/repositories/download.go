package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"csvmp3/internal/models"
	"csvmp3/internal/shared"
)

// DownloadRepository stores [models.Download] records in the downloads table.
//
// Active records are unique per track key; soft-deleted records keep their
// history but no longer block re-downloads.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new DownloadRepository with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts a new [models.Download] with generated ID and sequence
func (r *DownloadRepository) Create(dl *models.Download) error {
	sequence, err := NextSequence(r.db, "downloads")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	dl.ID = shared.GenerateID()
	dl.Sequence = sequence
	dl.CreatedAt = now
	dl.UpdatedAt = now

	query := `
		INSERT INTO downloads (id, sequence, track_key, artist, title, album, output_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		dl.ID,
		dl.Sequence,
		dl.TrackKey,
		dl.Artist,
		dl.Title,
		dl.Album,
		dl.OutputPath,
		dl.CreatedAt,
		dl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}

	return nil
}

// GetByTrackKey retrieves the active download for a track key, excluding soft-deleted records
func (r *DownloadRepository) GetByTrackKey(key string) (*models.Download, error) {
	query := `
		SELECT id, sequence, track_key, artist, title, album, output_path, created_at, updated_at, deleted_at
		FROM downloads
		WHERE track_key = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, key))
}

// List retrieves all active downloads in insertion order
func (r *DownloadRepository) List() ([]*models.Download, error) {
	query := `
		SELECT id, sequence, track_key, artist, title, album, output_path, created_at, updated_at, deleted_at
		FROM downloads
		WHERE deleted_at IS NULL
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*models.Download
	for rows.Next() {
		dl, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, dl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return downloads, nil
}

// Delete soft-deletes a download by ID
func (r *DownloadRepository) Delete(id string) error {
	query := `
		UPDATE downloads
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("download not found or already deleted: %s", id)
	}

	return nil
}

// Clear soft-deletes every active download and returns how many were cleared
func (r *DownloadRepository) Clear() (int, error) {
	result, err := r.db.Exec("UPDATE downloads SET deleted_at = ? WHERE deleted_at IS NULL", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear downloads: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rows), nil
}

// scanOne scans a single [sql.Row] into a [models.Download]
func (r *DownloadRepository) scanOne(row *sql.Row) (*models.Download, error) {
	var dl models.Download
	var deletedAt sql.NullTime

	err := row.Scan(&dl.ID, &dl.Sequence, &dl.TrackKey, &dl.Artist, &dl.Title, &dl.Album, &dl.OutputPath, &dl.CreatedAt, &dl.UpdatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("download not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	if deletedAt.Valid {
		dl.DeletedAt = &deletedAt.Time
	}

	return &dl, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Download]
func (r *DownloadRepository) scanRow(rows *sql.Rows) (*models.Download, error) {
	var dl models.Download
	var deletedAt sql.NullTime

	err := rows.Scan(&dl.ID, &dl.Sequence, &dl.TrackKey, &dl.Artist, &dl.Title, &dl.Album, &dl.OutputPath, &dl.CreatedAt, &dl.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	if deletedAt.Valid {
		dl.DeletedAt = &deletedAt.Time
	}

	return &dl, nil
}
