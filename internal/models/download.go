package models

import "time"

// Download is the archive record for one completed track.
//
// TrackKey is the normalized identity from [Track.Key]; a soft-deleted
// record frees the key for re-download.
type Download struct {
	ID         string
	Sequence   int
	TrackKey   string
	Artist     string
	Title      string
	Album      string
	OutputPath string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}
