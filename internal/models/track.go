package models

import (
	"fmt"
	"strings"
	"time"

	"csvmp3/internal/shared"
)

// Track represents one song parsed from a playlist CSV row.
//
// Artist and Title are required; Album and DurationMS are hints that improve
// search matching and tagging but are never validated beyond presence.
type Track struct {
	Artist     string
	Title      string
	Album      string
	DurationMS int // 0 when the CSV carries no duration column
}

// Validate checks that the track has the fields required for dispatch.
func (t Track) Validate() error {
	if strings.TrimSpace(t.Artist) == "" {
		return fmt.Errorf("%w: artist", shared.ErrInvalidRow)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title", shared.ErrInvalidRow)
	}
	return nil
}

// Key returns the normalized identity used for archive lookups and
// duplicate detection.
func (t Track) Key() string {
	return shared.NormalizeTrackKey(t.Title, t.Artist)
}

// DurationHint returns the CSV duration as a [time.Duration], or 0 when unknown.
func (t Track) DurationHint() time.Duration {
	if t.DurationMS <= 0 {
		return 0
	}
	return time.Duration(t.DurationMS) * time.Millisecond
}

// BaseName returns the un-sanitized "Artist - Title" display name.
func (t Track) BaseName() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}
