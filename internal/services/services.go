package services

import (
	"context"

	"csvmp3/internal/models"
)

// ResolvedAudio describes the raw audio file a [Resolver] fetched for a track.
type ResolvedAudio struct {
	Path         string // raw audio file on disk, any container format
	SourceURL    string // page the audio came from
	DurationSec  int    // duration reported by the source, 0 if unknown
	ThumbnailURL string // cover art candidate, may be empty
}

// Resolver locates a track on an external source and downloads its audio.
type Resolver interface {
	// Resolve searches for the track, picks the best duration match, and
	// downloads the raw audio into dir. The returned path carries whatever
	// extension the source delivered.
	Resolve(ctx context.Context, track models.Track, dir string) (ResolvedAudio, error)
}

// Converter transcodes a raw audio file into an MP3.
type Converter interface {
	// Convert writes an MP3 to outPath from the raw file at inPath. The raw
	// file is left in place; callers decide when to remove it.
	Convert(ctx context.Context, inPath, outPath string) error
}

// Embedder writes metadata tags into a finished MP3.
type Embedder interface {
	// Embed tags the MP3 at path with the track's metadata and, when
	// coverURL is non-empty, attached cover art.
	Embed(ctx context.Context, path string, track models.Track, coverURL string) error
}
