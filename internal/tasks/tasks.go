package tasks

import (
	"csvmp3/internal/models"
	"csvmp3/internal/services"
)

// TrackResult is the outcome of one track's pipeline.
type TrackResult struct {
	Track      models.Track
	Index      int              // position in CSV order
	Status     models.JobStatus // pending when a cancelled run never started the track
	OutputPath string           // set for done and skipped tracks
	Skipped    bool             // found in the archive, no work performed
	Warning    string           // non-fatal issue on a done track
	ErrorKind  models.ErrorKind
	Err        error
}

// RunResult contains all data from a full download run.
//
// Completed + Failed equals Total on a run that finishes; skipped tracks
// count as completed since their files are available on disk. On a
// cancelled run, tracks that never started count toward neither.
type RunResult struct {
	Completed       int
	Failed          int
	Skipped         int
	Total           int
	Cancelled       bool
	OutputDirectory string
	Results         []TrackResult
}

// TrackArchiver records finished downloads and answers whether a track was
// already fetched in a previous run.
type TrackArchiver interface {
	// IsArchived reports whether the track has an archive record, returning
	// the recorded output path when it does.
	IsArchived(track models.Track) (string, bool)

	// Archive records a finished download. Archiving an already-archived
	// track is a no-op.
	Archive(track models.Track, outputPath string) error
}

// DownloadEngine orchestrates concurrent track downloads.
// Contains dependencies on the resolver, converter, embedder, and archive.
type DownloadEngine struct {
	resolver  services.Resolver
	converter services.Converter
	embedder  services.Embedder
	archive   TrackArchiver // nil disables skip and record keeping
}

// NewDownloadEngine creates a new DownloadEngine with the provided capabilities.
// archive may be nil to run without an archive.
func NewDownloadEngine(resolver services.Resolver, converter services.Converter, embedder services.Embedder, archive TrackArchiver) *DownloadEngine {
	return &DownloadEngine{
		resolver:  resolver,
		converter: converter,
		embedder:  embedder,
		archive:   archive,
	}
}

// sendProgress delivers an update without blocking the pipeline. A slow or
// absent consumer drops updates rather than stalling workers.
func (e *DownloadEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full, skip this update
	}
}
