package tasks

import (
	"fmt"

	"csvmp3/internal/models"
)

// ProgressUpdate represents a progress event during a download run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Dispatch Phase = iota
	Resolve
	Convert
	Embed
	TrackDone
	TrackSkipped
	TrackFailed
	RunComplete
)

func (p Phase) String() string {
	switch p {
	case Dispatch:
		return "dispatch"
	case Resolve:
		return "resolve"
	case Convert:
		return "convert"
	case Embed:
		return "embed"
	case TrackDone:
		return "track_done"
	case TrackSkipped:
		return "track_skipped"
	case TrackFailed:
		return "track_failed"
	case RunComplete:
		return "run_complete"
	default:
		return ""
	}
}

func dispatchUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Dispatch,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Dispatching %d tracks...", total),
	}
}

func resolveUpdate(step, total int, track models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Resolve,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching: %s", step, total, track.BaseName()),
	}
}

func convertUpdate(step, total int, track models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Convert,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Converting: %s", step, total, track.BaseName()),
	}
}

func embedUpdate(step, total int, track models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Embed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Tagging: %s", step, total, track.BaseName()),
	}
}

func trackDoneUpdate(step, total int, res TrackResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrackDone,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Track.BaseName()),
		Data:    res,
	}
}

func trackSkippedUpdate(step, total int, res TrackResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrackSkipped,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ↷ %s (already downloaded)", step, total, res.Track.BaseName()),
		Data:    res,
	}
}

func trackFailedUpdate(step, total int, res TrackResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrackFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Track.BaseName(), res.Err),
		Data:    res,
	}
}

func runCompleteUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunComplete,
		Step:    result.Total,
		Total:   result.Total,
		Message: fmt.Sprintf("Done: %d completed, %d failed of %d", result.Completed, result.Failed, result.Total),
		Data:    result,
	}
}
