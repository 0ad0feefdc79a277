package tasks

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"csvmp3/internal/models"
	"csvmp3/internal/shared"
)

// RunOpts contains configuration for a download run.
type RunOpts struct {
	OutputDir      string        // Destination for finished MP3s (default: downloads)
	Workers        int           // Concurrent workers (default: 4, capped at 2×CPU)
	RateLimit      float64       // Searches per second (default: 2)
	EmbedMetadata  bool          // Tag finished files with ID3 metadata
	SkipArchived   bool          // Skip tracks recorded by a previous run
	ResolveTimeout time.Duration // Per-track resolve bound, 0 disables
	ConvertTimeout time.Duration // Per-track convert bound, 0 disables
}

// Run downloads all tracks concurrently with rate limiting and progress tracking.
//
// Each track is precomputed a collision-free output name, then processed by a
// bounded worker pool. Failures are contained per track; the run only returns
// an error when it cannot start at all. Cancelling ctx stops new work and
// kills in-flight tool processes: tracks cut off mid-flight are reported as
// failed with a cancelled classification, while tracks that never started
// keep their pending status and are excluded from the aggregate counts.
func (e *DownloadEngine) Run(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	tracks []models.Track,
	opts RunOpts,
) (*RunResult, error) {
	if e.resolver == nil || e.converter == nil {
		return nil, fmt.Errorf("%w: engine not initialized", shared.ErrInvalidConfig)
	}
	if opts.EmbedMetadata && e.embedder == nil {
		return nil, fmt.Errorf("%w: metadata embedding requested without an embedder", shared.ErrInvalidConfig)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = "downloads"
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if ceiling := 2 * runtime.NumCPU(); opts.Workers > ceiling {
		opts.Workers = ceiling
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &RunResult{
		Total:           len(tracks),
		OutputDirectory: opts.OutputDir,
		Results:         make([]TrackResult, 0, len(tracks)),
	}

	jobs, preresolved := e.planJobs(tracks, opts)
	result.Results = append(result.Results, preresolved...)

	e.sendProgress(prog, dispatchUpdate(len(tracks)))

	for i, res := range preresolved {
		if res.Skipped {
			e.sendProgress(prog, trackSkippedUpdate(i+1, result.Total, res))
		} else {
			e.sendProgress(prog, trackFailedUpdate(i+1, result.Total, res))
		}
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	results := make(chan TrackResult, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(opts.Workers)

	for _, job := range jobs {
		g.Go(func() error {
			results <- e.runJob(ctx, prog, limiter, job, result.Total, opts)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(results)
		close(done)
	}()

	step := len(preresolved)
	for res := range results {
		result.Results = append(result.Results, res)

		// Tracks a cancelled run never started emit no terminal event
		// and stay out of the completed and failed counts.
		if !res.Status.IsTerminal() {
			result.Cancelled = true
			continue
		}

		step++
		switch {
		case res.ErrorKind == models.ErrorCancelled:
			result.Cancelled = true
			e.sendProgress(prog, trackFailedUpdate(step, result.Total, res))
		case res.Status == models.StatusFailed:
			e.sendProgress(prog, trackFailedUpdate(step, result.Total, res))
		case res.Skipped:
			e.sendProgress(prog, trackSkippedUpdate(step, result.Total, res))
		default:
			e.sendProgress(prog, trackDoneUpdate(step, result.Total, res))
		}
	}
	<-done

	for _, res := range result.Results {
		switch res.Status {
		case models.StatusDone:
			result.Completed++
			if res.Skipped {
				result.Skipped++
			}
		case models.StatusFailed:
			result.Failed++
		}
	}

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].Index < result.Results[j].Index
	})

	e.sendProgress(prog, runCompleteUpdate(result))
	return result, nil
}

// dispatchJob carries everything a worker needs for one track.
type dispatchJob struct {
	job     *models.Job
	outName string // final file name without extension, collision-free
}

// planJobs validates tracks, resolves archive hits, and assigns each
// remaining track a unique output name. Invalid rows and archive hits become
// immediate results without occupying a worker.
func (e *DownloadEngine) planJobs(tracks []models.Track, opts RunOpts) ([]dispatchJob, []TrackResult) {
	var jobs []dispatchJob
	var settled []TrackResult

	// Duplicate names inside one run get " (2)", " (3)", ... suffixes.
	// Counting on the folded name keeps variants apart on case-insensitive
	// filesystems too.
	seen := make(map[string]int, len(tracks))

	for i, track := range tracks {
		if err := track.Validate(); err != nil {
			settled = append(settled, TrackResult{
				Track:     track,
				Index:     i,
				Status:    models.StatusFailed,
				ErrorKind: models.ErrorInvalidRow,
				Err:       err,
			})
			continue
		}

		if opts.SkipArchived && e.archive != nil {
			if path, ok := e.archive.IsArchived(track); ok {
				settled = append(settled, TrackResult{
					Track:      track,
					Index:      i,
					Status:     models.StatusDone,
					OutputPath: path,
					Skipped:    true,
				})
				continue
			}
		}

		name := shared.SanitizeFileName(track.BaseName())
		folded := strings.ToLower(name)
		seen[folded]++
		if n := seen[folded]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}

		jobs = append(jobs, dispatchJob{
			job: &models.Job{
				ID:     shared.GenerateID(),
				Track:  track,
				Index:  i,
				Status: models.StatusPending,
			},
			outName: name,
		})
	}

	return jobs, settled
}
