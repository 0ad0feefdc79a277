package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"csvmp3/internal/models"
)

// runJob executes the resolve → convert → embed pipeline for one track.
//
// Raw audio lands in a per-job staging directory which is removed on exit,
// so a crashed or cancelled job never litters the output directory. Only the
// finished MP3 is written to its final location.
func (e *DownloadEngine) runJob(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	limiter *rate.Limiter,
	d dispatchJob,
	total int,
	opts RunOpts,
) TrackResult {
	job := d.job

	if ctx.Err() != nil {
		return untouchedResult(job)
	}

	// Searches are the rate-limited operation; downloads and conversions
	// are bounded by the worker count alone. The wait sits before the first
	// transition so a cancel here still leaves the track untouched.
	if err := limiter.Wait(ctx); err != nil {
		return untouchedResult(job)
	}

	staging, err := os.MkdirTemp(opts.OutputDir, ".staging-*")
	if err != nil {
		job.Fail(models.ErrorResolveFailed, fmt.Errorf("failed to create staging directory: %w", err))
		return e.resultFor(job)
	}
	defer os.RemoveAll(staging)

	job.Transition(models.StatusResolving)
	e.sendProgress(prog, resolveUpdate(job.Index+1, total, job.Track))

	resolveCtx, cancelResolve := stageContext(ctx, opts.ResolveTimeout)
	resolved, err := e.resolver.Resolve(resolveCtx, job.Track, staging)
	cancelResolve()
	if err != nil {
		if ctx.Err() != nil {
			job.Fail(models.ErrorCancelled, err)
		} else {
			job.Fail(models.ErrorResolveFailed, err)
		}
		return e.resultFor(job)
	}

	job.Transition(models.StatusConverting)
	e.sendProgress(prog, convertUpdate(job.Index+1, total, job.Track))

	outputPath := filepath.Join(opts.OutputDir, d.outName+".mp3")
	convertCtx, cancelConvert := stageContext(ctx, opts.ConvertTimeout)
	err = e.converter.Convert(convertCtx, resolved.Path, outputPath)
	cancelConvert()
	if err != nil {
		os.Remove(outputPath)
		if ctx.Err() != nil {
			job.Fail(models.ErrorCancelled, err)
		} else {
			job.Fail(models.ErrorConvertFailed, err)
		}
		return e.resultFor(job)
	}

	// The raw download is dead weight once the MP3 exists.
	os.Remove(resolved.Path)

	if opts.EmbedMetadata {
		job.Transition(models.StatusEmbedding)
		e.sendProgress(prog, embedUpdate(job.Index+1, total, job.Track))

		if err := e.embedder.Embed(ctx, outputPath, job.Track, resolved.ThumbnailURL); err != nil {
			// The playable file exists; a tagging failure is a warning.
			job.Warning = fmt.Sprintf("metadata embedding failed: %v", err)
		}
	}

	job.Transition(models.StatusDone)
	job.OutputPath = outputPath

	if e.archive != nil {
		if err := e.archive.Archive(job.Track, outputPath); err != nil && job.Warning == "" {
			job.Warning = fmt.Sprintf("archive record failed: %v", err)
		}
	}

	return e.resultFor(job)
}

// untouchedResult reports a job the run never started. The pending status
// keeps it out of the completed and failed counts, and no terminal progress
// event is emitted for it.
func untouchedResult(job *models.Job) TrackResult {
	return TrackResult{
		Track:     job.Track,
		Index:     job.Index,
		Status:    job.Status,
		ErrorKind: models.ErrorCancelled,
	}
}

func (e *DownloadEngine) resultFor(job *models.Job) TrackResult {
	return TrackResult{
		Track:      job.Track,
		Index:      job.Index,
		Status:     job.Status,
		OutputPath: job.OutputPath,
		Warning:    job.Warning,
		ErrorKind:  job.ErrorKind,
		Err:        job.Err,
	}
}

// stageContext bounds one pipeline stage. A timed-out stage fails its own
// track; only parent cancellation counts as a cancelled run.
func stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
