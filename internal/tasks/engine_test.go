package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"csvmp3/internal/models"
	th "csvmp3/internal/testing"
)

func testTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			Artist:     fmt.Sprintf("Artist %d", i+1),
			Title:      fmt.Sprintf("Song %d", i+1),
			DurationMS: 200000,
		}
	}
	return tracks
}

func newTestEngine(resolver *th.MockResolver, converter *th.MockConverter, embedder *th.MockEmbedder, archive TrackArchiver) *DownloadEngine {
	if resolver == nil {
		resolver = &th.MockResolver{}
	}
	if converter == nil {
		converter = &th.MockConverter{}
	}
	if embedder == nil {
		embedder = &th.MockEmbedder{}
	}
	return NewDownloadEngine(resolver, converter, embedder, archive)
}

func TestRun_PartialFailureAggregate(t *testing.T) {
	tracks := testTracks(10)
	resolver := &th.MockResolver{FailKeys: map[string]bool{
		tracks[2].Key(): true,
		tracks[6].Key(): true,
	}}
	engine := newTestEngine(resolver, nil, nil, nil)

	result, err := engine.Run(context.Background(), nil, tracks, RunOpts{
		OutputDir: t.TempDir(),
		Workers:   4,
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Completed != 8 || result.Failed != 2 || result.Total != 10 {
		t.Errorf("aggregate = {%d, %d, %d}, want {8, 2, 10}",
			result.Completed, result.Failed, result.Total)
	}
	if len(result.Results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(result.Results))
	}

	// Results come back in CSV order regardless of completion order.
	for i, res := range result.Results {
		if res.Index != i {
			t.Errorf("Results[%d].Index = %d", i, res.Index)
		}
	}
	for _, i := range []int{2, 6} {
		if result.Results[i].Status != models.StatusFailed {
			t.Errorf("Results[%d].Status = %v, want failed", i, result.Results[i].Status)
		}
		if result.Results[i].ErrorKind != models.ErrorResolveFailed {
			t.Errorf("Results[%d].ErrorKind = %v", i, result.Results[i].ErrorKind)
		}
	}
}

func TestRun_ConcurrencyBounded(t *testing.T) {
	var active, peak int32
	resolver := &th.MockResolver{Hook: func(models.Track) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
	}}
	engine := newTestEngine(resolver, nil, nil, nil)

	_, err := engine.Run(context.Background(), nil, testTracks(12), RunOpts{
		OutputDir: t.TempDir(),
		Workers:   3,
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := atomic.LoadInt32(&peak); got > 3 {
		t.Errorf("peak concurrent resolves = %d, want <= 3", got)
	}
}

func TestRun_CollisionSafeNames(t *testing.T) {
	dir := t.TempDir()
	// Both sanitize to the same file name.
	tracks := []models.Track{
		{Artist: "X", Title: "A"},
		{Artist: "X ", Title: " A"},
	}
	engine := newTestEngine(nil, nil, nil, nil)

	result, err := engine.Run(context.Background(), nil, tracks, RunOpts{
		OutputDir: dir,
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Completed != 2 {
		t.Fatalf("Completed = %d, want 2", result.Completed)
	}
	paths := map[string]bool{}
	for _, res := range result.Results {
		paths[res.OutputPath] = true
		th.AssertFileExists(t, res.OutputPath)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 distinct output paths, got %v", paths)
	}
	th.AssertFileExists(t, filepath.Join(dir, "X - A.mp3"))
	th.AssertFileExists(t, filepath.Join(dir, "X - A (2).mp3"))
}

func TestRun_EmbedFailureIsWarning(t *testing.T) {
	engine := newTestEngine(nil, nil, &th.MockEmbedder{Fail: true}, nil)

	result, err := engine.Run(context.Background(), nil, testTracks(1), RunOpts{
		OutputDir:     t.TempDir(),
		RateLimit:     1000,
		EmbedMetadata: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Completed != 1 || result.Failed != 0 {
		t.Fatalf("aggregate = {%d, %d}, want {1, 0}", result.Completed, result.Failed)
	}
	res := result.Results[0]
	if res.Status != models.StatusDone {
		t.Errorf("Status = %v, want done", res.Status)
	}
	if res.Warning == "" {
		t.Error("expected a warning on the done track")
	}
	th.AssertFileExists(t, res.OutputPath)
}

func TestRun_InvalidRowsFailWithoutDispatch(t *testing.T) {
	tracks := []models.Track{
		{Artist: "Good", Title: "Track"},
		{Artist: "", Title: "No Artist"},
	}
	resolver := &th.MockResolver{}
	engine := newTestEngine(resolver, nil, nil, nil)

	result, err := engine.Run(context.Background(), nil, tracks, RunOpts{
		OutputDir: t.TempDir(),
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Completed != 1 || result.Failed != 1 {
		t.Errorf("aggregate = {%d, %d}, want {1, 1}", result.Completed, result.Failed)
	}
	if result.Results[1].ErrorKind != models.ErrorInvalidRow {
		t.Errorf("ErrorKind = %v, want invalid row", result.Results[1].ErrorKind)
	}
	if len(resolver.Calls()) != 1 {
		t.Errorf("invalid row should not reach the resolver, got %d calls", len(resolver.Calls()))
	}
}

func TestRun_SkipArchived(t *testing.T) {
	tracks := testTracks(3)
	archive := th.NewMemoryArchive()
	archive.Archive(tracks[1], "/music/already-here.mp3")

	resolver := &th.MockResolver{}
	engine := newTestEngine(resolver, nil, nil, archive)

	result, err := engine.Run(context.Background(), nil, tracks, RunOpts{
		OutputDir:    t.TempDir(),
		RateLimit:    1000,
		SkipArchived: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Completed != 3 || result.Skipped != 1 {
		t.Errorf("Completed = %d, Skipped = %d, want 3 and 1", result.Completed, result.Skipped)
	}
	if !result.Results[1].Skipped {
		t.Error("archived track should be marked skipped")
	}
	if result.Results[1].OutputPath != "/music/already-here.mp3" {
		t.Errorf("skipped OutputPath = %q", result.Results[1].OutputPath)
	}
	if len(resolver.Calls()) != 2 {
		t.Errorf("expected 2 resolver calls, got %d", len(resolver.Calls()))
	}

	// Completed tracks are recorded for the next run.
	if _, ok := archive.IsArchived(tracks[0]); !ok {
		t.Error("completed track missing from archive")
	}
}

func TestRun_ArchivesWithoutSkipConsult(t *testing.T) {
	tracks := testTracks(2)
	archive := th.NewMemoryArchive()
	archive.Archive(tracks[0], "/music/old.mp3")

	engine := newTestEngine(nil, nil, nil, archive)

	result, err := engine.Run(context.Background(), nil, tracks, RunOpts{
		OutputDir:    t.TempDir(),
		RateLimit:    1000,
		SkipArchived: false,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Without the skip consult the archived track downloads again.
	if result.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", result.Skipped)
	}
	if result.Completed != 2 {
		t.Errorf("Completed = %d, want 2", result.Completed)
	}

	// Completions are still recorded for future runs.
	if _, ok := archive.IsArchived(tracks[1]); !ok {
		t.Error("completed track missing from archive")
	}
}

func TestRun_CancellationMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var once sync.Once
	resolver := &th.MockResolver{Hook: func(models.Track) {
		once.Do(cancel)
		time.Sleep(5 * time.Millisecond)
	}}
	engine := newTestEngine(resolver, nil, nil, nil)

	result, err := engine.Run(ctx, nil, testTracks(8), RunOpts{
		OutputDir: t.TempDir(),
		Workers:   2,
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.Cancelled {
		t.Error("result should be marked cancelled")
	}

	untouched := 0
	cancelled := 0
	for _, res := range result.Results {
		if res.Status == models.StatusPending {
			untouched++
		}
		if res.ErrorKind == models.ErrorCancelled {
			cancelled++
		}
	}
	if result.Completed+result.Failed+untouched != result.Total {
		t.Errorf("counts plus untouched tracks should cover the run: %d + %d + %d != %d",
			result.Completed, result.Failed, untouched, result.Total)
	}
	if cancelled == 0 {
		t.Error("expected at least one cancelled track")
	}
}

func TestRun_CancelBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prog := make(chan ProgressUpdate, 64)
	engine := newTestEngine(nil, nil, nil, nil)

	result, err := engine.Run(ctx, prog, testTracks(3), RunOpts{
		OutputDir: t.TempDir(),
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	close(prog)

	if result.Completed != 0 || result.Failed != 0 || result.Total != 3 {
		t.Errorf("aggregate = {%d, %d, %d}, want {0, 0, 3}",
			result.Completed, result.Failed, result.Total)
	}
	if !result.Cancelled {
		t.Error("result should be marked cancelled")
	}

	// Untouched tracks keep their pending status and announce nothing.
	for _, res := range result.Results {
		if res.Status != models.StatusPending {
			t.Errorf("Results[%d].Status = %v, want pending", res.Index, res.Status)
		}
	}
	for u := range prog {
		switch u.Phase {
		case TrackDone, TrackSkipped, TrackFailed:
			t.Errorf("terminal event emitted for untouched track: %s", u.Message)
		}
	}
}

func TestRun_StageTimeoutFailsTrackOnly(t *testing.T) {
	resolver := &th.MockResolver{Hook: func(models.Track) {
		time.Sleep(50 * time.Millisecond)
	}}
	engine := newTestEngine(resolver, nil, nil, nil)

	result, err := engine.Run(context.Background(), nil, testTracks(1), RunOpts{
		OutputDir:      t.TempDir(),
		RateLimit:      1000,
		ResolveTimeout: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", result.Failed)
	}
	if result.Results[0].ErrorKind != models.ErrorResolveFailed {
		t.Errorf("ErrorKind = %v, want resolve failed", result.Results[0].ErrorKind)
	}
	if result.Cancelled {
		t.Error("a stage timeout must not mark the run cancelled")
	}
}

func TestRun_ProgressUpdates(t *testing.T) {
	prog := make(chan ProgressUpdate, 256)
	engine := newTestEngine(nil, nil, nil, nil)

	result, err := engine.Run(context.Background(), prog, testTracks(3), RunOpts{
		OutputDir: t.TempDir(),
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	close(prog)

	var phases []Phase
	var final *RunResult
	for u := range prog {
		phases = append(phases, u.Phase)
		if u.Phase == RunComplete {
			final, _ = u.Data.(*RunResult)
		}
	}

	counts := map[Phase]int{}
	for _, p := range phases {
		counts[p]++
	}
	if counts[Dispatch] != 1 {
		t.Errorf("dispatch updates = %d, want 1", counts[Dispatch])
	}
	if counts[TrackDone] != 3 {
		t.Errorf("track done updates = %d, want 3", counts[TrackDone])
	}
	if final == nil || final.Completed != result.Completed {
		t.Error("run complete update should carry the final result")
	}
}

func TestRun_NoProgressChannel(t *testing.T) {
	engine := newTestEngine(nil, nil, nil, nil)

	// A nil progress channel must not block or panic.
	result, err := engine.Run(context.Background(), nil, testTracks(2), RunOpts{
		OutputDir: t.TempDir(),
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Completed != 2 {
		t.Errorf("Completed = %d, want 2", result.Completed)
	}
}

func TestRun_EmptyPlaylist(t *testing.T) {
	engine := newTestEngine(nil, nil, nil, nil)

	result, err := engine.Run(context.Background(), nil, nil, RunOpts{
		OutputDir: t.TempDir(),
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Total != 0 || result.Completed != 0 || result.Failed != 0 {
		t.Errorf("aggregate = {%d, %d, %d}, want all zero",
			result.Completed, result.Failed, result.Total)
	}
}

func TestRun_ConvertFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(nil, &th.MockConverter{Fail: true}, nil, nil)

	result, err := engine.Run(context.Background(), nil, testTracks(1), RunOpts{
		OutputDir: dir,
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", result.Failed)
	}
	if result.Results[0].ErrorKind != models.ErrorConvertFailed {
		t.Errorf("ErrorKind = %v", result.Results[0].ErrorKind)
	}
	// No staging leftovers in the output directory.
	matches, _ := filepath.Glob(filepath.Join(dir, ".staging-*"))
	if len(matches) != 0 {
		t.Errorf("staging directories left behind: %v", matches)
	}
}
