// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"csvmp3/internal/models"
	"csvmp3/internal/services"
)

// MockResolver is a test double for [services.Resolver].
//
// FailKeys lists track keys whose resolution should fail. Hook, when set,
// runs before the context check so tests can observe concurrency or trigger
// cancellation mid-resolve.
type MockResolver struct {
	FailKeys map[string]bool
	Hook     func(track models.Track)

	mu    sync.Mutex
	calls []string
}

func (m *MockResolver) Resolve(ctx context.Context, track models.Track, dir string) (services.ResolvedAudio, error) {
	m.mu.Lock()
	m.calls = append(m.calls, track.Key())
	m.mu.Unlock()

	if m.Hook != nil {
		m.Hook(track)
	}

	if ctx.Err() != nil {
		return services.ResolvedAudio{}, ctx.Err()
	}
	if m.FailKeys[track.Key()] {
		return services.ResolvedAudio{}, errors.New("no results found")
	}

	path := filepath.Join(dir, "audio.webm")
	if err := os.WriteFile(path, []byte("raw-audio"), 0o644); err != nil {
		return services.ResolvedAudio{}, err
	}

	return services.ResolvedAudio{
		Path:         path,
		SourceURL:    "https://example.com/" + track.Key(),
		DurationSec:  track.DurationMS / 1000,
		ThumbnailURL: "https://example.com/cover.jpg",
	}, nil
}

// Calls returns the track keys resolved so far.
func (m *MockResolver) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockConverter is a test double for [services.Converter] that writes a
// placeholder MP3.
type MockConverter struct {
	Fail bool
}

func (m *MockConverter) Convert(ctx context.Context, inPath, outPath string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if m.Fail {
		return errors.New("conversion failed")
	}
	return os.WriteFile(outPath, []byte("mp3-audio"), 0o644)
}

// MockEmbedder is a test double for [services.Embedder].
type MockEmbedder struct {
	Fail bool

	mu     sync.Mutex
	tagged []string
}

func (m *MockEmbedder) Embed(ctx context.Context, path string, track models.Track, coverURL string) error {
	if m.Fail {
		return errors.New("tagging failed")
	}
	m.mu.Lock()
	m.tagged = append(m.tagged, path)
	m.mu.Unlock()
	return nil
}

// Tagged returns the paths embedded so far.
func (m *MockEmbedder) Tagged() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tagged...)
}

// MemoryArchive is an in-memory tasks.TrackArchiver.
type MemoryArchive struct {
	mu      sync.Mutex
	records map[string]string
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{records: make(map[string]string)}
}

func (a *MemoryArchive) IsArchived(track models.Track) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	path, ok := a.records[track.Key()]
	return path, ok
}

func (a *MemoryArchive) Archive(track models.Track, outputPath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[track.Key()] = outputPath
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// AssertFileExists fails the test when path does not exist
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file %s to exist: %v", path, err)
	}
}

// AssertFileMissing fails the test when path exists
func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected file %s to be absent", path)
	}
}
