package formatter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csvmp3/internal/models"
	"csvmp3/internal/tasks"
)

func sampleResult() *tasks.RunResult {
	return &tasks.RunResult{
		Completed:       2,
		Failed:          1,
		Skipped:         1,
		Total:           3,
		OutputDirectory: "/music",
		Results: []tasks.TrackResult{
			{
				Track:      models.Track{Artist: "Björk", Title: "Jóga", Album: "Homogenic", DurationMS: 215000},
				Index:      0,
				Status:     models.StatusDone,
				OutputPath: "/music/Björk - Jóga.mp3",
			},
			{
				Track:      models.Track{Artist: "Radiohead", Title: "Airbag"},
				Index:      1,
				Status:     models.StatusDone,
				OutputPath: "/music/Radiohead - Airbag.mp3",
				Skipped:    true,
			},
			{
				Track:     models.Track{Artist: "Sigur Rós", Title: "Svefn-g-englar", DurationMS: 600000},
				Index:     2,
				Status:    models.StatusFailed,
				ErrorKind: models.ErrorResolveFailed,
				Err:       errors.New("no results found"),
			},
		},
	}
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	if err := WriteManifest(sampleResult(), path); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}

	if m["completed"].(float64) != 2 || m["failed"].(float64) != 1 || m["total"].(float64) != 3 {
		t.Errorf("manifest aggregate wrong: %v", m)
	}

	tracks := m["tracks"].([]any)
	if len(tracks) != 3 {
		t.Fatalf("manifest has %d tracks, want 3", len(tracks))
	}
	last := tracks[2].(map[string]any)
	if last["error_kind"] != "resolve_failed" {
		t.Errorf("error_kind = %v", last["error_kind"])
	}
	if last["error"] != "no results found" {
		t.Errorf("error = %v", last["error"])
	}
}

func TestFailedTracksCSV_RoundTripsThroughParser(t *testing.T) {
	data, err := FailedTracksCSV(sampleResult())
	if err != nil {
		t.Fatalf("FailedTracksCSV() error = %v", err)
	}
	if data == nil {
		t.Fatal("expected CSV output for a run with failures")
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "Title") || !strings.Contains(lines[0], "Duration (ms)") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Svefn-g-englar") {
		t.Errorf("row missing failed track: %q", lines[1])
	}
}

func TestFailedTracksCSV_NoFailures(t *testing.T) {
	result := &tasks.RunResult{
		Completed: 1,
		Total:     1,
		Results: []tasks.TrackResult{
			{Track: models.Track{Artist: "A", Title: "T"}, Status: models.StatusDone},
		},
	}

	data, err := FailedTracksCSV(result)
	if err != nil {
		t.Fatalf("FailedTracksCSV() error = %v", err)
	}
	if data != nil {
		t.Error("expected nil output when nothing failed")
	}

	ok, err := WriteFailedTracksCSV(result, filepath.Join(t.TempDir(), "retry.csv"))
	if err != nil {
		t.Fatalf("WriteFailedTracksCSV() error = %v", err)
	}
	if ok {
		t.Error("WriteFailedTracksCSV() should not write a file when nothing failed")
	}
}

func TestSummaryText(t *testing.T) {
	out := SummaryText(sampleResult())

	if !strings.Contains(out, "Downloaded 2 of 3 tracks") {
		t.Errorf("summary missing aggregate: %q", out)
	}
	if !strings.Contains(out, "(1 already present)") {
		t.Errorf("summary missing skip count: %q", out)
	}
	if !strings.Contains(out, "Sigur Rós - Svefn-g-englar") {
		t.Errorf("summary missing failed track: %q", out)
	}
}

func TestTracksMarkdown(t *testing.T) {
	tracks := []models.Track{
		{Artist: "Björk", Title: "Jóga", Album: "Homogenic", DurationMS: 215000},
		{Artist: "Radiohead", Title: "Airbag"},
	}

	out := string(TracksMarkdown("My Playlist", tracks))

	if !strings.HasPrefix(out, "# My Playlist") {
		t.Errorf("missing title: %q", out)
	}
	if !strings.Contains(out, "**Tracks**: 2") {
		t.Errorf("missing track count: %q", out)
	}
	if !strings.Contains(out, "1. Björk - Jóga (Homogenic) [3:35]") {
		t.Errorf("missing formatted row: %q", out)
	}
	if !strings.Contains(out, "2. Radiohead - Airbag [?:??]") {
		t.Errorf("missing duration placeholder: %q", out)
	}
}
