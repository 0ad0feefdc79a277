// package formatter renders download run results to various formats (JSON manifest, retry CSV, plain text, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"csvmp3/internal/models"
	"csvmp3/internal/shared"
	"csvmp3/internal/tasks"
)

// manifest is the JSON shape written after every run.
type manifest struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	OutputDirectory string          `json:"output_directory"`
	Completed       int             `json:"completed"`
	Failed          int             `json:"failed"`
	Skipped         int             `json:"skipped"`
	Total           int             `json:"total"`
	Cancelled       bool            `json:"cancelled,omitempty"`
	Tracks          []manifestTrack `json:"tracks"`
}

type manifestTrack struct {
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Album      string `json:"album,omitempty"`
	Status     string `json:"status"`
	OutputPath string `json:"output_path,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
	Warning    string `json:"warning,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
}

// WriteManifest writes a JSON summary of the run to path.
func WriteManifest(result *tasks.RunResult, path string) error {
	m := manifest{
		GeneratedAt:     time.Now().UTC(),
		OutputDirectory: result.OutputDirectory,
		Completed:       result.Completed,
		Failed:          result.Failed,
		Skipped:         result.Skipped,
		Total:           result.Total,
		Cancelled:       result.Cancelled,
		Tracks:          make([]manifestTrack, 0, len(result.Results)),
	}

	for _, res := range result.Results {
		mt := manifestTrack{
			Artist:     res.Track.Artist,
			Title:      res.Track.Title,
			Album:      res.Track.Album,
			Status:     res.Status.String(),
			OutputPath: res.OutputPath,
			Skipped:    res.Skipped,
			Warning:    res.Warning,
			ErrorKind:  res.ErrorKind.String(),
		}
		if res.Err != nil {
			mt.Error = res.Err.Error()
		}
		m.Tracks = append(m.Tracks, mt)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// FailedTracksCSV renders the failed tracks of a run as a playlist CSV that
// can be fed straight back into a retry. Returns nil when nothing failed.
func FailedTracksCSV(result *tasks.RunResult) ([]byte, error) {
	var failed []tasks.TrackResult
	for _, res := range result.Results {
		if res.Status == models.StatusFailed {
			failed = append(failed, res)
		}
	}
	if len(failed) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Album", "Duration (ms)"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, res := range failed {
		record := []string{
			res.Track.Title,
			res.Track.Artist,
			res.Track.Album,
			strconv.Itoa(res.Track.DurationMS),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFailedTracksCSV writes the retry CSV to path. When no tracks failed
// the file is not written and ok is false.
func WriteFailedTracksCSV(result *tasks.RunResult, path string) (ok bool, err error) {
	data, err := FailedTracksCSV(result)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write retry CSV: %w", err)
	}
	return true, nil
}

// SummaryText renders a human-readable run summary for terminal output.
func SummaryText(result *tasks.RunResult) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Downloaded %d of %d tracks", result.Completed, result.Total))
	if result.Skipped > 0 {
		buf.WriteString(fmt.Sprintf(" (%d already present)", result.Skipped))
	}
	if result.Cancelled {
		buf.WriteString(" [cancelled]")
	}
	buf.WriteString("\n")

	for _, res := range result.Results {
		switch {
		case res.Status == models.StatusFailed:
			buf.WriteString(fmt.Sprintf("  ✗ %s: %v\n", res.Track.BaseName(), res.Err))
		case res.Warning != "":
			buf.WriteString(fmt.Sprintf("  ! %s: %s\n", res.Track.BaseName(), res.Warning))
		}
	}

	return buf.String()
}

// TracksMarkdown renders a parsed playlist as Markdown for previewing a CSV
// before downloading.
func TracksMarkdown(name string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", name))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	for i, track := range tracks {
		duration := shared.FormatDuration(track.DurationMS / 1000)
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, albumPart, duration))
	}

	return buf.Bytes()
}
