package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"csvmp3/internal/models"
	"csvmp3/internal/shared"
)

// rawStem is the fixed output stem for downloads. Each job resolves into its
// own staging directory, so no per-track name is needed at this stage.
const rawStem = "audio"

// searchEntry is the subset of yt-dlp's per-result JSON the resolver reads.
type searchEntry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	WebpageURL string  `json:"webpage_url"`
	Thumbnail  string  `json:"thumbnail"`
}

// YtdlpResolver finds tracks through yt-dlp's ytsearch extractor and
// downloads the best-audio stream of the closest duration match.
type YtdlpResolver struct {
	binPath       string
	searchResults int
	tolerance     float64
	runner        commandRunner
}

// NewYtdlpResolver creates a resolver using the given yt-dlp binary.
// searchResults caps how many candidates one search returns and tolerance is
// the accepted relative deviation from the track's duration hint.
func NewYtdlpResolver(binPath string, searchResults int, tolerance float64) *YtdlpResolver {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if searchResults <= 0 {
		searchResults = 5
	}
	return &YtdlpResolver{
		binPath:       binPath,
		searchResults: searchResults,
		tolerance:     tolerance,
		runner:        &execRunner{},
	}
}

// Resolve implements [Resolver].
func (r *YtdlpResolver) Resolve(ctx context.Context, track models.Track, dir string) (ResolvedAudio, error) {
	chosen, err := r.search(ctx, track)
	if err != nil {
		return ResolvedAudio{}, err
	}

	if err := r.download(ctx, chosen.WebpageURL, dir); err != nil {
		return ResolvedAudio{}, err
	}

	path, err := findRawFile(dir)
	if err != nil {
		return ResolvedAudio{}, fmt.Errorf("%w: %v", shared.ErrResolveFailed, err)
	}

	return ResolvedAudio{
		Path:         path,
		SourceURL:    chosen.WebpageURL,
		DurationSec:  int(chosen.Duration),
		ThumbnailURL: chosen.Thumbnail,
	}, nil
}

// search runs one ytsearch query and picks the best candidate.
func (r *YtdlpResolver) search(ctx context.Context, track models.Track) (searchEntry, error) {
	query := fmt.Sprintf("ytsearch%d:%s - %s", r.searchResults, track.Artist, track.Title)
	args := []string{
		"--dump-json",
		"--no-download",
		"--no-playlist",
		"--no-warnings",
		"--ignore-errors",
		query,
	}

	result, err := r.runner.Run(ctx, r.binPath, args...)
	if err != nil && result.Stdout == "" {
		if ctx.Err() != nil {
			return searchEntry{}, ctx.Err()
		}
		return searchEntry{}, fmt.Errorf("%w: search: %s", shared.ErrResolveFailed, firstLine(result.Stderr))
	}

	entries := parseSearchOutput(result.Stdout)
	if len(entries) == 0 {
		return searchEntry{}, fmt.Errorf("%w: %q", shared.ErrNoResults, track.BaseName())
	}

	return pickEntry(entries, track.DurationHint().Seconds(), r.tolerance), nil
}

// download fetches the best audio stream for url into dir.
func (r *YtdlpResolver) download(ctx context.Context, url, dir string) error {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"--retries", "5",
		"--fragment-retries", "5",
		"-f", "bestaudio/best",
		"-o", filepath.Join(dir, rawStem+".%(ext)s"),
		url,
	}

	result, err := r.runner.Run(ctx, r.binPath, args...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: download: %s", shared.ErrResolveFailed, firstLine(result.Stderr))
	}
	return nil
}

// parseSearchOutput reads yt-dlp's line-delimited JSON, skipping lines that
// do not parse. With --ignore-errors yt-dlp interleaves diagnostics on bad
// results, so partial output is normal.
func parseSearchOutput(stdout string) []searchEntry {
	var entries []searchEntry
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var entry searchEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.WebpageURL == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// pickEntry returns the candidate whose duration is closest to targetSec
// among those within the tolerance window. Without a usable hint, or when no
// candidate falls inside the window, the first search result wins.
func pickEntry(entries []searchEntry, targetSec, tolerance float64) searchEntry {
	if targetSec <= 0 || tolerance <= 0 {
		return entries[0]
	}

	lo := (1 - tolerance) * targetSec
	hi := (1 + tolerance) * targetSec

	best := -1
	bestDiff := math.MaxFloat64
	for i, e := range entries {
		if e.Duration <= 0 {
			continue
		}
		diff := math.Abs(e.Duration - targetSec)
		if e.Duration >= lo && e.Duration <= hi && diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}

	if best == -1 {
		return entries[0]
	}
	return entries[best]
}

// findRawFile locates the downloaded audio file inside a staging directory.
func findRawFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, rawStem+".*"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if strings.EqualFold(filepath.Ext(m), ".mp3") {
			continue
		}
		info, err := os.Stat(m)
		if err != nil || info.Size() == 0 {
			continue
		}
		return m, nil
	}
	return "", fmt.Errorf("no downloaded file in %s", dir)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i != -1 {
		s = s[:i]
	}
	if s == "" {
		return "no output"
	}
	return s
}
