// Package playlist parses playlist-export CSV files into [models.Track] values.
//
// The parser is tolerant by design: exports from different services disagree
// on header names, casing, column order, and whether a header row exists at
// all, so column detection is fuzzy and rows that cannot yield a usable track
// are collected as [SkippedRow] values instead of aborting the parse.
package playlist

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"csvmp3/internal/models"
	"csvmp3/internal/shared"
)

// SkippedRow records a CSV row that could not be turned into a track,
// keeping enough context to report the problem to the user.
type SkippedRow struct {
	Line   int // 1-based line number in the source file
	Reason string
}

// columnMap holds the detected column index for each field of interest.
// A value of -1 means the column is absent.
type columnMap struct {
	title    int
	artist   int
	album    int
	duration int
}

// Parse reads a playlist CSV and returns the tracks it contains in file
// order, along with any rows that were skipped.
//
// Column detection follows the header row when one is present: the title
// column matches "Track Name" or "Title", the artist column any header
// containing "artist", the album column any header containing "album", and
// the duration column any header containing both "duration" and "ms". When
// the first row does not look like a header, the file is treated as
// headerless with title in column 0 and artist in column 1.
//
// A UTF-8 byte order mark at the start of the input is ignored.
func Parse(r io.Reader) ([]models.Track, []SkippedRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	first, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: empty file", shared.ErrInvalidRow)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("reading csv header: %w", err)
	}

	first[0] = strings.TrimPrefix(first[0], "\ufeff")

	var tracks []models.Track
	var skipped []SkippedRow
	line := 1

	cols, ok := detectColumns(first)
	if !ok {
		// Headerless export: the first row is data.
		cols = columnMap{title: 0, artist: 1, album: -1, duration: -1}
		if track, reason := buildTrack(first, cols); reason == "" {
			tracks = append(tracks, track)
		} else {
			skipped = append(skipped, SkippedRow{Line: line, Reason: reason})
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		line++

		if err != nil {
			skipped = append(skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}

		track, reason := buildTrack(record, cols)
		if reason != "" {
			skipped = append(skipped, SkippedRow{Line: line, Reason: reason})
			continue
		}

		tracks = append(tracks, track)
	}

	return tracks, skipped, nil
}

// detectColumns inspects a candidate header row. The row counts as a header
// only when both a title and an artist column can be identified.
func detectColumns(header []string) (columnMap, bool) {
	cols := columnMap{title: -1, artist: -1, album: -1, duration: -1}

	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		if cols.title == -1 && (strings.Contains(lower, "track name") || lower == "title") {
			cols.title = i
		}
		if cols.artist == -1 && strings.Contains(lower, "artist") {
			cols.artist = i
		}
		if cols.album == -1 && strings.Contains(lower, "album") {
			cols.album = i
		}
		if cols.duration == -1 && strings.Contains(lower, "duration") && strings.Contains(lower, "ms") {
			cols.duration = i
		}
	}

	return cols, cols.title != -1 && cols.artist != -1
}

// buildTrack assembles a track from one record. It returns a non-empty
// reason string when the record cannot yield a valid track.
func buildTrack(record []string, cols columnMap) (models.Track, string) {
	track := models.Track{
		Title:  field(record, cols.title),
		Artist: field(record, cols.artist),
		Album:  field(record, cols.album),
	}

	if raw := field(record, cols.duration); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			track.DurationMS = ms
		}
	}

	if err := track.Validate(); err != nil {
		return models.Track{}, err.Error()
	}

	return track, ""
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
