package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("log output missing message: %q", out)
	}
	if !strings.Contains(out, "key") {
		t.Errorf("log output missing structured field: %q", out)
	}
}

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if len(id) != 36 {
			t.Fatalf("unexpected ID format: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name            string
		title, artist   string
		title2, artist2 string
		equal           bool
	}{
		{"case insensitive", "Jóga", "Björk", "JÓGA", "BJÖRK", true},
		{"whitespace insensitive", "My  Song", " Artist ", "My Song", "Artist", true},
		{"different titles differ", "Song A", "Artist", "Song B", "Artist", false},
		{"fields do not bleed", "a b", "c", "a", "b c", false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			a := NormalizeTrackKey(tt.title, tt.artist)
			b := NormalizeTrackKey(tt.title2, tt.artist2)
			if (a == b) != tt.equal {
				t.Errorf("NormalizeTrackKey: %q vs %q, equal = %v, want %v", a, b, a == b, tt.equal)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{215, "3:35"},
		{59, "0:59"},
		{600, "10:00"},
		{0, "?:??"},
		{-5, "?:??"},
	}

	for _, tt := range tc {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"a": 1}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(compact) != `{"a":1}` {
		t.Errorf("compact = %q", compact)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if !strings.Contains(string(pretty), "\n") {
		t.Errorf("pretty output not indented: %q", pretty)
	}
}
