package shared

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  string
	}{
		{"already safe", "Artist - Title", "Artist - Title"},
		{"forbidden characters", `AC/DC: Back\In*Black?`, "AC_DC_ Back_In_Black_"},
		{"angle brackets and pipes", "a<b>c|d", "a_b_c_d"},
		{"quotes", `say "hello"`, "say _hello_"},
		{"control characters", "tab\there", "tab_here"},
		{"collapses whitespace", "too   many    spaces", "too many spaces"},
		{"trailing dots", "Track...", "Track"},
		{"trailing spaces", "Track   ", "Track"},
		{"non-ascii preserved", "Björk - Jóga", "Björk - Jóga"},
		{"cjk preserved", "坂本龍一 - 戦場のメリークリスマス", "坂本龍一 - 戦場のメリークリスマス"},
		{"rtl preserved", "فيروز - حبيتك", "فيروز - حبيتك"},
		{"reserved device name", "CON", "_CON"},
		{"reserved with extension", "NUL.mp3", "_NUL.mp3"},
		{"reserved com port", "com3", "_com3"},
		{"empty input", "", "track"},
		{"all illegal input", "...", "track"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName_Idempotent(t *testing.T) {
	inputs := []string{
		"Artist - Title",
		`AC/DC: Back\In*Black?`,
		"CON",
		"Björk - Jóga",
		"   spaced   out   ",
		"...",
		strings.Repeat("長", 400),
	}

	for _, input := range inputs {
		once := SanitizeFileName(input)
		twice := SanitizeFileName(once)
		if once != twice {
			t.Errorf("SanitizeFileName not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestSanitizeFileName_Truncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := SanitizeFileName(long)
	if len([]rune(got)) != 180 {
		t.Errorf("expected 180 runes, got %d", len([]rune(got)))
	}

	// Multibyte runes must not be split.
	longCJK := strings.Repeat("音", 500)
	got = SanitizeFileName(longCJK)
	if len([]rune(got)) != 180 {
		t.Errorf("expected 180 runes for CJK input, got %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "音") {
		t.Errorf("truncated name ends with partial rune: %q", got[len(got)-4:])
	}
}

func TestSanitizeFileName_Deterministic(t *testing.T) {
	input := "Sigur Rós - Svefn-g-englar?"
	first := SanitizeFileName(input)
	for i := 0; i < 10; i++ {
		if got := SanitizeFileName(input); got != first {
			t.Fatalf("SanitizeFileName(%q) not deterministic: %q vs %q", input, first, got)
		}
	}
}
