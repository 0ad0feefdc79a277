package shared

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxFileNameLength caps sanitized names well under common filesystem limits,
// leaving room for collision suffixes and the ".mp3" extension.
const maxFileNameLength = 180

// fallbackFileName is returned when sanitization strips every character.
const fallbackFileName = "track"

var (
	forbiddenChars = map[rune]bool{
		'\\': true, '/': true, ':': true, '*': true,
		'?': true, '"': true, '<': true, '>': true, '|': true,
	}

	whitespaceRun = regexp.MustCompile(`\s+`)

	// Device names Windows refuses as file base names, with or without extension.
	reservedName = regexp.MustCompile(`^(?i)(CON|PRN|AUX|NUL|COM[1-9]|LPT[1-9])$`)
)

// SanitizeFileName maps arbitrary Unicode text to a name safe for direct use
// as a filename on common filesystems.
//
// The input is NFKC-normalized, characters reserved by Windows/POSIX
// filesystems and Unicode control characters are replaced with underscores,
// whitespace runs collapse to a single space, and trailing dots and spaces
// are stripped. Filesystem-legal non-ASCII characters (CJK, combining marks,
// emoji, RTL scripts) pass through unchanged. The result is never empty and
// the function is deterministic and idempotent.
func SanitizeFileName(name string) string {
	name = norm.NFKC.String(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if forbiddenChars[r] || unicode.IsControl(r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}

	name = whitespaceRun.ReplaceAllString(b.String(), " ")
	name = strings.TrimRight(name, ". ")

	if base, _, _ := strings.Cut(name, "."); reservedName.MatchString(base) {
		name = "_" + name
	}

	if runes := []rune(name); len(runes) > maxFileNameLength {
		name = strings.TrimRight(string(runes[:maxFileNameLength]), ". ")
	}

	if name == "" {
		return fallbackFileName
	}
	return name
}
