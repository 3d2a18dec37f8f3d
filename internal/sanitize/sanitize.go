// Package sanitize cleans free-text address fields before they are stored on a marker.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLength is the maximum number of runes kept by Text when no limit is configured.
const DefaultMaxLength = 255

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Sanitizer strips markup and control characters from single-line text.
type Sanitizer struct {
	maxLength int // maxLength is the rune limit applied after cleaning.
}

// Default is the sanitizer used by markers that were not given one explicitly.
var Default = New(DefaultMaxLength)

// New creates a Sanitizer that truncates output to maxLength runes.
// A non-positive maxLength falls back to DefaultMaxLength.
func New(maxLength int) *Sanitizer {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	return &Sanitizer{maxLength: maxLength}
}

// Text returns raw as safe single-line text: HTML tags are removed (also when they were
// entity-encoded), control characters and line breaks collapse into single spaces,
// the result is NFC normalized, trimmed and truncated.
func (s *Sanitizer) Text(raw string) string {
	result := htmlTagRegex.ReplaceAllString(raw, "")
	result = html.UnescapeString(result)
	result = htmlTagRegex.ReplaceAllString(result, "")

	result, _, err := transform.String(
		transform.Chain(
			runes.Map(func(r rune) rune {
				if unicode.IsControl(r) {
					return ' '
				}
				return r
			}),
			runes.Remove(runes.In(unicode.Cf)),
			norm.NFC,
		),
		result,
	)
	if err != nil {
		return ""
	}

	result = strings.TrimSpace(whitespaceRegex.ReplaceAllString(result, " "))

	if r := []rune(result); len(r) > s.maxLength {
		result = strings.TrimSpace(string(r[:s.maxLength]))
	}

	return result
}
