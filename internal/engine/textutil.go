package engine

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/text/unicode/norm"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML decodes entities once, then strips HTML tags (including ones
// that were entity-encoded) and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(html.UnescapeString(s), ""))
}

// NormalizeText applies NFC normalization and collapses runs of whitespace
// (including caption line breaks) into single spaces.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// JoinSegments concatenates caption texts in order with single spaces.
// Timing is dropped and empty segments are skipped.
func JoinSegments(segs []Segment) string {
	var sb strings.Builder
	for _, seg := range segs {
		text := NormalizeText(seg.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// EstimateTokens approximates the model token count as one token per four runes.
func EstimateTokens(s string) int {
	return utf8.RuneCountInString(s) / 4
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}

// StripQuotes trims whitespace and any surrounding single or double quotes.
func StripQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'“”‘’`))
}
