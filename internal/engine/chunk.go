package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Chunk splits text into whitespace-delimited pieces of at most maxChars runes.
//
// Words are accumulated greedily and joined by single spaces; a chunk is closed
// when the next word plus its joining space would overflow. A word longer than
// maxChars becomes a chunk of its own. Text without words yields one empty chunk.
func Chunk(text string, maxChars int) ([]string, error) {
	if maxChars <= 0 {
		return nil, &InvalidArgumentError{Name: "maxChars", Reason: fmt.Sprintf("must be positive, got %d", maxChars)}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}, nil
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if curLen > 0 && curLen+1+wl > maxChars {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
	}
	return append(chunks, cur.String()), nil
}
