// Package toolutil provides shared helper functions for go_ytsum MCP tools and the CLI.
package toolutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
)

// Describe maps engine errors to the message shown to tool callers.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, engine.ErrInvalidURL):
		return "Invalid YouTube URL."
	case errors.Is(err, engine.ErrTranscriptUnavailable):
		return "Transcript not available for this video."
	case errors.Is(err, engine.ErrSummarization):
		return "Summary generation failed: " + err.Error()
	default:
		return err.Error()
	}
}

// UserError replaces err with its Describe message.
func UserError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(Describe(err))
}

// KindNames converts kinds to their wire names.
func KindNames(kinds []engine.Kind) []string {
	if len(kinds) == 0 {
		return nil
	}
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// FormatDuration renders whole seconds as "12m 34s"; zero is "".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// FormatTime renders a stored timestamp for tool output.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// HistoryItems converts store entries into tool output rows.
func HistoryItems(entries []store.VideoEntry) []engine.HistoryItem {
	items := make([]engine.HistoryItem, 0, len(entries))
	for _, e := range entries {
		source := e.SourceType
		if source == "" {
			source = engine.SourceYouTube
			if e.VideoID.IsAudio() {
				source = engine.SourceAudio
			}
		}
		items = append(items, engine.HistoryItem{
			VideoID:         e.VideoID.String(),
			SourceType:      string(source),
			URL:             e.VideoID.WatchURL(),
			Filename:        e.Filename,
			DurationSeconds: e.DurationSeconds,
			Title:           e.Title,
			FetchedAt:       FormatTime(e.FetchedAt),
			Summaries:       KindNames(e.Kinds),
		})
	}
	return items
}
