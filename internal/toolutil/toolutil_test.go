package toolutil

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"invalid url", &engine.InvalidURLError{Input: "x", Reason: "empty input"}, "Invalid YouTube URL."},
		{"wrapped transcript", fmt.Errorf("pipeline: %w", &engine.TranscriptUnavailableError{VideoID: "dQw4w9WgXcQ"}), "Transcript not available for this video."},
		{"summarization", &engine.SummarizationError{Kind: engine.KindConcise, Cause: errors.New("quota")}, "Summary generation failed: summarize concise: quota"},
		{"other", errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	assert.NoError(t, UserError(nil))
	assert.EqualError(t, UserError(&engine.InvalidURLError{Input: "x"}), "Invalid YouTube URL.")
}

func TestHistoryItems(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	audioID := engine.AudioSourceID([]byte("memo"))
	items := HistoryItems([]store.VideoEntry{
		{VideoID: "dQw4w9WgXcQ", SourceType: engine.SourceYouTube, FetchedAt: at, Title: "T", Kinds: []engine.Kind{engine.KindConcise, engine.KindKeyPoints}},
		{VideoID: "aaaaaaaaaaa"},
		{VideoID: audioID, SourceType: engine.SourceAudio, Filename: "memo.mp3", DurationSeconds: 61},
	})
	assert.Equal(t, []engine.HistoryItem{
		{
			VideoID:    "dQw4w9WgXcQ",
			SourceType: "youtube",
			URL:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Title:      "T",
			FetchedAt:  "2025-01-02T02:04:05Z",
			Summaries:  []string{"concise", "key_points"},
		},
		{
			VideoID:    "aaaaaaaaaaa",
			SourceType: "youtube",
			URL:        "https://www.youtube.com/watch?v=aaaaaaaaaaa",
		},
		{
			VideoID:         audioID.String(),
			SourceType:      "audio",
			Filename:        "memo.mp3",
			DurationSeconds: 61,
		},
	}, items)
}

func TestFormatDuration(t *testing.T) {
	assert.Empty(t, FormatDuration(0))
	assert.Equal(t, "0m 59s", FormatDuration(59))
	assert.Equal(t, "12m 34s", FormatDuration(754))
}
