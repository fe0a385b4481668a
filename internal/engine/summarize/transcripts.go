// Package summarize turns a video into cached transcripts and summaries.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
)

// CaptionsProvider fetches the timed caption lines of a video.
type CaptionsProvider interface {
	FetchCaptions(ctx context.Context, id engine.VideoID) ([]engine.Segment, error)
}

var errNoCaptionText = errors.New("captions contain no text")

// Transcripts is the cache-or-fetch transcript source: a stored transcript
// is returned as is, otherwise captions are fetched once and stored.
type Transcripts struct {
	store    store.TranscriptStore
	provider CaptionsProvider
	logger   *slog.Logger
	now      func() time.Time
}

func NewTranscripts(st store.TranscriptStore, provider CaptionsProvider, logger *slog.Logger) *Transcripts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transcripts{
		store:    st,
		provider: provider,
		logger:   logger.With(slog.String("component", "transcripts")),
		now:      time.Now,
	}
}

// Get returns the plain-text transcript of id.
//
// Provider failures and caption sets without text return
// *engine.TranscriptUnavailableError and write nothing. Store failures are
// returned wrapped.
func (t *Transcripts) Get(ctx context.Context, id engine.VideoID) (string, error) {
	engine.IncrTranscriptRequests()

	rec, ok, err := t.store.GetTranscript(ctx, id)
	if err != nil {
		return "", fmt.Errorf("store transcript: %w", err)
	}
	if ok {
		engine.IncrTranscriptCacheHits()
		t.logger.Debug("transcript cache hit", slog.String("video_id", id.String()))
		return rec.FullText, nil
	}

	engine.IncrTranscriptFetches()
	segs, err := t.provider.FetchCaptions(ctx, id)
	if err != nil {
		return "", t.unavailable(id, err)
	}
	text := engine.JoinSegments(segs)
	if text == "" {
		return "", t.unavailable(id, errNoCaptionText)
	}

	err = t.store.InsertTranscript(ctx, store.TranscriptRecord{
		VideoID:   id,
		FullText:  text,
		FetchedAt: t.now(),
	})
	if err != nil {
		return "", fmt.Errorf("store transcript: %w", err)
	}
	t.logger.Info("transcript fetched",
		slog.String("video_id", id.String()),
		slog.Int("segments", len(segs)),
		slog.Int("chars", len([]rune(text))))
	return text, nil
}

func (t *Transcripts) unavailable(id engine.VideoID, cause error) error {
	engine.IncrTranscriptErrors()
	transient := engine.IsTransient(cause)
	t.logger.Warn("transcript unavailable",
		slog.String("video_id", id.String()),
		slog.Bool("transient", transient),
		slog.Any("error", cause))
	return &engine.TranscriptUnavailableError{VideoID: id, Transient: transient, Cause: cause}
}
