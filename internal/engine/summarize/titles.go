package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
)

const (
	titleMaxRunes     = 100
	titleExcerptRunes = 2000
)

var errNotProcessed = errors.New("video has not been processed yet")

// Titler generates and stores a short title per processed video.
type Titler struct {
	transcripts store.TranscriptStore
	summaries   store.SummaryStore
	gen         engine.Generator
	logger      *slog.Logger
	now         func() time.Time
}

func NewTitler(transcripts store.TranscriptStore, summaries store.SummaryStore, gen engine.Generator, logger *slog.Logger) *Titler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Titler{
		transcripts: transcripts,
		summaries:   summaries,
		gen:         gen,
		logger:      logger.With(slog.String("component", "titler")),
		now:         time.Now,
	}
}

// Title returns the stored title of id, generating it on first use from the
// concise summary or, lacking one, the start of the transcript.
func (t *Titler) Title(ctx context.Context, id engine.VideoID) (string, error) {
	rec, ok, err := t.summaries.GetSummary(ctx, id, engine.KindTitle)
	if err != nil {
		return "", fmt.Errorf("store title: %w", err)
	}
	if ok {
		return rec.Text, nil
	}

	tr, ok, err := t.transcripts.GetTranscript(ctx, id)
	if err != nil {
		return "", fmt.Errorf("store transcript: %w", err)
	}
	if !ok {
		return "", &engine.TranscriptUnavailableError{VideoID: id, Cause: errNotProcessed}
	}

	concise, fromSummary, err := t.summaries.GetSummary(ctx, id, engine.KindConcise)
	if err != nil {
		return "", fmt.Errorf("store summary: %w", err)
	}
	content := concise.Text
	if !fromSummary {
		content = engine.TruncateRunes(tr.FullText, titleExcerptRunes, "")
	}

	raw, err := t.gen.Generate(ctx, engine.TitlePrompt(fromSummary, content))
	if err != nil {
		return "", &engine.SummarizationError{Kind: engine.KindTitle, Cause: err}
	}
	title := cleanTitle(raw)
	if title == "" {
		return "", &engine.SummarizationError{Kind: engine.KindTitle, Cause: engine.ErrEmptyCompletion}
	}

	err = t.summaries.InsertSummary(ctx, store.SummaryRecord{
		VideoID:   id,
		Kind:      engine.KindTitle,
		Text:      title,
		CreatedAt: t.now(),
	})
	if err != nil {
		return "", &engine.SummarizationError{Kind: engine.KindTitle, Cause: fmt.Errorf("store title: %w", err)}
	}
	engine.IncrTitlesGenerated()
	t.logger.Info("title generated",
		slog.String("video_id", id.String()),
		slog.Bool("from_summary", fromSummary),
		slog.String("title", title))
	return title, nil
}

// cleanTitle keeps the first non-empty line, unquoted and capped in length.
func cleanTitle(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimPrefix(strings.TrimSpace(line), "#")
		if line = engine.StripQuotes(line); line != "" {
			return strings.TrimSpace(engine.TruncateRunes(line, titleMaxRunes, ""))
		}
	}
	return ""
}
