package summarize

import (
	"context"
	"time"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

// Pipeline runs URL → video ID → transcript → summaries.
type Pipeline struct {
	transcripts *Transcripts
	summarizer  *Summarizer
}

func NewPipeline(t *Transcripts, s *Summarizer) *Pipeline {
	return &Pipeline{transcripts: t, summarizer: s}
}

// Process summarizes the video at rawURL. No kinds means all three.
// URL and transcript errors abort the run; per-kind failures are in the Result.
func (p *Pipeline) Process(ctx context.Context, rawURL string, kinds ...engine.Kind) (Result, error) {
	id, err := engine.ExtractVideoID(rawURL)
	if err != nil {
		return Result{}, err
	}

	var text string
	err = engine.TrackOperation(ctx, "transcript", 10*time.Second, func(ctx context.Context) error {
		var err error
		text, err = p.transcripts.Get(ctx, id)
		return err
	})
	if err != nil {
		return Result{VideoID: id}, err
	}

	if len(kinds) == 0 {
		kinds = engine.AllKinds
	}
	return p.summarizer.SummarizeKinds(ctx, id, text, kinds), nil
}

// Transcript returns the cached-or-fetched transcript for rawURL.
func (p *Pipeline) Transcript(ctx context.Context, rawURL string) (engine.VideoID, string, error) {
	id, err := engine.ExtractVideoID(rawURL)
	if err != nil {
		return "", "", err
	}
	text, err := p.transcripts.Get(ctx, id)
	if err != nil {
		return id, "", err
	}
	return id, text, nil
}
