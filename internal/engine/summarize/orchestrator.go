package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
)

// State is the progress of one summary kind within a run.
type State int

const (
	NotStarted State = iota
	Generating
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Generating:
		return "generating"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is the terminal result for one kind.
// A Failed outcome may still carry Text when only persisting it failed.
type Outcome struct {
	Kind   engine.Kind
	State  State
	Text   string
	Cached bool
	Err    error // *engine.SummarizationError when State == Failed
}

// Result holds the per-kind outcomes of one run, in engine.AllKinds order.
type Result struct {
	VideoID  engine.VideoID
	RunID    string
	Outcomes []Outcome
}

// Text returns the summary of kind if it completed.
func (r Result) Text(kind engine.Kind) (string, bool) {
	for _, o := range r.Outcomes {
		if o.Kind == kind && o.State == Done {
			return o.Text, true
		}
	}
	return "", false
}

// Summaries maps every completed kind to its text.
func (r Result) Summaries() map[engine.Kind]string {
	m := make(map[engine.Kind]string, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.State == Done {
			m[o.Kind] = o.Text
		}
	}
	return m
}

// Failures maps every failed kind to its error.
func (r Result) Failures() map[engine.Kind]error {
	m := make(map[engine.Kind]error)
	for _, o := range r.Outcomes {
		if o.State == Failed {
			m[o.Kind] = o.Err
		}
	}
	return m
}

// CachedKinds lists kinds served from the summary store.
func (r Result) CachedKinds() []engine.Kind {
	var kinds []engine.Kind
	for _, o := range r.Outcomes {
		if o.Cached {
			kinds = append(kinds, o.Kind)
		}
	}
	return kinds
}

// Err joins the errors of all failed kinds; nil when every kind completed.
func (r Result) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.State == Failed {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Summarizer produces summaries, serving stored ones and generating the rest.
// Kinds run sequentially; a failure in one kind never stops the others.
type Summarizer struct {
	store      store.SummaryStore
	gen        engine.Generator
	chunkChars int
	logger     *slog.Logger
	now        func() time.Time
}

// NewSummarizer returns a Summarizer splitting transcripts into chunks of at
// most chunkChars runes.
func NewSummarizer(st store.SummaryStore, gen engine.Generator, chunkChars int, logger *slog.Logger) (*Summarizer, error) {
	if chunkChars <= 0 {
		return nil, &engine.InvalidArgumentError{Name: "chunkChars", Reason: fmt.Sprintf("must be positive, got %d", chunkChars)}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		store:      st,
		gen:        gen,
		chunkChars: chunkChars,
		logger:     logger.With(slog.String("component", "summarizer")),
		now:        time.Now,
	}, nil
}

// Summarize produces all three kinds.
func (s *Summarizer) Summarize(ctx context.Context, id engine.VideoID, transcript string) Result {
	return s.SummarizeKinds(ctx, id, transcript, engine.AllKinds)
}

// SummarizeKinds produces the requested kinds in engine.AllKinds order.
// Duplicates and unknown kinds are dropped.
func (s *Summarizer) SummarizeKinds(ctx context.Context, id engine.VideoID, transcript string, kinds []engine.Kind) Result {
	res := Result{VideoID: id, RunID: uuid.NewString()}
	log := s.logger.With(slog.String("run_id", res.RunID), slog.String("video_id", id.String()))

	for _, kind := range engine.AllKinds {
		if !slices.Contains(kinds, kind) {
			continue
		}
		start := time.Now()
		out := s.runKind(ctx, id, transcript, kind)
		res.Outcomes = append(res.Outcomes, out)

		attrs := []any{
			slog.String("kind", string(kind)),
			slog.String("state", out.State.String()),
			slog.Bool("cached", out.Cached),
			slog.Duration("elapsed", time.Since(start)),
		}
		if out.State == Failed {
			engine.IncrSummaryFailures()
			log.Warn("summary failed", append(attrs, slog.Any("error", out.Err))...)
			continue
		}
		log.Info("summary ready", attrs...)
	}
	return res
}

// runKind drives one kind through NotStarted → [Generating →] Done|Failed.
func (s *Summarizer) runKind(ctx context.Context, id engine.VideoID, transcript string, kind engine.Kind) Outcome {
	out := Outcome{Kind: kind, State: NotStarted}
	fail := func(err error) Outcome {
		out.State = Failed
		out.Err = &engine.SummarizationError{Kind: kind, Cause: err}
		return out
	}

	rec, ok, err := s.store.GetSummary(ctx, id, kind)
	if err != nil {
		return fail(fmt.Errorf("store summary: %w", err))
	}
	if ok {
		engine.IncrSummaryCacheHits()
		out.State, out.Text, out.Cached = Done, rec.Text, true
		return out
	}

	out.State = Generating
	text, err := s.generate(ctx, kind, transcript)
	if err != nil {
		return fail(err)
	}
	out.Text = text

	err = s.store.InsertSummary(ctx, store.SummaryRecord{
		VideoID:   id,
		Kind:      kind,
		Text:      text,
		CreatedAt: s.now(),
	})
	if err != nil {
		return fail(fmt.Errorf("store summary: %w", err))
	}
	engine.IncrSummariesGenerated()
	out.State = Done
	return out
}

// generate runs one call for a single-chunk transcript, or one call per
// chunk followed by a reduce call over the ordered partial summaries.
func (s *Summarizer) generate(ctx context.Context, kind engine.Kind, transcript string) (string, error) {
	chunks, err := engine.Chunk(transcript, s.chunkChars)
	if err != nil {
		return "", err
	}
	if len(chunks) == 1 {
		return s.gen.Generate(ctx, engine.SummaryPrompt(kind, transcript))
	}

	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		p, err := s.gen.Generate(ctx, engine.PartialPrompt(kind, i+1, len(chunks), chunk))
		if err != nil {
			return "", fmt.Errorf("part %d/%d: %w", i+1, len(chunks), err)
		}
		partials = append(partials, p)
	}
	text, err := s.gen.Generate(ctx, engine.ReducePrompt(kind, partials))
	if err != nil {
		return "", fmt.Errorf("reduce %d parts: %w", len(partials), err)
	}
	return text, nil
}
