package summarize

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
)

const testID = engine.VideoID("dQw4w9WgXcQ")

// countingProvider returns fixed segments and counts calls.
type countingProvider struct {
	segs  []engine.Segment
	err   error
	calls int
}

func (p *countingProvider) FetchCaptions(_ context.Context, _ engine.VideoID) ([]engine.Segment, error) {
	p.calls++
	return p.segs, p.err
}

// fakeGenerator answers prompts through respond and records them.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.respond == nil {
		return "summary of " + kindOf(prompt), nil
	}
	return g.respond(prompt)
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// kindOf recovers the summary kind from its prompt instructions.
func kindOf(prompt string) string {
	switch {
	case strings.Contains(prompt, "2-4 sentences"):
		return string(engine.KindConcise)
	case strings.Contains(prompt, "several paragraphs"):
		return string(engine.KindDetailed)
	case strings.Contains(prompt, "bullet list"):
		return string(engine.KindKeyPoints)
	case strings.Contains(prompt, "descriptive title"):
		return string(engine.KindTitle)
	}
	return "unknown"
}

var errBoom = errors.New("boom")

// faultyStore wraps Memory and fails selected operations.
type faultyStore struct {
	*store.Memory
	failGetSummary    bool
	failInsertSummary bool
	failGetTranscript bool
	failInsert        bool
}

func (f *faultyStore) GetSummary(ctx context.Context, id engine.VideoID, kind engine.Kind) (store.SummaryRecord, bool, error) {
	if f.failGetSummary {
		return store.SummaryRecord{}, false, errBoom
	}
	return f.Memory.GetSummary(ctx, id, kind)
}

func (f *faultyStore) InsertSummary(ctx context.Context, rec store.SummaryRecord) error {
	if f.failInsertSummary {
		return errBoom
	}
	return f.Memory.InsertSummary(ctx, rec)
}

func (f *faultyStore) GetTranscript(ctx context.Context, id engine.VideoID) (store.TranscriptRecord, bool, error) {
	if f.failGetTranscript {
		return store.TranscriptRecord{}, false, errBoom
	}
	return f.Memory.GetTranscript(ctx, id)
}

func (f *faultyStore) InsertTranscript(ctx context.Context, rec store.TranscriptRecord) error {
	if f.failInsert {
		return errBoom
	}
	return f.Memory.InsertTranscript(ctx, rec)
}
