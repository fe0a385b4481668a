package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

type summaryKey struct {
	id   engine.VideoID
	kind engine.Kind
}

// Memory is a process-local Store, used in tests and with STORE_DRIVER=memory.
type Memory struct {
	mu          sync.RWMutex
	transcripts map[engine.VideoID]TranscriptRecord
	summaries   map[summaryKey]SummaryRecord
}

func NewMemory() *Memory {
	return &Memory{
		transcripts: make(map[engine.VideoID]TranscriptRecord),
		summaries:   make(map[summaryKey]SummaryRecord),
	}
}

func (m *Memory) GetTranscript(_ context.Context, id engine.VideoID) (TranscriptRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.transcripts[id]
	return rec, ok, nil
}

func (m *Memory) InsertTranscript(_ context.Context, rec TranscriptRecord) error {
	rec, err := prepareTranscript(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transcripts[rec.VideoID]; !ok {
		m.transcripts[rec.VideoID] = rec
	}
	return nil
}

func (m *Memory) GetSummary(_ context.Context, id engine.VideoID, kind engine.Kind) (SummaryRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.summaries[summaryKey{id, kind}]
	return rec, ok, nil
}

func (m *Memory) InsertSummary(_ context.Context, rec SummaryRecord) error {
	rec, err := prepareSummary(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := summaryKey{rec.VideoID, rec.Kind}
	if _, ok := m.summaries[key]; !ok {
		m.summaries[key] = rec
	}
	return nil
}

func (m *Memory) ListVideos(_ context.Context, limit int, source engine.SourceType) ([]VideoEntry, error) {
	limit = NormLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]VideoEntry, 0, len(m.transcripts))
	for _, t := range m.transcripts {
		if source != "" && t.SourceType != source {
			continue
		}
		entries = append(entries, entryOf(t))
	}
	slices.SortFunc(entries, func(a, b VideoEntry) int {
		if c := b.FetchedAt.Compare(a.FetchedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.VideoID, b.VideoID)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		for _, kind := range append(slices.Clone(engine.AllKinds), engine.KindTitle) {
			if s, ok := m.summaries[summaryKey{entries[i].VideoID, kind}]; ok {
				entries[i].addKind(kind, s.Text)
			}
		}
	}
	return entries, nil
}

func (m *Memory) Close() error { return nil }
