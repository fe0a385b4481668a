// Package store persists transcripts and generated summaries.
//
// Every backend is insert-if-absent: inserting a key that already exists is a
// silent no-op, so the first stored record for a key is never overwritten.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

// TranscriptRecord is the cached plain-text transcript of one video or audio file.
type TranscriptRecord struct {
	VideoID    engine.VideoID    `json:"video_id"`
	SourceType engine.SourceType `json:"source_type,omitempty"`
	FullText   string            `json:"full_text"`
	FetchedAt  time.Time         `json:"fetched_at"`

	// Audio only.
	Filename        string `json:"filename,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// SummaryRecord is one generated text for a (video, kind) pair.
type SummaryRecord struct {
	VideoID   engine.VideoID `json:"video_id"`
	Kind      engine.Kind    `json:"kind"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"created_at"`
}

// VideoEntry is one row of the processed-videos listing.
type VideoEntry struct {
	VideoID         engine.VideoID
	SourceType      engine.SourceType
	Filename        string
	DurationSeconds int
	FetchedAt       time.Time
	Title           string        // empty until a title is generated
	Kinds           []engine.Kind // stored summary kinds in engine.AllKinds order
}

type TranscriptStore interface {
	GetTranscript(ctx context.Context, id engine.VideoID) (TranscriptRecord, bool, error)
	InsertTranscript(ctx context.Context, rec TranscriptRecord) error
}

type SummaryStore interface {
	GetSummary(ctx context.Context, id engine.VideoID, kind engine.Kind) (SummaryRecord, bool, error)
	InsertSummary(ctx context.Context, rec SummaryRecord) error
}

// Store is a full persistence backend.
type Store interface {
	TranscriptStore
	SummaryStore
	// ListVideos returns processed sources newest first, only those of
	// source when it is non-empty. See NormLimit for limit handling.
	ListVideos(ctx context.Context, limit int, source engine.SourceType) ([]VideoEntry, error)
	Close() error
}

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// NormLimit maps limit ≤ 0 to DefaultListLimit and caps it at MaxListLimit.
func NormLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}

// Open connects the backend selected by cfg.StoreDriver, behind an L1 cache
// when cfg.CacheMaxEntries > 0.
func Open(ctx context.Context, cfg engine.Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		s   Store
		err error
	)
	switch cfg.StoreDriver {
	case engine.DriverSQLite:
		s, err = NewSQLite(ctx, cfg.SQLitePath)
	case engine.DriverPostgres:
		s, err = NewPostgres(ctx, cfg.DatabaseURL, logger)
	case engine.DriverRedis:
		s, err = NewRedis(ctx, cfg.RedisURL, "")
	case engine.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, &engine.InvalidArgumentError{Name: "STORE_DRIVER", Reason: fmt.Sprintf("unknown driver %q", cfg.StoreDriver)}
	}
	if err != nil {
		return nil, err
	}
	if cfg.CacheMaxEntries > 0 {
		s = NewCached(s, cfg.CacheMaxEntries, cfg.CacheTTL, cfg.CacheCleanupInterval)
	}
	return s, nil
}

// prepareTranscript validates rec and fills a missing FetchedAt and SourceType.
func prepareTranscript(rec TranscriptRecord) (TranscriptRecord, error) {
	if rec.VideoID == "" {
		return rec, &engine.InvalidArgumentError{Name: "VideoID", Reason: "must not be empty"}
	}
	switch rec.SourceType {
	case engine.SourceYouTube, engine.SourceAudio:
	case "":
		rec.SourceType = sourceOf(rec.VideoID)
	default:
		return rec, &engine.InvalidArgumentError{Name: "SourceType", Reason: fmt.Sprintf("unknown source type %q", rec.SourceType)}
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now()
	}
	rec.FetchedAt = rec.FetchedAt.UTC()
	return rec, nil
}

// prepareSummary validates rec and stamps a missing CreatedAt.
func prepareSummary(rec SummaryRecord) (SummaryRecord, error) {
	if rec.VideoID == "" {
		return rec, &engine.InvalidArgumentError{Name: "VideoID", Reason: "must not be empty"}
	}
	if !rec.Kind.Valid() && rec.Kind != engine.KindTitle {
		return rec, &engine.InvalidArgumentError{Name: "Kind", Reason: fmt.Sprintf("unknown kind %q", rec.Kind)}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func sourceOf(id engine.VideoID) engine.SourceType {
	if id.IsAudio() {
		return engine.SourceAudio
	}
	return engine.SourceYouTube
}

// entryOf is the listing head of a transcript, without kinds.
func entryOf(t TranscriptRecord) VideoEntry {
	st := t.SourceType
	if st == "" {
		st = sourceOf(t.VideoID)
	}
	return VideoEntry{
		VideoID:         t.VideoID,
		SourceType:      st,
		Filename:        t.Filename,
		DurationSeconds: t.DurationSeconds,
		FetchedAt:       t.FetchedAt,
	}
}

// addKind records a stored kind on e; titles go to e.Title.
func (e *VideoEntry) addKind(kind engine.Kind, text string) {
	if kind == engine.KindTitle {
		e.Title = text
		return
	}
	if kind.Valid() && !slices.Contains(e.Kinds, kind) {
		e.Kinds = append(e.Kinds, kind)
	}
}

// sortKinds orders e.Kinds like engine.AllKinds.
func (e *VideoEntry) sortKinds() {
	slices.SortFunc(e.Kinds, func(a, b engine.Kind) int {
		return slices.Index(engine.AllKinds, a) - slices.Index(engine.AllKinds, b)
	})
}
