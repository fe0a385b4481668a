package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

// testStoreContract exercises the behaviour every backend must share.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 123456000, time.UTC)

	const (
		idA = engine.VideoID("aaaaaaaaaaa")
		idB = engine.VideoID("bbbbbbbbbbb")
		idC = engine.VideoID("ccccccccccc")
	)

	t.Run("transcript miss", func(t *testing.T) {
		_, ok, err := s.GetTranscript(ctx, idA)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("transcript insert if absent", func(t *testing.T) {
		require.NoError(t, s.InsertTranscript(ctx, TranscriptRecord{VideoID: idA, FullText: "first text", FetchedAt: t0}))
		require.NoError(t, s.InsertTranscript(ctx, TranscriptRecord{VideoID: idA, FullText: "second text", FetchedAt: t0.Add(time.Hour)}))

		rec, ok, err := s.GetTranscript(ctx, idA)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, idA, rec.VideoID)
		assert.Equal(t, "first text", rec.FullText)
		assert.WithinDuration(t, t0, rec.FetchedAt, time.Millisecond)
	})

	t.Run("summary miss", func(t *testing.T) {
		_, ok, err := s.GetSummary(ctx, idA, engine.KindConcise)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("summary insert if absent", func(t *testing.T) {
		require.NoError(t, s.InsertSummary(ctx, SummaryRecord{VideoID: idA, Kind: engine.KindKeyPoints, Text: "- one", CreatedAt: t0}))
		require.NoError(t, s.InsertSummary(ctx, SummaryRecord{VideoID: idA, Kind: engine.KindKeyPoints, Text: "- two"}))

		rec, ok, err := s.GetSummary(ctx, idA, engine.KindKeyPoints)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "- one", rec.Text)
		assert.Equal(t, engine.KindKeyPoints, rec.Kind)
		assert.WithinDuration(t, t0, rec.CreatedAt, time.Millisecond)

		_, ok, err = s.GetSummary(ctx, idA, engine.KindDetailed)
		require.NoError(t, err)
		assert.False(t, ok, "kinds are keyed separately")
	})

	t.Run("invalid records", func(t *testing.T) {
		assert.ErrorIs(t, s.InsertTranscript(ctx, TranscriptRecord{FullText: "x"}), engine.ErrInvalidArgument)
		assert.ErrorIs(t, s.InsertSummary(ctx, SummaryRecord{Kind: engine.KindConcise}), engine.ErrInvalidArgument)
		assert.ErrorIs(t, s.InsertSummary(ctx, SummaryRecord{VideoID: idA, Kind: "haiku"}), engine.ErrInvalidArgument)
	})

	t.Run("list videos", func(t *testing.T) {
		require.NoError(t, s.InsertTranscript(ctx, TranscriptRecord{VideoID: idB, FullText: "b", FetchedAt: t0.Add(time.Minute)}))
		require.NoError(t, s.InsertTranscript(ctx, TranscriptRecord{VideoID: idC, FullText: "c", FetchedAt: t0.Add(2 * time.Minute)}))
		require.NoError(t, s.InsertSummary(ctx, SummaryRecord{VideoID: idA, Kind: engine.KindConcise, Text: "short"}))
		require.NoError(t, s.InsertSummary(ctx, SummaryRecord{VideoID: idA, Kind: engine.KindTitle, Text: "A Title"}))

		entries, err := s.ListVideos(ctx, 0, "")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []engine.VideoID{idC, idB, idA}, []engine.VideoID{entries[0].VideoID, entries[1].VideoID, entries[2].VideoID})

		a := entries[2]
		assert.Equal(t, []engine.Kind{engine.KindConcise, engine.KindKeyPoints}, a.Kinds)
		assert.Equal(t, "A Title", a.Title)
		assert.WithinDuration(t, t0, a.FetchedAt, time.Millisecond)
		assert.Empty(t, entries[0].Kinds)
		assert.Empty(t, entries[0].Title)

		entries, err = s.ListVideos(ctx, 2, "")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, idC, entries[0].VideoID)
	})

	t.Run("source types", func(t *testing.T) {
		audioID := engine.AudioSourceID([]byte("recording"))
		require.NoError(t, s.InsertTranscript(ctx, TranscriptRecord{
			VideoID:         audioID,
			SourceType:      engine.SourceAudio,
			FullText:        "spoken words",
			FetchedAt:       t0.Add(3 * time.Minute),
			Filename:        "standup.m4a",
			DurationSeconds: 754,
		}))

		rec, ok, err := s.GetTranscript(ctx, audioID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, engine.SourceAudio, rec.SourceType)
		assert.Equal(t, "standup.m4a", rec.Filename)
		assert.Equal(t, 754, rec.DurationSeconds)

		rec, ok, err = s.GetTranscript(ctx, idB)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, engine.SourceYouTube, rec.SourceType, "defaults to youtube")

		all, err := s.ListVideos(ctx, 0, "")
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, audioID, all[0].VideoID)

		audio, err := s.ListVideos(ctx, 0, engine.SourceAudio)
		require.NoError(t, err)
		require.Len(t, audio, 1)
		assert.Equal(t, audioID, audio[0].VideoID)
		assert.Equal(t, engine.SourceAudio, audio[0].SourceType)
		assert.Equal(t, "standup.m4a", audio[0].Filename)
		assert.Equal(t, 754, audio[0].DurationSeconds)

		videos, err := s.ListVideos(ctx, 0, engine.SourceYouTube)
		require.NoError(t, err)
		require.Len(t, videos, 3)
		for _, e := range videos {
			assert.Equal(t, engine.SourceYouTube, e.SourceType)
		}

		assert.ErrorIs(t, s.InsertTranscript(ctx, TranscriptRecord{VideoID: idA, SourceType: "vinyl", FullText: "x"}), engine.ErrInvalidArgument)
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "ytsum.db"))
	require.NoError(t, err)
	defer s.Close()
	testStoreContract(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ytsum.db")

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.InsertTranscript(ctx, TranscriptRecord{VideoID: "dQw4w9WgXcQ", FullText: "persisted"}))
	require.NoError(t, s.Close())

	s, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	rec, ok, err := s.GetTranscript(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", rec.FullText)
}

func TestSQLiteStore_UpgradesOldSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE transcripts (video_id TEXT PRIMARY KEY, full_text TEXT NOT NULL, fetched_at TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO transcripts VALUES ('dQw4w9WgXcQ', 'legacy', '2025-01-01T00:00:00.000000000Z')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	rec, ok, err := s.GetTranscript(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "legacy", rec.FullText)
	assert.Equal(t, engine.SourceYouTube, rec.SourceType)

	entries, err := s.ListVideos(ctx, 0, engine.SourceYouTube)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNormLimit(t *testing.T) {
	tests := map[int]int{-5: 10, 0: 10, 1: 1, 10: 10, 100: 100, 101: 100, 5000: 100}
	for in, want := range tests {
		assert.Equal(t, want, NormLimit(in), in)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, engine.Config{StoreDriver: engine.DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, engine.Config{StoreDriver: engine.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "o.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, engine.Config{
		StoreDriver:     engine.DriverSQLite,
		SQLitePath:      filepath.Join(t.TempDir(), "c.db"),
		CacheMaxEntries: 10,
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Cached{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, engine.Config{StoreDriver: "mongo"}, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}
