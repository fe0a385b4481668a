package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

// Redis and Postgres backends need live servers; set TEST_REDIS_URL or
// TEST_DATABASE_URL to run them.

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	prefix := "ytsum-test:" + uuid.NewString() + ":"

	s, err := NewRedis(ctx, url, prefix)
	require.NoError(t, err)
	t.Cleanup(func() {
		keys, _ := s.rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			s.rdb.Del(ctx, keys...)
		}
		s.Close()
	})

	testStoreContract(t, s)
}

func TestRedisStore_RepairsMissingIndex(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	prefix := "ytsum-test:" + uuid.NewString() + ":"

	s, err := NewRedis(ctx, url, prefix)
	require.NoError(t, err)
	t.Cleanup(func() {
		keys, _ := s.rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			s.rdb.Del(ctx, keys...)
		}
		s.Close()
	})

	// A record whose index writes never happened.
	const id = engine.VideoID("dQw4w9WgXcQ")
	fetched := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	data, err := json.Marshal(TranscriptRecord{VideoID: id, SourceType: engine.SourceYouTube, FullText: "orphan", FetchedAt: fetched})
	require.NoError(t, err)
	require.NoError(t, s.rdb.Set(ctx, s.transcriptKey(id), data, 0).Err())

	entries, err := s.ListVideos(ctx, 0, "")
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, s.InsertTranscript(ctx, TranscriptRecord{VideoID: id, FullText: "retry", FetchedAt: fetched.Add(time.Hour)}))

	for _, source := range []engine.SourceType{"", engine.SourceYouTube} {
		entries, err = s.ListVideos(ctx, 0, source)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, id, entries[0].VideoID)
		assert.WithinDuration(t, fetched, entries[0].FetchedAt, time.Millisecond)
	}
	rec, ok, err := s.GetTranscript(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "orphan", rec.FullText)

	// Summary kinds index is rebuilt the same way.
	require.NoError(t, s.rdb.Set(ctx, s.summaryKey(id, engine.KindConcise), `{"video_id":"dQw4w9WgXcQ","kind":"concise","text":"s"}`, 0).Err())
	require.NoError(t, s.InsertSummary(ctx, SummaryRecord{VideoID: id, Kind: engine.KindConcise, Text: "again"}))
	entries, err = s.ListVideos(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []engine.Kind{engine.KindConcise}, entries[0].Kinds)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := NewPostgres(ctx, dsn, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.pool.Exec(ctx, `TRUNCATE transcripts, summaries`)
	require.NoError(t, err)

	testStoreContract(t, s)
}

func TestNewRedis_BadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-redis-url", "")
	require.Error(t, err)
}
