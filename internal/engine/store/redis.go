package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

// DefaultRedisPrefix namespaces every key written by the Redis store.
const DefaultRedisPrefix = "ytsum:"

// Redis is a Store on a Redis server. Records are JSON values written with
// SETNX; sorted sets index videos by fetch time and a set per video tracks
// its stored kinds. Each insert runs as one MULTI/EXEC with idempotent index
// writes (ZADD NX, SADD), so a record and its index entries land together and
// a repeated insert restores an index entry that is missing.
//
// Layout:
//
//	{prefix}transcript:{id}      JSON TranscriptRecord
//	{prefix}summary:{id}:{kind}  JSON SummaryRecord
//	{prefix}videos               ZSET id → fetched_at (unix ms)
//	{prefix}videos:{source}      ZSET id → fetched_at, per source type
//	{prefix}kinds:{id}           SET of kinds
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis connects to redisURL. An empty prefix selects DefaultRedisPrefix.
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{rdb: rdb, prefix: prefix}, nil
}

func (r *Redis) transcriptKey(id engine.VideoID) string { return r.prefix + "transcript:" + string(id) }
func (r *Redis) kindsKey(id engine.VideoID) string      { return r.prefix + "kinds:" + string(id) }
func (r *Redis) videosKey() string                      { return r.prefix + "videos" }

func (r *Redis) sourceKey(source engine.SourceType) string {
	return r.prefix + "videos:" + string(source)
}

func (r *Redis) summaryKey(id engine.VideoID, kind engine.Kind) string {
	return r.prefix + "summary:" + string(id) + ":" + string(kind)
}

// getJSON loads key into v; a missing key reports false.
func (r *Redis) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) GetTranscript(ctx context.Context, id engine.VideoID) (TranscriptRecord, bool, error) {
	var rec TranscriptRecord
	ok, err := r.getJSON(ctx, r.transcriptKey(id), &rec)
	if err != nil {
		return TranscriptRecord{}, false, fmt.Errorf("redis: get transcript: %w", err)
	}
	return rec, ok, nil
}

func (r *Redis) InsertTranscript(ctx context.Context, rec TranscriptRecord) error {
	rec, err := prepareTranscript(rec)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: encode transcript: %w", err)
	}
	var setCmd *redis.BoolCmd
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		setCmd = pipe.SetNX(ctx, r.transcriptKey(rec.VideoID), data, 0)
		z := redis.Z{Score: float64(rec.FetchedAt.UnixMilli()), Member: string(rec.VideoID)}
		pipe.ZAddNX(ctx, r.videosKey(), z)
		pipe.ZAddNX(ctx, r.sourceKey(rec.SourceType), z)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: insert transcript: %w", err)
	}
	if !setCmd.Val() {
		return r.reindexTranscript(ctx, rec.VideoID)
	}
	return nil
}

// reindexTranscript points the index entries of an already stored transcript
// at its own fetch time, replacing any placed by a losing insert.
func (r *Redis) reindexTranscript(ctx context.Context, id engine.VideoID) error {
	var stored TranscriptRecord
	ok, err := r.getJSON(ctx, r.transcriptKey(id), &stored)
	if err != nil {
		return fmt.Errorf("redis: index transcript: %w", err)
	}
	if !ok {
		return nil
	}
	if stored.SourceType == "" {
		stored.SourceType = sourceOf(id)
	}
	z := redis.Z{Score: float64(stored.FetchedAt.UnixMilli()), Member: string(id)}
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, r.videosKey(), z)
		pipe.ZAdd(ctx, r.sourceKey(stored.SourceType), z)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: index transcript: %w", err)
	}
	return nil
}

func (r *Redis) GetSummary(ctx context.Context, id engine.VideoID, kind engine.Kind) (SummaryRecord, bool, error) {
	var rec SummaryRecord
	ok, err := r.getJSON(ctx, r.summaryKey(id, kind), &rec)
	if err != nil {
		return SummaryRecord{}, false, fmt.Errorf("redis: get summary: %w", err)
	}
	return rec, ok, nil
}

func (r *Redis) InsertSummary(ctx context.Context, rec SummaryRecord) error {
	rec, err := prepareSummary(rec)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: encode summary: %w", err)
	}
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, r.summaryKey(rec.VideoID, rec.Kind), data, 0)
		pipe.SAdd(ctx, r.kindsKey(rec.VideoID), string(rec.Kind))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: insert summary: %w", err)
	}
	return nil
}

func (r *Redis) ListVideos(ctx context.Context, limit int, source engine.SourceType) ([]VideoEntry, error) {
	index := r.videosKey()
	if source != "" {
		index = r.sourceKey(source)
	}
	ids, err := r.rdb.ZRevRangeWithScores(ctx, index, 0, int64(NormLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list videos: %w", err)
	}

	entries := make([]VideoEntry, 0, len(ids))
	for _, z := range ids {
		id, _ := z.Member.(string)
		e := VideoEntry{
			VideoID:    engine.VideoID(id),
			SourceType: sourceOf(engine.VideoID(id)),
			FetchedAt:  time.UnixMilli(int64(z.Score)).UTC(),
		}

		var t TranscriptRecord
		if ok, err := r.getJSON(ctx, r.transcriptKey(e.VideoID), &t); err != nil {
			return nil, fmt.Errorf("redis: list videos: %w", err)
		} else if ok {
			e = entryOf(t)
		}

		kinds, err := r.rdb.SMembers(ctx, r.kindsKey(e.VideoID)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: list kinds: %w", err)
		}
		for _, k := range kinds {
			kind := engine.Kind(k)
			if kind != engine.KindTitle {
				e.addKind(kind, "")
				continue
			}
			var title SummaryRecord
			if ok, err := r.getJSON(ctx, r.summaryKey(e.VideoID, kind), &title); err != nil {
				return nil, fmt.Errorf("redis: list title: %w", err)
			} else if ok {
				e.Title = title.Text
			}
		}
		e.sortKinds()
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
