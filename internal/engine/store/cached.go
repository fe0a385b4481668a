package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

// Cached is an in-memory L1 in front of a persistent Store.
// Stored records never change, so a hit is always current; misses are not cached.
type Cached struct {
	Store

	l1         sync.Map // key → *cacheEntry
	ttl        time.Duration
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	value     any // TranscriptRecord or SummaryRecord
	expiresAt time.Time
}

// NewCached wraps inner with an L1 of at most maxEntries records, each kept
// for ttl. A cleanup goroutine drops expired entries every cleanupInterval
// until Close.
func NewCached(inner Store, maxEntries int, ttl, cleanupInterval time.Duration) *Cached {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Cached{
		Store:      inner,
		ttl:        ttl,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	go c.cleanupLoop(cleanupInterval)
	slog.Debug("store: L1 cache enabled", slog.Duration("ttl", ttl), slog.Int("max_entries", maxEntries))
	return c
}

func l1TranscriptKey(id engine.VideoID) string { return "t:" + string(id) }

func l1SummaryKey(id engine.VideoID, kind engine.Kind) string {
	return "s:" + string(id) + ":" + string(kind)
}

func (c *Cached) GetTranscript(ctx context.Context, id engine.VideoID) (TranscriptRecord, bool, error) {
	if rec, ok := load[TranscriptRecord](c, l1TranscriptKey(id)); ok {
		return rec, true, nil
	}
	rec, ok, err := c.Store.GetTranscript(ctx, id)
	if err == nil && ok {
		c.put(l1TranscriptKey(id), rec)
	}
	return rec, ok, err
}

// InsertTranscript writes through; the L1 is filled on the next read so it
// always holds the record that won insert-if-absent.
func (c *Cached) InsertTranscript(ctx context.Context, rec TranscriptRecord) error {
	return c.Store.InsertTranscript(ctx, rec)
}

func (c *Cached) GetSummary(ctx context.Context, id engine.VideoID, kind engine.Kind) (SummaryRecord, bool, error) {
	key := l1SummaryKey(id, kind)
	if rec, ok := load[SummaryRecord](c, key); ok {
		return rec, true, nil
	}
	rec, ok, err := c.Store.GetSummary(ctx, id, kind)
	if err == nil && ok {
		c.put(key, rec)
	}
	return rec, ok, err
}

func (c *Cached) InsertSummary(ctx context.Context, rec SummaryRecord) error {
	return c.Store.InsertSummary(ctx, rec)
}

// Stats returns L1 hit and miss counts.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close stops the cleanup loop and closes the inner store.
func (c *Cached) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return c.Store.Close()
}

func load[T any](c *Cached, key string) (T, bool) {
	var zero T
	val, ok := c.l1.Load(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	entry := val.(*cacheEntry)
	rec, ok := entry.value.(T)
	if !ok || time.Now().After(entry.expiresAt) {
		c.l1.Delete(key)
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return rec, true
}

func (c *Cached) put(key string, value any) {
	c.evictIfNeeded()
	c.l1.Store(key, &cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)})
}

// evictIfNeeded keeps the L1 below maxEntries: expired entries go first,
// then the oldest ones.
func (c *Cached) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}
	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if now.After(val.(*cacheEntry).expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		var oldestAt time.Time
		c.l1.Range(func(key, val any) bool {
			at := val.(*cacheEntry).expiresAt
			if oldestKey == nil || at.Before(oldestAt) {
				oldestKey, oldestAt = key, at
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

func (c *Cached) cleanupLoop(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.l1.Range(func(key, val any) bool {
				if now.After(val.(*cacheEntry).expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		}
	}
}
