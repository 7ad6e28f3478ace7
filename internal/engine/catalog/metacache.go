package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CourseMeta is the opportunistically cached display metadata for a course.
// Never consulted for correctness; staleness within the TTL is fine.
type CourseMeta struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// MetaCache is a 2-tier course-metadata cache keyed by slug: L1 in-memory,
// optional L2 Redis surviving restarts. Built and injected explicitly; no
// package-level state.
type MetaCache struct {
	l1         sync.Map // slug → *metaEntry
	rdb        *redis.Client
	ttl        time.Duration
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once
}

type metaEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMetaCache builds the cache. redisURL may be empty to run L1-only.
func NewMetaCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) *MetaCache {
	c := &MetaCache{ttl: ttl, maxEntries: maxEntries, stop: make(chan struct{})}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("metacache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("metacache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("metacache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	go c.cleanupLoop(cleanupInterval)
	return c
}

// Stop terminates the cleanup goroutine.
func (c *MetaCache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func cacheKey(slug string) string {
	return "js:meta:" + slug
}

// Get tries L1, then L2. On L2 hit, repopulates L1.
func (c *MetaCache) Get(ctx context.Context, slug string) (CourseMeta, bool) {
	if val, ok := c.l1.Load(slug); ok {
		entry := val.(*metaEntry)
		if time.Now().Before(entry.expiresAt) {
			var m CourseMeta
			if json.Unmarshal(entry.data, &m) == nil {
				return m, true
			}
		}
		c.l1.Delete(slug) // expired or corrupt
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, cacheKey(slug)).Bytes()
		if err == nil {
			var m CourseMeta
			if json.Unmarshal(data, &m) == nil {
				c.l1.Store(slug, &metaEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
				return m, true
			}
		}
	}

	return CourseMeta{}, false
}

// Set stores metadata in both tiers.
func (c *MetaCache) Set(ctx context.Context, slug string, m CourseMeta) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}

	c.evictIfNeeded()
	c.l1.Store(slug, &metaEntry{data: data, expiresAt: time.Now().Add(c.ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, cacheKey(slug), data, c.ttl).Err(); err != nil {
			slog.Debug("metacache: L2 set failed", slog.Any("error", err))
		}
	}
}

// evictIfNeeded removes expired entries, then oldest, when L1 exceeds
// maxEntries.
func (c *MetaCache) evictIfNeeded() {
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
		if entry, ok := val.(*metaEntry); ok && now.After(entry.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(time.Hour)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*metaEntry); ok && entry.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

func (c *MetaCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.l1.Range(func(key, val any) bool {
				if entry, ok := val.(*metaEntry); ok && now.After(entry.expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		case <-c.stop:
			return
		}
	}
}
