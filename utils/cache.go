package utils

import (
	"context"
	"strings"
	"sync"
	"time"

	"yatube-api/config"
)

// PageCache stores rendered response bytes keyed by request path+query. It is
// deliberately dumb: entries expire by TTL or an explicit Clear, never on
// writes, so readers may see a stale page until expiry.
type PageCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte, ttl time.Duration)
	Clear()
}

const pageCachePrefix = "cache:page:"

// NewPageCache picks the backend configured for the deployment.
func NewPageCache(cfg config.AppConfig) PageCache {
	if strings.EqualFold(cfg.PageCacheBackend, "memory") {
		return NewMemoryPageCache()
	}
	return &redisPageCache{}
}

// redisPageCache keeps cached pages in Redis so all processes share one view.
type redisPageCache struct{}

func (c *redisPageCache) Get(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := rc.Get(ctx, pageCachePrefix+key).Bytes()
	if err != nil {
		if Sugar != nil {
			Sugar.Debugf("page cache miss key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

func (c *redisPageCache) Set(key string, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Set(ctx, pageCachePrefix+key, body, ttl).Err(); err != nil {
		if Sugar != nil {
			Sugar.Warnf("page cache set failed key=%s err=%v", key, err)
		}
	}
}

// Clear deletes every cached page using SCAN, bounded to avoid long loops.
func (c *redisPageCache) Clear() {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ {
		keys, cur, err := rc.Scan(ctx, cursor, pageCachePrefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

// MemoryPageCache is a process-local PageCache for tests and redis-less deployments.
type MemoryPageCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryPageCache returns an empty in-memory page cache.
func NewMemoryPageCache() *MemoryPageCache {
	return &MemoryPageCache{entries: map[string]memoryEntry{}}
}

func (c *MemoryPageCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.body, true
}

func (c *MemoryPageCache) Set(key string, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	buf := make([]byte, len(body))
	copy(buf, body)
	c.mu.Lock()
	c.entries[key] = memoryEntry{body: buf, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *MemoryPageCache) Clear() {
	c.mu.Lock()
	c.entries = map[string]memoryEntry{}
	c.mu.Unlock()
}
