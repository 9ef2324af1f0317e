package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores vectors keyed by engine and text.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32) error
}

// CacheKey derives a stable key for text encoded by the named engine.
func CacheKey(engine, text string) string {
	sum := sha256.Sum256([]byte(text))
	return engine + ":" + hex.EncodeToString(sum[:])
}

// -----------------------------------------------------------------------------
// In-memory cache
// -----------------------------------------------------------------------------

type memoryEntry struct {
	vec       []float32
	expiresAt time.Time
}

// MemoryCache is a bounded in-process cache. When full, expired entries are
// dropped first, then an arbitrary entry is evicted.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries vectors for ttl.
// A zero ttl keeps entries until evicted.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry, maxEntries),
		ttl:     ttl,
		max:     maxEntries,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.vec, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, vec []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictLocked()
	}
	c.entries[key] = memoryEntry{vec: vec, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Len reports the number of cached vectors.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) evictLocked() {
	now := c.now()
	if c.ttl > 0 {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) < c.max {
			return
		}
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}

// -----------------------------------------------------------------------------
// Redis cache
// -----------------------------------------------------------------------------

const redisKeyPrefix = "doccheck:embedding:"

// RedisCache shares vectors between service replicas.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache wraps client. A zero ttl stores vectors without expiry.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get embedding: %w", err)
	}
	vec, err := decodeVector(raw)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, vec []float32) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, encodeVector(vec), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set embedding: %w", err)
	}
	return nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("corrupt embedding: %d bytes is not a multiple of 4", len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}
