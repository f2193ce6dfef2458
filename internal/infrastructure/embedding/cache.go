package embedding

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"

	"github.com/janhq/support-api/internal/infrastructure/metrics"
)

// Cache stores embeddings keyed by text digest.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, value []float32)
}

type CacheConfig struct {
	Type      string // "redis", "memory", "noop"
	KeyPrefix string
	MaxSize   int
	TTL       time.Duration
}

// NewCache builds the configured cache. A redis client is required only for the redis type.
func NewCache(cfg CacheConfig, client *redis.Client) (Cache, error) {
	switch cfg.Type {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis embedding cache requires a redis client")
		}
		return NewRedisCache(client, cfg.KeyPrefix, cfg.TTL), nil
	case "memory", "":
		return NewMemoryCache(cfg.MaxSize, cfg.TTL)
	case "noop":
		return NoopCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}

// RedisCache shares embeddings between replicas.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil || len(data)%4 != 0 {
		metrics.RecordCacheLookup("redis", false)
		return nil, false
	}
	metrics.RecordCacheLookup("redis", true)
	return decodeVector(data), true
}

// Set is best effort; a failed write only costs a future recomputation.
func (c *RedisCache) Set(ctx context.Context, key string, value []float32) {
	c.client.Set(ctx, c.prefix+key, encodeVector(value), c.ttl)
}

func encodeVector(v []float32) []byte {
	data := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	return data
}

func decodeVector(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}

// MemoryCache is a process local LRU with per entry expiry.
type MemoryCache struct {
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry struct {
	value     []float32
	expiresAt time.Time
}

func NewMemoryCache(maxSize int, ttl time.Duration) (*MemoryCache, error) {
	if maxSize <= 0 {
		maxSize = 10000
	}
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: cache, ttl: ttl, now: time.Now}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]float32, bool) {
	val, found := c.cache.Get(key)
	if !found {
		metrics.RecordCacheLookup("memory", false)
		return nil, false
	}

	entry := val.(cacheEntry)
	if c.ttl > 0 && c.now().After(entry.expiresAt) {
		c.cache.Remove(key)
		metrics.RecordCacheLookup("memory", false)
		return nil, false
	}
	metrics.RecordCacheLookup("memory", true)
	return entry.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value []float32) {
	c.cache.Add(key, cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)})
}

// NoopCache disables caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]float32, bool) { return nil, false }

func (NoopCache) Set(context.Context, string, []float32) {}
