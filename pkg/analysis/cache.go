package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"glucolog/domain"
	"glucolog/internal/logging"
)

const DefaultCacheTTL = 24 * time.Hour

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedClient memoises successful text analyses and clarifications.
// Photos are passed through: their references are effectively unique.
type CachedClient struct {
	next   Client
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewCachedClient(next Client, cache Cache, ttl time.Duration, logger logging.Logger) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedClient) AnalyzeText(ctx context.Context, description string) (domain.TextAnalysis, error) {
	key := cacheKey("text", description)
	var cached domain.TextAnalysis
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	res, err := c.next.AnalyzeText(ctx, description)
	if err != nil {
		return res, err
	}
	c.store(ctx, key, res)
	return res, nil
}

func (c *CachedClient) AnalyzePhoto(ctx context.Context, imageRef string) (domain.PhotoAnalysis, error) {
	return c.next.AnalyzePhoto(ctx, imageRef)
}

func (c *CachedClient) Clarify(ctx context.Context, description string) ([]string, error) {
	key := cacheKey("clarify", description)
	var cached []string
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	res, err := c.next.Clarify(ctx, description)
	if err != nil {
		return res, err
	}
	c.store(ctx, key, res)
	return res, nil
}

func (c *CachedClient) load(ctx context.Context, key string, v interface{}) bool {
	b, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Debug(ctx, "analysis cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		c.logger.Debug(ctx, "analysis cache entry unreadable", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachedClient) store(ctx context.Context, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		c.logger.Debug(ctx, "analysis cache write failed", "key", key, "error", err)
	}
}

func cacheKey(kind, description string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(description)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "glucolog:analysis:" + kind + ":" + hex.EncodeToString(sum[:])
}
