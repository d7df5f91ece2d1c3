package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/orchestrator/internal/core/domain"
)

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// Cache stores analytics records per address with a TTL so repeated runs
// skip addresses collected recently.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a new Redis-backed analytics cache.
func NewCache(cfg Config, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func cacheKey(address string) string {
	return fmt.Sprintf("analytics:%s", address)
}

// Get returns the cached record for an address, if any.
func (c *Cache) Get(ctx context.Context, address string) (*domain.WalletAnalytics, bool, error) {
	val, err := c.rdb.Get(ctx, cacheKey(address)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get failed: %w", err)
	}

	var rec domain.WalletAnalytics
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return &rec, true, nil
}

// Set stores a record under its address with the cache TTL.
func (c *Cache) Set(ctx context.Context, rec *domain.WalletAnalytics) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(rec.Address), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}
