package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const standingsPrefix = "standings:"

// StandingsCache хранит вычисленные таблицы турнира до следующего изменения.
type StandingsCache interface {
	Get(ctx context.Context, tournamentID string, dst interface{}) (bool, error)
	Set(ctx context.Context, tournamentID string, value interface{}) error
	Invalidate(ctx context.Context, tournamentID string) error
}

type redisStandingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect parses a redis:// or rediss:// URL and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisStandingsCache(client *redis.Client, ttl time.Duration) StandingsCache {
	return &redisStandingsCache{client: client, ttl: ttl}
}

func Key(tournamentID string) string {
	return standingsPrefix + tournamentID
}

func (c *redisStandingsCache) Get(ctx context.Context, tournamentID string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, Key(tournamentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", Key(tournamentID), err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached standings: %w", err)
	}
	return true, nil
}

func (c *redisStandingsCache) Set(ctx context.Context, tournamentID string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode standings: %w", err)
	}
	return c.client.Set(ctx, Key(tournamentID), raw, c.ttl).Err()
}

func (c *redisStandingsCache) Invalidate(ctx context.Context, tournamentID string) error {
	return c.client.Del(ctx, Key(tournamentID)).Err()
}

type noopStandingsCache struct{}

// NewNoop is used when REDIS_URL is not configured.
func NewNoop() StandingsCache {
	return noopStandingsCache{}
}

func (noopStandingsCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopStandingsCache) Set(context.Context, string, interface{}) error         { return nil }
func (noopStandingsCache) Invalidate(context.Context, string) error               { return nil }
