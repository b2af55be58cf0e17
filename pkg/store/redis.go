package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linesd/az-fda/pkg/analysis"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long published runs stay in Redis.
const DefaultTTL = 24 * time.Hour

// RedisStore publishes runs to Redis.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a store on an existing client. A ttl <= 0 uses DefaultTTL.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		redis:  redisClient,
		ttl:    ttl,
		logger: log.With().Str("component", "redis-store").Logger(),
	}
}

// DialRedis connects to addr and checks it answers before returning a store.
func DialRedis(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(client, ttl), nil
}

// Save stores run under its ID and as the latest run for its query and kind.
func (s *RedisStore) Save(ctx context.Context, run *Run) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}

	data, err := json.Marshal(run)
	if err != nil {
		recordWrite(backendRedis, err)
		return fmt.Errorf("marshal run: %w", err)
	}

	latest := LatestKey{Query: run.Query, Kind: run.Kind}.String()
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, RunKey(run.ID), data, s.ttl)
		pipe.Set(ctx, latest, data, s.ttl)
		return nil
	})
	recordWrite(backendRedis, err)
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	s.logger.Debug().
		Str("run_id", run.ID).
		Str("key", latest).
		Dur("ttl", s.ttl).
		Msg("Published run")

	return nil
}

// Get retrieves a run by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*Run, error) {
	return s.load(ctx, RunKey(id))
}

// Latest retrieves the most recent run for a query and kind.
func (s *RedisStore) Latest(ctx context.Context, queryURL string, kind analysis.Kind) (*Run, error) {
	return s.load(ctx, LatestKey{Query: queryURL, Kind: kind}.String())
}

func (s *RedisStore) load(ctx context.Context, key string) (*Run, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", key, err)
	}
	return &run, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.redis.Close()
}
