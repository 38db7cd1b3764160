package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/config"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/logger"
)

// Store is a keyed expiring store for opaque serialized payloads. Transport
// failures never surface to callers: a failed Get is a miss, a failed Set is a
// dropped write. The system degrades to "always fetch live" rather than fail.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type RedisStore struct {
	c      *redis.Client
	logger logger.Logger
}

// NewRedisStore connects to redis and pings it once. Connectivity loss at
// startup is the one fatal cache condition: the process must not serve traffic
// with no cache backing.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, logger logger.Logger) (*RedisStore, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: can't connect to redis at %s", err, cfg.Addr)
	}

	return &RedisStore{
		c:      c,
		logger: logger,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.c.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warnf("%s: can't get cached data for key %s", err, key)
		}
		return nil, false
	}
	return b, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := s.c.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warnf("%s: can't set cached data for key %s", err, key)
	}
}

func (s *RedisStore) Close() error {
	return s.c.Close()
}
