// Package usage enforces a per-caller generation quota over a rolling
// window. The Redis implementation is shared-state safe across replicas; the
// no-op implementation backs single-tenant and test deployments.
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrQuotaExceeded is returned when a caller is over their allowance.
var ErrQuotaExceeded = errors.New("generation quota exceeded")

// Service answers whether a caller may run another generation. Allow is
// consulted before the orchestrator runs; Record spends a unit only after a
// successful outcome, so failed generations do not count against the caller.
type Service interface {
	// Allow reports whether key has quota left. Returns ErrQuotaExceeded
	// when the allowance is spent.
	Allow(ctx context.Context, key string) error

	// Record spends one unit of quota for key.
	Record(ctx context.Context, key string) error
}

// RedisService tracks quota in Redis with one counter per caller per window.
type RedisService struct {
	client *redis.Client
	limit  int
	window time.Duration
	log    *zap.Logger
}

// NewRedisService connects to Redis at addr and enforces limit per window.
func NewRedisService(addr string, db, limit int, window time.Duration, log *zap.Logger) *RedisService {
	if log == nil {
		log = zap.NewNop()
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &RedisService{
		client: redis.NewClient(&redis.Options{Addr: addr, DB: db}),
		limit:  limit,
		window: window,
		log:    log,
	}
}

// Allow implements Service.
func (s *RedisService) Allow(ctx context.Context, key string) error {
	count, err := s.client.Get(ctx, usageKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to read usage: %w", err)
	}
	if s.limit > 0 && count >= int64(s.limit) {
		s.log.Info("quota exceeded", zap.String("key", key), zap.Int64("count", count))
		return ErrQuotaExceeded
	}
	return nil
}

// Record implements Service.
func (s *RedisService) Record(ctx context.Context, key string) error {
	count, err := s.client.Incr(ctx, usageKey(key)).Result()
	if err != nil {
		return fmt.Errorf("failed to track usage: %w", err)
	}
	if count == 1 {
		// First hit in the window starts the clock.
		if err := s.client.Expire(ctx, usageKey(key), s.window).Err(); err != nil {
			s.log.Warn("failed to set usage key expiry", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func usageKey(key string) string { return "lessonforge:usage:" + key }

// Close releases the Redis connection.
func (s *RedisService) Close() error { return s.client.Close() }

// NoopService allows everything and counts nothing.
type NoopService struct{}

// Allow implements Service.
func (NoopService) Allow(context.Context, string) error { return nil }

// Record implements Service.
func (NoopService) Record(context.Context, string) error { return nil }
