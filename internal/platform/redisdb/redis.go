package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func Connect(addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redisdb.Connect: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return client, nil
}

// LoginThrottle counts failed login attempts per key inside a sliding
// TTL window. All methods are single round trips.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

func (t *LoginThrottle) key(id string) string {
	return "login_attempts:" + id
}

// TooManyAttempts reports whether id has exhausted its attempts.
func (t *LoginThrottle) TooManyAttempts(ctx context.Context, id string) (bool, error) {
	count, err := t.client.Get(ctx, t.key(id)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("LoginThrottle.TooManyAttempts: %w", err)
	}
	return count >= t.maxAttempts, nil
}

// RecordFailure bumps the counter and refreshes the window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, id string) error {
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, t.key(id))
	pipe.Expire(ctx, t.key(id), t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("LoginThrottle.RecordFailure: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, id string) error {
	if err := t.client.Del(ctx, t.key(id)).Err(); err != nil {
		return fmt.Errorf("LoginThrottle.Reset: %w", err)
	}
	return nil
}
