package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter — лимитер с общими для всех реплик счётчиками в Redis.
// Окно реализовано как INCR + EXPIRE на первом инкременте: TTL ключа
// и есть остаток окна для retry-after.
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedis создаёт лимитер поверх Redis по URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "comments:rl:".
func NewRedis(redisURL, prefix string, max int64, window time.Duration) (*RedisLimiter, error) {
	if prefix == "" {
		prefix = "comments:rl:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ratelimit: redis ping: %w", err)
	}

	return &RedisLimiter{
		rdb:    rdb,
		prefix: prefix,
		max:    max,
		window: window,
	}, nil
}

func (l *RedisLimiter) key(addr string) string { return l.prefix + addr }

// Allow атомарно инкрементирует счётчик адреса.
// EXPIRE выставляется только на первом инкременте, чтобы окно не «ехало».
func (l *RedisLimiter) Allow(ctx context.Context, addr string) (Decision, error) {
	key := l.key(addr)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: incr: %w", err)
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("ratelimit: expire: %w", err)
		}
	}

	if count > l.max {
		ttl, err := l.rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}

		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}

	return Decision{Allowed: true}, nil
}

func (l *RedisLimiter) Close() error {
	return l.rdb.Close()
}
