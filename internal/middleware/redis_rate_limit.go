package middleware

import (
	"context"
	"math"
	"time"

	"github.com/pomegranateis/webfinalserver/internal/cache"
	"github.com/pomegranateis/webfinalserver/internal/logger"
	"go.uber.org/zap"
)

// windowCounter is the Redis operation the distributed limiter needs
type windowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisLimiter is a fixed-window limiter shared by every server instance.
// When Redis fails, requests are judged by an in-process limiter instead.
type RedisLimiter struct {
	store    windowCounter
	prefix   string
	config   RateLimitConfig
	fallback *RateLimiter
}

// NewRedisLimiter creates a distributed limiter. prefix namespaces its keys.
func NewRedisLimiter(store windowCounter, prefix string, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		store:    store,
		prefix:   prefix,
		config:   config,
		fallback: NewRateLimiter(config),
	}
}

// Take counts the request in the current window
func (rl *RedisLimiter) Take(ctx context.Context, key string) Decision {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, ttl, err := rl.store.IncrWindow(ctx, "rate_limit:"+rl.prefix+":"+key, rl.config.Window)
	if err != nil {
		logger.Log.Warn("Redis rate limit check failed, using in-memory limiter",
			logger.WithIP(key),
			zap.Error(err),
		)
		return rl.fallback.Take(ctx, key)
	}

	if count > int64(rl.config.Limit) {
		logger.Log.Warn("Rate limit exceeded",
			logger.WithIP(key),
			zap.Int("max_requests", rl.config.Limit),
			zap.Int64("current_requests", count),
		)
		return Decision{RetryAfter: max(1, int(math.Ceil(ttl.Seconds())))}
	}

	return Decision{Allowed: true, Remaining: rl.config.Limit - int(count)}
}

// Stop ends the fallback limiter's cleanup goroutine
func (rl *RedisLimiter) Stop() {
	rl.fallback.Stop()
}

// NewSmartLimiter uses Redis when a client is connected and an in-memory limiter otherwise
func NewSmartLimiter(redisClient *cache.RedisClient, prefix string, config RateLimitConfig) Limiter {
	if redisClient == nil {
		logger.Log.Info("Redis not configured, rate limiting in memory", zap.String("limiter", prefix))
		return NewRateLimiter(config)
	}
	return NewRedisLimiter(redisClient, prefix, config)
}
