package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"travelapproval/internal/logger"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether another request for key fits in the budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// MemoryRateLimiter is a token bucket per key, used when no redis is configured.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

type bucket struct {
	lim *rate.Limiter
	ts  time.Time
}

// NewMemoryRateLimiter allows perMinute requests per key per minute.
func NewMemoryRateLimiter(perMinute int) *MemoryRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &MemoryRateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		ttl:     5 * time.Minute,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > l.ttl {
		for k, b := range l.buckets {
			if now.Sub(b.ts) > l.ttl {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.ts = now
	return b.lim.Allow()
}

// RedisRateLimiter keeps a sliding window per key in a sorted set so the
// budget is shared across instances.
type RedisRateLimiter struct {
	redis     *redis.Client
	keyPrefix string
	requests  int
	window    time.Duration
}

func NewRedisRateLimiter(client *redis.Client, keyPrefix string, perMinute int) *RedisRateLimiter {
	return &RedisRateLimiter{
		redis:     client,
		keyPrefix: keyPrefix,
		requests:  perMinute,
		window:    time.Minute,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	now := time.Now()
	windowKey := fmt.Sprintf("%s:ratelimit:%s", l.keyPrefix, key)

	pipe := l.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, windowKey, "0", strconv.FormatInt(now.Add(-l.window).UnixNano(), 10))
	card := pipe.ZCard(ctx, windowKey)
	pipe.ZAdd(ctx, windowKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, windowKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open: an unavailable redis must not lock users out.
		logger.Get().WithError(err).Warn("rate limiter unavailable")
		return true
	}

	return card.Val() < int64(l.requests)
}

// RateLimit rejects requests over the limiter's budget keyed by client IP.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + ":" + c.ClientIP()
		if !limiter.Allow(c.Request.Context(), key) {
			response.Abort(c, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}
