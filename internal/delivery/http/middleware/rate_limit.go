package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go-minimalapp/pkg/apperror"
	"go-minimalapp/pkg/logger"
	"go-minimalapp/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: client IP)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis
	KeyPrefix string
	// Whether to reject requests when Redis is unavailable
	FailClosed bool
	// Redis is optional; nil uses the in-memory limiter
	Redis *goredis.Client
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// ContactRateLimitConfig limits contact submissions per client IP
func ContactRateLimitConfig(perMinute int, client *goredis.Client) RateLimitConfig {
	return RateLimitConfig{
		Limit:      perMinute,
		Window:     time.Minute,
		KeyPrefix:  "rl:contact:",
		FailClosed: false,
		Redis:      client,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware uses Redis when configured, falling back to a token
// bucket per key held in memory.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.Limit <= 0 {
		config.Limit = 1
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	fallback := newLimiterStore(config.Limit, config.Window)

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)

		var allowed bool
		var remaining int
		var resetAt time.Time

		if config.Redis != nil {
			count, reset, err := checkRateLimitRedis(c.Request.Context(), config.Redis, fullKey, config)
			if err != nil {
				logger.Log.Warn("Rate limit backend unavailable", "error", err)
				if config.FailClosed {
					_ = c.Error(apperror.Unavailable("Service temporarily unavailable. Please try again.", err))
					c.Abort()
					return
				}
				allowed, remaining, resetAt = fallback.allow(fullKey, time.Now())
			} else {
				allowed = count <= config.Limit
				remaining = max(config.Limit-count, 0)
				resetAt = reset
			}
		} else {
			allowed, remaining, resetAt = fallback.allow(fullKey, time.Now())
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if !allowed {
			retryAfter := max(int(time.Until(resetAt).Seconds()), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			security.DefaultLogger().LogRateLimitTriggered(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString("RequestID"),
				c.FullPath(),
			)

			_ = c.Error(apperror.TooManyRequests("Rate limit exceeded. Please try again later."))
			c.Abort()
			return
		}

		c.Next()
	}
}

func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())

	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one token bucket per key; idle buckets are dropped
type limiterStore struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	limit     int
	window    time.Duration
	lastSweep time.Time
}

func newLimiterStore(limit int, window time.Duration) *limiterStore {
	return &limiterStore{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		window:  window,
	}
}

func (s *limiterStore) allow(key string, now time.Time) (bool, int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(s.window/time.Duration(s.limit)), s.limit),
		}
		s.entries[key] = entry
	}
	entry.lastSeen = now

	if now.Sub(s.lastSweep) > 5*time.Minute {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > s.window {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}

	allowed := entry.limiter.AllowN(now, 1)
	tokens := entry.limiter.TokensAt(now)
	remaining := max(int(tokens), 0)

	// time until the bucket is full again
	missing := float64(s.limit) - tokens
	resetAt := now.Add(time.Duration(missing * float64(s.window) / float64(s.limit)))

	return allowed, remaining, resetAt
}
