package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hass/hass/internal/platform/auth"
)

// RateLimitConfig tunes the per-caller token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig returns the limits applied when none are configured.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// callerBucket is one caller's token bucket. Tokens refill continuously at
// the configured rate up to the burst ceiling.
type callerBucket struct {
	tokens   float64
	refilled time.Time
}

type limiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	buckets map[string]*callerBucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{cfg: cfg, buckets: make(map[string]*callerBucket)}
}

// take consumes one token for key. When the bucket is empty it reports the
// whole seconds to wait before a token becomes available.
func (l *limiter) take(key string) (bool, int) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &callerBucket{tokens: float64(l.cfg.BurstSize), refilled: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.refilled).Seconds() * l.cfg.RequestsPerSecond
	if ceiling := float64(l.cfg.BurstSize); b.tokens > ceiling {
		b.tokens = ceiling
	}
	b.refilled = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if l.cfg.RequestsPerSecond <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/l.cfg.RequestsPerSecond) + 1
}

// RateLimit applies a token bucket per caller. Authenticated staff are
// limited individually within their hospital; unauthenticated requests fall
// back to a bucket per client IP.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	lim := newLimiter(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := auth.UserIDFromContext(c.Request().Context())
			if caller == "" {
				caller = "ip:" + c.RealIP()
			}
			hospital, _ := c.Get("hospital_id").(string)
			key := hospital + "/" + caller

			ok, retryAfter := lim.take(key)
			c.Response().Header().Set("X-RateLimit-Limit", limitHeader)
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
