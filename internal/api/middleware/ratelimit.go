package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/quickgram/auth-service/internal/api/metrics"
)

// RateLimiterConfig holds the per-client token bucket settings.
type RateLimiterConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client IP. Idle buckets are
// evicted by a background loop until Stop is called.
type RateLimiter struct {
	config RateLimiterConfig
	logger zerolog.Logger

	mu       sync.RWMutex
	limiters map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(config RateLimiterConfig, logger zerolog.Logger) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		config:   config,
		logger:   logger,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware rejects requests over the client's budget with 429 and a
// Retry-After header.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if rl.limiterFor(ip).Allow() {
				return next(c)
			}

			metrics.RateLimitedTotal.WithLabelValues(c.Path()).Inc()
			rl.logger.Warn().
				Str("ip", ip).
				Str("path", c.Path()).
				Msg("rate limit exceeded")

			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rl.config.Rate)))
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		}
	}
}

// Len reports how many client buckets are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cl, ok := rl.limiters[key]; ok {
		cl.lastAccess = now
		return cl.limiter
	}

	cl := &clientLimiter{
		limiter:    rate.NewLimiter(rl.config.Rate, rl.config.Burst),
		lastAccess: now,
	}
	rl.limiters[key] = cl
	return cl.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops buckets idle for longer than twice the cleanup interval.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}

// retryAfterSeconds estimates the wait until one token is refilled.
func retryAfterSeconds(r rate.Limit) int {
	if r <= 0 || r == rate.Inf {
		return 1
	}
	secs := int(math.Ceil(1.0 / float64(r)))
	if secs < 1 {
		secs = 1
	}
	return secs
}
