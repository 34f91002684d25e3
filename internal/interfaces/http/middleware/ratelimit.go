package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key. A client may burst up
// to limit requests and regains them evenly over window.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	limit     int
	rate      rate.Limit
	expiry    time.Duration
	clock     clockwork.Clock
	lastSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(limit, window, clockwork.NewRealClock())
}

// NewRateLimiterWithClock creates a limiter driven by clock
func NewRateLimiterWithClock(limit int, window time.Duration, clock clockwork.Clock) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		clients:   make(map[string]*clientBucket),
		limit:     limit,
		rate:      rate.Limit(float64(limit) / window.Seconds()),
		expiry:    2 * window,
		clock:     clock,
		lastSweep: clock.Now(),
	}
}

// Allow reports whether a request from key may proceed and consumes a token if so
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	rl.sweep(now)
	return rl.bucket(key, now).limiter.AllowN(now, 1)
}

// Remaining returns the whole tokens left for key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]
	if !ok {
		return rl.limit
	}
	tokens := int(b.limiter.TokensAt(rl.clock.Now()))
	if tokens < 0 {
		return 0
	}
	return tokens
}

// Limit returns the burst size
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

func (rl *RateLimiter) bucket(key string, now time.Time) *clientBucket {
	b, ok := rl.clients[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.rate, rl.limit)}
		rl.clients[key] = b
	}
	b.lastSeen = now
	return b
}

// sweep drops idle clients; it runs at most once per expiry period
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.expiry {
		return
	}
	for key, b := range rl.clients {
		if now.Sub(b.lastSeen) > rl.expiry {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if !limiter.Allow(key) {
			c.Header("Retry-After", "1")
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.")
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
