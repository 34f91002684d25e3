package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		limiter := NewRateLimiterWithClock(5, time.Minute, clockwork.NewFakeClock())

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client1"))
	})

	t.Run("separate limits per client", func(t *testing.T) {
		limiter := NewRateLimiterWithClock(2, time.Minute, clockwork.NewFakeClock())

		assert.True(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientA"))
		assert.False(t, limiter.Allow("clientA"))

		assert.True(t, limiter.Allow("clientB"))
		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("refills over the window", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		limiter := NewRateLimiterWithClock(2, time.Minute, clock)

		assert.True(t, limiter.Allow("client3"))
		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))

		clock.Advance(31 * time.Second)
		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))

		clock.Advance(time.Minute)
		assert.Equal(t, 2, limiter.Remaining("client3"))
	})

	t.Run("remaining counts down", func(t *testing.T) {
		limiter := NewRateLimiterWithClock(5, time.Minute, clockwork.NewFakeClock())

		assert.Equal(t, 5, limiter.Remaining("newclient"))
		limiter.Allow("newclient")
		limiter.Allow("newclient")
		assert.Equal(t, 3, limiter.Remaining("newclient"))
	})

	t.Run("idle clients are swept", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		limiter := NewRateLimiterWithClock(1, time.Minute, clock)

		limiter.Allow("idle")
		clock.Advance(3 * time.Minute)
		limiter.Allow("active")

		limiter.mu.Lock()
		_, idle := limiter.clients["idle"]
		_, active := limiter.clients["active"]
		limiter.mu.Unlock()
		assert.False(t, idle)
		assert.True(t, active)
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		limiter := NewRateLimiterWithClock(100, time.Minute, clockwork.NewFakeClock())
		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0

		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("concurrent-client") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, 100, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiterWithClock(2, time.Minute, clockwork.NewFakeClock())
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), dto.ErrCodeRateLimited)
}

func TestRateLimitByKey(t *testing.T) {
	limiter := NewRateLimiterWithClock(1, time.Minute, clockwork.NewFakeClock())
	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-API-Key")
	}))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	send := func(key string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-API-Key", key)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("key-1"))
	assert.Equal(t, http.StatusTooManyRequests, send("key-1"))
	assert.Equal(t, http.StatusOK, send("key-2"))
}
