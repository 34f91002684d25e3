package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultSummaryTTL is used when the configured TTL is zero
const DefaultSummaryTTL = 5 * time.Minute

// RedisSummaryCache implements finance.AccountSummaryCache using Redis
type RedisSummaryCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSummaryCache creates a summary cache on an existing client.
// The caller keeps ownership of the client.
func NewRedisSummaryCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisSummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSummaryCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisSummaryCache) key(customerID uuid.UUID) string {
	return fmt.Sprintf("ledger:summary:%s", customerID)
}

// Get returns the cached summary or nil on a miss
func (c *RedisSummaryCache) Get(ctx context.Context, customerID uuid.UUID) (*finance.AccountSummary, error) {
	key := c.key(customerID)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary from cache: %w", err)
	}

	var summary finance.AccountSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		c.logger.Warn("Dropping corrupted summary cache entry",
			zap.String("key", key),
			zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, nil
	}
	return &summary, nil
}

// Set stores a summary for the configured TTL
func (c *RedisSummaryCache) Set(ctx context.Context, summary *finance.AccountSummary) error {
	if summary == nil {
		return nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key(summary.CustomerID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// Invalidate drops the customer's cached summary
func (c *RedisSummaryCache) Invalidate(ctx context.Context, customerID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(customerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary: %w", err)
	}
	return nil
}

var _ finance.AccountSummaryCache = (*RedisSummaryCache)(nil)

type summaryEntry struct {
	value     finance.AccountSummary
	expiresAt time.Time
}

// InMemorySummaryCache keeps summaries in process memory.
// Expired entries are dropped lazily on read.
type InMemorySummaryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]summaryEntry
	ttl     time.Duration
	clock   clockwork.Clock

	hits   int64
	misses int64
}

// NewInMemorySummaryCache creates an in-memory summary cache
func NewInMemorySummaryCache(ttl time.Duration, clock clockwork.Clock) *InMemorySummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &InMemorySummaryCache{
		entries: make(map[uuid.UUID]summaryEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns a copy of the cached summary or nil on a miss
func (c *InMemorySummaryCache) Get(_ context.Context, customerID uuid.UUID) (*finance.AccountSummary, error) {
	c.mu.RLock()
	entry, ok := c.entries[customerID]
	c.mu.RUnlock()

	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	if c.clock.Now().After(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.entries[customerID]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, customerID)
		}
		c.mu.Unlock()
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}

	atomic.AddInt64(&c.hits, 1)
	summary := entry.value
	return &summary, nil
}

// Set stores a copy of summary
func (c *InMemorySummaryCache) Set(_ context.Context, summary *finance.AccountSummary) error {
	if summary == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[summary.CustomerID] = summaryEntry{
		value:     *summary,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the customer's cached summary
func (c *InMemorySummaryCache) Invalidate(_ context.Context, customerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, customerID)
	return nil
}

// Stats returns hit and miss counters
func (c *InMemorySummaryCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

var _ finance.AccountSummaryCache = (*InMemorySummaryCache)(nil)

// NoopSummaryCache never stores anything
type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(context.Context, uuid.UUID) (*finance.AccountSummary, error) {
	return nil, nil
}

func (NoopSummaryCache) Set(context.Context, *finance.AccountSummary) error { return nil }

func (NoopSummaryCache) Invalidate(context.Context, uuid.UUID) error { return nil }

var _ finance.AccountSummaryCache = NoopSummaryCache{}
