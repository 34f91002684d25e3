package cache

import (
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache drivers
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
	DriverNone   = "none"
)

// SummaryCacheFactory creates account summary caches based on configuration
type SummaryCacheFactory struct {
	cfg                   config.CacheConfig
	client                redis.UniversalClient
	logger                *zap.Logger
	clock                 clockwork.Clock
	allowInMemoryFallback bool
}

// SummaryCacheFactoryOption is a functional option for configuring the factory
type SummaryCacheFactoryOption func(*SummaryCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SummaryCacheFactoryOption {
	return func(f *SummaryCacheFactory) {
		f.logger = logger
	}
}

// WithRedisClient provides the shared Redis client
func WithRedisClient(client redis.UniversalClient) SummaryCacheFactoryOption {
	return func(f *SummaryCacheFactory) {
		f.client = client
	}
}

// WithClock sets the clock used by the in-memory cache
func WithClock(clock clockwork.Clock) SummaryCacheFactoryOption {
	return func(f *SummaryCacheFactory) {
		f.clock = clock
	}
}

// WithInMemoryFallback controls whether a redis driver without a client degrades to memory.
// Default is true.
func WithInMemoryFallback(allow bool) SummaryCacheFactoryOption {
	return func(f *SummaryCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSummaryCacheFactory creates a new factory
func NewSummaryCacheFactory(cfg config.CacheConfig, opts ...SummaryCacheFactoryOption) *SummaryCacheFactory {
	f := &SummaryCacheFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		clock:                 clockwork.NewRealClock(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the cache selected by cache.driver
func (f *SummaryCacheFactory) Create() (finance.AccountSummaryCache, error) {
	switch strings.ToLower(f.cfg.Driver) {
	case DriverRedis:
		if f.client != nil {
			f.logger.Info("Using Redis account summary cache", zap.Duration("ttl", f.cfg.SummaryTTL))
			return NewRedisSummaryCache(f.client, f.cfg.SummaryTTL, f.logger), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis summary cache requires a redis client")
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory summary cache. " +
			"Invalidations will not be shared across instances.")
		return NewInMemorySummaryCache(f.cfg.SummaryTTL, f.clock), nil
	case DriverMemory, "":
		f.logger.Info("Using in-memory account summary cache", zap.Duration("ttl", f.cfg.SummaryTTL))
		return NewInMemorySummaryCache(f.cfg.SummaryTTL, f.clock), nil
	case DriverNone:
		return NoopSummaryCache{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", f.cfg.Driver)
	}
}
