package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func testSummary() *finance.AccountSummary {
	return &finance.AccountSummary{
		CustomerID:    uuid.New(),
		CustomerName:  "Acme",
		TotalInvoiced: decimal.NewFromInt(500),
		TotalPaid:     decimal.NewFromInt(200),
		InvoiceCount:  2,
	}
}

func TestInMemorySummaryCache_MissThenHit(t *testing.T) {
	c := NewInMemorySummaryCache(time.Minute, clockwork.NewFakeClock())
	ctx := context.Background()
	s := testSummary()

	got, err := c.Get(ctx, s.CustomerID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, s))

	got, err = c.Get(ctx, s.CustomerID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.CustomerName)
	assert.True(t, got.TotalInvoiced.Equal(decimal.NewFromInt(500)))

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInMemorySummaryCache_ReturnsCopy(t *testing.T) {
	c := NewInMemorySummaryCache(time.Minute, nil)
	ctx := context.Background()
	s := testSummary()
	require.NoError(t, c.Set(ctx, s))

	got, err := c.Get(ctx, s.CustomerID)
	require.NoError(t, err)
	got.CustomerName = "changed"

	again, err := c.Get(ctx, s.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", again.CustomerName)
}

func TestInMemorySummaryCache_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewInMemorySummaryCache(10*time.Second, clock)
	ctx := context.Background()
	s := testSummary()
	require.NoError(t, c.Set(ctx, s))

	clock.Advance(9 * time.Second)
	got, err := c.Get(ctx, s.CustomerID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	clock.Advance(2 * time.Second)
	got, err = c.Get(ctx, s.CustomerID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemorySummaryCache_Invalidate(t *testing.T) {
	c := NewInMemorySummaryCache(time.Minute, nil)
	ctx := context.Background()
	s := testSummary()
	other := testSummary()
	require.NoError(t, c.Set(ctx, s))
	require.NoError(t, c.Set(ctx, other))

	require.NoError(t, c.Invalidate(ctx, s.CustomerID))

	got, err := c.Get(ctx, s.CustomerID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, other.CustomerID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestNoopSummaryCache(t *testing.T) {
	var c NoopSummaryCache
	ctx := context.Background()
	s := testSummary()

	require.NoError(t, c.Set(ctx, s))
	got, err := c.Get(ctx, s.CustomerID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx, s.CustomerID))
}

func TestSummaryCacheFactory_Create(t *testing.T) {
	tests := []struct {
		driver  string
		want    any
		wantErr bool
	}{
		{driver: "memory", want: &InMemorySummaryCache{}},
		{driver: "", want: &InMemorySummaryCache{}},
		{driver: "none", want: NoopSummaryCache{}},
		{driver: "memcached", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			f := NewSummaryCacheFactory(config.CacheConfig{Driver: tt.driver, SummaryTTL: time.Minute})
			c, err := f.Create()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, c)
		})
	}
}

func TestSummaryCacheFactory_RedisWithoutClient(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := NewSummaryCacheFactory(
		config.CacheConfig{Driver: "redis"},
		WithLogger(zap.New(core)),
	)

	c, err := f.Create()
	require.NoError(t, err)
	assert.IsType(t, &InMemorySummaryCache{}, c)
	assert.Equal(t, 1, logs.Len())

	strict := NewSummaryCacheFactory(config.CacheConfig{Driver: "redis"}, WithInMemoryFallback(false))
	_, err = strict.Create()
	assert.Error(t, err)
}
