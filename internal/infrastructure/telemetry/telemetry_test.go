package telemetry

import (
	"context"
	"testing"

	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()
	providers, err := Setup(ctx, config.TelemetryConfig{ServiceName: "ledgerbook"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, providers.Tracer.IsEnabled())
	assert.False(t, providers.Meter.IsEnabled())
	assert.False(t, providers.Logs.IsEnabled())

	// no-op meter still hands out working instruments
	m, err := NewLedgerMetrics(providers.Meter.Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.False(t, providers.Logs.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestSetup_SignalFlagsNeedMasterSwitch(t *testing.T) {
	providers, err := Setup(context.Background(), config.TelemetryConfig{
		MetricsEnabled: true,
		LogsEnabled:    true,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, providers.Meter.IsEnabled())
	assert.False(t, providers.Logs.IsEnabled())
}

func TestNilLoggerProviderZapCore(t *testing.T) {
	var lp *LoggerProvider
	assert.NotPanics(t, func() {
		core := lp.ZapCore(zapcore.DebugLevel)
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})
}

func TestLevelFilterCore(t *testing.T) {
	core := &levelFilterCore{Core: zapcore.NewNopCore(), minLevel: zapcore.WarnLevel}
	assert.False(t, core.Enabled(zapcore.InfoLevel))

	with := core.With([]zapcore.Field{zap.String("k", "v")})
	filtered, ok := with.(*levelFilterCore)
	require.True(t, ok)
	assert.Equal(t, zapcore.WarnLevel, filtered.minLevel)
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
	var _ sdktrace.Sampler = newSampler(0.5)
}
