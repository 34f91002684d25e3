// Package telemetry wires OpenTelemetry traces, metrics and logs.
// Every provider degrades to the global no-op implementation when disabled,
// so callers never need to check whether telemetry is on.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported as service.version on every signal
const ServiceVersion = "1.0.0"

// Providers groups the signal providers and the profiler so they share a lifecycle
type Providers struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
}

// Setup creates all providers from cfg. On failure the providers created so
// far are shut down before returning.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	p := &Providers{}

	tp, err := NewTracerProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	p.Tracer = tp

	mp, err := NewMeterProvider(ctx, cfg, logger)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	p.Meter = mp

	lp, err := NewLoggerProvider(ctx, cfg, logger)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	p.Logs = lp

	prof, err := NewProfiler(cfg, logger)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	p.Profiler = prof

	return p, nil
}

// Shutdown flushes and stops every provider, joining their errors
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Profiler != nil {
		errs = append(errs, p.Profiler.Stop())
	}
	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
