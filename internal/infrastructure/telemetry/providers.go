package telemetry

import (
	"context"
	"errors"

	"github.com/erp/erpsync/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Providers bundles the trace, metric and log providers and the profiler
// started for one process.
type Providers struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	Metrics  *SyncMetrics
	Logger   *zap.Logger // bridged to OTLP when telemetry is enabled
}

// Setup starts every telemetry provider configured in cfg. On failure the
// providers started so far are shut down.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logLevel zapcore.Level, logger *zap.Logger) (*Providers, error) {
	otelCfg := FromSettings(cfg)
	p := &Providers{Logger: logger}

	var err error
	if p.Tracer, err = NewTracerProvider(ctx, otelCfg, logger); err != nil {
		return nil, err
	}
	if p.Meter, err = NewMeterProvider(ctx, otelCfg, logger); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	if p.Logs, err = NewLoggerProvider(ctx, otelCfg, logger); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	if p.Profiler, err = NewProfiler(ProfilerFromSettings(cfg), logger); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	if p.Profiler.IsEnabled() {
		p.Tracer.EnableSpanProfiles()
	}
	if p.Metrics, err = NewSyncMetrics(p.Meter.Meter(TracerName)); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	p.Logger = p.Logs.Bridge(logger, logLevel)
	return p, nil
}

// Shutdown stops every started provider, flushing pending telemetry.
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
