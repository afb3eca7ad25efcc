package integration

import (
	"context"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/telemetry"
)

// MetricsRecorder receives sync counters.
type MetricsRecorder interface {
	RecordModel(ctx context.Context, direction integration.SyncDirection, result ModelResult)
	RecordImageStored(ctx context.Context, localModel string)
	RecordRun(ctx context.Context, direction integration.SyncDirection, status string, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordModel(context.Context, integration.SyncDirection, ModelResult) {}
func (noopMetrics) RecordImageStored(context.Context, string)                           {}
func (noopMetrics) RecordRun(context.Context, integration.SyncDirection, string, time.Duration) {
}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

// TelemetryMetrics reports sync results through OpenTelemetry counters.
type TelemetryMetrics struct {
	metrics *telemetry.SyncMetrics
}

// NewTelemetryMetrics adapts m to MetricsRecorder
func NewTelemetryMetrics(m *telemetry.SyncMetrics) *TelemetryMetrics {
	return &TelemetryMetrics{metrics: m}
}

// RecordModel implements MetricsRecorder
func (t *TelemetryMetrics) RecordModel(ctx context.Context, direction integration.SyncDirection, result ModelResult) {
	dir := direction.String()
	t.metrics.RecordRecords(ctx, dir, result.RemoteModel, telemetry.OutcomeCreated, result.Created)
	t.metrics.RecordRecords(ctx, dir, result.RemoteModel, telemetry.OutcomeUpdated, result.Updated)
	t.metrics.RecordRecords(ctx, dir, result.RemoteModel, telemetry.OutcomeSkipped, result.Skipped)
	t.metrics.RecordRecords(ctx, dir, result.RemoteModel, telemetry.OutcomeDeferred, result.Deferred)
	t.metrics.RecordRecords(ctx, dir, result.RemoteModel, telemetry.OutcomeFailed, result.Failed)
	t.metrics.RecordUnresolved(ctx, dir, result.RemoteModel, result.Unresolved)
}

// RecordImageStored implements MetricsRecorder
func (t *TelemetryMetrics) RecordImageStored(ctx context.Context, localModel string) {
	t.metrics.RecordImageStored(ctx, localModel)
}

// RecordRun implements MetricsRecorder
func (t *TelemetryMetrics) RecordRun(ctx context.Context, direction integration.SyncDirection, status string, d time.Duration) {
	t.metrics.RecordRun(ctx, direction.String(), status, d)
}
