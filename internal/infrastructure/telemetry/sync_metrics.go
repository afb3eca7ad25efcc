package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("meter cannot be nil")

// Record outcomes reported to erpsync_records_total.
const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeSkipped  = "skipped"
	OutcomeDeferred = "deferred"
	OutcomeFailed   = "failed"
)

// SyncMetrics holds the counters emitted by sync runs.
type SyncMetrics struct {
	records     *Counter
	unresolved  *Counter
	images      *Counter
	runs        *Counter
	runDuration *Histogram
}

// NewSyncMetrics creates the sync counters on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var err error
	m := &SyncMetrics{}
	if m.records, err = NewCounter(meter, "erpsync_records_total",
		"Records processed by sync engines, by outcome", "{record}"); err != nil {
		return nil, err
	}
	if m.unresolved, err = NewCounter(meter, "erpsync_unresolved_references_total",
		"References that could not be translated through the identity ledger", "{reference}"); err != nil {
		return nil, err
	}
	if m.images, err = NewCounter(meter, "erpsync_images_stored_total",
		"Image payloads written to the binary store", "{image}"); err != nil {
		return nil, err
	}
	if m.runs, err = NewCounter(meter, "erpsync_runs_total",
		"Sync runs, by direction and status", "{run}"); err != nil {
		return nil, err
	}
	if m.runDuration, err = NewHistogram(meter, "erpsync_run_duration_seconds",
		"Duration of sync runs", "s", RunDurationBuckets...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRecords adds n records of one outcome for a descriptor. Zero counts are skipped.
func (m *SyncMetrics) RecordRecords(ctx context.Context, direction, remoteModel, outcome string, n int) {
	if n == 0 {
		return
	}
	m.records.Add(ctx, int64(n),
		AttrDirection.String(direction),
		AttrRemoteModel.String(remoteModel),
		AttrOutcome.String(outcome),
	)
}

// RecordUnresolved adds n unresolved references for a descriptor.
func (m *SyncMetrics) RecordUnresolved(ctx context.Context, direction, remoteModel string, n int) {
	if n == 0 {
		return
	}
	m.unresolved.Add(ctx, int64(n),
		AttrDirection.String(direction),
		AttrRemoteModel.String(remoteModel),
	)
}

// RecordImageStored counts one image payload written for a local model.
func (m *SyncMetrics) RecordImageStored(ctx context.Context, localModel string) {
	m.images.Inc(ctx, AttrLocalModel.String(localModel))
}

// RecordRun counts one finished run and its duration.
func (m *SyncMetrics) RecordRun(ctx context.Context, direction, status string, d time.Duration) {
	m.runs.Inc(ctx, AttrDirection.String(direction), AttrStatus.String(status))
	m.runDuration.RecordDuration(ctx, d, AttrDirection.String(direction))
}
