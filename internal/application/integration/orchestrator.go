package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/logger"
	"github.com/erp/erpsync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Orchestrator runs the engines over the ordered descriptor lists.
// There is no cross-descriptor transaction: an interrupted run is resumed by
// running the whole batch again.
type Orchestrator struct {
	connector integration.Connector
	catalog   integration.LocalCatalog
	batches   Batches
	inbound   *InboundEngine
	outbound  *OutboundEngine
	images    *ImageEngine
	logger    *zap.Logger
	metrics   MetricsRecorder
}

// OrchestratorConfig holds the collaborators of an Orchestrator
type OrchestratorConfig struct {
	Connector integration.Connector
	Catalog   integration.LocalCatalog
	Batches   Batches
	Inbound   *InboundEngine
	Outbound  *OutboundEngine
	Images    *ImageEngine
	Logger    *zap.Logger
	Metrics   MetricsRecorder
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		connector: cfg.Connector,
		catalog:   cfg.Catalog,
		batches:   cfg.Batches,
		inbound:   cfg.Inbound,
		outbound:  cfg.Outbound,
		images:    cfg.Images,
		logger:    logger,
		metrics:   metricsOrNoop(cfg.Metrics),
	}
}

// Validate binds every descriptor of every list against the local catalog
func (o *Orchestrator) Validate() error {
	for _, list := range [][]*integration.ModelMapping{o.batches.Inbound, o.batches.Images, o.batches.Outbound} {
		if _, err := BindAll(list, o.catalog); err != nil {
			return err
		}
	}
	return nil
}

// SyncInbound pulls the inbound list in declared order, then the image list
func (o *Orchestrator) SyncInbound(ctx context.Context, company integration.Company) (*BatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "erpsync", "sync_inbound",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, company.ID.String()),
	)
	defer span.End()

	batch := &BatchResult{
		CompanyID: company.ID.String(),
		Direction: integration.SyncDirectionInbound,
		StartedAt: time.Now(),
		TraceID:   telemetry.GetTraceID(ctx),
	}
	err := o.syncInbound(ctx, company, batch)
	o.finish(ctx, batch, err)
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return batch, err
}

func (o *Orchestrator) syncInbound(ctx context.Context, company integration.Company, batch *BatchResult) error {
	plans, err := BindAll(o.batches.Inbound, o.catalog)
	if err != nil {
		return err
	}
	imagePlans, err := BindAll(o.batches.Images, o.catalog)
	if err != nil {
		return err
	}

	remote, err := o.connect(ctx, company)
	if err != nil {
		return err
	}

	for _, plan := range plans {
		res, err := o.inbound.Sync(ctx, company, remote, plan)
		batch.Models = append(batch.Models, res)
		if err != nil {
			return fmt.Errorf("inbound %s: %w", plan.Name(), err)
		}
	}
	for _, plan := range imagePlans {
		res, err := o.images.Sync(ctx, company, remote, plan)
		batch.Images = append(batch.Images, res)
		if err != nil {
			return fmt.Errorf("images %s: %w", plan.Name(), err)
		}
	}
	return nil
}

// SyncOutbound pushes the outbound list in declared order
func (o *Orchestrator) SyncOutbound(ctx context.Context, company integration.Company) (*BatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "erpsync", "sync_outbound",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, company.ID.String()),
	)
	defer span.End()

	batch := &BatchResult{
		CompanyID: company.ID.String(),
		Direction: integration.SyncDirectionOutbound,
		StartedAt: time.Now(),
		TraceID:   telemetry.GetTraceID(ctx),
	}
	err := o.syncOutbound(ctx, company, batch)
	o.finish(ctx, batch, err)
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return batch, err
}

func (o *Orchestrator) syncOutbound(ctx context.Context, company integration.Company, batch *BatchResult) error {
	plans, err := BindAll(o.batches.Outbound, o.catalog)
	if err != nil {
		return err
	}

	remote, err := o.connect(ctx, company)
	if err != nil {
		return err
	}

	for _, plan := range plans {
		res, err := o.outbound.Sync(ctx, company, remote, plan)
		batch.Models = append(batch.Models, res)
		if err != nil {
			return fmt.Errorf("outbound %s: %w", plan.Name(), err)
		}
	}
	return nil
}

// connect opens a session for one company; it is never reused for another company
func (o *Orchestrator) connect(ctx context.Context, company integration.Company) (integration.RemoteClient, error) {
	if !company.HasRemote() {
		return nil, fmt.Errorf("%w: company %s has no connection URL", integration.ErrConnection, company.Slug)
	}
	return o.connector.Connect(ctx, company.ConnectionURL)
}

func (o *Orchestrator) finish(ctx context.Context, batch *BatchResult, err error) {
	batch.FinishedAt = time.Now()
	status := batch.Status()
	if err != nil {
		status = "FAILED"
	}
	o.metrics.RecordRun(ctx, batch.Direction, status, batch.Duration())

	fields := []zap.Field{
		zap.String("tenant_id", batch.CompanyID),
		zap.String("status", status),
		zap.Int("models", len(batch.Models)),
		zap.Int("failed_records", batch.Failed()),
		zap.Duration("duration", batch.Duration()),
	}
	log := logger.WithLogger(ctx, logger.FromContextOr(ctx, o.logger))
	if logger.GetDirection(ctx) == "" {
		log = log.With(zap.String("direction", batch.Direction.String()))
	}
	if err != nil {
		log.Error("Sync run aborted", append(fields, zap.Error(err))...)
		return
	}
	log.Info("Sync run completed", fields...)
}
