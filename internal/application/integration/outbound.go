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

// OutboundEngine pushes local records that have no ledger entry to the remote system.
// A record is pushed once; later local edits are not re-sent.
type OutboundEngine struct {
	scope   TransactionScope
	links   integration.RecordLinkRepository
	local   integration.LocalStore
	logger  *zap.Logger
	metrics MetricsRecorder
	now     func() time.Time
}

// NewOutboundEngine creates an OutboundEngine
func NewOutboundEngine(
	scope TransactionScope,
	links integration.RecordLinkRepository,
	local integration.LocalStore,
	logger *zap.Logger,
	metrics MetricsRecorder,
) *OutboundEngine {
	return &OutboundEngine{
		scope:   scope,
		links:   links,
		local:   local,
		logger:  logger,
		metrics: metricsOrNoop(metrics),
		now:     time.Now,
	}
}

// log returns the run logger carried by ctx, or the engine logger outside a run
func (e *OutboundEngine) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, logger.FromContextOr(ctx, e.logger))
}

// Sync runs one outbound pass for a bound descriptor
func (e *OutboundEngine) Sync(ctx context.Context, company integration.Company, remote integration.RemoteClient, plan *Plan) (ModelResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "erpsync", "outbound",
		telemetry.WithAttribute(telemetry.SpanAttrRemoteModel, plan.Mapping.RemoteModel),
		telemetry.WithAttribute(telemetry.SpanAttrLocalModel, plan.Mapping.LocalModel),
	)
	defer span.End()

	result := newModelResult(plan)
	mapping := plan.Mapping

	pending, err := e.local.ListUnlinked(ctx, plan.Schema, company.ID, mapping.RemoteModel)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("list unlinked %s: %w", mapping.LocalModel, err)
	}
	if len(pending) == 0 {
		return result, nil
	}

	targets, err := e.loadTargets(ctx, company, plan)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}

	for _, rec := range pending {
		payload, unresolved, err := e.payload(company, plan, rec, targets)
		if err != nil {
			result.Failed++
			e.log(ctx).Warn("Failed to build outbound payload",
				zap.String("local_model", mapping.LocalModel),
				zap.String("local_id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		result.Unresolved += unresolved
		if unresolved > 0 && mapping.Policy() == integration.UnresolvedDefer {
			result.Deferred++
			continue
		}

		if err := e.push(ctx, company, remote, plan, rec, payload); err != nil {
			result.Failed++
			e.log(ctx).Warn("Failed to push local record",
				zap.String("remote_model", mapping.RemoteModel),
				zap.String("local_model", mapping.LocalModel),
				zap.String("local_id", rec.ID),
				zap.String("tenant_id", company.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Created++
	}

	telemetry.SetAttributes(span, "created", result.Created, "failed", result.Failed)
	e.metrics.RecordModel(ctx, integration.SyncDirectionOutbound, result)
	e.log(ctx).Info("Outbound sync finished",
		zap.String("mapping", plan.Name()),
		zap.String("tenant_id", company.ID.String()),
		zap.Int("created", result.Created),
		zap.Int("deferred", result.Deferred),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// loadTargets maps, per relation target model, local id -> remote id
func (e *OutboundEngine) loadTargets(ctx context.Context, company integration.Company, plan *Plan) (map[string]map[string]int64, error) {
	targets := make(map[string]map[string]int64)
	for _, fk := range plan.foreignKeys {
		target := fk.Relation.Target
		if _, done := targets[target]; done {
			continue
		}
		entries, err := e.links.FindByLocalModel(ctx, company.ID, target)
		if err != nil {
			return nil, fmt.Errorf("load ledger for %s: %w", target, err)
		}
		byLocal := make(map[string]int64, len(entries))
		for _, l := range entries {
			byLocal[l.LocalID] = l.RemoteID
		}
		targets[target] = byLocal
	}
	return targets, nil
}

// payload assembles the remote values for one local record.
// Later sources overwrite earlier ones: create defaults, computed fields,
// flat fields, then foreign keys.
func (e *OutboundEngine) payload(company integration.Company, plan *Plan, rec integration.LocalRecord, targets map[string]map[string]int64) (map[string]any, int, error) {
	mapping := plan.Mapping
	values := make(map[string]any)

	for _, d := range mapping.CreateDefaults {
		values[d.Field] = d.Resolve(company)
	}
	for _, c := range mapping.Computed {
		v, err := c.Compute(rec)
		if err != nil {
			return nil, 0, fmt.Errorf("computed %s: %w", c.Remote, err)
		}
		values[c.Remote] = v
	}
	for _, f := range plan.fields {
		values[f.Remote] = toRemote(f.Field.Kind, rec.Get(f.Field.Name))
	}

	unresolved := 0
	for _, fk := range plan.foreignKeys {
		localID := rec.String(fk.Relation.Name)
		if localID == "" {
			values[fk.Remote] = false
			continue
		}
		remoteID, ok := targets[fk.Relation.Target][localID]
		if !ok {
			unresolved++
			values[fk.Remote] = false
			continue
		}
		values[fk.Remote] = remoteID
	}
	return values, unresolved, nil
}

// push creates the remote record and records the ledger entry.
// The remote call cannot be rolled back; a ledger failure after it leaves a
// remote record without a local link, which is logged with its remote id.
func (e *OutboundEngine) push(ctx context.Context, company integration.Company, remote integration.RemoteClient, plan *Plan, rec integration.LocalRecord, payload map[string]any) error {
	mapping := plan.Mapping
	remoteID, err := remote.Create(ctx, mapping.RemoteModel, payload)
	if err != nil {
		return err
	}

	link, err := integration.NewRecordLink(company.ID, mapping.RemoteModel, remoteID, mapping.LocalModel, rec.ID)
	if err != nil {
		return err
	}
	link.SyncedAt = e.now()

	err = e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Links().Create(ctx, link)
	})
	if err != nil {
		return fmt.Errorf("record link for remote id %d: %w", remoteID, err)
	}
	return nil
}
