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

// InboundEngine pulls every record of a remote collection into the local store
type InboundEngine struct {
	scope   TransactionScope
	links   integration.RecordLinkRepository
	logger  *zap.Logger
	metrics MetricsRecorder
	now     func() time.Time
}

// NewInboundEngine creates an InboundEngine
func NewInboundEngine(
	scope TransactionScope,
	links integration.RecordLinkRepository,
	logger *zap.Logger,
	metrics MetricsRecorder,
) *InboundEngine {
	return &InboundEngine{
		scope:   scope,
		links:   links,
		logger:  logger,
		metrics: metricsOrNoop(metrics),
		now:     time.Now,
	}
}

// relationLookup maps, per local target model, remote id -> local id
type relationLookup map[string]map[int64]string

// loadRelationLookup reads the ledger entries of every relation target
func loadRelationLookup(ctx context.Context, links integration.RecordLinkRepository, company integration.Company, plan *Plan) (relationLookup, error) {
	lookup := make(relationLookup)
	for _, target := range plan.relationTargets() {
		entries, err := links.FindByLocalModel(ctx, company.ID, target)
		if err != nil {
			return nil, fmt.Errorf("load ledger for %s: %w", target, err)
		}
		byRemote := make(map[int64]string, len(entries))
		for _, e := range entries {
			byRemote[e.RemoteID] = e.LocalID
		}
		lookup[target] = byRemote
	}
	return lookup, nil
}

// inboundRecord is a remote record translated to local values
type inboundRecord struct {
	remoteID   int64
	values     map[string]any
	sets       map[string][]string
	unresolved int
}

// log returns the run logger carried by ctx, or the engine logger outside a run
func (e *InboundEngine) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, logger.FromContextOr(ctx, e.logger))
}

// Sync runs one inbound pass for a bound descriptor.
// Errors returned are fatal for the descriptor (ledger or remote failures);
// per-record failures are counted in the result.
func (e *InboundEngine) Sync(ctx context.Context, company integration.Company, remote integration.RemoteClient, plan *Plan) (ModelResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "erpsync", "inbound",
		telemetry.WithAttribute(telemetry.SpanAttrRemoteModel, plan.Mapping.RemoteModel),
		telemetry.WithAttribute(telemetry.SpanAttrLocalModel, plan.Mapping.LocalModel),
	)
	defer span.End()

	result := newModelResult(plan)
	mapping := plan.Mapping

	existing, err := e.links.FindByModels(ctx, company.ID, mapping.RemoteModel, mapping.LocalModel)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("load ledger for %s: %w", plan.Name(), err)
	}
	index := integration.NewLinkIndex(existing)

	ids, err := remote.Search(ctx, mapping.RemoteModel, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}
	if len(ids) == 0 {
		return result, nil
	}
	records, err := remote.Read(ctx, mapping.RemoteModel, ids, mapping.RemoteFields())
	if err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}

	lookup, err := loadRelationLookup(ctx, e.links, company, plan)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}

	for _, rec := range records {
		in, err := e.translate(company, plan, rec, lookup)
		if err != nil {
			result.Failed++
			e.log(ctx).Warn("Failed to translate remote record",
				zap.String("remote_model", mapping.RemoteModel),
				zap.Any("remote_id", rec["id"]),
				zap.Error(err),
			)
			continue
		}
		result.Unresolved += in.unresolved
		if in.unresolved > 0 && mapping.Policy() == integration.UnresolvedDefer {
			result.Deferred++
			e.log(ctx).Debug("Deferred remote record with unresolved references",
				zap.String("remote_model", mapping.RemoteModel),
				zap.Int64("remote_id", in.remoteID),
				zap.Int("unresolved", in.unresolved),
			)
			continue
		}

		created, err := e.apply(ctx, company, plan, index, in)
		if err != nil {
			result.Failed++
			e.log(ctx).Warn("Failed to sync remote record",
				zap.String("remote_model", mapping.RemoteModel),
				zap.Int64("remote_id", in.remoteID),
				zap.String("tenant_id", company.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	telemetry.SetAttributes(span,
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
	)
	e.metrics.RecordModel(ctx, integration.SyncDirectionInbound, result)
	e.log(ctx).Info("Inbound sync finished",
		zap.String("mapping", plan.Name()),
		zap.String("tenant_id", company.ID.String()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("deferred", result.Deferred),
		zap.Int("failed", result.Failed),
		zap.Int("unresolved", result.Unresolved),
	)
	return result, nil
}

// translate converts a remote record to local values.
// Relation targets missing from the lookup are counted as unresolved.
func (e *InboundEngine) translate(company integration.Company, plan *Plan, rec integration.RemoteRecord, lookup relationLookup) (*inboundRecord, error) {
	id, ok := remoteID(rec["id"])
	if !ok {
		return nil, fmt.Errorf("record without a valid id: %v", rec["id"])
	}
	in := &inboundRecord{
		remoteID: id,
		values:   make(map[string]any, len(plan.fields)+len(plan.foreignKeys)+len(plan.defaults)),
		sets:     make(map[string][]string, len(plan.manyToMany)),
	}

	for _, f := range plan.fields {
		v, err := toLocal(f.Field.Kind, rec[f.Remote])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Remote, err)
		}
		in.values[f.Field.Name] = v
	}

	for _, fk := range plan.foreignKeys {
		target, ok := relationID(rec[fk.Remote])
		if !ok {
			in.values[fk.Relation.Name] = nil
			continue
		}
		localID, ok := lookup[fk.Relation.Target][target]
		if !ok {
			in.unresolved++
			in.values[fk.Relation.Name] = nil
			continue
		}
		in.values[fk.Relation.Name] = localID
	}

	for _, m2m := range plan.manyToMany {
		targets := relationIDs(rec[m2m.Remote])
		localIDs := make([]string, 0, len(targets))
		for _, target := range targets {
			localID, ok := lookup[m2m.Relation.Target][target]
			if !ok {
				in.unresolved++
				continue
			}
			localIDs = append(localIDs, localID)
		}
		in.sets[m2m.Relation.Name] = localIDs
	}

	for _, d := range plan.defaults {
		if d.Relation != nil {
			in.values[d.Relation.Name] = localRef(d.Default.Resolve(company))
			continue
		}
		v, err := toLocal(d.Field.Kind, d.Default.Resolve(company))
		if err != nil {
			return nil, fmt.Errorf("default %s: %w", d.Field.Name, err)
		}
		in.values[d.Field.Name] = v
	}
	return in, nil
}

// apply writes one record, its ledger entry and its relation sets in one transaction.
// The in-memory index is only updated after commit.
func (e *InboundEngine) apply(ctx context.Context, company integration.Company, plan *Plan, index integration.LinkIndex, in *inboundRecord) (bool, error) {
	mapping := plan.Mapping
	existing := index[in.remoteID]
	now := e.now()
	var createdLink *integration.RecordLink

	err := e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		localID := ""
		if existing != nil {
			localID = existing.LocalID
			if err := repos.Local().Update(ctx, plan.Schema, company.ID, localID, in.values); err != nil {
				return err
			}
			if err := repos.Links().Touch(ctx, existing.ID, now); err != nil {
				return err
			}
		} else {
			id, err := repos.Local().Create(ctx, plan.Schema, company.ID, in.values)
			if err != nil {
				return err
			}
			localID = id
			link, err := integration.NewRecordLink(company.ID, mapping.RemoteModel, in.remoteID, mapping.LocalModel, localID)
			if err != nil {
				return err
			}
			link.SyncedAt = now
			if err := repos.Links().Create(ctx, link); err != nil {
				return err
			}
			createdLink = link
		}

		for _, m2m := range plan.manyToMany {
			if err := repos.Local().ReplaceRelation(ctx, plan.Schema, m2m.Relation, localID, in.sets[m2m.Relation.Name]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if createdLink != nil {
		index[in.remoteID] = createdLink
		return true, nil
	}
	existing.Touch(now)
	return false, nil
}
