package integration

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/logger"
	"github.com/erp/erpsync/internal/infrastructure/telemetry"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// hashPrefixLen is the number of hash characters used in storage keys
const hashPrefixLen = 12

// ImageEngine pulls remote image fields of already linked records and stores
// the payload only when its content hash changed.
type ImageEngine struct {
	scope   TransactionScope
	links   integration.RecordLinkRepository
	images  integration.ImageLinkRepository
	store   integration.BinaryStore
	logger  *zap.Logger
	metrics MetricsRecorder
	now     func() time.Time
}

// NewImageEngine creates an ImageEngine
func NewImageEngine(
	scope TransactionScope,
	links integration.RecordLinkRepository,
	images integration.ImageLinkRepository,
	store integration.BinaryStore,
	logger *zap.Logger,
	metrics MetricsRecorder,
) *ImageEngine {
	return &ImageEngine{
		scope:   scope,
		links:   links,
		images:  images,
		store:   store,
		logger:  logger,
		metrics: metricsOrNoop(metrics),
		now:     time.Now,
	}
}

// imageChange is one image field whose payload was stored in this pass
type imageChange struct {
	field integration.LocalField
	key   string
	link  *integration.ImageLink
}

// log returns the run logger carried by ctx, or the engine logger outside a run
func (e *ImageEngine) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, logger.FromContextOr(ctx, e.logger))
}

// Sync runs one image pass for a bound descriptor
func (e *ImageEngine) Sync(ctx context.Context, company integration.Company, remote integration.RemoteClient, plan *Plan) (ModelResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "erpsync", "images",
		telemetry.WithAttribute(telemetry.SpanAttrRemoteModel, plan.Mapping.RemoteModel),
		telemetry.WithAttribute(telemetry.SpanAttrLocalModel, plan.Mapping.LocalModel),
	)
	defer span.End()

	result := newModelResult(plan)
	mapping := plan.Mapping
	if !plan.HasImages() {
		return result, nil
	}

	linked, err := e.links.FindByModels(ctx, company.ID, mapping.RemoteModel, mapping.LocalModel)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("load ledger for %s: %w", plan.Name(), err)
	}
	if len(linked) == 0 {
		return result, nil
	}
	index := integration.NewLinkIndex(linked)

	records, err := remote.Read(ctx, mapping.RemoteModel, index.RemoteIDs(), mapping.ImageFields())
	if err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}

	known, err := e.loadImageLinks(ctx, company, plan)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}

	for _, rec := range records {
		id, ok := remoteID(rec["id"])
		if !ok {
			continue
		}
		link := index[id]
		if link == nil {
			continue
		}

		changes, err := e.collect(ctx, company, plan, link, rec, known)
		if err != nil {
			result.Failed++
			e.log(ctx).Warn("Failed to store remote image",
				zap.String("remote_model", mapping.RemoteModel),
				zap.Int64("remote_id", id),
				zap.Error(err),
			)
			continue
		}
		if len(changes) == 0 {
			result.Skipped++
			continue
		}

		if err := e.apply(ctx, company, plan, link, changes); err != nil {
			result.Failed++
			e.log(ctx).Warn("Failed to save image references",
				zap.String("remote_model", mapping.RemoteModel),
				zap.Int64("remote_id", id),
				zap.Error(err),
			)
			continue
		}
		for _, c := range changes {
			known[c.link.Key()] = c.link
		}
		result.Updated++
	}

	e.metrics.RecordModel(ctx, integration.SyncDirectionImages, result)
	e.log(ctx).Info("Image sync finished",
		zap.String("mapping", plan.Name()),
		zap.String("tenant_id", company.ID.String()),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (e *ImageEngine) loadImageLinks(ctx context.Context, company integration.Company, plan *Plan) (map[integration.ImageLinkKey]*integration.ImageLink, error) {
	stored, err := e.images.FindByModels(ctx, company.ID, plan.Mapping.RemoteModel, plan.Mapping.LocalModel)
	if err != nil {
		return nil, fmt.Errorf("load image ledger: %w", err)
	}
	known := make(map[integration.ImageLinkKey]*integration.ImageLink, len(stored))
	for i := range stored {
		known[stored[i].Key()] = &stored[i]
	}
	return known, nil
}

// collect hashes every image field of a record and stores the payloads whose
// hash differs from the image ledger. The hash is computed on every pass.
func (e *ImageEngine) collect(
	ctx context.Context,
	company integration.Company,
	plan *Plan,
	link *integration.RecordLink,
	rec integration.RemoteRecord,
	known map[integration.ImageLinkKey]*integration.ImageLink,
) ([]imageChange, error) {
	var changes []imageChange
	for _, img := range plan.images {
		encoded, ok := rec[img.Remote].(string)
		if !ok || encoded == "" {
			continue
		}
		data, err := decodeImage(encoded)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", img.Remote, err)
		}
		hash := contentHash(data)

		key := integration.ImageLinkKey{RecordLinkID: link.ID, RemoteField: img.Remote, LocalField: img.Field.Name}
		current := known[key]
		if current != nil && !current.Changed(hash) {
			continue
		}

		mtype := mimetype.Detect(data)
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil, fmt.Errorf("field %s: unsupported image format %s", img.Remote, mtype.String())
		}
		storageKey := imageKey(company, link, img.Field.Name, hash, mtype.Extension())
		stored, err := e.store.Put(ctx, storageKey, data, mtype.String())
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", storageKey, err)
		}
		e.metrics.RecordImageStored(ctx, plan.Mapping.LocalModel)

		next := current
		if next == nil {
			next, err = integration.NewImageLink(link.ID, img.Remote, img.Field.Name)
			if err != nil {
				return nil, err
			}
		} else {
			copied := *current
			next = &copied
		}
		if err := next.Record(hash, e.now()); err != nil {
			return nil, err
		}
		changes = append(changes, imageChange{field: img.Field, key: stored, link: next})
	}
	return changes, nil
}

// apply saves the new storage keys on the local record and the new hashes in one transaction
func (e *ImageEngine) apply(ctx context.Context, company integration.Company, plan *Plan, link *integration.RecordLink, changes []imageChange) error {
	values := make(map[string]any, len(changes))
	for _, c := range changes {
		values[c.field.Name] = c.key
	}
	return e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Local().Update(ctx, plan.Schema, company.ID, link.LocalID, values); err != nil {
			return err
		}
		for _, c := range changes {
			if err := repos.Images().Save(ctx, c.link); err != nil {
				return err
			}
		}
		return nil
	})
}

// decodeImage decodes a base64 payload; line breaks are tolerated
func decodeImage(encoded string) ([]byte, error) {
	cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(encoded)
	return base64.StdEncoding.DecodeString(cleaned)
}

// contentHash returns the hex SHA-256 digest of data
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// imageKey builds the storage key of an image payload.
// ext includes the leading dot as returned by mimetype.
func imageKey(company integration.Company, link *integration.RecordLink, field, hash, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s-image%s",
		company.ID, link.LocalModel, link.LocalID, field, hash[:hashPrefixLen], ext)
}
