package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecordLinkRepository implements RecordLinkRepository using GORM
type GormRecordLinkRepository struct {
	db *gorm.DB
}

// NewGormRecordLinkRepository creates a new GormRecordLinkRepository
func NewGormRecordLinkRepository(db *gorm.DB) *GormRecordLinkRepository {
	return &GormRecordLinkRepository{db: db}
}

// FindByModels returns all entries for one (remote model, local model) pair
func (r *GormRecordLinkRepository) FindByModels(ctx context.Context, tenantID uuid.UUID, remoteModel, localModel string) ([]integration.RecordLink, error) {
	var rows []models.RecordLinkModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND remote_model = ? AND local_model = ?", tenantID, remoteModel, localModel).
		Order("remote_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecordLinks(rows), nil
}

// FindByLocalModel returns all entries pointing at a local model
func (r *GormRecordLinkRepository) FindByLocalModel(ctx context.Context, tenantID uuid.UUID, localModel string) ([]integration.RecordLink, error) {
	var rows []models.RecordLinkModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND local_model = ?", tenantID, localModel).
		Order("remote_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecordLinks(rows), nil
}

// Create inserts a new entry
func (r *GormRecordLinkRepository) Create(ctx context.Context, link *integration.RecordLink) error {
	if err := link.Validate(); err != nil {
		return err
	}
	model := &models.RecordLinkModel{}
	model.FromDomain(link)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return integration.ErrDuplicateLink
		}
		return err
	}
	return nil
}

// Touch refreshes the sync timestamp of an entry
func (r *GormRecordLinkRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.RecordLinkModel{}).
		Where("id = ?", id).
		Update("synced_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrLinkNotFound
	}
	return nil
}

func toRecordLinks(rows []models.RecordLinkModel) []integration.RecordLink {
	links := make([]integration.RecordLink, len(rows))
	for i := range rows {
		links[i] = rows[i].ToDomain()
	}
	return links
}

// isDuplicateKey reports a unique constraint violation. gorm translates it when
// TranslateError is enabled; the message checks cover sessions opened without it.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

var _ integration.RecordLinkRepository = (*GormRecordLinkRepository)(nil)
