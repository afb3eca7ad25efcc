package persistence

import (
	"context"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormImageLinkRepository implements ImageLinkRepository using GORM
type GormImageLinkRepository struct {
	db *gorm.DB
}

// NewGormImageLinkRepository creates a new GormImageLinkRepository
func NewGormImageLinkRepository(db *gorm.DB) *GormImageLinkRepository {
	return &GormImageLinkRepository{db: db}
}

// FindByModels returns the entries of every ledger entry of a tenant for one model pair
func (r *GormImageLinkRepository) FindByModels(ctx context.Context, tenantID uuid.UUID, remoteModel, localModel string) ([]integration.ImageLink, error) {
	var rows []models.ImageLinkModel
	if err := r.db.WithContext(ctx).
		Select("image_links.*").
		Joins("JOIN "+recordLinksTable+" rl ON rl.id = image_links.record_link_id").
		Where("rl.tenant_id = ? AND rl.remote_model = ? AND rl.local_model = ?", tenantID, remoteModel, localModel).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	links := make([]integration.ImageLink, len(rows))
	for i := range rows {
		links[i] = rows[i].ToDomain()
	}
	return links, nil
}

// Save upserts an entry on (record_link_id, remote_field, local_field)
func (r *GormImageLinkRepository) Save(ctx context.Context, link *integration.ImageLink) error {
	model := &models.ImageLinkModel{}
	model.FromDomain(link)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "record_link_id"},
				{Name: "remote_field"},
				{Name: "local_field"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"content_hash", "synced_at"}),
		}).
		Create(model).Error
}

var _ integration.ImageLinkRepository = (*GormImageLinkRepository)(nil)
