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

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrCompanyNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a company by its slug (case-insensitive)
func (r *GormCompanyRepository) FindBySlug(ctx context.Context, slug string) (*integration.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(slug) = ?", strings.ToLower(slug)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrCompanyNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllWithRemote returns the companies that have a connection URL configured
func (r *GormCompanyRepository) FindAllWithRemote(ctx context.Context) ([]integration.Company, error) {
	var rows []models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("connection_url <> ''").
		Order("slug ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	companies := make([]integration.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *integration.Company) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	model := &models.CompanyModel{}
	model.FromDomain(company)
	now := time.Now()
	model.UpdatedAt = now

	var existing models.CompanyModel
	err := r.db.WithContext(ctx).Select("created_at").First(&existing, "id = ?", company.ID).Error
	switch {
	case err == nil:
		model.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		model.CreatedAt = now
	default:
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

var _ integration.CompanyRepository = (*GormCompanyRepository)(nil)
