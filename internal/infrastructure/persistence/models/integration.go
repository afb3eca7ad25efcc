package models

import (
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/google/uuid"
)

// CompanyModel is the persistence model for the Company scope.
type CompanyModel struct {
	BaseModel
	Slug            string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name            string     `gorm:"type:varchar(200);not null"`
	City            string     `gorm:"type:varchar(100)"`
	Street          string     `gorm:"type:varchar(200)"`
	WebsiteURL      string     `gorm:"type:varchar(255)"`
	ConnectionURL   string     `gorm:"type:varchar(500)"`
	RemoteID        int64      `gorm:"not null;default:0"`
	CreditProductID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company.
func (m *CompanyModel) ToDomain() *integration.Company {
	return &integration.Company{
		ID:              m.ID,
		Slug:            m.Slug,
		Name:            m.Name,
		City:            m.City,
		Street:          m.Street,
		WebsiteURL:      m.WebsiteURL,
		ConnectionURL:   m.ConnectionURL,
		RemoteID:        m.RemoteID,
		CreditProductID: m.CreditProductID,
	}
}

// FromDomain populates the persistence model from a domain Company.
func (m *CompanyModel) FromDomain(c *integration.Company) {
	m.ID = c.ID
	m.Slug = c.Slug
	m.Name = c.Name
	m.City = c.City
	m.Street = c.Street
	m.WebsiteURL = c.WebsiteURL
	m.ConnectionURL = c.ConnectionURL
	m.RemoteID = c.RemoteID
	m.CreditProductID = c.CreditProductID
}

// RecordLinkModel is the persistence model for an identity ledger entry.
type RecordLinkModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_record_links_remote,priority:1;uniqueIndex:uq_record_links_local,priority:1"`
	RemoteModel string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_record_links_remote,priority:2;uniqueIndex:uq_record_links_local,priority:2"`
	RemoteID    int64     `gorm:"not null;uniqueIndex:uq_record_links_remote,priority:3"`
	LocalModel  string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_record_links_remote,priority:4;uniqueIndex:uq_record_links_local,priority:3;index:idx_record_links_local_model"`
	LocalID     string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_record_links_local,priority:4"`
	SyncedAt    time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RecordLinkModel) TableName() string {
	return "record_links"
}

// ToDomain converts the persistence model to a domain RecordLink.
func (m *RecordLinkModel) ToDomain() integration.RecordLink {
	return integration.RecordLink{
		ID:          m.ID,
		TenantID:    m.TenantID,
		RemoteModel: m.RemoteModel,
		RemoteID:    m.RemoteID,
		LocalModel:  m.LocalModel,
		LocalID:     m.LocalID,
		SyncedAt:    m.SyncedAt,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain RecordLink.
func (m *RecordLinkModel) FromDomain(l *integration.RecordLink) {
	m.ID = l.ID
	m.TenantID = l.TenantID
	m.RemoteModel = l.RemoteModel
	m.RemoteID = l.RemoteID
	m.LocalModel = l.LocalModel
	m.LocalID = l.LocalID
	m.SyncedAt = l.SyncedAt
	m.CreatedAt = l.CreatedAt
}

// ImageLinkModel is the persistence model for an image ledger entry.
type ImageLinkModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	RecordLinkID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_image_links_field,priority:1"`
	RemoteField  string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_image_links_field,priority:2"`
	LocalField   string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_image_links_field,priority:3"`
	ContentHash  string    `gorm:"type:varchar(64);not null"`
	SyncedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ImageLinkModel) TableName() string {
	return "image_links"
}

// ToDomain converts the persistence model to a domain ImageLink.
func (m *ImageLinkModel) ToDomain() integration.ImageLink {
	return integration.ImageLink{
		ID:           m.ID,
		RecordLinkID: m.RecordLinkID,
		RemoteField:  m.RemoteField,
		LocalField:   m.LocalField,
		ContentHash:  m.ContentHash,
		SyncedAt:     m.SyncedAt,
	}
}

// FromDomain populates the persistence model from a domain ImageLink.
func (m *ImageLinkModel) FromDomain(l *integration.ImageLink) {
	m.ID = l.ID
	m.RecordLinkID = l.RecordLinkID
	m.RemoteField = l.RemoteField
	m.LocalField = l.LocalField
	m.ContentHash = l.ContentHash
	m.SyncedAt = l.SyncedAt
}
