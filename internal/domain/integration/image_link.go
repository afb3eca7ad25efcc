package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ImageLink records the content hash of the last stored payload of one image
// field of a synced record.
type ImageLink struct {
	ID           uuid.UUID
	RecordLinkID uuid.UUID
	RemoteField  string
	LocalField   string
	ContentHash  string
	SyncedAt     time.Time
}

// NewImageLink creates an image ledger entry without a hash
func NewImageLink(recordLinkID uuid.UUID, remoteField, localField string) (*ImageLink, error) {
	if remoteField == "" || localField == "" {
		return nil, ErrImageInvalidField
	}
	return &ImageLink{
		ID:           uuid.New(),
		RecordLinkID: recordLinkID,
		RemoteField:  remoteField,
		LocalField:   localField,
	}, nil
}

// Changed reports whether hash differs from the stored one
func (l *ImageLink) Changed(hash string) bool {
	return l.ContentHash != hash
}

// Record stores a new content hash
func (l *ImageLink) Record(hash string, now time.Time) error {
	if hash == "" {
		return ErrImageInvalidHash
	}
	l.ContentHash = hash
	l.SyncedAt = now
	return nil
}

// ImageLinkKey identifies an image ledger entry
type ImageLinkKey struct {
	RecordLinkID uuid.UUID
	RemoteField  string
	LocalField   string
}

// Key returns the identifying key of the entry
func (l *ImageLink) Key() ImageLinkKey {
	return ImageLinkKey{RecordLinkID: l.RecordLinkID, RemoteField: l.RemoteField, LocalField: l.LocalField}
}

// ImageLinkRepository persists image ledger entries
type ImageLinkRepository interface {
	// FindByModels returns the entries of every ledger entry of a tenant for one model pair
	FindByModels(ctx context.Context, tenantID uuid.UUID, remoteModel, localModel string) ([]ImageLink, error)

	// Save creates or updates an entry
	Save(ctx context.Context, link *ImageLink) error
}
