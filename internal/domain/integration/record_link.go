package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordLink is one identity ledger entry: a remote record and the local record
// it was materialized as (or pushed from). Entries are never deleted by the
// sync engines.
type RecordLink struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	RemoteModel string
	RemoteID    int64
	LocalModel  string
	LocalID     string
	SyncedAt    time.Time
	CreatedAt   time.Time
}

// NewRecordLink creates a ledger entry binding remoteID to localID
func NewRecordLink(tenantID uuid.UUID, remoteModel string, remoteID int64, localModel, localID string) (*RecordLink, error) {
	link := &RecordLink{
		ID:          uuid.New(),
		TenantID:    tenantID,
		RemoteModel: remoteModel,
		RemoteID:    remoteID,
		LocalModel:  localModel,
		LocalID:     localID,
	}
	if err := link.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	link.SyncedAt = now
	link.CreatedAt = now
	return link, nil
}

// Validate checks the entry invariants
func (l *RecordLink) Validate() error {
	if l.TenantID == uuid.Nil {
		return ErrLinkInvalidTenantID
	}
	if l.RemoteModel == "" {
		return ErrLinkInvalidRemoteModel
	}
	if l.RemoteID <= 0 {
		return ErrLinkInvalidRemoteID
	}
	if l.LocalModel == "" {
		return ErrLinkInvalidLocalModel
	}
	if l.LocalID == "" {
		return ErrLinkInvalidLocalID
	}
	return nil
}

// Touch refreshes the last sync timestamp
func (l *RecordLink) Touch(now time.Time) {
	l.SyncedAt = now
}

// LinkIndex indexes ledger entries by remote id
type LinkIndex map[int64]*RecordLink

// NewLinkIndex builds an index from a slice of entries
func NewLinkIndex(links []RecordLink) LinkIndex {
	idx := make(LinkIndex, len(links))
	for i := range links {
		idx[links[i].RemoteID] = &links[i]
	}
	return idx
}

// RemoteIDs returns the remote ids held by the index
func (idx LinkIndex) RemoteIDs() []int64 {
	ids := make([]int64, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	return ids
}

// RecordLinkRepository persists identity ledger entries.
// Every query is filtered by tenant.
type RecordLinkRepository interface {
	// FindByModels returns all entries for one (remote model, local model) pair
	FindByModels(ctx context.Context, tenantID uuid.UUID, remoteModel, localModel string) ([]RecordLink, error)

	// FindByLocalModel returns all entries pointing at a local model, whatever remote model they came from
	FindByLocalModel(ctx context.Context, tenantID uuid.UUID, localModel string) ([]RecordLink, error)

	// Create inserts a new entry. A uniqueness violation returns ErrDuplicateLink.
	Create(ctx context.Context, link *RecordLink) error

	// Touch refreshes the sync timestamp of an entry
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
}
