package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RemoteRecord is one record returned by the remote system, keyed by field name.
// Values are as decoded from the wire: numbers, strings, the false sentinel,
// [id, label] pairs for single-valued relations and id lists for many-valued ones.
type RemoteRecord map[string]any

// RemoteClient is an authenticated session against the remote ERP
type RemoteClient interface {
	// Search returns the ids of records matching domain (nil for all records)
	Search(ctx context.Context, model string, domain []any) ([]int64, error)
	// Read returns the requested fields of the given ids
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]RemoteRecord, error)
	// Create creates a record and returns its id
	Create(ctx context.Context, model string, values map[string]any) (int64, error)
	// Write updates fields of an existing record
	Write(ctx context.Context, model string, id int64, values map[string]any) error
}

// Connector opens remote sessions from a connection URL
type Connector interface {
	Connect(ctx context.Context, connectionURL string) (RemoteClient, error)
}

// LocalStore writes and reads local entity records through their schema.
// Implementations bound to a transaction apply all writes atomically.
type LocalStore interface {
	// Create inserts a record scoped to tenantID and returns its id
	Create(ctx context.Context, schema *LocalSchema, tenantID uuid.UUID, values map[string]any) (string, error)
	// Update overwrites the given fields. A missing record returns ErrLocalRecordNotFound.
	Update(ctx context.Context, schema *LocalSchema, tenantID uuid.UUID, id string, values map[string]any) error
	// ReplaceRelation replaces the full target set of a many-valued relation
	ReplaceRelation(ctx context.Context, schema *LocalSchema, relation LocalRelation, id string, targetIDs []string) error
	// ListUnlinked returns the tenant's records that have no ledger entry
	// pairing them with remoteModel
	ListUnlinked(ctx context.Context, schema *LocalSchema, tenantID uuid.UUID, remoteModel string) ([]LocalRecord, error)
}

// BinaryStore persists binary payloads and returns the key they are addressable by
type BinaryStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// RunLock prevents concurrent runs for the same scope and direction
type RunLock interface {
	// Acquire returns a release function, or ErrSyncInProgress
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
