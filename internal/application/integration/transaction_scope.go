package integration

import (
	"context"

	"github.com/erp/erpsync/internal/domain/integration"
)

// TransactionScope provides transactional access to the ledger and the local store.
// Each synced record is written inside one Execute call, so the local record,
// its ledger entry and its relation sets are committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all sync repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	// Links returns the identity ledger repository scoped to the current transaction
	Links() integration.RecordLinkRepository
	// Images returns the image ledger repository scoped to the current transaction
	Images() integration.ImageLinkRepository
	// Local returns the local entity store scoped to the current transaction
	Local() integration.LocalStore
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	links  integration.RecordLinkRepository
	images integration.ImageLinkRepository
	local  integration.LocalStore
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	links integration.RecordLinkRepository,
	images integration.ImageLinkRepository,
	local integration.LocalStore,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{links: links, images: images, local: local}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Links returns the identity ledger repository.
func (s *NoOpTransactionScope) Links() integration.RecordLinkRepository { return s.links }

// Images returns the image ledger repository.
func (s *NoOpTransactionScope) Images() integration.ImageLinkRepository { return s.images }

// Local returns the local entity store.
func (s *NoOpTransactionScope) Local() integration.LocalStore { return s.local }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
