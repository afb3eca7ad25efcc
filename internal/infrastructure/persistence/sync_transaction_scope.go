package persistence

import (
	"context"

	appsync "github.com/erp/erpsync/internal/application/integration"
	"github.com/erp/erpsync/internal/domain/integration"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of ledger and local store operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appsync.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Links returns the identity ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Links() integration.RecordLinkRepository {
	return NewGormRecordLinkRepository(r.tx)
}

// Images returns the image ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Images() integration.ImageLinkRepository {
	return NewGormImageLinkRepository(r.tx)
}

// Local returns the local entity store scoped to the current transaction.
func (r *gormTransactionalRepositories) Local() integration.LocalStore {
	return NewGormLocalStore(r.tx)
}

var _ appsync.TransactionScope = (*GormTransactionScope)(nil)
