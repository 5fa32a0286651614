package persistence

import (
	"context"

	appshift "github.com/erp/pos/internal/application/shift"
	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/sales"
	"github.com/erp/pos/internal/domain/shift"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Shift updates, ledger appends and audit rows issued through the scoped
// repositories commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshift.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ShiftRepo returns the shift repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ShiftRepo() shift.Repository {
	return NewGormShiftRepository(r.tx)
}

// LedgerStore returns the cash register ledger scoped to the current transaction.
func (r *gormTransactionalRepositories) LedgerStore() cashregister.LedgerStore {
	return NewGormLedgerStore(r.tx)
}

// AuditRepo returns the shift audit repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AuditRepo() audit.Repository {
	return NewGormShiftAuditLogRepository(r.tx)
}

// OrderReader returns the completed-order reader scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderReader() sales.OrderReader {
	return NewGormOrderReader(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshift.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appshift.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
