package shift

import (
	"context"

	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/sales"
	"github.com/erp/pos/internal/domain/shift"
)

// TransactionScope provides transactional access to the shift and ledger
// repositories. A shift mutation and its ledger entry commit together or
// not at all.
type TransactionScope interface {
	// Execute runs fn within a database transaction. A returned error rolls
	// the transaction back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to one transaction
type TransactionalRepositories interface {
	// ShiftRepo returns the shift repository scoped to the current transaction
	ShiftRepo() shift.Repository
	// LedgerStore returns the cash register ledger scoped to the current transaction
	LedgerStore() cashregister.LedgerStore
	// AuditRepo returns the shift audit repository scoped to the current transaction
	AuditRepo() audit.Repository
	// OrderReader returns the completed-order reader scoped to the current transaction
	OrderReader() sales.OrderReader
}

// NoOpTransactionScope runs the function without a real transaction.
// This is useful for testing with mocked repositories.
type NoOpTransactionScope struct {
	shiftRepo shift.Repository
	ledger    cashregister.LedgerStore
	auditRepo audit.Repository
	orders    sales.OrderReader
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(shiftRepo shift.Repository, ledger cashregister.LedgerStore, auditRepo audit.Repository, orders sales.OrderReader) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		shiftRepo: shiftRepo,
		ledger:    ledger,
		auditRepo: auditRepo,
		orders:    orders,
	}
}

// Execute runs fn directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ShiftRepo returns the shift repository
func (s *NoOpTransactionScope) ShiftRepo() shift.Repository {
	return s.shiftRepo
}

// LedgerStore returns the ledger store
func (s *NoOpTransactionScope) LedgerStore() cashregister.LedgerStore {
	return s.ledger
}

// AuditRepo returns the audit repository
func (s *NoOpTransactionScope) AuditRepo() audit.Repository {
	return s.auditRepo
}

// OrderReader returns the order reader
func (s *NoOpTransactionScope) OrderReader() sales.OrderReader {
	return s.orders
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
