package cashregister

import (
	"context"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows ledger queries for one branch
type TransactionFilter struct {
	shared.Filter
	BranchID uuid.UUID
	ShiftID  *uuid.UUID
	Type     *TransactionType
	From     *time.Time
	To       *time.Time
}

// ChainReport is the outcome of walking a branch chain
type ChainReport struct {
	BranchID      uuid.UUID
	Entries       int64
	Balance       decimal.Decimal
	Intact        bool
	BrokenAtSeq   int64
	BrokenAtTxnID *uuid.UUID
}

// LedgerStore is the append-only store of cash register transactions.
// All methods join the caller's ambient transaction when one is active.
type LedgerStore interface {
	// LockBalance takes the branch lock for the rest of the ambient
	// transaction and returns the latest balanceAfter, or zero when empty.
	LockBalance(ctx context.Context, tenantID, branchID uuid.UUID) (decimal.Decimal, error)

	// Append validates contiguity against the latest row of the branch,
	// assigns ChainSeq and TransactionNumber, and inserts the row.
	// A non-contiguous row fails with ErrChainBroken.
	Append(ctx context.Context, txn *Transaction) error

	// CurrentBalance returns the latest balanceAfter of the branch without locking
	CurrentBalance(ctx context.Context, tenantID, branchID uuid.UUID) (decimal.Decimal, error)

	// FindByID returns a transaction or ErrTransactionNotFound
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)

	// FindAll lists transactions of a branch, newest first by default
	FindAll(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]Transaction, int64, error)

	// VerifyChain walks the chain of a branch and reports the first break
	VerifyChain(ctx context.Context, tenantID, branchID uuid.UUID) (*ChainReport, error)
}
