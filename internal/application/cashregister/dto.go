package cashregister

import (
	"time"

	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordTransactionInput describes one cash movement. ShiftID, when set,
// must name an open shift of the same branch.
type RecordTransactionInput struct {
	TenantID      uuid.UUID
	BranchID      uuid.UUID
	UserID        *uuid.UUID
	Type          cashregister.TransactionType
	Amount        decimal.Decimal
	Description   string
	ReferenceKind string
	ReferenceID   *uuid.UUID
	ShiftID       *uuid.UUID
}

// TransactionListFilter represents filter options for the ledger list
type TransactionListFilter struct {
	ShiftID  *uuid.UUID `form:"shift_id"`
	Type     string     `form:"type" binding:"omitempty,oneof=OPENING SALE REFUND DEPOSIT WITHDRAWAL TRANSFER SHIFT_CLOSE ADJUSTMENT"`
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransactionResponse represents a ledger row in API responses
type TransactionResponse struct {
	ID                uuid.UUID                    `json:"id"`
	TenantID          uuid.UUID                    `json:"tenant_id"`
	BranchID          uuid.UUID                    `json:"branch_id"`
	TransactionNumber string                       `json:"transaction_number"`
	ChainSeq          int64                        `json:"chain_seq"`
	Type              cashregister.TransactionType `json:"type"`
	Amount            decimal.Decimal              `json:"amount"`
	BalanceBefore     decimal.Decimal              `json:"balance_before"`
	BalanceAfter      decimal.Decimal              `json:"balance_after"`
	ReferenceType     string                       `json:"reference_type,omitempty"`
	ReferenceID       *uuid.UUID                   `json:"reference_id,omitempty"`
	ShiftID           *uuid.UUID                   `json:"shift_id,omitempty"`
	UserID            *uuid.UUID                   `json:"user_id,omitempty"`
	Description       string                       `json:"description,omitempty"`
	TransactionDate   time.Time                    `json:"transaction_date"`
}

// ToTransactionResponse converts a ledger row to a response
func ToTransactionResponse(t *cashregister.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		TenantID:          t.TenantID,
		BranchID:          t.BranchID,
		TransactionNumber: t.TransactionNumber,
		ChainSeq:          t.ChainSeq,
		Type:              t.Type,
		Amount:            t.Amount,
		BalanceBefore:     t.BalanceBefore,
		BalanceAfter:      t.BalanceAfter,
		ReferenceType:     string(t.Reference.Kind),
		ReferenceID:       t.Reference.IDPtr(),
		ShiftID:           t.ShiftID,
		UserID:            t.UserID,
		Description:       t.Description,
		TransactionDate:   t.TransactionDate,
	}
}

// BalanceResponse is the current register balance of a branch
type BalanceResponse struct {
	BranchID uuid.UUID       `json:"branch_id"`
	Balance  decimal.Decimal `json:"balance"`
}

// ChainReportResponse is the outcome of a chain verification
type ChainReportResponse struct {
	BranchID      uuid.UUID       `json:"branch_id"`
	Entries       int64           `json:"entries"`
	Balance       decimal.Decimal `json:"balance"`
	Intact        bool            `json:"intact"`
	BrokenAtSeq   int64           `json:"broken_at_seq,omitempty"`
	BrokenAtTxnID *uuid.UUID      `json:"broken_at_transaction_id,omitempty"`
}
