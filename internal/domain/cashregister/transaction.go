// Package cashregister models the append-only, balance-chained cash ledger
// of a branch.
package cashregister

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a cash-affecting event
type TransactionType string

const (
	// TransactionTypeOpening is the float placed in the drawer when a shift opens (increase)
	TransactionTypeOpening TransactionType = "OPENING"
	// TransactionTypeSale is a cash sale settlement (increase)
	TransactionTypeSale TransactionType = "SALE"
	// TransactionTypeRefund is cash paid back to a customer (decrease)
	TransactionTypeRefund TransactionType = "REFUND"
	// TransactionTypeDeposit is cash added to the drawer (increase)
	TransactionTypeDeposit TransactionType = "DEPOSIT"
	// TransactionTypeWithdrawal is cash taken out of the drawer (decrease)
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	// TransactionTypeTransfer is cash moved to another till or the safe (decrease)
	TransactionTypeTransfer TransactionType = "TRANSFER"
	// TransactionTypeShiftClose reconciles the chain to the counted closing balance (signed)
	TransactionTypeShiftClose TransactionType = "SHIFT_CLOSE"
	// TransactionTypeAdjustment is a manual correction (signed)
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeOpening, TransactionTypeSale, TransactionTypeRefund,
		TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer,
		TransactionTypeShiftClose, TransactionTypeAdjustment:
		return true
	}
	return false
}

// IsIncrease returns true if the amount is added to the balance
func (t TransactionType) IsIncrease() bool {
	switch t {
	case TransactionTypeOpening, TransactionTypeSale, TransactionTypeDeposit:
		return true
	}
	return false
}

// IsDecrease returns true if the amount is subtracted from the balance
func (t TransactionType) IsDecrease() bool {
	switch t {
	case TransactionTypeRefund, TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	}
	return false
}

// IsSigned returns true if the amount carries its own sign
func (t TransactionType) IsSigned() bool {
	return t == TransactionTypeShiftClose || t == TransactionTypeAdjustment
}

// IsManual returns true for types that operators may record directly
func (t TransactionType) IsManual() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer, TransactionTypeAdjustment:
		return true
	}
	return false
}

// SignedAmount returns the balance delta of an amount of the given type
func SignedAmount(t TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t.IsDecrease() {
		return amount.Abs().Neg()
	}
	if t.IsIncrease() {
		return amount.Abs()
	}
	return amount
}

// Transaction is one immutable ledger row. For a given branch the rows
// ordered by ChainSeq form a chain where each BalanceBefore equals the
// previous BalanceAfter.
type Transaction struct {
	shared.BaseEntity
	TenantID          uuid.UUID
	BranchID          uuid.UUID
	TransactionNumber string
	ChainSeq          int64
	Type              TransactionType
	Amount            decimal.Decimal
	BalanceBefore     decimal.Decimal
	BalanceAfter      decimal.Decimal
	Reference         Reference
	ShiftID           *uuid.UUID
	UserID            *uuid.UUID
	Description       string
	TransactionDate   time.Time
}

// NewTransaction builds a ledger row on top of the given balance. The
// chain position and number are assigned by the ledger store on append.
func NewTransaction(
	tenantID, branchID uuid.UUID,
	txType TransactionType,
	amount decimal.Decimal,
	balanceBefore decimal.Decimal,
	now time.Time,
) (*Transaction, error) {
	if tenantID == uuid.Nil || branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant and branch are required for a cash transaction")
	}
	if !txType.IsValid() {
		return nil, ErrInvalidType
	}
	amount = amount.Round(2)
	if !txType.IsSigned() {
		if amount.IsNegative() || (amount.IsZero() && txType != TransactionTypeOpening) {
			return nil, ErrInvalidAmount
		}
	}
	before := balanceBefore.Round(2)

	return &Transaction{
		BaseEntity:      shared.NewBaseEntityAt(now),
		TenantID:        tenantID,
		BranchID:        branchID,
		Type:            txType,
		Amount:          amount,
		BalanceBefore:   before,
		BalanceAfter:    before.Add(SignedAmount(txType, amount)),
		TransactionDate: now,
	}, nil
}

// NewShiftCloseTransaction builds the reconciliation row that moves the
// chain from the ledger balance to the counted closing balance.
func NewShiftCloseTransaction(tenantID, branchID, shiftID uuid.UUID, ledgerBalance, closingBalance decimal.Decimal, now time.Time) (*Transaction, error) {
	txn, err := NewTransaction(tenantID, branchID, TransactionTypeShiftClose, closingBalance.Sub(ledgerBalance), ledgerBalance, now)
	if err != nil {
		return nil, err
	}
	txn.WithShift(shiftID).WithReference(ShiftRef(shiftID))
	return txn, nil
}

// WithReference sets the originating entity
func (t *Transaction) WithReference(ref Reference) *Transaction {
	t.Reference = ref
	return t
}

// WithShift links the row to a shift
func (t *Transaction) WithShift(shiftID uuid.UUID) *Transaction {
	t.ShiftID = &shiftID
	return t
}

// WithUser sets the acting user
func (t *Transaction) WithUser(userID uuid.UUID) *Transaction {
	t.UserID = &userID
	return t
}

// WithDescription sets a free-text description
func (t *Transaction) WithDescription(description string) *Transaction {
	t.Description = strings.TrimSpace(description)
	return t
}

// SignedAmount returns the balance delta of this row
func (t *Transaction) SignedAmount() decimal.Decimal {
	return SignedAmount(t.Type, t.Amount)
}

// Validate checks the row's internal balance arithmetic and reference
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := t.Reference.Validate(); err != nil {
		return err
	}
	if !t.BalanceBefore.Add(t.SignedAmount()).Equal(t.BalanceAfter) {
		return ErrChainBroken
	}
	return nil
}

// FollowsBalance reports whether the row continues a chain ending at balance
func (t *Transaction) FollowsBalance(balance decimal.Decimal) bool {
	return t.BalanceBefore.Equal(balance)
}

// FormatTransactionNumber renders CR-<BRANCH8>-<YYYYMMDD>-<NNNN>
func FormatTransactionNumber(branchID uuid.UUID, day time.Time, seq int) string {
	short := strings.ToUpper(strings.ReplaceAll(branchID.String(), "-", "")[:8])
	return fmt.Sprintf("CR-%s-%s-%04d", short, day.UTC().Format("20060102"), seq)
}
