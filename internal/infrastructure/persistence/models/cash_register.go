package models

import (
	"time"

	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegisterTransactionModel is the persistence model for a ledger row.
// Rows are insert-only.
type CashRegisterTransactionModel struct {
	ID                uuid.UUID                    `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID                    `gorm:"type:uuid;not null;index"`
	BranchID          uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex:ux_cash_txn_branch_seq,priority:1;uniqueIndex:ux_cash_txn_branch_number,priority:1;index:idx_cash_txn_branch_created,priority:1"`
	ChainSeq          int64                        `gorm:"not null;uniqueIndex:ux_cash_txn_branch_seq,priority:2"`
	TransactionNumber string                       `gorm:"type:varchar(40);not null;uniqueIndex:ux_cash_txn_branch_number,priority:2"`
	TransactionType   cashregister.TransactionType `gorm:"type:varchar(20);not null;index"`
	Amount            decimal.Decimal              `gorm:"type:decimal(12,2);not null"`
	BalanceBefore     decimal.Decimal              `gorm:"type:decimal(12,2);not null"`
	BalanceAfter      decimal.Decimal              `gorm:"type:decimal(12,2);not null"`
	ReferenceType     string                       `gorm:"type:varchar(20)"`
	ReferenceID       *uuid.UUID                   `gorm:"type:uuid;index"`
	ShiftID           *uuid.UUID                   `gorm:"type:uuid;index"`
	UserID            *uuid.UUID                   `gorm:"type:uuid"`
	Description       string                       `gorm:"type:text"`
	TransactionDate   time.Time                    `gorm:"not null"`
	CreatedAt         time.Time                    `gorm:"not null;index:idx_cash_txn_branch_created,priority:2"`
}

// TableName returns the table name for GORM
func (CashRegisterTransactionModel) TableName() string {
	return "cash_register_transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *CashRegisterTransactionModel) ToDomain() *cashregister.Transaction {
	return &cashregister.Transaction{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		TenantID:          m.TenantID,
		BranchID:          m.BranchID,
		TransactionNumber: m.TransactionNumber,
		ChainSeq:          m.ChainSeq,
		Type:              m.TransactionType,
		Amount:            m.Amount,
		BalanceBefore:     m.BalanceBefore,
		BalanceAfter:      m.BalanceAfter,
		Reference:         cashregister.ParseReference(m.ReferenceType, m.ReferenceID),
		ShiftID:           m.ShiftID,
		UserID:            m.UserID,
		Description:       m.Description,
		TransactionDate:   m.TransactionDate,
	}
}

// CashRegisterTransactionModelFromDomain creates a persistence model from a domain Transaction
func CashRegisterTransactionModelFromDomain(t *cashregister.Transaction) *CashRegisterTransactionModel {
	return &CashRegisterTransactionModel{
		ID:                t.ID,
		TenantID:          t.TenantID,
		BranchID:          t.BranchID,
		ChainSeq:          t.ChainSeq,
		TransactionNumber: t.TransactionNumber,
		TransactionType:   t.Type,
		Amount:            t.Amount,
		BalanceBefore:     t.BalanceBefore,
		BalanceAfter:      t.BalanceAfter,
		ReferenceType:     string(t.Reference.Kind),
		ReferenceID:       t.Reference.IDPtr(),
		ShiftID:           t.ShiftID,
		UserID:            t.UserID,
		Description:       t.Description,
		TransactionDate:   t.TransactionDate,
		CreatedAt:         t.CreatedAt,
	}
}

// CashRegisterHeadModel is the per-branch row locked to serialize appends.
// Day is the UTC date (YYYYMMDD) DaySeq counts within.
type CashRegisterHeadModel struct {
	BranchID  uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	LastSeq   int64     `gorm:"not null;default:0"`
	Day       string    `gorm:"type:varchar(8);not null;default:''"`
	DaySeq    int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CashRegisterHeadModel) TableName() string {
	return "cash_register_heads"
}

// Next advances the head for an entry dated at and returns its chain
// position and daily sequence
func (m *CashRegisterHeadModel) Next(at time.Time) (int64, int) {
	day := at.UTC().Format("20060102")
	if m.Day != day {
		m.Day = day
		m.DaySeq = 0
	}
	m.LastSeq++
	m.DaySeq++
	return m.LastSeq, m.DaySeq
}
