package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const verifyBatchSize = 500

// GormLedgerStore implements cashregister.LedgerStore using GORM.
// Appends for a branch are serialized by locking its cash_register_heads row.
type GormLedgerStore struct {
	db *gorm.DB
}

// NewGormLedgerStore creates a new GormLedgerStore
func NewGormLedgerStore(db *gorm.DB) *GormLedgerStore {
	return &GormLedgerStore{db: db}
}

// LockBalance locks the branch head for the ambient transaction and returns
// the latest balanceAfter
func (s *GormLedgerStore) LockBalance(ctx context.Context, tenantID, branchID uuid.UUID) (decimal.Decimal, error) {
	db := s.db.WithContext(ctx)
	if _, err := lockHead(db, tenantID, branchID); err != nil {
		return decimal.Zero, err
	}
	return latestBalance(db, branchID)
}

// Append inserts a ledger row at the end of the branch chain
func (s *GormLedgerStore) Append(ctx context.Context, txn *cashregister.Transaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		head, err := lockHead(tx, txn.TenantID, txn.BranchID)
		if err != nil {
			return err
		}

		balance, err := latestBalance(tx, txn.BranchID)
		if err != nil {
			return err
		}
		if !txn.FollowsBalance(balance) {
			return fmt.Errorf("%w: balance before %s does not match ledger balance %s",
				cashregister.ErrChainBroken, txn.BalanceBefore.StringFixed(2), balance.StringFixed(2))
		}

		seq, daySeq := head.Next(txn.TransactionDate)
		txn.ChainSeq = seq
		txn.TransactionNumber = cashregister.FormatTransactionNumber(txn.BranchID, txn.TransactionDate, daySeq)

		if err := tx.Create(models.CashRegisterTransactionModelFromDomain(txn)).Error; err != nil {
			return fmt.Errorf("failed to insert cash register transaction: %w", err)
		}

		head.UpdatedAt = time.Now().UTC()
		if err := tx.Model(&models.CashRegisterHeadModel{}).
			Where("branch_id = ?", txn.BranchID).
			Updates(map[string]any{
				"last_seq":   head.LastSeq,
				"day":        head.Day,
				"day_seq":    head.DaySeq,
				"updated_at": head.UpdatedAt,
			}).Error; err != nil {
			return fmt.Errorf("failed to advance cash register head: %w", err)
		}
		return nil
	})
}

// CurrentBalance returns the latest balanceAfter of a branch without locking
func (s *GormLedgerStore) CurrentBalance(ctx context.Context, tenantID, branchID uuid.UUID) (decimal.Decimal, error) {
	return latestBalance(s.db.WithContext(ctx).Where("tenant_id = ?", tenantID), branchID)
}

// FindByID finds a ledger row by ID within a tenant
func (s *GormLedgerStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*cashregister.Transaction, error) {
	var model models.CashRegisterTransactionModel
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cashregister.ErrTransactionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists ledger rows of a branch with filtering and pagination
func (s *GormLedgerStore) FindAll(ctx context.Context, tenantID uuid.UUID, filter cashregister.TransactionFilter) ([]cashregister.Transaction, int64, error) {
	filter.Filter = filter.Filter.Normalize()

	query := s.db.WithContext(ctx).
		Model(&models.CashRegisterTransactionModel{}).
		Where("tenant_id = ? AND branch_id = ?", tenantID, filter.BranchID)
	if filter.ShiftID != nil {
		query = query.Where("shift_id = ?", *filter.ShiftID)
	}
	if filter.Type != nil {
		query = query.Where("transaction_type = ?", *filter.Type)
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date <= ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, CashTransactionSortFields, "chain_seq")
	var txnModels []models.CashRegisterTransactionModel
	if err := query.
		Order(orderClause(sortField, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&txnModels).Error; err != nil {
		return nil, 0, err
	}

	txns := make([]cashregister.Transaction, len(txnModels))
	for i := range txnModels {
		txns[i] = *txnModels[i].ToDomain()
	}
	return txns, total, nil
}

// VerifyChain walks the branch chain in chain order and stops at the first
// row that does not continue the previous balance or whose own arithmetic
// does not add up
func (s *GormLedgerStore) VerifyChain(ctx context.Context, tenantID, branchID uuid.UUID) (*cashregister.ChainReport, error) {
	report := &cashregister.ChainReport{
		BranchID: branchID,
		Balance:  decimal.Zero,
		Intact:   true,
	}

	var lastSeq int64
	for {
		var batch []models.CashRegisterTransactionModel
		if err := s.db.WithContext(ctx).
			Where("tenant_id = ? AND branch_id = ? AND chain_seq > ?", tenantID, branchID, lastSeq).
			Order("chain_seq ASC").
			Limit(verifyBatchSize).
			Find(&batch).Error; err != nil {
			return nil, fmt.Errorf("failed to read cash register chain: %w", err)
		}

		for i := range batch {
			txn := batch[i].ToDomain()
			if !txn.FollowsBalance(report.Balance) || txn.Validate() != nil {
				id := txn.ID
				report.Intact = false
				report.BrokenAtSeq = txn.ChainSeq
				report.BrokenAtTxnID = &id
				return report, nil
			}
			report.Balance = txn.BalanceAfter
			report.Entries++
			lastSeq = txn.ChainSeq
		}

		if len(batch) < verifyBatchSize {
			return report, nil
		}
	}
}

// lockHead makes sure the branch head exists and locks it
func lockHead(db *gorm.DB, tenantID, branchID uuid.UUID) (*models.CashRegisterHeadModel, error) {
	seed := &models.CashRegisterHeadModel{
		BranchID:  branchID,
		TenantID:  tenantID,
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return nil, fmt.Errorf("failed to create cash register head: %w", err)
	}

	var head models.CashRegisterHeadModel
	if err := forUpdate(db).
		Where("branch_id = ?", branchID).
		First(&head).Error; err != nil {
		return nil, fmt.Errorf("failed to lock cash register head: %w", err)
	}
	if head.TenantID != tenantID {
		return nil, fmt.Errorf("%w: branch %s belongs to another tenant", cashregister.ErrChainBroken, branchID)
	}
	return &head, nil
}

func latestBalance(db *gorm.DB, branchID uuid.UUID) (decimal.Decimal, error) {
	var last models.CashRegisterTransactionModel
	err := db.Model(&models.CashRegisterTransactionModel{}).
		Where("branch_id = ?", branchID).
		Order("chain_seq DESC").
		Limit(1).
		Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read cash register balance: %w", err)
	}
	return last.BalanceAfter, nil
}

// Ensure GormLedgerStore implements cashregister.LedgerStore
var _ cashregister.LedgerStore = (*GormLedgerStore)(nil)
