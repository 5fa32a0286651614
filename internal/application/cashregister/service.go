// Package cashregister records cash movements on the branch ledger and
// exposes its balance and chain checks.
package cashregister

import (
	"context"
	"strings"

	appshift "github.com/erp/pos/internal/application/shift"
	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service records and reads cash register transactions
type Service struct {
	ledger  cashregister.LedgerStore
	txScope appshift.TransactionScope
	clock   shared.Clock
	logger  *zap.Logger
}

// NewService creates a new cash register Service
func NewService(ledger cashregister.LedgerStore, txScope appshift.TransactionScope, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:  ledger,
		txScope: txScope,
		clock:   shared.SystemClock{},
		logger:  logger,
	}
}

// SetClock replaces the time source
func (s *Service) SetClock(clock shared.Clock) {
	s.clock = clock
}

// RecordTransaction appends an operator-entered movement (deposit,
// withdrawal, transfer or adjustment). Opening and closing rows belong to
// the shift lifecycle and are rejected here.
func (s *Service) RecordTransaction(ctx context.Context, in RecordTransactionInput) (*TransactionResponse, error) {
	if !in.Type.IsValid() {
		return nil, cashregister.ErrInvalidType
	}
	if !in.Type.IsManual() {
		return nil, cashregister.ErrManualTypeNotAllowed
	}
	return s.record(ctx, "record", in)
}

// RecordSettlement appends a sale or refund paid in cash. Settlements are
// always attributed to the open shift that took the payment.
func (s *Service) RecordSettlement(ctx context.Context, in RecordTransactionInput) (*TransactionResponse, error) {
	if in.Type != cashregister.TransactionTypeSale && in.Type != cashregister.TransactionTypeRefund {
		return nil, cashregister.ErrInvalidType
	}
	if in.ShiftID == nil {
		return nil, shift.ErrShiftNotFound
	}
	return s.record(ctx, "settle", in)
}

func (s *Service) record(ctx context.Context, op string, in RecordTransactionInput) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_register", op)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, in.TenantID.String(),
		telemetry.SpanAttrBranchID, in.BranchID.String(),
		telemetry.SpanAttrTxnType, in.Type.String(),
		telemetry.SpanAttrAmount, in.Amount.String(),
	)

	ref := cashregister.ParseReference(in.ReferenceKind, in.ReferenceID)
	if ref.IsZero() && in.ReferenceID == nil && in.Type.IsManual() {
		ref = cashregister.Reference{Kind: cashregister.ReferenceManual}
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var recorded *cashregister.Transaction
	err := s.txScope.Execute(ctx, func(repos appshift.TransactionalRepositories) error {
		ledger := repos.LedgerStore()
		balance, err := ledger.LockBalance(ctx, in.TenantID, in.BranchID)
		if err != nil {
			return err
		}

		if in.ShiftID != nil {
			sh, err := repos.ShiftRepo().FindByID(ctx, in.TenantID, *in.ShiftID)
			if err != nil {
				return err
			}
			if sh.BranchID != in.BranchID {
				return shift.ErrShiftNotFound
			}
			if sh.IsClosed {
				return shift.ErrShiftAlreadyClosed
			}
		}

		txn, err := cashregister.NewTransaction(in.TenantID, in.BranchID, in.Type, in.Amount, balance, now)
		if err != nil {
			return err
		}
		if txn.BalanceAfter.IsNegative() {
			return cashregister.ErrInsufficientCash
		}
		txn.WithReference(ref).WithDescription(strings.TrimSpace(in.Description))
		if in.ShiftID != nil {
			txn.WithShift(*in.ShiftID)
		}
		if in.UserID != nil {
			txn.WithUser(*in.UserID)
		}
		if err := ledger.Append(ctx, txn); err != nil {
			return err
		}
		recorded = txn
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx, s.logger).Info("Cash transaction recorded",
		zap.String("transaction_number", recorded.TransactionNumber),
		zap.String("branch_id", recorded.BranchID.String()),
		zap.String("type", recorded.Type.String()),
		zap.String("amount", recorded.Amount.StringFixed(2)),
		zap.String("balance_after", recorded.BalanceAfter.StringFixed(2)),
	)

	resp := ToTransactionResponse(recorded)
	return &resp, nil
}

// GetCurrentBalance returns the latest balance of the branch register
func (s *Service) GetCurrentBalance(ctx context.Context, tenantID, branchID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.ledger.CurrentBalance(ctx, tenantID, branchID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{BranchID: branchID, Balance: balance}, nil
}

// GetTransaction returns one ledger row
func (s *Service) GetTransaction(ctx context.Context, tenantID, id uuid.UUID) (*TransactionResponse, error) {
	txn, err := s.ledger.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// ListTransactions lists ledger rows of a branch
func (s *Service) ListTransactions(ctx context.Context, tenantID, branchID uuid.UUID, f TransactionListFilter) (*shared.Paginated[TransactionResponse], error) {
	filter := cashregister.TransactionFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  "chain_seq",
			OrderDir: f.OrderDir,
		}.Normalize(),
		BranchID: branchID,
		ShiftID:  f.ShiftID,
		From:     f.From,
		To:       f.To,
	}
	if f.Type != "" {
		t := cashregister.TransactionType(f.Type)
		if !t.IsValid() {
			return nil, cashregister.ErrInvalidType
		}
		filter.Type = &t
	}

	txns, total, err := s.ledger.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]TransactionResponse, len(txns))
	for i := range txns {
		items[i] = ToTransactionResponse(&txns[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// VerifyChain walks the branch chain. A broken chain is reported in the
// response and logged at error level; it is not returned as an error.
func (s *Service) VerifyChain(ctx context.Context, tenantID, branchID uuid.UUID) (*ChainReportResponse, error) {
	report, err := s.ledger.VerifyChain(ctx, tenantID, branchID)
	if err != nil {
		return nil, err
	}
	if !report.Intact {
		logger.L(ctx, s.logger).Error("Cash register chain is broken",
			zap.String("tenant_id", tenantID.String()),
			zap.String("branch_id", branchID.String()),
			zap.Int64("broken_at_seq", report.BrokenAtSeq),
		)
	}
	return &ChainReportResponse{
		BranchID:      report.BranchID,
		Entries:       report.Entries,
		Balance:       report.Balance,
		Intact:        report.Intact,
		BrokenAtSeq:   report.BrokenAtSeq,
		BrokenAtTxnID: report.BrokenAtTxnID,
	}, nil
}
