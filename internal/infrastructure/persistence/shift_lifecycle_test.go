package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appshift "github.com/erp/pos/internal/application/shift"
	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLifecycleService(db *gorm.DB, scope appshift.TransactionScope, at time.Time) *appshift.Service {
	if scope == nil {
		scope = NewGormTransactionScope(db)
	}
	svc := appshift.NewService(
		NewGormShiftRepository(db),
		NewGormShiftAuditLogRepository(db),
		NewGormDirectory(db),
		NewGormOrderReader(db),
		scope,
		nil,
	)
	svc.SetClock(shared.FixedClock{At: at})
	return svc
}

func ledgerRows(t *testing.T, db *gorm.DB, branchID uuid.UUID) []models.CashRegisterTransactionModel {
	t.Helper()
	var rows []models.CashRegisterTransactionModel
	require.NoError(t, db.Where("branch_id = ?", branchID).Order("chain_seq ASC").Find(&rows).Error)
	return rows
}

func openShift(t *testing.T, svc *appshift.Service, f testFixture, userID uuid.UUID, opening string) *appshift.ShiftResponse {
	t.Helper()
	resp, err := svc.Open(context.Background(), appshift.OpenShiftInput{
		TenantID:       f.TenantID,
		BranchID:       f.BranchID,
		UserID:         userID,
		OpeningBalance: decimal.RequireFromString(opening),
	})
	require.NoError(t, err)
	return resp
}

func TestShiftLifecycle_OpenWritesOpeningEntry(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := newLifecycleService(db, nil, baseTime)

	resp := openShift(t, svc, f, f.Cashier, "200.00")

	assert.True(t, decimal.NewFromInt(200).Equal(resp.OpeningBalance))
	assert.False(t, resp.IsClosed)
	assert.Equal(t, 1, resp.Version)

	rows := ledgerRows(t, db, f.BranchID)
	require.Len(t, rows, 1)
	assert.Equal(t, cashregister.TransactionTypeOpening, rows[0].TransactionType)
	assert.True(t, decimal.NewFromInt(200).Equal(rows[0].BalanceAfter))
	require.NotNil(t, rows[0].ShiftID)
	assert.Equal(t, resp.ID, *rows[0].ShiftID)
	assert.Equal(t, string(cashregister.ReferenceShift), rows[0].ReferenceType)

	t.Run("second open for the same custodian is rejected", func(t *testing.T) {
		_, err := svc.Open(context.Background(), appshift.OpenShiftInput{
			TenantID: f.TenantID, BranchID: f.BranchID, UserID: f.Cashier, OpeningBalance: decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, shift.ErrShiftAlreadyOpen)
		assert.Len(t, ledgerRows(t, db, f.BranchID), 1)
	})

	t.Run("opening on top of an existing balance chains", func(t *testing.T) {
		second := openShift(t, svc, f, f.Relief, "50.00")
		rows := ledgerRows(t, db, f.BranchID)
		require.Len(t, rows, 2)
		assert.True(t, decimal.NewFromInt(200).Equal(rows[1].BalanceBefore))
		assert.True(t, decimal.NewFromInt(250).Equal(rows[1].BalanceAfter))
		assert.Equal(t, second.ID, *rows[1].ShiftID)
	})
}

func TestShiftLifecycle_CloseSettlesAgainstLedger(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := newLifecycleService(db, nil, baseTime)
	ctx := context.Background()

	opened := openShift(t, svc, f, f.Cashier, "200.00")
	seedCompletedOrder(t, db, f.TenantID, opened.ID, map[string]string{"CASH": "300.00", "CARD": "50.00"})

	svc.SetClock(shared.FixedClock{At: baseTime.Add(8 * time.Hour)})
	closed, err := svc.Close(ctx, appshift.CloseShiftInput{
		TenantID:       f.TenantID,
		BranchID:       f.BranchID,
		UserID:         f.Cashier,
		ClosingBalance: decimal.NewFromInt(500),
		Notes:          "end of day",
	})
	require.NoError(t, err)

	assert.True(t, closed.IsClosed)
	assert.Equal(t, 2, closed.Version)
	assert.True(t, decimal.NewFromInt(200).Equal(closed.ExpectedBalance))
	assert.True(t, decimal.NewFromInt(300).Equal(closed.Difference))
	assert.True(t, decimal.NewFromInt(300).Equal(closed.TotalCash))
	assert.True(t, decimal.NewFromInt(50).Equal(closed.TotalCard))
	assert.True(t, decimal.NewFromInt(350).Equal(closed.TotalOrders))

	rows := ledgerRows(t, db, f.BranchID)
	require.Len(t, rows, 2)
	assert.Equal(t, cashregister.TransactionTypeShiftClose, rows[1].TransactionType)
	assert.True(t, decimal.NewFromInt(200).Equal(rows[1].BalanceBefore))
	assert.True(t, decimal.NewFromInt(500).Equal(rows[1].BalanceAfter))

	t.Run("closing again finds no open shift", func(t *testing.T) {
		_, err := svc.Close(ctx, appshift.CloseShiftInput{
			TenantID: f.TenantID, BranchID: f.BranchID, UserID: f.Cashier, ClosingBalance: decimal.NewFromInt(500),
		})
		assert.ErrorIs(t, err, shift.ErrShiftNotFound)
		assert.Len(t, ledgerRows(t, db, f.BranchID), 2)
	})

	t.Run("chain stays intact", func(t *testing.T) {
		report, err := NewGormLedgerStore(db).VerifyChain(ctx, f.TenantID, f.BranchID)
		require.NoError(t, err)
		assert.True(t, report.Intact)
		assert.True(t, decimal.NewFromInt(500).Equal(report.Balance))
	})
}

// racingScope lets a competing close commit between the caller's load and
// its transaction
type racingScope struct {
	inner *GormTransactionScope
	race  func()
}

func (s *racingScope) Execute(ctx context.Context, fn func(repos appshift.TransactionalRepositories) error) error {
	if s.race != nil {
		race := s.race
		s.race = nil
		race()
	}
	return s.inner.Execute(ctx, fn)
}

func TestShiftLifecycle_ConcurrentCloseConflicts(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	opened := openShift(t, newLifecycleService(db, nil, baseTime), f, f.Cashier, "200.00")
	closeAt := baseTime.Add(8 * time.Hour)
	in := appshift.CloseShiftInput{
		TenantID:       f.TenantID,
		BranchID:       f.BranchID,
		UserID:         f.Cashier,
		ClosingBalance: decimal.NewFromInt(500),
	}

	var winner *appshift.ShiftResponse
	scope := &racingScope{inner: NewGormTransactionScope(db)}
	scope.race = func() {
		var err error
		winner, err = newLifecycleService(db, nil, closeAt).Close(ctx, in)
		require.NoError(t, err)
	}

	_, err := newLifecycleService(db, scope, closeAt).Close(ctx, in)
	assert.ErrorIs(t, err, shift.ErrShiftConcurrencyConflict)

	require.NotNil(t, winner)
	assert.Equal(t, opened.ID, winner.ID)
	assert.True(t, winner.IsClosed)

	rows := ledgerRows(t, db, f.BranchID)
	require.Len(t, rows, 2)
	assert.True(t, decimal.NewFromInt(500).Equal(rows[1].BalanceAfter))
}

func TestShiftLifecycle_Handover(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := newLifecycleService(db, nil, baseTime)
	ctx := context.Background()

	opened := openShift(t, svc, f, f.Cashier, "200.00")

	handed, err := svc.Handover(ctx, appshift.HandoverShiftInput{
		TenantID:       f.TenantID,
		ShiftID:        opened.ID,
		FromUserID:     f.Cashier,
		ToUserID:       f.Relief,
		CurrentBalance: decimal.NewFromInt(350),
	})
	require.NoError(t, err)

	assert.Equal(t, f.Relief, handed.UserID)
	assert.True(t, handed.IsHandedOver)
	assert.False(t, handed.IsClosed)
	assert.True(t, decimal.NewFromInt(350).Equal(handed.HandoverBalance))
	assert.Len(t, ledgerRows(t, db, f.BranchID), 1)

	current, err := svc.GetCurrentShift(ctx, f.TenantID, f.BranchID, f.Relief)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, opened.ID, current.ID)

	previous, err := svc.GetCurrentShift(ctx, f.TenantID, f.BranchID, f.Cashier)
	require.NoError(t, err)
	assert.Nil(t, previous)

	t.Run("a second handover is rejected", func(t *testing.T) {
		_, err := svc.Handover(ctx, appshift.HandoverShiftInput{
			TenantID: f.TenantID, ShiftID: opened.ID, FromUserID: f.Relief, ToUserID: f.Admin,
		})
		assert.ErrorIs(t, err, shift.ErrShiftAlreadyHandedOver)
	})
}

func TestShiftLifecycle_HandoverToBusyUser(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := newLifecycleService(db, nil, baseTime)
	ctx := context.Background()

	opened := openShift(t, svc, f, f.Cashier, "200.00")
	openShift(t, svc, f, f.Relief, "0")

	_, err := svc.Handover(ctx, appshift.HandoverShiftInput{
		TenantID: f.TenantID, ShiftID: opened.ID, FromUserID: f.Cashier, ToUserID: f.Relief,
	})
	assert.ErrorIs(t, err, shift.ErrHandoverTargetHasOpenShift)

	stored, err := svc.GetShift(ctx, f.TenantID, opened.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Cashier, stored.UserID)
	assert.False(t, stored.IsHandedOver)
}

func TestShiftLifecycle_HandoverByNonCustodian(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := newLifecycleService(db, nil, baseTime)
	ctx := context.Background()

	opened := openShift(t, svc, f, f.Cashier, "200.00")

	_, err := svc.Handover(ctx, appshift.HandoverShiftInput{
		TenantID: f.TenantID, ShiftID: opened.ID, FromUserID: f.Relief, ToUserID: f.Admin,
	})
	assert.ErrorIs(t, err, shift.ErrHandoverNotCustodian)

	stored, err := svc.GetShift(ctx, f.TenantID, opened.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Cashier, stored.UserID)
	assert.False(t, stored.IsHandedOver)
	assert.Equal(t, 1, stored.Version)
}

// staleTargetScope answers every open-shift lookup with false so the
// unique custodian index is the only guard left
type staleTargetScope struct {
	db *gorm.DB
}

type staleTargetRepos struct {
	gormTransactionalRepositories
}

type staleTargetShiftRepo struct {
	*GormShiftRepository
}

func (staleTargetShiftRepo) ExistsOpenForUser(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (r *staleTargetRepos) ShiftRepo() shift.Repository {
	return staleTargetShiftRepo{GormShiftRepository: NewGormShiftRepository(r.tx)}
}

func (s *staleTargetScope) Execute(ctx context.Context, fn func(repos appshift.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&staleTargetRepos{gormTransactionalRepositories{tx: tx}})
	})
}

func TestShiftLifecycle_HandoverLosesRaceToTargetOpen(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	opened := openShift(t, newLifecycleService(db, nil, baseTime), f, f.Cashier, "200.00")
	openShift(t, newLifecycleService(db, nil, baseTime), f, f.Relief, "0")

	svc := newLifecycleService(db, &staleTargetScope{db: db}, baseTime)
	_, err := svc.Handover(ctx, appshift.HandoverShiftInput{
		TenantID: f.TenantID, ShiftID: opened.ID, FromUserID: f.Cashier, ToUserID: f.Relief,
	})
	assert.ErrorIs(t, err, shift.ErrHandoverTargetHasOpenShift)

	stored, err := svc.GetShift(ctx, f.TenantID, opened.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Cashier, stored.UserID)
	assert.False(t, stored.IsHandedOver)
}

func TestShiftLifecycle_SaleCommittedBeforeCloseIsCounted(t *testing.T) {
	ctx := context.Background()

	t.Run("close", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		opened := openShift(t, newLifecycleService(db, nil, baseTime), f, f.Cashier, "200.00")
		seedCompletedOrder(t, db, f.TenantID, opened.ID, map[string]string{"CASH": "50.00"})

		scope := &racingScope{inner: NewGormTransactionScope(db)}
		scope.race = func() {
			seedCompletedOrder(t, db, f.TenantID, opened.ID, map[string]string{"CASH": "80.00", "CARD": "20.00"})
		}

		closed, err := newLifecycleService(db, scope, baseTime.Add(8*time.Hour)).Close(ctx, appshift.CloseShiftInput{
			TenantID: f.TenantID, BranchID: f.BranchID, UserID: f.Cashier, ClosingBalance: decimal.NewFromInt(330),
		})
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(130).Equal(closed.TotalCash))
		assert.True(t, decimal.NewFromInt(20).Equal(closed.TotalCard))
		assert.True(t, decimal.NewFromInt(150).Equal(closed.TotalOrders))
	})

	t.Run("force close", func(t *testing.T) {
		db := setupTestDB(t)
		f := seedFixture(t, db)
		opened := openShift(t, newLifecycleService(db, nil, baseTime), f, f.Cashier, "200.00")

		scope := &racingScope{inner: NewGormTransactionScope(db)}
		scope.race = func() {
			seedCompletedOrder(t, db, f.TenantID, opened.ID, map[string]string{"CASH": "80.00"})
		}

		closed, err := newLifecycleService(db, scope, baseTime.Add(30*time.Hour)).ForceClose(ctx, appshift.ForceCloseShiftInput{
			TenantID: f.TenantID, ShiftID: opened.ID, Reason: "Cashier left", ActorID: &f.Admin, ActorName: "Admin",
		})
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(80).Equal(closed.TotalCash))
		assert.True(t, decimal.NewFromInt(280).Equal(closed.ClosingBalance))

		rows := ledgerRows(t, db, f.BranchID)
		require.Len(t, rows, 2)
		assert.True(t, decimal.NewFromInt(280).Equal(rows[1].BalanceAfter))
	})
}

func TestShiftLifecycle_ForceClose(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := newLifecycleService(db, nil, baseTime)
	ctx := context.Background()

	opened := openShift(t, svc, f, f.Cashier, "200.00")
	seedCompletedOrder(t, db, f.TenantID, opened.ID, map[string]string{"CASH": "120.00"})

	t.Run("blank reason leaves the shift untouched", func(t *testing.T) {
		_, err := svc.ForceClose(ctx, appshift.ForceCloseShiftInput{
			TenantID: f.TenantID, ShiftID: opened.ID, Reason: "  ", ActorID: &f.Admin, ActorName: "Admin",
		})
		assert.ErrorIs(t, err, shift.ErrForceCloseReasonRequired)

		stored, err := svc.GetShift(ctx, f.TenantID, opened.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsClosed)
		assert.Equal(t, 1, stored.Version)
		assert.Len(t, ledgerRows(t, db, f.BranchID), 1)
	})

	t.Run("closing balance defaults to opening plus cash", func(t *testing.T) {
		svc.SetClock(shared.FixedClock{At: baseTime.Add(30 * time.Hour)})
		closed, err := svc.ForceClose(ctx, appshift.ForceCloseShiftInput{
			TenantID: f.TenantID, ShiftID: opened.ID, Reason: "Cashier left", ActorID: &f.Admin, ActorName: "Admin",
		})
		require.NoError(t, err)

		assert.True(t, closed.IsClosed)
		assert.True(t, closed.IsForceClosed)
		assert.Equal(t, "Cashier left", closed.ForceCloseReason)
		assert.True(t, decimal.NewFromInt(320).Equal(closed.ClosingBalance))
		assert.True(t, decimal.NewFromInt(200).Equal(closed.ExpectedBalance))
		assert.True(t, decimal.NewFromInt(120).Equal(closed.Difference))

		rows := ledgerRows(t, db, f.BranchID)
		require.Len(t, rows, 2)
		assert.Equal(t, cashregister.TransactionTypeShiftClose, rows[1].TransactionType)
		assert.True(t, decimal.NewFromInt(320).Equal(rows[1].BalanceAfter))
		require.NotNil(t, rows[1].UserID)
		assert.Equal(t, f.Admin, *rows[1].UserID)
	})

	t.Run("force-closing twice is rejected", func(t *testing.T) {
		_, err := svc.ForceClose(ctx, appshift.ForceCloseShiftInput{
			TenantID: f.TenantID, ShiftID: opened.ID, Reason: "again", ActorID: &f.Admin,
		})
		assert.ErrorIs(t, err, shift.ErrShiftAlreadyForceClosed)
	})
}

// failingLedgerScope runs a real transaction but fails every ledger append
type failingLedgerScope struct {
	db *gorm.DB
}

type failingLedgerRepos struct {
	gormTransactionalRepositories
}

type failingLedger struct {
	*GormLedgerStore
}

var errLedgerDown = errors.New("ledger unavailable")

func (l failingLedger) Append(context.Context, *cashregister.Transaction) error {
	return errLedgerDown
}

func (r *failingLedgerRepos) LedgerStore() cashregister.LedgerStore {
	return failingLedger{GormLedgerStore: NewGormLedgerStore(r.tx)}
}

func (s *failingLedgerScope) Execute(ctx context.Context, fn func(repos appshift.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&failingLedgerRepos{gormTransactionalRepositories{tx: tx}})
	})
}

func TestShiftLifecycle_LedgerFailureRollsBackShift(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	t.Run("open", func(t *testing.T) {
		svc := newLifecycleService(db, &failingLedgerScope{db: db}, baseTime)
		_, err := svc.Open(ctx, appshift.OpenShiftInput{
			TenantID: f.TenantID, BranchID: f.BranchID, UserID: f.Cashier, OpeningBalance: decimal.NewFromInt(100),
		})
		assert.ErrorIs(t, err, errLedgerDown)

		current, err := svc.GetCurrentShift(ctx, f.TenantID, f.BranchID, f.Cashier)
		require.NoError(t, err)
		assert.Nil(t, current)
		assert.Empty(t, ledgerRows(t, db, f.BranchID))
	})

	t.Run("close", func(t *testing.T) {
		opened := openShift(t, newLifecycleService(db, nil, baseTime), f, f.Cashier, "100.00")

		svc := newLifecycleService(db, &failingLedgerScope{db: db}, baseTime.Add(time.Hour))
		_, err := svc.Close(ctx, appshift.CloseShiftInput{
			TenantID: f.TenantID, BranchID: f.BranchID, UserID: f.Cashier, ClosingBalance: decimal.NewFromInt(100),
		})
		assert.ErrorIs(t, err, errLedgerDown)

		stored, err := svc.GetShift(ctx, f.TenantID, opened.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsClosed)
		assert.Equal(t, 1, stored.Version)
		assert.Len(t, ledgerRows(t, db, f.BranchID), 1)
	})
}

func TestShiftLifecycle_DirectoryChecks(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := newLifecycleService(db, nil, baseTime)

	_, err := svc.Open(context.Background(), appshift.OpenShiftInput{
		TenantID: f.TenantID, BranchID: uuid.New(), UserID: f.Cashier, OpeningBalance: decimal.NewFromInt(10),
	})
	assert.Error(t, err)
	assert.Empty(t, ledgerRows(t, db, f.BranchID))
}
