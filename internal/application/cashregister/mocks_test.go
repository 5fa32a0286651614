package cashregister

import (
	"context"

	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockLedgerStore is a mock implementation of cashregister.LedgerStore
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) LockBalance(ctx context.Context, tenantID, branchID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, branchID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerStore) Append(ctx context.Context, txn *cashregister.Transaction) error {
	args := m.Called(ctx, txn)
	if args.Error(0) == nil {
		txn.ChainSeq = 7
		txn.TransactionNumber = "CR-TEST-0007"
	}
	return args.Error(0)
}

func (m *MockLedgerStore) CurrentBalance(ctx context.Context, tenantID, branchID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, branchID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*cashregister.Transaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashregister.Transaction), args.Error(1)
}

func (m *MockLedgerStore) FindAll(ctx context.Context, tenantID uuid.UUID, filter cashregister.TransactionFilter) ([]cashregister.Transaction, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]cashregister.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerStore) VerifyChain(ctx context.Context, tenantID, branchID uuid.UUID) (*cashregister.ChainReport, error) {
	args := m.Called(ctx, tenantID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashregister.ChainReport), args.Error(1)
}

// MockShiftRepository is a mock implementation of shift.Repository
type MockShiftRepository struct {
	mock.Mock
}

func (m *MockShiftRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*shift.Shift, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shift.Shift), args.Error(1)
}

func (m *MockShiftRepository) FindOpenByCustodian(ctx context.Context, tenantID, branchID, userID uuid.UUID) (*shift.Shift, error) {
	args := m.Called(ctx, tenantID, branchID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shift.Shift), args.Error(1)
}

func (m *MockShiftRepository) ExistsOpenForUser(ctx context.Context, tenantID, branchID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, branchID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockShiftRepository) FindOpen(ctx context.Context, q shift.OpenShiftQuery) ([]shift.Shift, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]shift.Shift), args.Error(1)
}

func (m *MockShiftRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shift.ListFilter) ([]shift.Shift, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]shift.Shift), args.Get(1).(int64), args.Error(2)
}

func (m *MockShiftRepository) Create(ctx context.Context, s *shift.Shift) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockShiftRepository) Save(ctx context.Context, s *shift.Shift) error {
	return m.Called(ctx, s).Error(0)
}
