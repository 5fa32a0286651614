package shift

import (
	"context"
	"time"

	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/directory"
	"github.com/erp/pos/internal/domain/sales"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shift.Shift), args.Error(1)
}

func (m *MockShiftRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shift.ListFilter) ([]shift.Shift, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]shift.Shift), args.Get(1).(int64), args.Error(2)
}

func (m *MockShiftRepository) Create(ctx context.Context, s *shift.Shift) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShiftRepository) Save(ctx context.Context, s *shift.Shift) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

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

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, logs ...*audit.ShiftAuditLog) error {
	args := m.Called(ctx, logs)
	return args.Error(0)
}

func (m *MockAuditRepository) ExistsSince(ctx context.Context, shiftID uuid.UUID, action audit.Action, since time.Time) (bool, error) {
	args := m.Called(ctx, shiftID, action, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuditRepository) FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]audit.ShiftAuditLog, error) {
	args := m.Called(ctx, tenantID, shiftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.ShiftAuditLog), args.Error(1)
}

// MockDirectory is a mock implementation of directory.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetTenant(ctx context.Context, tenantID uuid.UUID) (*directory.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Tenant), args.Error(1)
}

func (m *MockDirectory) GetBranch(ctx context.Context, tenantID, branchID uuid.UUID) (*directory.Branch, error) {
	args := m.Called(ctx, tenantID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Branch), args.Error(1)
}

func (m *MockDirectory) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*directory.User, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.User), args.Error(1)
}

func (m *MockDirectory) ListActiveAdmins(ctx context.Context, tenantID uuid.UUID) ([]directory.User, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directory.User), args.Error(1)
}

// MockOrderReader is a mock implementation of sales.OrderReader
type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) CompletedOrdersForShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]sales.CompletedOrder, error) {
	args := m.Called(ctx, tenantID, shiftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.CompletedOrder), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
