package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/audit"
	"github.com/erp/pos/internal/domain/cashregister"
	"github.com/erp/pos/internal/domain/directory"
	"github.com/erp/pos/internal/domain/sales"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

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
	return args.Get(0).([]shift.Shift), args.Get(1).(int64), args.Error(2)
}

func (m *MockShiftRepository) Create(ctx context.Context, s *shift.Shift) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockShiftRepository) Save(ctx context.Context, s *shift.Shift) error {
	return m.Called(ctx, s).Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, logs ...*audit.ShiftAuditLog) error {
	return m.Called(ctx, logs).Error(0)
}

func (m *MockAuditRepository) ExistsSince(ctx context.Context, shiftID uuid.UUID, action audit.Action, since time.Time) (bool, error) {
	args := m.Called(ctx, shiftID, action, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuditRepository) FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]audit.ShiftAuditLog, error) {
	args := m.Called(ctx, tenantID, shiftID)
	return args.Get(0).([]audit.ShiftAuditLog), args.Error(1)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetTenant(ctx context.Context, tenantID uuid.UUID) (*directory.Tenant, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(*directory.Tenant), args.Error(1)
}

func (m *MockDirectory) GetBranch(ctx context.Context, tenantID, branchID uuid.UUID) (*directory.Branch, error) {
	args := m.Called(ctx, tenantID, branchID)
	return args.Get(0).(*directory.Branch), args.Error(1)
}

func (m *MockDirectory) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*directory.User, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).(*directory.User), args.Error(1)
}

func (m *MockDirectory) ListActiveAdmins(ctx context.Context, tenantID uuid.UUID) ([]directory.User, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directory.User), args.Error(1)
}

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

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) LockBalance(ctx context.Context, tenantID, branchID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, branchID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerStore) Append(ctx context.Context, txn *cashregister.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockLedgerStore) CurrentBalance(ctx context.Context, tenantID, branchID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, branchID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*cashregister.Transaction, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).(*cashregister.Transaction), args.Error(1)
}

func (m *MockLedgerStore) FindAll(ctx context.Context, tenantID uuid.UUID, filter cashregister.TransactionFilter) ([]cashregister.Transaction, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]cashregister.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerStore) VerifyChain(ctx context.Context, tenantID, branchID uuid.UUID) (*cashregister.ChainReport, error) {
	args := m.Called(ctx, tenantID, branchID)
	return args.Get(0).(*cashregister.ChainReport), args.Error(1)
}

// memoryClaims is a ClaimStore backed by a map, ignoring ttl
type memoryClaims struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func newMemoryClaims() *memoryClaims {
	return &memoryClaims{held: make(map[string]bool)}
}

func (c *memoryClaims) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held[key] {
		return false, nil
	}
	c.held[key] = true
	return true, nil
}

func (c *memoryClaims) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.held, key)
	c.released = append(c.released, key)
	return nil
}

// recordedRun captures one RecordMonitorRun call
type recordedRun struct {
	monitor  string
	err      error
	outcomes map[string]int
}

type fakeRecorder struct {
	runs []recordedRun
}

func (r *fakeRecorder) RecordMonitorRun(_ context.Context, monitor string, _ time.Duration, err error, outcomes map[string]int) {
	r.runs = append(r.runs, recordedRun{monitor: monitor, err: err, outcomes: outcomes})
}

// memoryAudits is an audit.Repository that keeps rows in a slice
type memoryAudits struct {
	mu   sync.Mutex
	rows []audit.ShiftAuditLog
}

func (a *memoryAudits) Create(_ context.Context, logs ...*audit.ShiftAuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, l := range logs {
		a.rows = append(a.rows, *l)
	}
	return nil
}

func (a *memoryAudits) ExistsSince(_ context.Context, shiftID uuid.UUID, action audit.Action, since time.Time) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.rows {
		if r.ShiftID == shiftID && r.Action == action && r.IsPrimary() && !r.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (a *memoryAudits) FindByShift(_ context.Context, _, shiftID uuid.UUID) ([]audit.ShiftAuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []audit.ShiftAuditLog
	for _, r := range a.rows {
		if r.ShiftID == shiftID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (a *memoryAudits) count(action audit.Action) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, r := range a.rows {
		if r.Action == action {
			n++
		}
	}
	return n
}
