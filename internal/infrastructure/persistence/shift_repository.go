package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/pos/internal/domain/shift"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShiftRepository implements shift.Repository using GORM
type GormShiftRepository struct {
	db *gorm.DB
}

// NewGormShiftRepository creates a new GormShiftRepository
func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

// FindByID finds a shift by ID within a tenant
func (r *GormShiftRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*shift.Shift, error) {
	var model models.ShiftModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shift.ErrShiftNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByCustodian finds the open shift of a user in a branch
func (r *GormShiftRepository) FindOpenByCustodian(ctx context.Context, tenantID, branchID, userID uuid.UUID) (*shift.Shift, error) {
	var model models.ShiftModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND user_id = ? AND is_closed = ?", tenantID, branchID, userID, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shift.ErrShiftNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsOpenForUser reports whether the user holds an open shift in the branch
func (r *GormShiftRepository) ExistsOpenForUser(ctx context.Context, tenantID, branchID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ShiftModel{}).
		Where("tenant_id = ? AND branch_id = ? AND user_id = ? AND is_closed = ?", tenantID, branchID, userID, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindOpen lists open shifts across tenants in (opened_at, id) order.
// q.After continues a keyset scan from the last row of the previous page.
func (r *GormShiftRepository) FindOpen(ctx context.Context, q shift.OpenShiftQuery) ([]shift.Shift, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ShiftModel{}).
		Where("is_closed = ?", false)
	if !q.OpenedBefore.IsZero() {
		query = query.Where("opened_at <= ?", q.OpenedBefore)
	}
	if q.After != nil {
		query = query.Where("(opened_at > ? OR (opened_at = ? AND id > ?))", q.After.OpenedAt, q.After.OpenedAt, q.After.ID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var shiftModels []models.ShiftModel
	if err := query.Order("opened_at ASC").Order("id ASC").Find(&shiftModels).Error; err != nil {
		return nil, err
	}

	shifts := make([]shift.Shift, len(shiftModels))
	for i := range shiftModels {
		shifts[i] = *shiftModels[i].ToDomain()
	}
	return shifts, nil
}

// FindAll lists shifts of a tenant with filtering and pagination
func (r *GormShiftRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shift.ListFilter) ([]shift.Shift, int64, error) {
	filter.Filter = filter.Filter.Normalize()

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ShiftModel{}).Where("tenant_id = ?", tenantID), filter).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, ShiftSortFields, "opened_at")
	var shiftModels []models.ShiftModel
	if err := query.
		Order(orderClause(sortField, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&shiftModels).Error; err != nil {
		return nil, 0, err
	}

	shifts := make([]shift.Shift, len(shiftModels))
	for i := range shiftModels {
		shifts[i] = *shiftModels[i].ToDomain()
	}
	return shifts, total, nil
}

func (r *GormShiftRepository) applyFilter(query *gorm.DB, filter shift.ListFilter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.IsClosed != nil {
		query = query.Where("is_closed = ?", *filter.IsClosed)
	}
	if filter.From != nil {
		query = query.Where("opened_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("opened_at <= ?", *filter.To)
	}
	return query
}

// Create inserts a new shift. The partial unique index on open shifts turns
// a concurrent second open into ErrShiftAlreadyOpen.
func (r *GormShiftRepository) Create(ctx context.Context, s *shift.Shift) error {
	model := models.ShiftModelFromDomain(s)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shift.ErrShiftAlreadyOpen
		}
		return fmt.Errorf("failed to create shift: %w", err)
	}
	return nil
}

// Save writes the mutable columns only if the stored version is still the
// one the aggregate was loaded with.
func (r *GormShiftRepository) Save(ctx context.Context, s *shift.Shift) error {
	model := models.ShiftModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&models.ShiftModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", s.ID, s.TenantID, s.Version-1).
		Updates(model.MutableColumns())

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shift.ErrShiftAlreadyOpen
		}
		return fmt.Errorf("failed to save shift: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shift.ErrShiftConcurrencyConflict
	}
	return nil
}

// Ensure GormShiftRepository implements shift.Repository
var _ shift.Repository = (*GormShiftRepository)(nil)
