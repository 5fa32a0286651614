package persistence

import (
	"context"
	"errors"

	"github.com/erp/pos/internal/domain/directory"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDirectory implements directory.Directory over the provisioning tables
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a new GormDirectory
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// GetTenant returns an active tenant
func (d *GormDirectory) GetTenant(ctx context.Context, tenantID uuid.UUID) (*directory.Tenant, error) {
	var model models.TenantModel
	if err := d.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", tenantID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, directory.ErrTenantNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetBranch returns an active branch of the tenant
func (d *GormDirectory) GetBranch(ctx context.Context, tenantID, branchID uuid.UUID) (*directory.Branch, error) {
	var model models.BranchModel
	if err := d.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND is_active = ?", tenantID, branchID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, directory.ErrBranchNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetUser returns an active user of the tenant
func (d *GormDirectory) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*directory.User, error) {
	var model models.UserModel
	if err := d.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND is_active = ?", tenantID, userID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, directory.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListActiveAdmins returns the active administrators of the tenant
func (d *GormDirectory) ListActiveAdmins(ctx context.Context, tenantID uuid.UUID) ([]directory.User, error) {
	var rows []models.UserModel
	if err := d.db.WithContext(ctx).
		Where("tenant_id = ? AND role = ? AND is_active = ?", tenantID, directory.RoleAdmin, true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]directory.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
	}
	return users, nil
}

// Ensure GormDirectory implements directory.Directory
var _ directory.Directory = (*GormDirectory)(nil)
