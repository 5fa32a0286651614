// Package directory is the read-only view of tenants, branches and users
// owned by the provisioning system.
package directory

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// Role names used for authorization and warning fan-out
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// Lookup errors
var (
	ErrTenantNotFound = shared.NewDomainError("TENANT_NOT_FOUND", "Tenant not found or inactive")
	ErrBranchNotFound = shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found or inactive")
	ErrUserNotFound   = shared.NewDomainError("USER_NOT_FOUND", "User not found or inactive")
)

// Tenant is an account of the back office
type Tenant struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
}

// Branch is a store location of a tenant
type Branch struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	IsActive bool
}

// User is a person that may hold a drawer
type User struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	Role     string
	IsActive bool
}

// IsAdmin reports whether the user receives critical shift warnings
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Directory looks up active tenants, branches and users. Each Get returns
// the matching Err*NotFound when the record is missing or inactive.
type Directory interface {
	GetTenant(ctx context.Context, tenantID uuid.UUID) (*Tenant, error)
	GetBranch(ctx context.Context, tenantID, branchID uuid.UUID) (*Branch, error)
	GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*User, error)
	ListActiveAdmins(ctx context.Context, tenantID uuid.UUID) ([]User, error)
}
