package shift

import (
	"context"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// ListFilter narrows shift queries within a tenant
type ListFilter struct {
	shared.Filter
	BranchID *uuid.UUID
	UserID   *uuid.UUID
	IsClosed *bool
	From     *time.Time
	To       *time.Time
}

// OpenShiftQuery selects open shifts across tenants for background monitors
type OpenShiftQuery struct {
	// OpenedBefore keeps only shifts opened at or before this instant (zero = no bound)
	OpenedBefore time.Time
	// After resumes a scan strictly past this position in (opened_at, id) order
	After        *OpenShiftCursor
	Limit        int
}

// OpenShiftCursor is the last (opened_at, id) pair a scan has seen
type OpenShiftCursor struct {
	OpenedAt time.Time
	ID       uuid.UUID
}

// Repository defines persistence operations for shifts
type Repository interface {
	// FindByID returns the shift or ErrShiftNotFound
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Shift, error)

	// FindOpenByCustodian returns the open shift of a user in a branch or ErrShiftNotFound
	FindOpenByCustodian(ctx context.Context, tenantID, branchID, userID uuid.UUID) (*Shift, error)

	// ExistsOpenForUser reports whether the user holds an open shift in the branch
	ExistsOpenForUser(ctx context.Context, tenantID, branchID, userID uuid.UUID) (bool, error)

	// FindOpen lists open shifts for all tenants ordered by (opened_at, id)
	FindOpen(ctx context.Context, q OpenShiftQuery) ([]Shift, error)

	// FindAll lists shifts of a tenant with paging
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]Shift, int64, error)

	// Create inserts a new shift. A second open shift for the same custodian
	// fails with ErrShiftAlreadyOpen.
	Create(ctx context.Context, s *Shift) error

	// Save persists a mutated shift guarded by its version token. The
	// aggregate's Version must already be incremented; the stored row must
	// still carry Version-1 or ErrShiftConcurrencyConflict is returned.
	Save(ctx context.Context, s *Shift) error
}
