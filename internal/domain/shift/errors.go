package shift

import "github.com/erp/pos/internal/domain/shared"

// Shift lifecycle errors. Codes are stable and surfaced to API clients.
var (
	ErrShiftAlreadyOpen           = shared.NewDomainError("SHIFT_ALREADY_OPEN", "An open shift already exists for this user in this branch")
	ErrShiftNotFound              = shared.NewDomainError("SHIFT_NOT_FOUND", "Shift not found")
	ErrShiftAlreadyClosed         = shared.NewDomainError("SHIFT_ALREADY_CLOSED", "Shift is already closed")
	ErrShiftConcurrencyConflict   = shared.NewDomainError("SHIFT_CONCURRENCY_CONFLICT", "Shift was modified by another request, reload and retry")
	ErrForceCloseReasonRequired   = shared.NewDomainError("SHIFT_FORCE_CLOSE_REASON_REQUIRED", "A reason is required to force-close a shift")
	ErrShiftAlreadyForceClosed    = shared.NewDomainError("SHIFT_ALREADY_FORCE_CLOSED", "Shift has already been force-closed")
	ErrHandoverUserRequired       = shared.NewDomainError("SHIFT_HANDOVER_USER_REQUIRED", "A target user is required for handover")
	ErrHandoverToSameUser         = shared.NewDomainError("SHIFT_HANDOVER_TO_SAME_USER", "Cannot hand a shift over to its current custodian")
	ErrCannotHandoverClosed       = shared.NewDomainError("SHIFT_CANNOT_HANDOVER_CLOSED", "Cannot hand over a closed shift")
	ErrShiftAlreadyHandedOver     = shared.NewDomainError("SHIFT_ALREADY_HANDED_OVER", "Shift has already been handed over")
	ErrHandoverTargetHasOpenShift = shared.NewDomainError("SHIFT_USER_HAS_OPEN_SHIFT", "Target user already has an open shift in this branch")
	ErrHandoverNotCustodian       = shared.NewDomainError("SHIFT_NOT_CUSTODIAN", "Only the current custodian can hand this shift over")
	ErrShiftDeleteNotAllowed      = shared.NewDomainError("SHIFT_DELETE_NOT_ALLOWED", "Shifts are financial records and cannot be deleted")
	ErrInvalidOpeningBalance      = shared.NewDomainError("INVALID_OPENING_BALANCE", "Opening balance cannot be negative")
	ErrInvalidClosingBalance      = shared.NewDomainError("INVALID_CLOSING_BALANCE", "Closing balance cannot be negative")
)
