package cashregister

import "github.com/erp/pos/internal/domain/shared"

// Ledger errors
var (
	ErrTransactionNotFound  = shared.NewDomainError("CASH_TRANSACTION_NOT_FOUND", "Cash register transaction not found")
	ErrInvalidType          = shared.NewDomainError("INVALID_CASH_TRANSACTION_TYPE", "Invalid cash register transaction type")
	ErrInvalidAmount        = shared.NewDomainError("INVALID_CASH_TRANSACTION_AMOUNT", "Amount must be positive for this transaction type")
	ErrInvalidReference     = shared.NewDomainError("INVALID_CASH_TRANSACTION_REFERENCE", "Invalid transaction reference")
	ErrManualTypeNotAllowed = shared.NewDomainError("CASH_TRANSACTION_TYPE_NOT_ALLOWED", "This transaction type cannot be recorded manually")
	ErrInsufficientCash     = shared.NewDomainError("INSUFFICIENT_CASH_BALANCE", "The register does not hold enough cash for this transaction")

	// ErrChainBroken signals that the balance chain of a branch is not
	// contiguous. It is an internal invariant violation, never a client error.
	ErrChainBroken = shared.NewDomainError("LEDGER_CHAIN_BROKEN", "Cash register balance chain is inconsistent")
)
