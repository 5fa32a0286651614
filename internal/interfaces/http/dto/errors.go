package dto

import "net/http"

// Transport error codes. Domain errors keep their own codes.
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	// shared
	"NOT_FOUND":            http.StatusNotFound,
	"INVALID_INPUT":        http.StatusBadRequest,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"UNAUTHORIZED":         http.StatusUnauthorized,
	"FORBIDDEN":            http.StatusForbidden,
	"INVALID_STATE":        http.StatusUnprocessableEntity,

	// directory
	"TENANT_NOT_FOUND": http.StatusNotFound,
	"BRANCH_NOT_FOUND": http.StatusNotFound,
	"USER_NOT_FOUND":   http.StatusNotFound,

	// shift
	"SHIFT_NOT_FOUND":                   http.StatusNotFound,
	"SHIFT_ALREADY_OPEN":                http.StatusConflict,
	"SHIFT_ALREADY_CLOSED":              http.StatusConflict,
	"SHIFT_ALREADY_FORCE_CLOSED":        http.StatusConflict,
	"SHIFT_ALREADY_HANDED_OVER":         http.StatusConflict,
	"SHIFT_USER_HAS_OPEN_SHIFT":         http.StatusConflict,
	"SHIFT_NOT_CUSTODIAN":               http.StatusForbidden,
	"SHIFT_CONCURRENCY_CONFLICT":        http.StatusConflict,
	"SHIFT_CANNOT_HANDOVER_CLOSED":      http.StatusUnprocessableEntity,
	"SHIFT_HANDOVER_TO_SAME_USER":       http.StatusUnprocessableEntity,
	"SHIFT_HANDOVER_USER_REQUIRED":      http.StatusBadRequest,
	"SHIFT_FORCE_CLOSE_REASON_REQUIRED": http.StatusBadRequest,
	"INVALID_OPENING_BALANCE":           http.StatusBadRequest,
	"INVALID_CLOSING_BALANCE":           http.StatusBadRequest,
	"SHIFT_DELETE_NOT_ALLOWED":          http.StatusMethodNotAllowed,

	// cash register
	"CASH_TRANSACTION_NOT_FOUND":         http.StatusNotFound,
	"INVALID_CASH_TRANSACTION_TYPE":      http.StatusBadRequest,
	"INVALID_CASH_TRANSACTION_AMOUNT":    http.StatusBadRequest,
	"INVALID_CASH_TRANSACTION_REFERENCE": http.StatusBadRequest,
	"CASH_TRANSACTION_TYPE_NOT_ALLOWED":  http.StatusUnprocessableEntity,
	"INSUFFICIENT_CASH_BALANCE":          http.StatusUnprocessableEntity,
	"LEDGER_CHAIN_BROKEN":                http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
