package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ShiftSortFields contains allowed sort fields for shifts
var ShiftSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"opened_at":        true,
	"closed_at":        true,
	"last_activity_at": true,
	"opening_balance":  true,
	"closing_balance":  true,
	"difference":       true,
}

// CashTransactionSortFields contains allowed sort fields for ledger rows
var CashTransactionSortFields = map[string]bool{
	"chain_seq":        true,
	"created_at":       true,
	"transaction_date": true,
	"amount":           true,
	"transaction_type": true,
}

func orderClause(field, dir string) string {
	return field + " " + ValidateSortOrder(dir)
}
