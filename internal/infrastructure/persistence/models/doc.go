// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: base persistence models (BaseModel, AggregateModel)
//   - shift.go: shifts
//   - cash_register.go: ledger rows and the per-branch head row
//   - audit.go: shift audit annotations
//   - directory.go: read models for tenants, branches, users, orders and payments
package models
