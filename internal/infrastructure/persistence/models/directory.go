package models

import (
	"time"

	"github.com/erp/pos/internal/domain/directory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The models below are read models of records owned by the provisioning
// and ordering systems. This service never writes them outside tests.

// TenantModel is the read model of a tenant
type TenantModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the model to a directory Tenant
func (m *TenantModel) ToDomain() *directory.Tenant {
	return &directory.Tenant{ID: m.ID, Name: m.Name, IsActive: m.IsActive}
}

// BranchModel is the read model of a branch
type BranchModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(200);not null"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the model to a directory Branch
func (m *BranchModel) ToDomain() *directory.Branch {
	return &directory.Branch{ID: m.ID, TenantID: m.TenantID, Name: m.Name, IsActive: m.IsActive}
}

// UserModel is the read model of a user
type UserModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(200);not null"`
	Role     string    `gorm:"type:varchar(20);not null;default:'cashier'"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a directory User
func (m *UserModel) ToDomain() *directory.User {
	return &directory.User{ID: m.ID, TenantID: m.TenantID, Name: m.Name, Role: m.Role, IsActive: m.IsActive}
}

// OrderStatusCompleted marks an order whose payments are settled
const OrderStatusCompleted = "COMPLETED"

// OrderModel is the read model of a POS order
type OrderModel struct {
	BaseModel
	TenantID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	ShiftID     *uuid.UUID          `gorm:"type:uuid;index"`
	Status      string              `gorm:"type:varchar(20);not null"`
	Total       decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	CompletedAt *time.Time          `gorm:""`
	Payments    []OrderPaymentModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderPaymentModel is the read model of one tender applied to an order
type OrderPaymentModel struct {
	ID      uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method  string          `gorm:"type:varchar(20);not null"`
	Amount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderPaymentModel) TableName() string {
	return "order_payments"
}

// AllModels lists every model owned or read by this service, in creation order
func AllModels() []any {
	return []any{
		&TenantModel{},
		&BranchModel{},
		&UserModel{},
		&OrderModel{},
		&OrderPaymentModel{},
		&ShiftModel{},
		&CashRegisterTransactionModel{},
		&CashRegisterHeadModel{},
		&ShiftAuditLogModel{},
	}
}
