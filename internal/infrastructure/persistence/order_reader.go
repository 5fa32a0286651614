package persistence

import (
	"context"
	"fmt"

	"github.com/erp/pos/internal/domain/sales"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderReader implements sales.OrderReader over the ordering tables
type GormOrderReader struct {
	db *gorm.DB
}

// NewGormOrderReader creates a new GormOrderReader
func NewGormOrderReader(db *gorm.DB) *GormOrderReader {
	return &GormOrderReader{db: db}
}

// CompletedOrdersForShift returns the completed orders of a shift with their payments
func (r *GormOrderReader) CompletedOrdersForShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]sales.CompletedOrder, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("tenant_id = ? AND shift_id = ? AND status = ?", tenantID, shiftID, models.OrderStatusCompleted).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load completed orders: %w", err)
	}

	orders := make([]sales.CompletedOrder, len(rows))
	for i, row := range rows {
		payments := make([]sales.Payment, len(row.Payments))
		for j, p := range row.Payments {
			payments[j] = sales.Payment{Method: p.Method, Amount: p.Amount}
		}
		orders[i] = sales.CompletedOrder{ID: row.ID, Total: row.Total, Payments: payments}
	}
	return orders, nil
}

// Ensure GormOrderReader implements sales.OrderReader
var _ sales.OrderReader = (*GormOrderReader)(nil)
