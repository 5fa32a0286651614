package persistence

import (
	"fmt"
	"testing"
	"time"

	"github.com/erp/pos/internal/domain/directory"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// baseTime is a fixed UTC instant used across repository tests
var baseTime = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

// setupTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every statement on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// testFixture is a tenant with one branch and a few users
type testFixture struct {
	TenantID uuid.UUID
	BranchID uuid.UUID
	Cashier  uuid.UUID
	Relief   uuid.UUID
	Admin    uuid.UUID
}

func seedFixture(t *testing.T, db *gorm.DB) testFixture {
	t.Helper()

	f := testFixture{
		TenantID: uuid.New(),
		BranchID: uuid.New(),
		Cashier:  uuid.New(),
		Relief:   uuid.New(),
		Admin:    uuid.New(),
	}

	base := func(id uuid.UUID) models.BaseModel {
		return models.BaseModel{ID: id, CreatedAt: baseTime, UpdatedAt: baseTime}
	}

	require.NoError(t, db.Create(&models.TenantModel{BaseModel: base(f.TenantID), Name: "Acme", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.BranchModel{BaseModel: base(f.BranchID), TenantID: f.TenantID, Name: "Main", IsActive: true}).Error)
	users := []models.UserModel{
		{BaseModel: base(f.Cashier), TenantID: f.TenantID, Name: "Cashier", Role: directory.RoleCashier, IsActive: true},
		{BaseModel: base(f.Relief), TenantID: f.TenantID, Name: "Relief", Role: directory.RoleCashier, IsActive: true},
		{BaseModel: base(f.Admin), TenantID: f.TenantID, Name: "Admin", Role: directory.RoleAdmin, IsActive: true},
	}
	require.NoError(t, db.Create(&users).Error)
	return f
}

// seedCompletedOrder inserts a completed order with the given payments (method, amount pairs)
func seedCompletedOrder(t *testing.T, db *gorm.DB, tenantID, shiftID uuid.UUID, payments map[string]string) {
	t.Helper()

	orderID := uuid.New()
	completedAt := baseTime.Add(time.Hour)
	total := decimal.Zero
	rows := make([]models.OrderPaymentModel, 0, len(payments))
	for method, amount := range payments {
		a := decimal.RequireFromString(amount)
		total = total.Add(a)
		rows = append(rows, models.OrderPaymentModel{ID: uuid.New(), OrderID: orderID, Method: method, Amount: a})
	}

	order := models.OrderModel{
		BaseModel:   models.BaseModel{ID: orderID, CreatedAt: completedAt, UpdatedAt: completedAt},
		TenantID:    tenantID,
		ShiftID:     &shiftID,
		Status:      models.OrderStatusCompleted,
		Total:       total,
		CompletedAt: &completedAt,
		Payments:    rows,
	}
	require.NoError(t, db.Create(&order).Error)
}
