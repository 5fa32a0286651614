// Package sales exposes the completed-order figures a shift is settled on.
package sales

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethodCash is the only method that moves drawer cash
const PaymentMethodCash = "CASH"

// Payment is one tender applied to an order
type Payment struct {
	Method string
	Amount decimal.Decimal
}

// IsCash reports whether the tender was cash
func (p Payment) IsCash() bool {
	return strings.EqualFold(p.Method, PaymentMethodCash)
}

// CompletedOrder is an order settled during a shift
type CompletedOrder struct {
	ID       uuid.UUID
	Total    decimal.Decimal
	Payments []Payment
}

// Summary splits completed order payments into cash and non-cash
type Summary struct {
	Cash   decimal.Decimal
	Card   decimal.Decimal
	Orders decimal.Decimal
	Count  int
}

// Summarize totals the given orders
func Summarize(orders []CompletedOrder) Summary {
	s := Summary{Cash: decimal.Zero, Card: decimal.Zero, Orders: decimal.Zero}
	for _, o := range orders {
		s.Orders = s.Orders.Add(o.Total)
		s.Count++
		for _, p := range o.Payments {
			if p.IsCash() {
				s.Cash = s.Cash.Add(p.Amount)
			} else {
				s.Card = s.Card.Add(p.Amount)
			}
		}
	}
	return s
}

// OrderReader reads settled orders owned by the ordering system
type OrderReader interface {
	CompletedOrdersForShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]CompletedOrder, error)
}
