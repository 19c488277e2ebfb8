package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceCost represents a cost amount for a specific AWS service.
type ServiceCost struct {
	ServiceName string          `json:"service_name"`
	Cost        decimal.Decimal `json:"cost"`
}

// CloudSpend contains the cost information shown in the analytics panel.
type CloudSpend struct {
	AccountID                 string          `json:"account_id,omitempty"`
	CurrentMonthCost          decimal.Decimal `json:"current_month"`
	LastMonthCost             decimal.Decimal `json:"last_month"`
	CurrentMonthCostByService []ServiceCost   `json:"current_month_cost_by_service"`
	Budgets                   []BudgetInfo    `json:"budgets"`
	CurrentPeriodStart        time.Time       `json:"current_period_start"`
	CurrentPeriodEnd          time.Time       `json:"current_period_end"`
}

// Change returns the month over month change in percent. ok is false when
// there is no previous month to compare against.
func (c CloudSpend) Change() (pct decimal.Decimal, ok bool) {
	if c.LastMonthCost.IsZero() {
		return decimal.Zero, false
	}
	return c.CurrentMonthCost.Sub(c.LastMonthCost).
		Div(c.LastMonthCost).
		Mul(decimal.NewFromInt(100)).
		Round(2), true
}

// TopServices returns at most n services, assuming the slice is sorted by cost.
func (c CloudSpend) TopServices(n int) []ServiceCost {
	if n >= len(c.CurrentMonthCostByService) {
		return c.CurrentMonthCostByService
	}
	return c.CurrentMonthCostByService[:n]
}
