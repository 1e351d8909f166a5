package billing

import (
	"testing"

	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(t *testing.T, priceCents int64, ordersLimit int, period BillingPeriod, overageCents int64) *Plan {
	t.Helper()
	plan, err := NewPlan("Pro", valueobject.MustMoneyBRL(priceCents), ordersLimit, period, valueobject.MustMoneyBRL(overageCents))
	require.NoError(t, err)
	return plan
}

func TestNewPlan(t *testing.T) {
	plan := newTestPlan(t, 10000, 100, BillingPeriodMonthly, 50)

	assert.Equal(t, "Pro", plan.Name)
	assert.Equal(t, int64(10000), plan.Price.Cents())
	assert.True(t, plan.IsActive())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", plan.GetID().String())
}

func TestNewPlanValidation(t *testing.T) {
	price := valueobject.MustMoneyBRL(10000)
	rate := valueobject.MustMoneyBRL(50)

	_, err := NewPlan("Pro", price, 100, BillingPeriod("WEEKLY"), rate)
	assert.ErrorIs(t, err, ErrInvalidBillingPeriod)

	_, err = NewPlan("Pro", price, -1, BillingPeriodMonthly, rate)
	assert.Error(t, err)
}

func TestPlanCalculateTotalAmount(t *testing.T) {
	plan := newTestPlan(t, 10000, 100, BillingPeriodMonthly, 50)

	tests := []struct {
		name        string
		ordersCount int
		wantCents   int64
	}{
		{name: "under allowance", ordersCount: 50, wantCents: 10000},
		{name: "at allowance", ordersCount: 100, wantCents: 10000},
		{name: "over allowance", ordersCount: 120, wantCents: 11000},
		{name: "one extra order", ordersCount: 101, wantCents: 10050},
		{name: "zero usage", ordersCount: 0, wantCents: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := plan.CalculateTotalAmount(tt.ordersCount)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCents, total.Cents())
		})
	}
}

func TestPlanHasExtraOrders(t *testing.T) {
	plan := newTestPlan(t, 10000, 100, BillingPeriodMonthly, 50)

	assert.False(t, plan.HasExtraOrders(100))
	assert.True(t, plan.HasExtraOrders(101))
}
