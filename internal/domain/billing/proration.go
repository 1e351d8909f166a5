package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProrationCalculator computes the mid-cycle price adjustment when switching
// plans: the remaining credit of the current plan offsets the proportional
// cost of the new one. Pure, no side effects.
type ProrationCalculator struct{}

// NewProrationCalculator creates a new calculator
func NewProrationCalculator() *ProrationCalculator {
	return &ProrationCalculator{}
}

// Calculate returns the amount to charge for switching from currentPlan to
// newPlan at the given instant of the cycle. Yields zero when the remaining
// credit exceeds the new proportional cost (downgrades), the new plan's full
// price when there is no partial period left to prorate.
func (c *ProrationCalculator) Calculate(cycle BillingCycle, currentPlan, newPlan *Plan, at time.Time) (valueobject.Money, error) {
	totalDays := cycle.TotalDays()
	remainingDays := cycle.RemainingDays(at)
	if totalDays == 0 || remainingDays == 0 {
		return newPlan.Price, nil
	}
	usedDays := cycle.UsedDays(at)

	currentDailyRate := dailyRate(currentPlan.Price, totalDays)
	newDailyRate := dailyRate(newPlan.Price, totalDays)

	usedAmount := currentDailyRate.MultiplyByInt(int64(usedDays))
	remainingCredit, err := currentPlan.Price.Subtract(usedAmount)
	if err != nil {
		return valueobject.Money{}, err
	}

	newProportionalCost := newDailyRate.MultiplyByInt(int64(remainingDays))
	return newProportionalCost.Subtract(remainingCredit)
}

// dailyRate divides a price across the cycle's days, rounded to the nearest
// cent, ties away from zero.
func dailyRate(price valueobject.Money, totalDays int) valueobject.Money {
	cents := decimal.NewFromInt(price.Cents()).
		Div(decimal.NewFromInt(int64(totalDays))).
		Round(0).
		IntPart()
	rate, _ := valueobject.NewMoney(cents, price.Currency())
	return rate
}
