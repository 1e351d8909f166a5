package billing

import (
	"fmt"
	"time"
)

// BillingPeriod represents the calendar length of a billing cycle
type BillingPeriod string

const (
	BillingPeriodMonthly    BillingPeriod = "MONTHLY"
	BillingPeriodQuarterly  BillingPeriod = "QUARTERLY"
	BillingPeriodSemiannual BillingPeriod = "SEMIANNUAL"
	BillingPeriodYearly     BillingPeriod = "YEARLY"
)

// IsValid checks if the period is a valid BillingPeriod
func (p BillingPeriod) IsValid() bool {
	switch p {
	case BillingPeriodMonthly, BillingPeriodQuarterly, BillingPeriodSemiannual, BillingPeriodYearly:
		return true
	}
	return false
}

// Months returns the calendar length of the period in months
func (p BillingPeriod) Months() int {
	switch p {
	case BillingPeriodMonthly:
		return 1
	case BillingPeriodQuarterly:
		return 3
	case BillingPeriodSemiannual:
		return 6
	case BillingPeriodYearly:
		return 12
	}
	return 0
}

// String returns the string representation of BillingPeriod
func (p BillingPeriod) String() string {
	return string(p)
}

// BillingCycle is a value object describing the time window a subscription is
// currently paying for. Immutable; NextCycle returns a new instance.
type BillingCycle struct {
	period   BillingPeriod
	startsAt time.Time
	endsAt   time.Time
}

// NewBillingCycle creates a cycle starting at the given instant, ending one
// period length later.
func NewBillingCycle(period BillingPeriod, startsAt time.Time) (BillingCycle, error) {
	if !period.IsValid() {
		return BillingCycle{}, ErrInvalidBillingPeriod
	}
	endsAt := startsAt.AddDate(0, period.Months(), 0)
	if !endsAt.After(startsAt) {
		return BillingCycle{}, ErrInvalidCycleWindow
	}
	return BillingCycle{period: period, startsAt: startsAt, endsAt: endsAt}, nil
}

// ReconstituteBillingCycle rebuilds a cycle from persisted state
func ReconstituteBillingCycle(period BillingPeriod, startsAt, endsAt time.Time) (BillingCycle, error) {
	if !period.IsValid() {
		return BillingCycle{}, ErrInvalidBillingPeriod
	}
	if !endsAt.After(startsAt) {
		return BillingCycle{}, ErrInvalidCycleWindow
	}
	return BillingCycle{period: period, startsAt: startsAt, endsAt: endsAt}, nil
}

// Period returns the cycle's period kind
func (c BillingCycle) Period() BillingPeriod {
	return c.period
}

// StartsAt returns the cycle's start instant
func (c BillingCycle) StartsAt() time.Time {
	return c.startsAt
}

// EndsAt returns the cycle's end instant (exclusive)
func (c BillingCycle) EndsAt() time.Time {
	return c.endsAt
}

// TotalDays returns the number of calendar days the cycle spans
func (c BillingCycle) TotalDays() int {
	return daysBetween(c.startsAt, c.endsAt)
}

// RemainingDays returns the days left until the cycle ends, zero once past the end
func (c BillingCycle) RemainingDays(now time.Time) int {
	if !now.Before(c.endsAt) {
		return 0
	}
	return daysBetween(now, c.endsAt)
}

// UsedDays returns the days consumed so far
func (c BillingCycle) UsedDays(now time.Time) int {
	return c.TotalDays() - c.RemainingDays(now)
}

// IsActive returns true for startsAt <= now < endsAt
func (c BillingCycle) IsActive(now time.Time) bool {
	return !now.Before(c.startsAt) && now.Before(c.endsAt)
}

// NextCycle returns the immediately following window of the same period kind
func (c BillingCycle) NextCycle() BillingCycle {
	next, _ := NewBillingCycle(c.period, c.endsAt)
	return next
}

// String returns a human-readable rendering of the cycle window
func (c BillingCycle) String() string {
	return fmt.Sprintf("%s [%s, %s)", c.period, c.startsAt.Format("2006-01-02"), c.endsAt.Format("2006-01-02"))
}

// daysBetween counts whole calendar days between two instants, comparing
// UTC-truncated dates.
func daysBetween(from, to time.Time) int {
	f := truncateToDay(from)
	t := truncateToDay(to)
	return int(t.Sub(f).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
