package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Plan is a priced offering with a usage allowance and an overage rate.
// Immutable after construction; price changes are modeled as new plans.
type Plan struct {
	shared.BaseAggregateRoot
	Name           string
	Price          valueobject.Money
	OrdersLimit    int
	Period         BillingPeriod
	ExtraOrderRate valueobject.Money
	Active         bool
}

// NewPlan creates a new plan offering
func NewPlan(name string, price valueobject.Money, ordersLimit int, period BillingPeriod, extraOrderRate valueobject.Money) (*Plan, error) {
	if !period.IsValid() {
		return nil, ErrInvalidBillingPeriod
	}
	if ordersLimit < 0 {
		return nil, shared.NewDomainError("INVALID_PLAN", "Orders limit cannot be negative")
	}
	return &Plan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price,
		OrdersLimit:       ordersLimit,
		Period:            period,
		ExtraOrderRate:    extraOrderRate,
		Active:            true,
	}, nil
}

// ReconstitutePlan rebuilds a plan from persisted state
func ReconstitutePlan(id uuid.UUID, name string, price valueobject.Money, ordersLimit int, period BillingPeriod, extraOrderRate valueobject.Money, active bool, version int, createdAt, updatedAt time.Time) (*Plan, error) {
	if !period.IsValid() {
		return nil, ErrInvalidBillingPeriod
	}
	return &Plan{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.ReconstituteBaseEntity(id, createdAt, updatedAt),
			Version:    version,
		},
		Name:           name,
		Price:          price,
		OrdersLimit:    ordersLimit,
		Period:         period,
		ExtraOrderRate: extraOrderRate,
		Active:         active,
	}, nil
}

// HasExtraOrders returns true when the usage count exceeds the included allowance
func (p *Plan) HasExtraOrders(ordersCount int) bool {
	return ordersCount > p.OrdersLimit
}

// CalculateTotalAmount computes the charge for a usage count: the base price
// when usage is within the allowance, base plus overage rate per extra order
// otherwise.
func (p *Plan) CalculateTotalAmount(ordersCount int) (valueobject.Money, error) {
	if !p.HasExtraOrders(ordersCount) {
		return p.Price, nil
	}
	extra := int64(ordersCount - p.OrdersLimit)
	overage := p.ExtraOrderRate.MultiplyByInt(extra)
	return p.Price.Add(overage)
}

// IsActive returns true if the plan is available for new subscriptions
func (p *Plan) IsActive() bool {
	return p.Active
}
