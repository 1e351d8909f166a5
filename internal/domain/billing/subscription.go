package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SubscriptionStatus represents the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue   SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusEnded     SubscriptionStatus = "ENDED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusTrial     SubscriptionStatus = "TRIAL"
)

// IsValid checks if the status is a valid SubscriptionStatus
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusPastDue, SubscriptionStatusEnded,
		SubscriptionStatusCancelled, SubscriptionStatusTrial:
		return true
	}
	return false
}

// IsChargeable returns true for statuses a renewal may charge against
func (s SubscriptionStatus) IsChargeable() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusPastDue
}

// CanBeCancelled returns true for statuses the user may cancel from
func (s SubscriptionStatus) CanBeCancelled() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusPastDue || s == SubscriptionStatusTrial
}

// String returns the string representation of SubscriptionStatus
func (s SubscriptionStatus) String() string {
	return string(s)
}

// PaymentStatus represents the state of the subscription's last charge
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusEnded   PaymentStatus = "ENDED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusFailed, PaymentStatusPending, PaymentStatusEnded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

const (
	// MinDaysBetweenPlanChanges is the minimum interval between plan changes
	MinDaysBetweenPlanChanges = 15
	// MaxPaymentRetries is the number of consecutive failures before renewal stops
	MaxPaymentRetries = 3
)

// Subscription is the billing-relationship aggregate. The transition methods
// are the only mutators; callers never assign fields directly.
type Subscription struct {
	shared.BaseAggregateRoot
	UserID             uuid.UUID
	PlanID             uuid.UUID
	PlanPrice          valueobject.Money
	CardID             *string
	Status             SubscriptionStatus
	PaymentStatus      PaymentStatus
	CurrentCycle       BillingCycle
	StartedAt          time.Time
	LastChargeAt       *time.Time
	LastPlanChangeAt   *time.Time
	RetryCount         int
	GatewayCustomerID  string
	FirstPaymentID     *string
	PendingPlanID      *uuid.UUID
	CancellationReason *string
}

// NewSubscription creates an active, paid subscription with its first billing
// cycle anchored at startedAt.
func NewSubscription(userID uuid.UUID, plan *Plan, gatewayCustomerID, cardID string, startedAt time.Time) (*Subscription, error) {
	cycle, err := NewBillingCycle(plan.Period, startedAt)
	if err != nil {
		return nil, err
	}
	return &Subscription{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.ReconstituteBaseEntity(uuid.New(), startedAt, startedAt),
			Version:    1,
		},
		UserID:            userID,
		PlanID:            plan.GetID(),
		PlanPrice:         plan.Price,
		CardID:            &cardID,
		Status:            SubscriptionStatusActive,
		PaymentStatus:     PaymentStatusPaid,
		CurrentCycle:      cycle,
		StartedAt:         startedAt,
		GatewayCustomerID: gatewayCustomerID,
	}, nil
}

// ReconstituteSubscription rebuilds a subscription from persisted state
func ReconstituteSubscription(id, userID, planID uuid.UUID, planPrice valueobject.Money, cardID *string,
	status SubscriptionStatus, paymentStatus PaymentStatus, cycle BillingCycle, startedAt time.Time,
	lastChargeAt, lastPlanChangeAt *time.Time, retryCount int, gatewayCustomerID string,
	firstPaymentID *string, pendingPlanID *uuid.UUID, cancellationReason *string,
	version int, createdAt, updatedAt time.Time) *Subscription {
	return &Subscription{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.ReconstituteBaseEntity(id, createdAt, updatedAt),
			Version:    version,
		},
		UserID:             userID,
		PlanID:             planID,
		PlanPrice:          planPrice,
		CardID:             cardID,
		Status:             status,
		PaymentStatus:      paymentStatus,
		CurrentCycle:       cycle,
		StartedAt:          startedAt,
		LastChargeAt:       lastChargeAt,
		LastPlanChangeAt:   lastPlanChangeAt,
		RetryCount:         retryCount,
		GatewayCustomerID:  gatewayCustomerID,
		FirstPaymentID:     firstPaymentID,
		PendingPlanID:      pendingPlanID,
		CancellationReason: cancellationReason,
	}
}

// RecordSuccessfulPayment marks the subscription paid and active, resets the
// retry counter, anchors the first payment id once, and commits any pending
// plan change.
func (s *Subscription) RecordSuccessfulPayment(paymentID string, at time.Time) {
	s.Status = SubscriptionStatusActive
	s.PaymentStatus = PaymentStatusPaid
	s.LastChargeAt = &at
	s.RetryCount = 0
	if s.FirstPaymentID == nil {
		s.FirstPaymentID = &paymentID
	}
	if s.PendingPlanID != nil {
		s.PlanID = *s.PendingPlanID
		s.PendingPlanID = nil
		s.LastPlanChangeAt = &at
	}
	s.Touch(at)
	s.IncrementVersion()
}

// RecordFailedPayment marks the last charge failed, moves the subscription to
// past due and advances the retry counter.
func (s *Subscription) RecordFailedPayment(at time.Time) {
	s.PaymentStatus = PaymentStatusFailed
	s.Status = SubscriptionStatusPastDue
	s.LastChargeAt = &at
	s.RetryCount++
	s.Touch(at)
	s.IncrementVersion()
}

// RenewCycle replaces the current cycle with the immediately following window
func (s *Subscription) RenewCycle(at time.Time) {
	s.CurrentCycle = s.CurrentCycle.NextCycle()
	s.Touch(at)
	s.IncrementVersion()
}

// RefreshPlanPrice updates the cached plan price. Used after a pending plan
// change commits, since the authoritative price lives on the Plan aggregate.
func (s *Subscription) RefreshPlanPrice(price valueobject.Money, at time.Time) {
	s.PlanPrice = price
	s.Touch(at)
}

// CanChangePlan returns true if no plan change happened yet, or the minimum
// interval has elapsed since the last one.
func (s *Subscription) CanChangePlan(now time.Time) bool {
	if s.LastPlanChangeAt == nil {
		return true
	}
	return daysBetween(*s.LastPlanChangeAt, now) >= MinDaysBetweenPlanChanges
}

// SchedulePlanChange defers a plan change to the next successful payment
func (s *Subscription) SchedulePlanChange(newPlanID uuid.UUID, now time.Time) error {
	if !s.CanChangePlan(now) {
		return ErrPlanChangeTooSoon
	}
	s.PendingPlanID = &newPlanID
	s.Touch(now)
	s.IncrementVersion()
	return nil
}

// ApplyImmediatePlanChange switches to the new plan synchronously
func (s *Subscription) ApplyImmediatePlanChange(newPlan *Plan, now time.Time) error {
	if !s.CanChangePlan(now) {
		return ErrPlanChangeTooSoon
	}
	s.PlanID = newPlan.GetID()
	s.PlanPrice = newPlan.Price
	s.PendingPlanID = nil
	s.LastPlanChangeAt = &now
	s.Touch(now)
	s.IncrementVersion()
	return nil
}

// AttachCard records the gateway card id used for recurring charges
func (s *Subscription) AttachCard(cardID string, at time.Time) {
	s.CardID = &cardID
	s.Touch(at)
	s.IncrementVersion()
}

// Cancel ends the billing relationship at the user's request. Only active,
// past due and trial subscriptions can be cancelled.
func (s *Subscription) Cancel(reason string, at time.Time) error {
	if !s.Status.CanBeCancelled() {
		return ErrInvalidCancellation
	}
	s.Status = SubscriptionStatusCancelled
	s.PaymentStatus = PaymentStatusEnded
	s.CancellationReason = &reason
	s.Touch(at)
	s.IncrementVersion()
	return nil
}

// End is the unconditional terminal transition, used for hard churn
func (s *Subscription) End(at time.Time) {
	s.Status = SubscriptionStatusEnded
	s.PaymentStatus = PaymentStatusEnded
	s.Touch(at)
	s.IncrementVersion()
}

// HasReachedMaxRetries returns true once the consecutive-failure budget is spent
func (s *Subscription) HasReachedMaxRetries() bool {
	return s.RetryCount >= MaxPaymentRetries
}

// NeedsRenewal returns true when the current cycle has lapsed and the
// subscription is still chargeable.
func (s *Subscription) NeedsRenewal(now time.Time) bool {
	return !s.CurrentCycle.IsActive(now) && s.Status.IsChargeable()
}

// HasPendingPlanChange returns true when a scheduled plan change awaits commit
func (s *Subscription) HasPendingPlanChange() bool {
	return s.PendingPlanID != nil
}
