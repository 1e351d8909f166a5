package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlanRepository provides access to the plan catalog
type PlanRepository interface {
	// FindByID returns the plan or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	// FindAllActive returns the plans available for new subscriptions
	FindAllActive(ctx context.Context) ([]*Plan, error)
	// Save upserts the plan keyed by id
	Save(ctx context.Context, plan *Plan) error
}

// SubscriptionRepository provides access to subscription aggregates
type SubscriptionRepository interface {
	// FindByID returns the subscription or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	// FindByUserID returns the user's subscription (at most one) or shared.ErrNotFound
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	// FindDueForRenewal returns chargeable subscriptions whose cycle ends at or before the date
	FindDueForRenewal(ctx context.Context, date time.Time) ([]*Subscription, error)
	// Save upserts the subscription keyed by id
	Save(ctx context.Context, subscription *Subscription) error
}

// InvoiceRepository provides access to billing-attempt records
type InvoiceRepository interface {
	// NextIdentity generates a new invoice id
	NextIdentity() uuid.UUID
	// FindByID returns the invoice or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByUserID returns the user's invoices, most recent first
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Invoice, error)
	// Save upserts the invoice keyed by id
	Save(ctx context.Context, invoice *Invoice) error
}
