package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// CreateSubscriptionInput carries everything needed to open a subscription
type CreateSubscriptionInput struct {
	UserID    uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Document  string
	Phone     string
	PlanID    uuid.UUID
	CardToken string
}

// CreateSubscriptionResult is the structured outcome of the create saga.
// Success=false means the charge was declined or a payment-phase step broke;
// the subscription was not created and the invoice records why.
type CreateSubscriptionResult struct {
	Success        bool
	Message        string
	SubscriptionID *uuid.UUID
	InvoiceID      uuid.UUID
	TransactionID  string
}

// ChangePlanInput carries a plan-change request. NewCardToken, when set,
// swaps the payment instrument before the change is evaluated.
type ChangePlanInput struct {
	UserID       uuid.UUID
	NewPlanID    uuid.UUID
	NewCardToken *string
}

// ChangePlanResult is the structured outcome of the plan-change saga
type ChangePlanResult struct {
	Success       bool
	Message       string
	ChangeType    billing.PlanChangeType
	InvoiceID     *uuid.UUID
	TransactionID string
	AmountCents   int64
}

// RenewSubscriptionInput identifies the subscription to renew
type RenewSubscriptionInput struct {
	SubscriptionID uuid.UUID
}

// RenewSubscriptionResult is the structured outcome of the renewal saga
type RenewSubscriptionResult struct {
	Success       bool
	Message       string
	InvoiceID     uuid.UUID
	TransactionID string
	AmountCents   int64
	OrdersCount   int
	RetryCount    int
}

// ChangeCardInput carries a payment-instrument replacement request
type ChangeCardInput struct {
	UserID    uuid.UUID
	CardToken string
}

// ChangeCardResult is the structured outcome of the card-change saga
type ChangeCardResult struct {
	Success        bool
	Message        string
	CardID         string
	Brand          string
	LastFourDigits string
}

// CancelSubscriptionInput carries a cancellation request
type CancelSubscriptionInput struct {
	UserID uuid.UUID
	Reason string
}

// CancelSubscriptionResult is the structured outcome of the cancellation saga
type CancelSubscriptionResult struct {
	Success bool
	Message string
}

// PlanDTO is the read-side rendering of a plan
type PlanDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	PriceCents     int64     `json:"price_cents"`
	PriceFormatted string    `json:"price_formatted"`
	OrdersLimit    int       `json:"orders_limit"`
	Period         string    `json:"period"`
	ExtraOrderRate int64     `json:"extra_order_rate_cents"`
	Active         bool      `json:"active"`
}

// InvoiceDTO is the read-side rendering of an invoice
type InvoiceDTO struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	PlanID          uuid.UUID `json:"plan_id"`
	AmountCents     int64     `json:"amount_cents"`
	AmountFormatted string    `json:"amount_formatted"`
	Status          string    `json:"status"`
	TransactionID   *string   `json:"transaction_id,omitempty"`
	CardLastFour    *string   `json:"card_last_four,omitempty"`
	CardBrand       *string   `json:"card_brand,omitempty"`
	OrdersCount     *int      `json:"orders_count,omitempty"`
	StatusReason    *string   `json:"status_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toPlanDTO(p *billing.Plan) PlanDTO {
	return PlanDTO{
		ID:             p.GetID(),
		Name:           p.Name,
		PriceCents:     p.Price.Cents(),
		PriceFormatted: p.Price.Formatted(),
		OrdersLimit:    p.OrdersLimit,
		Period:         p.Period.String(),
		ExtraOrderRate: p.ExtraOrderRate.Cents(),
		Active:         p.Active,
	}
}

func toInvoiceDTO(i *billing.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:              i.GetID(),
		UserID:          i.UserID,
		PlanID:          i.PlanID,
		AmountCents:     i.Amount.Cents(),
		AmountFormatted: i.Amount.Formatted(),
		Status:          i.Status.String(),
		TransactionID:   i.TransactionID,
		CardLastFour:    i.CardLastFour,
		CardBrand:       i.CardBrand,
		OrdersCount:     i.OrdersCount,
		StatusReason:    i.StatusReason,
		CreatedAt:       i.GetCreatedAt(),
	}
}
