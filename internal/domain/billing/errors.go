package billing

import "github.com/billing/backend/internal/domain/shared"

// Domain errors for the billing bounded context
var (
	ErrPlanNotFound            = shared.NewDomainError("PLAN_NOT_FOUND", "Plan not found")
	ErrSubscriptionNotFound    = shared.NewDomainError("SUBSCRIPTION_NOT_FOUND", "Subscription not found")
	ErrInvoiceNotFound         = shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	ErrPlanChangeTooSoon       = shared.NewDomainError("INVALID_PLAN_CHANGE", "Plan was changed less than 15 days ago")
	ErrInvalidCancellation     = shared.NewDomainError("INVALID_CANCELLATION", "Subscription cannot be cancelled in its current status")
	ErrInvoiceAlreadyFinalized = shared.NewDomainError("INVOICE_ALREADY_FINALIZED", "Invoice has already reached a terminal status")
	ErrInvalidBillingPeriod    = shared.NewDomainError("INVALID_BILLING_PERIOD", "Invalid billing period")
	ErrInvalidCycleWindow      = shared.NewDomainError("INVALID_CYCLE_WINDOW", "Billing cycle end must be after its start")
)
