package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NotificationPayload is the free-form key/value body of a notification
type NotificationPayload map[string]string

// Notifier is the fire-and-forget notification channel. Failures are logged
// by callers, never propagated past the call site.
type Notifier interface {
	SendNewSubscriptionNotification(ctx context.Context, payload NotificationPayload) error
	SendRenewalNotification(ctx context.Context, payload NotificationPayload) error
	SendPlanChangeNotification(ctx context.Context, payload NotificationPayload) error
	SendCancellationNotification(ctx context.Context, payload NotificationPayload) error
	SendFailureNotification(ctx context.Context, payload NotificationPayload) error
}

// FiscalDocumentData describes the fiscal document to issue after a
// successful charge.
type FiscalDocumentData struct {
	TransactionID   string
	CustomerName    string
	CustomerEmail   string
	CustomerTaxID   string
	AmountCents     int64
	ItemDescription string
	ItemCode        string
}

// FiscalDocumentResult is the issuer's outcome
type FiscalDocumentResult struct {
	Success      bool
	DocumentID   string
	ErrorMessage string
}

// FiscalDocumentIssuer issues fiscal documents. Always invoked best-effort
// after a successful payment; failures are observability events only.
type FiscalDocumentIssuer interface {
	IssueDocument(ctx context.Context, data FiscalDocumentData) (FiscalDocumentResult, error)
}

// UsageCounter reports a user's billable usage inside a cycle window. Used
// solely by renewal to determine overage billing.
type UsageCounter interface {
	GetOrdersCount(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
}

// StoredCard is the persisted reference to a gateway-registered card
type StoredCard struct {
	UserID            uuid.UUID
	GatewayCardID     string
	GatewayCustomerID string
	Brand             string
	LastFourDigits    string
}

// CardStorage persists stored-card references for later recurring charges
type CardStorage interface {
	StoreCard(ctx context.Context, card StoredCard) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]StoredCard, error)
}
