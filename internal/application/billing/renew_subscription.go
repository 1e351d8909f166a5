package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RenewSubscriptionService runs the renewal saga: usage-based amount, invoice,
// recurring charge linked to the first payment, cycle rollover on success,
// retry bookkeeping on failure. Whether a failed renewal is re-attempted or
// escalated is the scheduler's call, not this service's.
type RenewSubscriptionService struct {
	subRepo      billing.SubscriptionRepository
	planRepo     billing.PlanRepository
	invoiceRepo  billing.InvoiceRepository
	gateway      billing.PaymentGateway
	usageCounter billing.UsageCounter
	notifier     billing.Notifier
	fiscalIssuer billing.FiscalDocumentIssuer
	logger       *zap.Logger
}

// NewRenewSubscriptionService creates a new RenewSubscriptionService
func NewRenewSubscriptionService(
	subRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	invoiceRepo billing.InvoiceRepository,
	gateway billing.PaymentGateway,
	usageCounter billing.UsageCounter,
	notifier billing.Notifier,
	fiscalIssuer billing.FiscalDocumentIssuer,
	logger *zap.Logger,
) *RenewSubscriptionService {
	return &RenewSubscriptionService{
		subRepo:      subRepo,
		planRepo:     planRepo,
		invoiceRepo:  invoiceRepo,
		gateway:      gateway,
		usageCounter: usageCounter,
		notifier:     notifier,
		fiscalIssuer: fiscalIssuer,
		logger:       logger,
	}
}

// Execute runs the saga. A pending plan change is billed at the pending
// plan's rates and commits on success.
func (s *RenewSubscriptionService) Execute(ctx context.Context, input RenewSubscriptionInput) (*RenewSubscriptionResult, error) {
	now := time.Now().UTC()

	subscription, err := s.subRepo.FindByID(ctx, input.SubscriptionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("finding subscription: %w", err)
	}

	planID := subscription.PlanID
	if subscription.PendingPlanID != nil {
		planID = *subscription.PendingPlanID
	}
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrPlanNotFound
		}
		return nil, fmt.Errorf("finding plan: %w", err)
	}

	cycle := subscription.CurrentCycle
	ordersCount, err := s.usageCounter.GetOrdersCount(ctx, subscription.UserID, cycle.StartsAt(), cycle.EndsAt())
	if err != nil {
		return nil, fmt.Errorf("counting orders: %w", err)
	}

	amount, err := plan.CalculateTotalAmount(ordersCount)
	if err != nil {
		return nil, fmt.Errorf("calculating renewal amount: %w", err)
	}

	invoice := billing.NewInvoice(s.invoiceRepo.NextIdentity(), subscription.UserID, plan.GetID(), amount, now)
	invoice.SetOrdersCount(ordersCount, now)
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}

	s.logger.Info("Starting renewal",
		zap.String("subscription_id", subscription.GetID().String()),
		zap.String("invoice_id", invoice.GetID().String()),
		zap.Int("orders_count", ordersCount),
		zap.Int64("amount_cents", amount.Cents()))

	payment, err := s.gateway.ProcessPayment(ctx, billing.PaymentData{
		CustomerID:     subscription.GatewayCustomerID,
		CardID:         derefOrEmpty(subscription.CardID),
		AmountCents:    amount.Cents(),
		Description:    fmt.Sprintf("Renovação %s", plan.Name),
		ExternalRef:    invoice.GetID().String(),
		Recurring:      true,
		SubscriptionID: subscription.GetID().String(),
		SequenceNumber: subscription.RetryCount + 1,
		FirstPaymentID: derefOrEmpty(subscription.FirstPaymentID),
	})
	if err != nil {
		return s.abort(ctx, subscription, invoice, fmt.Sprintf("Payment request failed: %v", err), nil, amount.Cents(), ordersCount, now), nil
	}
	if !payment.Success {
		return s.abort(ctx, subscription, invoice, payment.ErrorMessage, &payment.TransactionID, amount.Cents(), ordersCount, now), nil
	}

	if err := invoice.MarkAsApproved(payment.TransactionID, now); err != nil {
		return nil, fmt.Errorf("approving invoice: %w", err)
	}

	hadPendingPlan := subscription.HasPendingPlanChange()
	subscription.RecordSuccessfulPayment(payment.TransactionID, now)
	if hadPendingPlan {
		subscription.RefreshPlanPrice(plan.Price, now)
	}
	subscription.RenewCycle(now)

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("saving approved invoice: %w", err)
	}
	if err := s.subRepo.Save(ctx, subscription); err != nil {
		return nil, fmt.Errorf("saving subscription: %w", err)
	}

	s.issueFiscalDocument(ctx, payment.TransactionID, subscription, amount.Cents())
	s.notify(ctx, s.notifier.SendRenewalNotification, billing.NotificationPayload{
		"user_id":      subscription.UserID.String(),
		"plan":         plan.Name,
		"amount":       amount.Formatted(),
		"orders_count": fmt.Sprintf("%d", ordersCount),
	})

	s.logger.Info("Subscription renewed",
		zap.String("subscription_id", subscription.GetID().String()),
		zap.String("transaction_id", payment.TransactionID))

	return &RenewSubscriptionResult{
		Success:       true,
		Message:       "Subscription renewed",
		InvoiceID:     invoice.GetID(),
		TransactionID: payment.TransactionID,
		AmountCents:   amount.Cents(),
		OrdersCount:   ordersCount,
		RetryCount:    subscription.RetryCount,
	}, nil
}

// abort records the failed charge on both aggregates: the invoice is
// finalized as failed and the subscription moves to past due with the retry
// counter advanced. The cycle does not roll over.
func (s *RenewSubscriptionService) abort(ctx context.Context, subscription *billing.Subscription, invoice *billing.Invoice, reason string, transactionID *string, amountCents int64, ordersCount int, now time.Time) *RenewSubscriptionResult {
	s.logger.Warn("Renewal failed",
		zap.String("subscription_id", subscription.GetID().String()),
		zap.String("invoice_id", invoice.GetID().String()),
		zap.String("reason", reason))

	if err := invoice.MarkAsFailed(reason, transactionID, now); err != nil {
		s.logger.Error("Failed to mark invoice as failed", zap.Error(err))
	} else if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to save failed invoice", zap.Error(err))
	}

	subscription.RecordFailedPayment(now)
	if err := s.subRepo.Save(ctx, subscription); err != nil {
		s.logger.Error("Failed to save subscription after payment failure", zap.Error(err))
	}

	s.notify(ctx, s.notifier.SendFailureNotification, billing.NotificationPayload{
		"user_id":     subscription.UserID.String(),
		"operation":   "renew_subscription",
		"invoice_id":  invoice.GetID().String(),
		"reason":      reason,
		"retry_count": fmt.Sprintf("%d", subscription.RetryCount),
	})

	result := &RenewSubscriptionResult{
		Success:     false,
		Message:     reason,
		InvoiceID:   invoice.GetID(),
		AmountCents: amountCents,
		OrdersCount: ordersCount,
		RetryCount:  subscription.RetryCount,
	}
	if transactionID != nil {
		result.TransactionID = *transactionID
	}
	return result
}

func (s *RenewSubscriptionService) issueFiscalDocument(ctx context.Context, transactionID string, subscription *billing.Subscription, amountCents int64) {
	result, err := s.fiscalIssuer.IssueDocument(ctx, billing.FiscalDocumentData{
		TransactionID:   transactionID,
		AmountCents:     amountCents,
		ItemDescription: "Renovação de assinatura",
		ItemCode:        fiscalItemCode,
	})
	if err != nil {
		s.logger.Warn("Fiscal document issuance failed",
			zap.String("subscription_id", subscription.GetID().String()),
			zap.Error(err))
		return
	}
	if !result.Success {
		s.logger.Warn("Fiscal document rejected", zap.String("error", result.ErrorMessage))
	}
}

func (s *RenewSubscriptionService) notify(ctx context.Context, send func(context.Context, billing.NotificationPayload) error, payload billing.NotificationPayload) {
	if err := send(ctx, payload); err != nil {
		s.logger.Warn("Notification delivery failed", zap.Error(err))
	}
}
