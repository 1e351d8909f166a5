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

// ChangeSubscriptionPlanService runs the plan-change saga. Period changes and
// capacity downgrades are scheduled for the next renewal; everything else is
// applied immediately with a prorated charge.
type ChangeSubscriptionPlanService struct {
	subRepo     billing.SubscriptionRepository
	planRepo    billing.PlanRepository
	invoiceRepo billing.InvoiceRepository
	gateway     billing.PaymentGateway
	cardStorage billing.CardStorage
	evaluator   *billing.PlanChangeEvaluator
	proration   *billing.ProrationCalculator
	notifier    billing.Notifier
	logger      *zap.Logger
}

// NewChangeSubscriptionPlanService creates a new ChangeSubscriptionPlanService
func NewChangeSubscriptionPlanService(
	subRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	invoiceRepo billing.InvoiceRepository,
	gateway billing.PaymentGateway,
	cardStorage billing.CardStorage,
	evaluator *billing.PlanChangeEvaluator,
	proration *billing.ProrationCalculator,
	notifier billing.Notifier,
	logger *zap.Logger,
) *ChangeSubscriptionPlanService {
	return &ChangeSubscriptionPlanService{
		subRepo:     subRepo,
		planRepo:    planRepo,
		invoiceRepo: invoiceRepo,
		gateway:     gateway,
		cardStorage: cardStorage,
		evaluator:   evaluator,
		proration:   proration,
		notifier:    notifier,
		logger:      logger,
	}
}

// Execute runs the saga. Not-found and too-soon conditions propagate as domain
// errors; a declined prorated charge comes back as a failure result.
func (s *ChangeSubscriptionPlanService) Execute(ctx context.Context, input ChangePlanInput) (*ChangePlanResult, error) {
	now := time.Now().UTC()

	subscription, err := s.subRepo.FindByUserID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("finding subscription: %w", err)
	}

	if !subscription.CanChangePlan(now) {
		return nil, billing.ErrPlanChangeTooSoon
	}

	currentPlan, err := s.planRepo.FindByID(ctx, subscription.PlanID)
	if err != nil {
		return nil, fmt.Errorf("finding current plan: %w", err)
	}
	newPlan, err := s.planRepo.FindByID(ctx, input.NewPlanID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrPlanNotFound
		}
		return nil, fmt.Errorf("finding new plan: %w", err)
	}

	if input.NewCardToken != nil {
		if err := s.swapCard(ctx, subscription, *input.NewCardToken, now); err != nil {
			return &ChangePlanResult{
				Success: false,
				Message: fmt.Sprintf("Card registration failed: %v", err),
			}, nil
		}
	}

	changeType := s.evaluator.Evaluate(currentPlan, newPlan)
	if changeType == billing.PlanChangeScheduled {
		return s.schedule(ctx, subscription, newPlan, now)
	}
	return s.applyImmediate(ctx, subscription, currentPlan, newPlan, now)
}

func (s *ChangeSubscriptionPlanService) schedule(ctx context.Context, subscription *billing.Subscription, newPlan *billing.Plan, now time.Time) (*ChangePlanResult, error) {
	if err := subscription.SchedulePlanChange(newPlan.GetID(), now); err != nil {
		return nil, err
	}
	if err := s.subRepo.Save(ctx, subscription); err != nil {
		return nil, fmt.Errorf("saving subscription: %w", err)
	}

	s.notify(ctx, s.notifier.SendPlanChangeNotification, billing.NotificationPayload{
		"user_id":     subscription.UserID.String(),
		"new_plan":    newPlan.Name,
		"change_type": billing.PlanChangeScheduled.String(),
	})

	s.logger.Info("Plan change scheduled",
		zap.String("subscription_id", subscription.GetID().String()),
		zap.String("new_plan_id", newPlan.GetID().String()))

	return &ChangePlanResult{
		Success:    true,
		Message:    "Plan change scheduled for the next renewal",
		ChangeType: billing.PlanChangeScheduled,
	}, nil
}

func (s *ChangeSubscriptionPlanService) applyImmediate(ctx context.Context, subscription *billing.Subscription, currentPlan, newPlan *billing.Plan, now time.Time) (*ChangePlanResult, error) {
	amount, err := s.proration.Calculate(subscription.CurrentCycle, currentPlan, newPlan, now)
	if err != nil {
		return nil, fmt.Errorf("calculating proration: %w", err)
	}

	invoice := billing.NewInvoice(s.invoiceRepo.NextIdentity(), subscription.UserID, newPlan.GetID(), amount, now)
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}
	invoiceID := invoice.GetID()

	payment, err := s.gateway.ProcessPayment(ctx, billing.PaymentData{
		CustomerID:  subscription.GatewayCustomerID,
		CardID:      derefOrEmpty(subscription.CardID),
		AmountCents: amount.Cents(),
		Description: fmt.Sprintf("Mudança de plano: %s", newPlan.Name),
		ExternalRef: invoiceID.String(),
	})
	if err != nil {
		return s.abort(ctx, subscription, invoice, fmt.Sprintf("Payment request failed: %v", err), nil, now), nil
	}
	if !payment.Success {
		return s.abort(ctx, subscription, invoice, payment.ErrorMessage, &payment.TransactionID, now), nil
	}

	if err := invoice.MarkAsApproved(payment.TransactionID, now); err != nil {
		return nil, fmt.Errorf("approving invoice: %w", err)
	}
	if err := subscription.ApplyImmediatePlanChange(newPlan, now); err != nil {
		return nil, err
	}
	subscription.RecordSuccessfulPayment(payment.TransactionID, now)

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("saving approved invoice: %w", err)
	}
	if err := s.subRepo.Save(ctx, subscription); err != nil {
		return nil, fmt.Errorf("saving subscription: %w", err)
	}

	s.notify(ctx, s.notifier.SendPlanChangeNotification, billing.NotificationPayload{
		"user_id":     subscription.UserID.String(),
		"new_plan":    newPlan.Name,
		"change_type": billing.PlanChangeImmediate.String(),
		"amount":      amount.Formatted(),
	})

	s.logger.Info("Plan changed immediately",
		zap.String("subscription_id", subscription.GetID().String()),
		zap.String("new_plan_id", newPlan.GetID().String()),
		zap.Int64("prorated_cents", amount.Cents()))

	return &ChangePlanResult{
		Success:       true,
		Message:       "Plan changed",
		ChangeType:    billing.PlanChangeImmediate,
		InvoiceID:     &invoiceID,
		TransactionID: payment.TransactionID,
		AmountCents:   amount.Cents(),
	}, nil
}

// swapCard registers the new instrument at the gateway and attaches it to the
// subscription before any charge is attempted.
func (s *ChangeSubscriptionPlanService) swapCard(ctx context.Context, subscription *billing.Subscription, token string, now time.Time) error {
	card, err := s.gateway.CreateCard(ctx, subscription.GatewayCustomerID, billing.CardData{Token: token})
	if err != nil {
		return err
	}
	creditCard, err := cardFromResult(token, card, now)
	if err != nil {
		return err
	}
	if err := s.cardStorage.StoreCard(ctx, billing.StoredCard{
		UserID:            subscription.UserID,
		GatewayCardID:     card.CardID,
		GatewayCustomerID: subscription.GatewayCustomerID,
		Brand:             creditCard.Brand(),
		LastFourDigits:    creditCard.LastFourDigits(),
	}); err != nil {
		return err
	}
	subscription.AttachCard(card.CardID, now)
	return nil
}

func (s *ChangeSubscriptionPlanService) abort(ctx context.Context, subscription *billing.Subscription, invoice *billing.Invoice, reason string, transactionID *string, now time.Time) *ChangePlanResult {
	s.logger.Warn("Plan change failed",
		zap.String("subscription_id", subscription.GetID().String()),
		zap.String("invoice_id", invoice.GetID().String()),
		zap.String("reason", reason))

	if err := invoice.MarkAsFailed(reason, transactionID, now); err != nil {
		s.logger.Error("Failed to mark invoice as failed", zap.Error(err))
	} else if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to save failed invoice", zap.Error(err))
	}

	s.notify(ctx, s.notifier.SendFailureNotification, billing.NotificationPayload{
		"user_id":    subscription.UserID.String(),
		"operation":  "change_plan",
		"invoice_id": invoice.GetID().String(),
		"reason":     reason,
	})

	invoiceID := invoice.GetID()
	result := &ChangePlanResult{
		Success:    false,
		Message:    reason,
		ChangeType: billing.PlanChangeImmediate,
		InvoiceID:  &invoiceID,
	}
	if transactionID != nil {
		result.TransactionID = *transactionID
	}
	return result
}

func (s *ChangeSubscriptionPlanService) notify(ctx context.Context, send func(context.Context, billing.NotificationPayload) error, payload billing.NotificationPayload) {
	if err := send(ctx, payload); err != nil {
		s.logger.Warn("Notification delivery failed", zap.Error(err))
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
