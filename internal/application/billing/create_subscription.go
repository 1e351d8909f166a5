package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CreateSubscriptionService runs the subscription-opening saga: invoice first,
// then gateway customer, card, charge; the subscription aggregate only exists
// after a successful charge. Payment-phase faults never propagate, they fold
// into an invoice-failed record plus a failure result.
type CreateSubscriptionService struct {
	planRepo     billing.PlanRepository
	subRepo      billing.SubscriptionRepository
	invoiceRepo  billing.InvoiceRepository
	gateway      billing.PaymentGateway
	cardStorage  billing.CardStorage
	notifier     billing.Notifier
	fiscalIssuer billing.FiscalDocumentIssuer
	logger       *zap.Logger
}

// NewCreateSubscriptionService creates a new CreateSubscriptionService
func NewCreateSubscriptionService(
	planRepo billing.PlanRepository,
	subRepo billing.SubscriptionRepository,
	invoiceRepo billing.InvoiceRepository,
	gateway billing.PaymentGateway,
	cardStorage billing.CardStorage,
	notifier billing.Notifier,
	fiscalIssuer billing.FiscalDocumentIssuer,
	logger *zap.Logger,
) *CreateSubscriptionService {
	return &CreateSubscriptionService{
		planRepo:     planRepo,
		subRepo:      subRepo,
		invoiceRepo:  invoiceRepo,
		gateway:      gateway,
		cardStorage:  cardStorage,
		notifier:     notifier,
		fiscalIssuer: fiscalIssuer,
		logger:       logger,
	}
}

// Execute runs the saga. Malformed documents and missing plans surface as
// domain errors; everything past the first invoice save comes back as a
// structured result.
func (s *CreateSubscriptionService) Execute(ctx context.Context, input CreateSubscriptionInput) (*CreateSubscriptionResult, error) {
	now := time.Now().UTC()

	document, err := valueobject.NewDocument(input.Document)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindByID(ctx, input.PlanID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrPlanNotFound
		}
		return nil, fmt.Errorf("finding plan: %w", err)
	}

	invoice := billing.NewInvoice(s.invoiceRepo.NextIdentity(), input.UserID, plan.GetID(), plan.Price, now)
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}

	s.logger.Info("Starting subscription creation",
		zap.String("user_id", input.UserID.String()),
		zap.String("plan_id", plan.GetID().String()),
		zap.String("invoice_id", invoice.GetID().String()))

	customerID, err := s.gateway.CreateCustomer(ctx, billing.CustomerData{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Document:     document.Number(),
		DocumentType: string(document.Type()),
		Phone:        input.Phone,
	})
	if err != nil {
		return s.abort(ctx, invoice, input, fmt.Sprintf("Customer creation failed: %v", err), nil, now), nil
	}

	card, err := s.gateway.CreateCard(ctx, customerID, billing.CardData{Token: input.CardToken})
	if err != nil {
		return s.abort(ctx, invoice, input, fmt.Sprintf("Card registration failed: %v", err), nil, now), nil
	}
	creditCard, err := cardFromResult(input.CardToken, card, now)
	if err != nil {
		return s.abort(ctx, invoice, input, fmt.Sprintf("Card registration failed: %v", err), nil, now), nil
	}

	if err := s.cardStorage.StoreCard(ctx, billing.StoredCard{
		UserID:            input.UserID,
		GatewayCardID:     card.CardID,
		GatewayCustomerID: customerID,
		Brand:             creditCard.Brand(),
		LastFourDigits:    creditCard.LastFourDigits(),
	}); err != nil {
		return s.abort(ctx, invoice, input, fmt.Sprintf("Card storage failed: %v", err), nil, now), nil
	}

	invoice.AttachCardInfo(card.CardID, creditCard.LastFourDigits(), creditCard.Brand(), now)
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return s.abort(ctx, invoice, input, fmt.Sprintf("Invoice update failed: %v", err), nil, now), nil
	}

	payment, err := s.gateway.ProcessPayment(ctx, billing.PaymentData{
		CustomerID:  customerID,
		CardID:      card.CardID,
		AmountCents: plan.Price.Cents(),
		Description: fmt.Sprintf("Assinatura %s", plan.Name),
		ExternalRef: invoice.GetID().String(),
	})
	if err != nil {
		return s.abort(ctx, invoice, input, fmt.Sprintf("Payment request failed: %v", err), nil, now), nil
	}
	if !payment.Success {
		return s.abort(ctx, invoice, input, payment.ErrorMessage, &payment.TransactionID, now), nil
	}

	if err := invoice.MarkAsApproved(payment.TransactionID, now); err != nil {
		return nil, fmt.Errorf("approving invoice: %w", err)
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("saving approved invoice: %w", err)
	}

	subscription, err := billing.NewSubscription(input.UserID, plan, customerID, card.CardID, now)
	if err != nil {
		return nil, fmt.Errorf("creating subscription: %w", err)
	}
	subscription.RecordSuccessfulPayment(payment.TransactionID, now)
	if err := s.subRepo.Save(ctx, subscription); err != nil {
		return nil, fmt.Errorf("saving subscription: %w", err)
	}

	s.issueFiscalDocument(ctx, payment.TransactionID, input, document.Number(), plan.Price.Cents())
	s.notify(ctx, s.notifier.SendNewSubscriptionNotification, billing.NotificationPayload{
		"user_id": input.UserID.String(),
		"email":   input.Email,
		"plan":    plan.Name,
		"amount":  plan.Price.Formatted(),
	})

	s.logger.Info("Subscription created",
		zap.String("subscription_id", subscription.GetID().String()),
		zap.String("transaction_id", payment.TransactionID))

	subID := subscription.GetID()
	return &CreateSubscriptionResult{
		Success:        true,
		Message:        "Subscription created",
		SubscriptionID: &subID,
		InvoiceID:      invoice.GetID(),
		TransactionID:  payment.TransactionID,
	}, nil
}

// abort finalizes the invoice as failed and produces the failure result. The
// save and the notification are themselves best-effort at this point; there
// is nothing left to compensate.
func (s *CreateSubscriptionService) abort(ctx context.Context, invoice *billing.Invoice, input CreateSubscriptionInput, reason string, transactionID *string, now time.Time) *CreateSubscriptionResult {
	s.logger.Warn("Subscription creation failed",
		zap.String("user_id", input.UserID.String()),
		zap.String("invoice_id", invoice.GetID().String()),
		zap.String("reason", reason))

	if err := invoice.MarkAsFailed(reason, transactionID, now); err != nil {
		s.logger.Error("Failed to mark invoice as failed", zap.Error(err))
	} else if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to save failed invoice", zap.Error(err))
	}

	s.notify(ctx, s.notifier.SendFailureNotification, billing.NotificationPayload{
		"user_id":    input.UserID.String(),
		"email":      input.Email,
		"operation":  "create_subscription",
		"invoice_id": invoice.GetID().String(),
		"reason":     reason,
	})

	result := &CreateSubscriptionResult{
		Success:   false,
		Message:   reason,
		InvoiceID: invoice.GetID(),
	}
	if transactionID != nil {
		result.TransactionID = *transactionID
	}
	return result
}

func (s *CreateSubscriptionService) issueFiscalDocument(ctx context.Context, transactionID string, input CreateSubscriptionInput, taxID string, amountCents int64) {
	result, err := s.fiscalIssuer.IssueDocument(ctx, billing.FiscalDocumentData{
		TransactionID:   transactionID,
		CustomerName:    fmt.Sprintf("%s %s", input.FirstName, input.LastName),
		CustomerEmail:   input.Email,
		CustomerTaxID:   taxID,
		AmountCents:     amountCents,
		ItemDescription: "Assinatura de plano",
		ItemCode:        fiscalItemCode,
	})
	if err != nil {
		s.logger.Warn("Fiscal document issuance failed", zap.Error(err))
		return
	}
	if !result.Success {
		s.logger.Warn("Fiscal document rejected", zap.String("error", result.ErrorMessage))
	}
}

// notify fires a notification and logs any failure; notification faults never
// affect the saga outcome.
func (s *CreateSubscriptionService) notify(ctx context.Context, send func(context.Context, billing.NotificationPayload) error, payload billing.NotificationPayload) {
	if err := send(ctx, payload); err != nil {
		s.logger.Warn("Notification delivery failed", zap.Error(err))
	}
}

// fiscalItemCode is the fixed service item code used on every fiscal document
const fiscalItemCode = "1.07"
