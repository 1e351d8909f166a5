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

// ChangeCreditCardService replaces the payment instrument used for recurring
// charges: register at the gateway, store the reference, attach to the
// subscription.
type ChangeCreditCardService struct {
	subRepo     billing.SubscriptionRepository
	gateway     billing.PaymentGateway
	cardStorage billing.CardStorage
	logger      *zap.Logger
}

// NewChangeCreditCardService creates a new ChangeCreditCardService
func NewChangeCreditCardService(
	subRepo billing.SubscriptionRepository,
	gateway billing.PaymentGateway,
	cardStorage billing.CardStorage,
	logger *zap.Logger,
) *ChangeCreditCardService {
	return &ChangeCreditCardService{
		subRepo:     subRepo,
		gateway:     gateway,
		cardStorage: cardStorage,
		logger:      logger,
	}
}

// Execute runs the card swap. Gateway rejections come back as a failure
// result; a missing subscription propagates as a domain error.
func (s *ChangeCreditCardService) Execute(ctx context.Context, input ChangeCardInput) (*ChangeCardResult, error) {
	now := time.Now().UTC()

	subscription, err := s.subRepo.FindByUserID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("finding subscription: %w", err)
	}

	card, err := s.gateway.CreateCard(ctx, subscription.GatewayCustomerID, billing.CardData{Token: input.CardToken})
	if err != nil {
		s.logger.Warn("Card registration failed",
			zap.String("user_id", input.UserID.String()),
			zap.Error(err))
		return &ChangeCardResult{
			Success: false,
			Message: fmt.Sprintf("Card registration failed: %v", err),
		}, nil
	}
	creditCard, err := cardFromResult(input.CardToken, card, now)
	if err != nil {
		s.logger.Warn("Card rejected",
			zap.String("user_id", input.UserID.String()),
			zap.Error(err))
		return &ChangeCardResult{
			Success: false,
			Message: fmt.Sprintf("Card registration failed: %v", err),
		}, nil
	}

	if err := s.cardStorage.StoreCard(ctx, billing.StoredCard{
		UserID:            input.UserID,
		GatewayCardID:     card.CardID,
		GatewayCustomerID: subscription.GatewayCustomerID,
		Brand:             creditCard.Brand(),
		LastFourDigits:    creditCard.LastFourDigits(),
	}); err != nil {
		return nil, fmt.Errorf("storing card: %w", err)
	}

	subscription.AttachCard(card.CardID, now)
	if err := s.subRepo.Save(ctx, subscription); err != nil {
		return nil, fmt.Errorf("saving subscription: %w", err)
	}

	s.logger.Info("Payment card replaced",
		zap.String("subscription_id", subscription.GetID().String()),
		zap.String("card", creditCard.MaskedNumber()),
		zap.String("card_brand", creditCard.Brand()))

	return &ChangeCardResult{
		Success:        true,
		Message:        "Card updated",
		CardID:         card.CardID,
		Brand:          creditCard.Brand(),
		LastFourDigits: creditCard.LastFourDigits(),
	}, nil
}
