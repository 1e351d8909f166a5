package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChangeCreditCardSuccess(t *testing.T) {
	subRepo := new(mockSubscriptionRepository)
	gateway := new(mockPaymentGateway)
	cardStorage := new(mockCardStorage)
	service := NewChangeCreditCardService(subRepo, gateway, cardStorage, zap.NewNop())

	plan := monthlyPlan(t, 10000)
	sub, err := billing.NewSubscription(uuid.New(), plan, "cus_1", "card_old", time.Now().UTC())
	require.NoError(t, err)

	subRepo.On("FindByUserID", mock.Anything, sub.UserID).Return(sub, nil)
	gateway.On("CreateCard", mock.Anything, "cus_1", billing.CardData{Token: "tok_new"}).
		Return(billing.CardResult{CardID: "card_new", Brand: "master", LastFourDigits: "2222", FirstSixDigits: "522222", ExpirationMonth: 6, ExpirationYear: 2032}, nil)
	cardStorage.On("StoreCard", mock.Anything, mock.MatchedBy(func(c billing.StoredCard) bool {
		return c.GatewayCardID == "card_new" && c.UserID == sub.UserID
	})).Return(nil)
	subRepo.On("Save", mock.Anything, sub).Return(nil)

	result, err := service.Execute(context.Background(), ChangeCardInput{UserID: sub.UserID, CardToken: "tok_new"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "card_new", result.CardID)
	assert.Equal(t, "card_new", *sub.CardID)
	cardStorage.AssertExpectations(t)
}

func TestChangeCreditCardSubscriptionNotFound(t *testing.T) {
	subRepo := new(mockSubscriptionRepository)
	service := NewChangeCreditCardService(subRepo, new(mockPaymentGateway), new(mockCardStorage), zap.NewNop())

	userID := uuid.New()
	subRepo.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)

	_, err := service.Execute(context.Background(), ChangeCardInput{UserID: userID, CardToken: "tok"})
	assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
}

func TestChangeCreditCardExpiredCard(t *testing.T) {
	subRepo := new(mockSubscriptionRepository)
	gateway := new(mockPaymentGateway)
	cardStorage := new(mockCardStorage)
	service := NewChangeCreditCardService(subRepo, gateway, cardStorage, zap.NewNop())

	plan := monthlyPlan(t, 10000)
	sub, err := billing.NewSubscription(uuid.New(), plan, "cus_1", "card_old", time.Now().UTC())
	require.NoError(t, err)

	subRepo.On("FindByUserID", mock.Anything, sub.UserID).Return(sub, nil)
	gateway.On("CreateCard", mock.Anything, "cus_1", mock.Anything).
		Return(billing.CardResult{CardID: "card_new", Brand: "visa", LastFourDigits: "1111", FirstSixDigits: "411111", ExpirationMonth: 1, ExpirationYear: 2020}, nil)

	result, err := service.Execute(context.Background(), ChangeCardInput{UserID: sub.UserID, CardToken: "tok_old_card"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Cartão expirado")
	assert.Equal(t, "card_old", *sub.CardID)
	cardStorage.AssertNotCalled(t, "StoreCard", mock.Anything, mock.Anything)
	subRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestChangeCreditCardGatewayRejection(t *testing.T) {
	subRepo := new(mockSubscriptionRepository)
	gateway := new(mockPaymentGateway)
	service := NewChangeCreditCardService(subRepo, gateway, new(mockCardStorage), zap.NewNop())

	plan := monthlyPlan(t, 10000)
	sub, err := billing.NewSubscription(uuid.New(), plan, "cus_1", "card_old", time.Now().UTC())
	require.NoError(t, err)

	subRepo.On("FindByUserID", mock.Anything, sub.UserID).Return(sub, nil)
	gateway.On("CreateCard", mock.Anything, "cus_1", mock.Anything).
		Return(billing.CardResult{}, errors.New("invalid token"))

	result, err := service.Execute(context.Background(), ChangeCardInput{UserID: sub.UserID, CardToken: "tok_bad"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "card_old", *sub.CardID)
	subRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
