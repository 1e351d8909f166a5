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

// CancelSubscriptionService runs the cancellation saga
type CancelSubscriptionService struct {
	subRepo  billing.SubscriptionRepository
	notifier billing.Notifier
	logger   *zap.Logger
}

// NewCancelSubscriptionService creates a new CancelSubscriptionService
func NewCancelSubscriptionService(
	subRepo billing.SubscriptionRepository,
	notifier billing.Notifier,
	logger *zap.Logger,
) *CancelSubscriptionService {
	return &CancelSubscriptionService{
		subRepo:  subRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// Execute cancels the user's subscription. Not-found and non-cancellable
// statuses propagate as domain errors; a persistence fault after the domain
// transition comes back as a failure result.
func (s *CancelSubscriptionService) Execute(ctx context.Context, input CancelSubscriptionInput) (*CancelSubscriptionResult, error) {
	now := time.Now().UTC()

	subscription, err := s.subRepo.FindByUserID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("finding subscription: %w", err)
	}

	if err := subscription.Cancel(input.Reason, now); err != nil {
		return nil, err
	}

	if err := s.subRepo.Save(ctx, subscription); err != nil {
		s.logger.Error("Failed to save cancelled subscription",
			zap.String("subscription_id", subscription.GetID().String()),
			zap.Error(err))
		return &CancelSubscriptionResult{
			Success: false,
			Message: "Cancellation could not be persisted",
		}, nil
	}

	if err := s.notifier.SendCancellationNotification(ctx, billing.NotificationPayload{
		"user_id": subscription.UserID.String(),
		"reason":  input.Reason,
	}); err != nil {
		s.logger.Warn("Notification delivery failed", zap.Error(err))
	}

	s.logger.Info("Subscription cancelled",
		zap.String("subscription_id", subscription.GetID().String()),
		zap.String("reason", input.Reason))

	return &CancelSubscriptionResult{
		Success: true,
		Message: "Subscription cancelled",
	}, nil
}
