package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/config"
)

// RenewalExecutor runs a single renewal attempt
type RenewalExecutor interface {
	Execute(ctx context.Context, input appbilling.RenewSubscriptionInput) (*appbilling.RenewSubscriptionResult, error)
}

// RenewalLock serializes renewal attempts per subscription across instances
type RenewalLock interface {
	Acquire(ctx context.Context, subscriptionID uuid.UUID) (bool, error)
	Release(ctx context.Context, subscriptionID uuid.UUID) error
}

// RenewalScheduler periodically sweeps for subscriptions whose billing cycle
// has lapsed and runs a renewal attempt for each. Every subscription is
// processed under a per-subscription lock so overlapping sweeps and multiple
// instances never double-charge.
type RenewalScheduler struct {
	subscriptions billing.SubscriptionRepository
	executor      RenewalExecutor
	lock          RenewalLock
	cfg           config.SchedulerConfig
	logger        *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewRenewalScheduler creates a new renewal scheduler
func NewRenewalScheduler(
	subscriptions billing.SubscriptionRepository,
	executor RenewalExecutor,
	lock RenewalLock,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *RenewalScheduler {
	return &RenewalScheduler{
		subscriptions: subscriptions,
		executor:      executor,
		lock:          lock,
		cfg:           cfg,
		logger:        logger,
	}
}

// Start starts the periodic sweep loop
func (s *RenewalScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Renewal scheduler started",
		zap.Duration("check_interval", s.cfg.CheckInterval),
		zap.Int("batch_limit", s.cfg.BatchLimit),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *RenewalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Renewal scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Renewal scheduler stop timed out")
		return ctx.Err()
	}
}

// run drives the sweep loop until the context is cancelled
func (s *RenewalScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep finds lapsed subscriptions and runs one renewal attempt for each.
// Returns the number of renewals attempted.
func (s *RenewalScheduler) Sweep(ctx context.Context) int {
	now := time.Now().UTC()

	due, err := s.subscriptions.FindDueForRenewal(ctx, now)
	if err != nil {
		s.logger.Error("Failed to load subscriptions due for renewal", zap.Error(err))
		return 0
	}
	if len(due) == 0 {
		return 0
	}

	if s.cfg.BatchLimit > 0 && len(due) > s.cfg.BatchLimit {
		due = due[:s.cfg.BatchLimit]
	}

	s.logger.Info("Renewal sweep started", zap.Int("due", len(due)))

	attempted := 0
	for _, sub := range due {
		select {
		case <-ctx.Done():
			return attempted
		default:
		}

		if sub.HasReachedMaxRetries() {
			continue
		}
		if s.renewOne(ctx, sub.GetID()) {
			attempted++
		}
	}

	s.logger.Info("Renewal sweep finished", zap.Int("attempted", attempted))
	return attempted
}

// renewOne runs a single locked renewal attempt.
// Returns false when the lock is already held elsewhere.
func (s *RenewalScheduler) renewOne(ctx context.Context, subscriptionID uuid.UUID) bool {
	acquired, err := s.lock.Acquire(ctx, subscriptionID)
	if err != nil {
		s.logger.Error("Failed to acquire renewal lock",
			zap.String("subscription_id", subscriptionID.String()),
			zap.Error(err))
		return false
	}
	if !acquired {
		s.logger.Debug("Renewal already in progress elsewhere, skipping",
			zap.String("subscription_id", subscriptionID.String()))
		return false
	}
	defer func() {
		if err := s.lock.Release(ctx, subscriptionID); err != nil {
			s.logger.Warn("Failed to release renewal lock",
				zap.String("subscription_id", subscriptionID.String()),
				zap.Error(err))
		}
	}()

	result, err := s.executor.Execute(ctx, appbilling.RenewSubscriptionInput{SubscriptionID: subscriptionID})
	if err != nil {
		s.logger.Error("Renewal attempt errored",
			zap.String("subscription_id", subscriptionID.String()),
			zap.Error(err))
		return true
	}

	if result.Success {
		s.logger.Info("Subscription renewed",
			zap.String("subscription_id", subscriptionID.String()),
			zap.Int64("amount_cents", result.AmountCents))
	} else {
		s.logger.Warn("Renewal charge declined",
			zap.String("subscription_id", subscriptionID.String()),
			zap.Int("retry_count", result.RetryCount))
	}
	return true
}
