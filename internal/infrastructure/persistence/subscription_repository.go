package persistence

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionModel is the GORM model for subscriptions
type SubscriptionModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	PlanID             uuid.UUID  `gorm:"type:uuid;not null"`
	PlanPriceCents     int64      `gorm:"column:plan_price_cents;not null"`
	Currency           string     `gorm:"type:varchar(3);not null"`
	CardID             *string    `gorm:"type:varchar(100)"`
	Status             string     `gorm:"type:varchar(20);not null;index"`
	PaymentStatus      string     `gorm:"type:varchar(20);not null"`
	CyclePeriod        string     `gorm:"type:varchar(20);not null"`
	CycleStartsAt      time.Time  `gorm:"not null"`
	CycleEndsAt        time.Time  `gorm:"not null;index"`
	StartedAt          time.Time  `gorm:"not null"`
	LastChargeAt       *time.Time
	LastPlanChangeAt   *time.Time
	RetryCount         int        `gorm:"not null"`
	GatewayCustomerID  string     `gorm:"type:varchar(100);not null"`
	FirstPaymentID     *string    `gorm:"type:varchar(100)"`
	PendingPlanID      *uuid.UUID `gorm:"type:uuid"`
	CancellationReason *string    `gorm:"type:text"`
	Version            int        `gorm:"not null"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToEntity converts the model to a domain aggregate
func (m *SubscriptionModel) ToEntity() (*billing.Subscription, error) {
	price, err := valueobject.NewMoney(m.PlanPriceCents, valueobject.Currency(m.Currency))
	if err != nil {
		return nil, err
	}
	cycle, err := billing.ReconstituteBillingCycle(
		billing.BillingPeriod(m.CyclePeriod), m.CycleStartsAt, m.CycleEndsAt,
	)
	if err != nil {
		return nil, err
	}
	return billing.ReconstituteSubscription(
		m.ID, m.UserID, m.PlanID, price, m.CardID,
		billing.SubscriptionStatus(m.Status), billing.PaymentStatus(m.PaymentStatus),
		cycle, m.StartedAt, m.LastChargeAt, m.LastPlanChangeAt, m.RetryCount,
		m.GatewayCustomerID, m.FirstPaymentID, m.PendingPlanID, m.CancellationReason,
		m.Version, m.CreatedAt, m.UpdatedAt,
	), nil
}

// SubscriptionModelFromEntity creates a model from a domain aggregate
func SubscriptionModelFromEntity(s *billing.Subscription) *SubscriptionModel {
	return &SubscriptionModel{
		ID:                 s.GetID(),
		UserID:             s.UserID,
		PlanID:             s.PlanID,
		PlanPriceCents:     s.PlanPrice.Cents(),
		Currency:           string(s.PlanPrice.Currency()),
		CardID:             s.CardID,
		Status:             string(s.Status),
		PaymentStatus:      string(s.PaymentStatus),
		CyclePeriod:        string(s.CurrentCycle.Period()),
		CycleStartsAt:      s.CurrentCycle.StartsAt(),
		CycleEndsAt:        s.CurrentCycle.EndsAt(),
		StartedAt:          s.StartedAt,
		LastChargeAt:       s.LastChargeAt,
		LastPlanChangeAt:   s.LastPlanChangeAt,
		RetryCount:         s.RetryCount,
		GatewayCustomerID:  s.GatewayCustomerID,
		FirstPaymentID:     s.FirstPaymentID,
		PendingPlanID:      s.PendingPlanID,
		CancellationReason: s.CancellationReason,
		Version:            s.Version,
		CreatedAt:          s.GetCreatedAt(),
		UpdatedAt:          s.GetUpdatedAt(),
	}
}

// GormSubscriptionRepository implements the billing.SubscriptionRepository interface
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new subscription repository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByID retrieves a subscription by its ID
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	var model SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity()
}

// FindByUserID retrieves the user's subscription (at most one per user)
func (r *GormSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	var model SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity()
}

// FindDueForRenewal retrieves chargeable subscriptions whose cycle ended at or
// before the given date and that have not exhausted their payment retries
func (r *GormSubscriptionRepository) FindDueForRenewal(ctx context.Context, date time.Time) ([]*billing.Subscription, error) {
	chargeable := []string{
		string(billing.SubscriptionStatusActive),
		string(billing.SubscriptionStatusPastDue),
	}

	var models []SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("cycle_ends_at <= ?", date).
		Where("status IN ?", chargeable).
		Where("retry_count < ?", billing.MaxPaymentRetries).
		Order("cycle_ends_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	subscriptions := make([]*billing.Subscription, len(models))
	for i, model := range models {
		sub, err := model.ToEntity()
		if err != nil {
			return nil, err
		}
		subscriptions[i] = sub
	}
	return subscriptions, nil
}

// Save upserts a subscription keyed by id
func (r *GormSubscriptionRepository) Save(ctx context.Context, subscription *billing.Subscription) error {
	model := SubscriptionModelFromEntity(subscription)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(model).Error
}

// Ensure GormSubscriptionRepository implements the interface
var _ billing.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
