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

// PlanModel is the GORM model for plans
type PlanModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                string    `gorm:"type:varchar(100);not null"`
	PriceCents          int64     `gorm:"column:price_cents;not null"`
	Currency            string    `gorm:"type:varchar(3);not null"`
	OrdersLimit         int       `gorm:"not null"`
	Period              string    `gorm:"type:varchar(20);not null"`
	ExtraOrderRateCents int64     `gorm:"column:extra_order_rate_cents;not null"`
	Active              bool      `gorm:"not null"`
	Version             int       `gorm:"not null"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (PlanModel) TableName() string {
	return "plans"
}

// ToEntity converts the model to a domain aggregate
func (m *PlanModel) ToEntity() (*billing.Plan, error) {
	price, err := valueobject.NewMoney(m.PriceCents, valueobject.Currency(m.Currency))
	if err != nil {
		return nil, err
	}
	rate, err := valueobject.NewMoney(m.ExtraOrderRateCents, valueobject.Currency(m.Currency))
	if err != nil {
		return nil, err
	}
	return billing.ReconstitutePlan(
		m.ID, m.Name, price, m.OrdersLimit, billing.BillingPeriod(m.Period),
		rate, m.Active, m.Version, m.CreatedAt, m.UpdatedAt,
	)
}

// PlanModelFromEntity creates a model from a domain aggregate
func PlanModelFromEntity(p *billing.Plan) *PlanModel {
	return &PlanModel{
		ID:                  p.GetID(),
		Name:                p.Name,
		PriceCents:          p.Price.Cents(),
		Currency:            string(p.Price.Currency()),
		OrdersLimit:         p.OrdersLimit,
		Period:              string(p.Period),
		ExtraOrderRateCents: p.ExtraOrderRate.Cents(),
		Active:              p.Active,
		Version:             p.Version,
		CreatedAt:           p.GetCreatedAt(),
		UpdatedAt:           p.GetUpdatedAt(),
	}
}

// GormPlanRepository implements the billing.PlanRepository interface
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new plan repository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID retrieves a plan by its ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Plan, error) {
	var model PlanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity()
}

// FindAllActive retrieves the plans available for new subscriptions
func (r *GormPlanRepository) FindAllActive(ctx context.Context) ([]*billing.Plan, error) {
	var models []PlanModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("price_cents ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	plans := make([]*billing.Plan, len(models))
	for i, model := range models {
		plan, err := model.ToEntity()
		if err != nil {
			return nil, err
		}
		plans[i] = plan
	}
	return plans, nil
}

// Save upserts a plan keyed by id
func (r *GormPlanRepository) Save(ctx context.Context, plan *billing.Plan) error {
	model := PlanModelFromEntity(plan)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(model).Error
}

// Ensure GormPlanRepository implements the interface
var _ billing.PlanRepository = (*GormPlanRepository)(nil)
