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

// InvoiceModel is the GORM model for invoices
type InvoiceModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanID        uuid.UUID `gorm:"type:uuid;not null"`
	AmountCents   int64     `gorm:"column:amount_cents;not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	Status        string    `gorm:"type:varchar(20);not null"`
	TransactionID *string   `gorm:"type:varchar(100)"`
	CardID        *string   `gorm:"type:varchar(100)"`
	CardLastFour  *string   `gorm:"type:varchar(4)"`
	CardBrand     *string   `gorm:"type:varchar(30)"`
	OrdersCount   *int
	StatusReason  *string   `gorm:"type:text"`
	Version       int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToEntity converts the model to a domain aggregate
func (m *InvoiceModel) ToEntity() (*billing.Invoice, error) {
	amount, err := valueobject.NewMoney(m.AmountCents, valueobject.Currency(m.Currency))
	if err != nil {
		return nil, err
	}
	return billing.ReconstituteInvoice(
		m.ID, m.UserID, m.PlanID, amount, billing.InvoiceStatus(m.Status),
		m.TransactionID, m.CardID, m.CardLastFour, m.CardBrand,
		m.OrdersCount, m.StatusReason,
		m.Version, m.CreatedAt, m.UpdatedAt,
	), nil
}

// InvoiceModelFromEntity creates a model from a domain aggregate
func InvoiceModelFromEntity(i *billing.Invoice) *InvoiceModel {
	return &InvoiceModel{
		ID:            i.GetID(),
		UserID:        i.UserID,
		PlanID:        i.PlanID,
		AmountCents:   i.Amount.Cents(),
		Currency:      string(i.Amount.Currency()),
		Status:        string(i.Status),
		TransactionID: i.TransactionID,
		CardID:        i.CardID,
		CardLastFour:  i.CardLastFour,
		CardBrand:     i.CardBrand,
		OrdersCount:   i.OrdersCount,
		StatusReason:  i.StatusReason,
		Version:       i.Version,
		CreatedAt:     i.GetCreatedAt(),
		UpdatedAt:     i.GetUpdatedAt(),
	}
}

// GormInvoiceRepository implements the billing.InvoiceRepository interface
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new invoice repository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// NextIdentity generates a new invoice id
func (r *GormInvoiceRepository) NextIdentity() uuid.UUID {
	return uuid.New()
}

// FindByID retrieves an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity()
}

// FindByUserID retrieves the user's invoices, most recent first
func (r *GormInvoiceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*billing.Invoice, error) {
	var models []InvoiceModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	invoices := make([]*billing.Invoice, len(models))
	for i, model := range models {
		invoice, err := model.ToEntity()
		if err != nil {
			return nil, err
		}
		invoices[i] = invoice
	}
	return invoices, nil
}

// Save upserts an invoice keyed by id
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := InvoiceModelFromEntity(invoice)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(model).Error
}

// Ensure GormInvoiceRepository implements the interface
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
