package persistence

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredCardModel is the GORM model for gateway card references
type StoredCardModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index"`
	GatewayCardID     string    `gorm:"type:varchar(100);not null"`
	GatewayCustomerID string    `gorm:"type:varchar(100);not null"`
	Brand             string    `gorm:"type:varchar(30);not null"`
	LastFourDigits    string    `gorm:"type:varchar(4);not null"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for the model
func (StoredCardModel) TableName() string {
	return "stored_cards"
}

// ToStoredCard converts the model to the domain value
func (m *StoredCardModel) ToStoredCard() billing.StoredCard {
	return billing.StoredCard{
		UserID:            m.UserID,
		GatewayCardID:     m.GatewayCardID,
		GatewayCustomerID: m.GatewayCustomerID,
		Brand:             m.Brand,
		LastFourDigits:    m.LastFourDigits,
	}
}

// GormCardStorage implements the billing.CardStorage interface
type GormCardStorage struct {
	db *gorm.DB
}

// NewGormCardStorage creates a new card storage
func NewGormCardStorage(db *gorm.DB) *GormCardStorage {
	return &GormCardStorage{db: db}
}

// StoreCard persists a stored-card reference
func (s *GormCardStorage) StoreCard(ctx context.Context, card billing.StoredCard) error {
	model := &StoredCardModel{
		ID:                uuid.New(),
		UserID:            card.UserID,
		GatewayCardID:     card.GatewayCardID,
		GatewayCustomerID: card.GatewayCustomerID,
		Brand:             card.Brand,
		LastFourDigits:    card.LastFourDigits,
	}
	return s.db.WithContext(ctx).Create(model).Error
}

// FindByUserID retrieves the user's stored cards, most recent first
func (s *GormCardStorage) FindByUserID(ctx context.Context, userID uuid.UUID) ([]billing.StoredCard, error) {
	var models []StoredCardModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	cards := make([]billing.StoredCard, len(models))
	for i, model := range models {
		cards[i] = model.ToStoredCard()
	}
	return cards, nil
}

// Ensure GormCardStorage implements the interface
var _ billing.CardStorage = (*GormCardStorage)(nil)
