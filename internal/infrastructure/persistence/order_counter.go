package persistence

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderModel is the GORM model for the orders table owned by the commerce
// side of the product. Billing only counts rows in a cycle window.
type OrderModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for the model
func (OrderModel) TableName() string {
	return "orders"
}

// GormOrderCounter implements the billing.UsageCounter interface by counting
// orders created inside the cycle window. The window is start-inclusive and
// end-exclusive, matching the billing cycle bounds.
type GormOrderCounter struct {
	db *gorm.DB
}

// NewGormOrderCounter creates a new order counter
func NewGormOrderCounter(db *gorm.DB) *GormOrderCounter {
	return &GormOrderCounter{db: db}
}

// GetOrdersCount returns the user's order count inside the window
func (c *GormOrderCounter) GetOrdersCount(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("user_id = ?", userID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Ensure GormOrderCounter implements the interface
var _ billing.UsageCounter = (*GormOrderCounter)(nil)
