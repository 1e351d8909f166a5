package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM connection backed by a mocked SQL driver
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func planColumns() []string {
	return []string{
		"id", "name", "price_cents", "currency", "orders_limit", "period",
		"extra_order_rate_cents", "active", "version", "created_at", "updated_at",
	}
}

func TestGormPlanRepository_FindByID(t *testing.T) {
	t.Run("finds existing plan", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPlanRepository(db)

		planID := uuid.New()
		now := time.Now().UTC()
		rows := sqlmock.NewRows(planColumns()).
			AddRow(planID, "Starter", int64(9900), "BRL", 100, "MONTHLY", int64(50), true, 1, now, now)

		mock.ExpectQuery(`SELECT \* FROM "plans" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(planID, 1).
			WillReturnRows(rows)

		plan, err := repo.FindByID(context.Background(), planID)

		require.NoError(t, err)
		assert.Equal(t, planID, plan.GetID())
		assert.Equal(t, "Starter", plan.Name)
		assert.Equal(t, int64(9900), plan.Price.Cents())
		assert.Equal(t, billing.BillingPeriodMonthly, plan.Period)
		assert.Equal(t, 100, plan.OrdersLimit)
		assert.True(t, plan.Active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps record not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPlanRepository(db)

		planID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "plans" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(planID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		plan, err := repo.FindByID(context.Background(), planID)

		assert.Nil(t, plan)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPlanRepository_FindAllActive(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormPlanRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(planColumns()).
		AddRow(uuid.New(), "Starter", int64(9900), "BRL", 100, "MONTHLY", int64(50), true, 1, now, now).
		AddRow(uuid.New(), "Pro", int64(19900), "BRL", 500, "MONTHLY", int64(40), true, 1, now, now)

	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE active = \$1 ORDER BY price_cents ASC`).
		WithArgs(true).
		WillReturnRows(rows)

	plans, err := repo.FindAllActive(context.Background())

	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Starter", plans[0].Name)
	assert.Equal(t, "Pro", plans[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanModelRoundTrip(t *testing.T) {
	price := valueobject.MustMoneyBRL(29900)
	rate := valueobject.MustMoneyBRL(35)
	plan, err := billing.NewPlan("Scale", price, 1000, billing.BillingPeriodYearly, rate)
	require.NoError(t, err)

	model := PlanModelFromEntity(plan)
	restored, err := model.ToEntity()
	require.NoError(t, err)

	assert.Equal(t, plan.GetID(), restored.GetID())
	assert.Equal(t, plan.Name, restored.Name)
	assert.True(t, plan.Price.Equals(restored.Price))
	assert.True(t, plan.ExtraOrderRate.Equals(restored.ExtraOrderRate))
	assert.Equal(t, plan.OrdersLimit, restored.OrdersLimit)
	assert.Equal(t, plan.Period, restored.Period)
	assert.Equal(t, plan.Active, restored.Active)
	assert.Equal(t, plan.Version, restored.Version)
}
