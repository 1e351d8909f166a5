package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock implementations of the billing collaborator contracts

type mockPlanRepository struct {
	mock.Mock
}

func (m *mockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Plan), args.Error(1)
}

func (m *mockPlanRepository) FindAllActive(ctx context.Context) ([]*billing.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Plan), args.Error(1)
}

func (m *mockPlanRepository) Save(ctx context.Context, plan *billing.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

type mockSubscriptionRepository struct {
	mock.Mock
}

func (m *mockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) FindDueForRenewal(ctx context.Context, date time.Time) ([]*billing.Subscription, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) Save(ctx context.Context, subscription *billing.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

type mockInvoiceRepository struct {
	mock.Mock
}

func (m *mockInvoiceRepository) NextIdentity() uuid.UUID {
	args := m.Called()
	return args.Get(0).(uuid.UUID)
}

func (m *mockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*billing.Invoice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

type mockPaymentGateway struct {
	mock.Mock
}

func (m *mockPaymentGateway) CreateCustomer(ctx context.Context, data billing.CustomerData) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

func (m *mockPaymentGateway) CreateCard(ctx context.Context, customerID string, data billing.CardData) (billing.CardResult, error) {
	args := m.Called(ctx, customerID, data)
	return args.Get(0).(billing.CardResult), args.Error(1)
}

func (m *mockPaymentGateway) ProcessPayment(ctx context.Context, data billing.PaymentData) (billing.PaymentResult, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(billing.PaymentResult), args.Error(1)
}

func (m *mockPaymentGateway) GetCustomerCards(ctx context.Context, customerID string) ([]billing.CardResult, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.CardResult), args.Error(1)
}

type mockCardStorage struct {
	mock.Mock
}

func (m *mockCardStorage) StoreCard(ctx context.Context, card billing.StoredCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *mockCardStorage) FindByUserID(ctx context.Context, userID uuid.UUID) ([]billing.StoredCard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.StoredCard), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendNewSubscriptionNotification(ctx context.Context, payload billing.NotificationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *mockNotifier) SendRenewalNotification(ctx context.Context, payload billing.NotificationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *mockNotifier) SendPlanChangeNotification(ctx context.Context, payload billing.NotificationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *mockNotifier) SendCancellationNotification(ctx context.Context, payload billing.NotificationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *mockNotifier) SendFailureNotification(ctx context.Context, payload billing.NotificationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type mockFiscalIssuer struct {
	mock.Mock
}

func (m *mockFiscalIssuer) IssueDocument(ctx context.Context, data billing.FiscalDocumentData) (billing.FiscalDocumentResult, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(billing.FiscalDocumentResult), args.Error(1)
}

type mockUsageCounter struct {
	mock.Mock
}

func (m *mockUsageCounter) GetOrdersCount(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}
