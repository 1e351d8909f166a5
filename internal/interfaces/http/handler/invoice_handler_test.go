package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/interfaces/http/dto"
)

type mockInvoiceReader struct {
	mock.Mock
}

func (m *mockInvoiceReader) ListUserInvoices(ctx context.Context, userID uuid.UUID) ([]appbilling.InvoiceDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appbilling.InvoiceDTO), args.Error(1)
}

func (m *mockInvoiceReader) GetInvoice(ctx context.Context, id uuid.UUID) (*appbilling.InvoiceDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.InvoiceDTO), args.Error(1)
}

func newInvoiceRouter() (*gin.Engine, *mockInvoiceReader) {
	invoices := new(mockInvoiceReader)
	router := gin.New()
	NewInvoiceHandler(invoices).RegisterRoutes(router.Group("/api/v1"))
	return router, invoices
}

func TestListUserInvoices(t *testing.T) {
	t.Run("returns the user's history", func(t *testing.T) {
		router, invoices := newInvoiceRouter()
		userID := uuid.New()
		invoices.On("ListUserInvoices", mock.Anything, userID).Return([]appbilling.InvoiceDTO{
			{ID: uuid.New(), UserID: userID, AmountCents: 9900, Status: "APPROVED"},
			{ID: uuid.New(), UserID: userID, AmountCents: 9900, Status: "FAILED"},
		}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID.String()+"/invoices", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 2)
	})

	t.Run("malformed user id returns 400", func(t *testing.T) {
		router, _ := newInvoiceRouter()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/nope/invoices", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetInvoice(t *testing.T) {
	t.Run("returns the invoice", func(t *testing.T) {
		router, invoices := newInvoiceRouter()
		invoiceID := uuid.New()
		invoices.On("GetInvoice", mock.Anything, invoiceID).Return(&appbilling.InvoiceDTO{
			ID:          invoiceID,
			AmountCents: 9900,
			Status:      "APPROVED",
		}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+invoiceID.String(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown invoice returns 404", func(t *testing.T) {
		router, invoices := newInvoiceRouter()
		invoices.On("GetInvoice", mock.Anything, mock.Anything).Return(nil, billing.ErrInvoiceNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+uuid.NewString(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INVOICE_NOT_FOUND", resp.Error.Code)
	})
}
