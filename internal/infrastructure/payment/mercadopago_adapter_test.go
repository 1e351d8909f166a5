package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) (*MercadoPagoAdapter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter := NewMercadoPagoAdapter(config.MercadoPagoConfig{
		BaseURL:     server.URL,
		AccessToken: "TEST-token",
		Timeout:     5 * time.Second,
	})
	return adapter, server
}

func TestMercadoPagoCreateCustomer(t *testing.T) {
	t.Run("creates customer with CPF identification", func(t *testing.T) {
		var captured mpCustomerRequest
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/customers", r.URL.Path)
			assert.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(mpCustomerResponse{ID: "cus_123", Email: captured.Email})
		})

		id, err := adapter.CreateCustomer(context.Background(), billing.CustomerData{
			Email:        "ana@example.com",
			FirstName:    "Ana",
			LastName:     "Souza",
			Document:     "12345678901",
			DocumentType: "CPF",
		})

		require.NoError(t, err)
		assert.Equal(t, "cus_123", id)
		require.NotNil(t, captured.Identification)
		assert.Equal(t, "CPF", captured.Identification.Type)
		assert.Equal(t, "12345678901", captured.Identification.Number)
	})

	t.Run("sends the given identification type unchanged", func(t *testing.T) {
		var captured mpCustomerRequest
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(mpCustomerResponse{ID: "cus_456"})
		})

		_, err := adapter.CreateCustomer(context.Background(), billing.CustomerData{
			Email:        "loja@example.com",
			Document:     "12345678000195",
			DocumentType: "CNPJ",
		})

		require.NoError(t, err)
		require.NotNil(t, captured.Identification)
		assert.Equal(t, "CNPJ", captured.Identification.Type)
	})

	t.Run("wraps API errors", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(mpErrorResponse{Message: "invalid email", Status: 400})
		})

		_, err := adapter.CreateCustomer(context.Background(), billing.CustomerData{Email: "bad"})

		assert.ErrorIs(t, err, billing.ErrGatewayRequestFailed)
		assert.Contains(t, err.Error(), "invalid email")
	})
}

func TestMercadoPagoCreateCard(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers/cus_123/cards", r.URL.Path)
		json.NewEncoder(w).Encode(mpCardResponse{
			ID:              "card_789",
			FirstSixDigits:  "411111",
			LastFourDigits:  "1111",
			PaymentMethod:   mpPaymentMethod{ID: "visa"},
			ExpirationMonth: 11,
			ExpirationYear:  2031,
		})
	})

	result, err := adapter.CreateCard(context.Background(), "cus_123", billing.CardData{Token: "tok_abc"})

	require.NoError(t, err)
	assert.Equal(t, "card_789", result.CardID)
	assert.Equal(t, "visa", result.Brand)
	assert.Equal(t, "1111", result.LastFourDigits)
	assert.Equal(t, "411111", result.FirstSixDigits)
	assert.Equal(t, 11, result.ExpirationMonth)
	assert.Equal(t, 2031, result.ExpirationYear)
}

func TestMercadoPagoProcessPayment(t *testing.T) {
	t.Run("approved payment", func(t *testing.T) {
		var captured mpPaymentRequest
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/payments", r.URL.Path)
			assert.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(mpPaymentResponse{ID: 99001, Status: "approved", StatusDetail: "accredited"})
		})

		result, err := adapter.ProcessPayment(context.Background(), billing.PaymentData{
			CustomerID:     "cus_123",
			CardID:         "card_789",
			AmountCents:    9900,
			Description:    "Assinatura Starter",
			ExternalRef:    "inv_1",
			Recurring:      true,
			SubscriptionID: "sub_1",
			SequenceNumber: 2,
			FirstPaymentID: "99000",
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "99001", result.TransactionID)
		assert.InDelta(t, 99.00, captured.TransactionAmount, 0.001)
		assert.Equal(t, "customer", captured.Payer.Type)
		assert.Equal(t, "sub_1", captured.Metadata["subscription_id"])
		assert.Equal(t, "2", captured.Metadata["sequence_number"])
		assert.Equal(t, "99000", captured.Metadata["first_payment_id"])
	})

	t.Run("rejected payment carries translated reason", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(mpPaymentResponse{
				ID: 99002, Status: "rejected", StatusDetail: "cc_rejected_insufficient_amount",
			})
		})

		result, err := adapter.ProcessPayment(context.Background(), billing.PaymentData{
			CustomerID: "cus_123", CardID: "card_789", AmountCents: 9900,
		})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Fundos insuficientes", result.ErrorMessage)
		assert.Equal(t, "cc_rejected_insufficient_amount", result.StatusDetail)
	})

	t.Run("gateway 500 is an error, not a decline", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := adapter.ProcessPayment(context.Background(), billing.PaymentData{
			CustomerID: "cus_123", CardID: "card_789", AmountCents: 9900,
		})

		assert.ErrorIs(t, err, billing.ErrGatewayRequestFailed)
	})
}

func TestMercadoPagoGetCustomerCards(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode([]mpCardResponse{
			{ID: "card_1", LastFourDigits: "1111", PaymentMethod: mpPaymentMethod{ID: "visa"}},
			{ID: "card_2", LastFourDigits: "2222", PaymentMethod: mpPaymentMethod{ID: "master"}},
		})
	})

	cards, err := adapter.GetCustomerCards(context.Background(), "cus_123")

	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "card_1", cards[0].CardID)
	assert.Equal(t, "master", cards[1].Brand)
}

func TestTranslateStatusDetail(t *testing.T) {
	tests := []struct {
		detail string
		want   string
	}{
		{"cc_rejected_insufficient_amount", "Fundos insuficientes"},
		{"cc_rejected_bad_filled_security_code", "Código de segurança inválido"},
		{"cc_rejected_max_attempts", "Limite de tentativas excedido"},
		{"something_unknown", "Pagamento não autorizado"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, translateStatusDetail(tt.detail))
	}
}
