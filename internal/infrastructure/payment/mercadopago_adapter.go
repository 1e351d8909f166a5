package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/config"
)

const (
	mpCustomersPath     = "/v1/customers"
	mpCustomerCardsPath = "/v1/customers/%s/cards"
	mpPaymentsPath      = "/v1/payments"

	mpStatusApproved = "approved"
)

// MercadoPagoAdapter implements the billing.PaymentGateway interface against
// the Mercado Pago REST API.
type MercadoPagoAdapter struct {
	cfg        config.MercadoPagoConfig
	httpClient *http.Client
}

// NewMercadoPagoAdapter creates a new Mercado Pago adapter
func NewMercadoPagoAdapter(cfg config.MercadoPagoConfig) *MercadoPagoAdapter {
	return &MercadoPagoAdapter{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// CreateCustomer registers a customer in the gateway and returns its id
func (a *MercadoPagoAdapter) CreateCustomer(ctx context.Context, data billing.CustomerData) (string, error) {
	body := mpCustomerRequest{
		Email:     data.Email,
		FirstName: data.FirstName,
		LastName:  data.LastName,
	}
	if data.Document != "" {
		// Document and DocumentType arrive canonical from the domain's tax-id
		// value object; the adapter does not reclassify.
		idType := data.DocumentType
		if idType == "" {
			idType = "CPF"
		}
		body.Identification = &mpIdentification{Type: idType, Number: data.Document}
	}
	if data.Phone != "" {
		body.Phone = &mpPhone{Number: data.Phone}
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, mpCustomersPath, body, "")
	if err != nil {
		return "", err
	}

	var resp mpCustomerResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", billing.ErrGatewayInvalidResponse, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: customer response missing id", billing.ErrGatewayInvalidResponse)
	}
	return resp.ID, nil
}

// CreateCard attaches a tokenized card to a gateway customer
func (a *MercadoPagoAdapter) CreateCard(ctx context.Context, customerID string, data billing.CardData) (billing.CardResult, error) {
	path := fmt.Sprintf(mpCustomerCardsPath, customerID)

	respBody, err := a.doRequest(ctx, http.MethodPost, path, mpCardRequest{Token: data.Token}, "")
	if err != nil {
		return billing.CardResult{}, err
	}

	var resp mpCardResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return billing.CardResult{}, fmt.Errorf("%w: %v", billing.ErrGatewayInvalidResponse, err)
	}
	if resp.ID == "" {
		return billing.CardResult{}, fmt.Errorf("%w: card response missing id", billing.ErrGatewayInvalidResponse)
	}

	return billing.CardResult{
		CardID:          resp.ID,
		Brand:           resp.PaymentMethod.ID,
		LastFourDigits:  resp.LastFourDigits,
		FirstSixDigits:  resp.FirstSixDigits,
		ExpirationMonth: resp.ExpirationMonth,
		ExpirationYear:  resp.ExpirationYear,
	}, nil
}

// ProcessPayment charges a stored card. A declined charge is not an error:
// the result carries Success=false and the translated decline reason.
func (a *MercadoPagoAdapter) ProcessPayment(ctx context.Context, data billing.PaymentData) (billing.PaymentResult, error) {
	amount := decimal.NewFromInt(data.AmountCents).Div(decimal.NewFromInt(100))

	body := mpPaymentRequest{
		TransactionAmount: amount.InexactFloat64(),
		Description:       data.Description,
		ExternalReference: data.ExternalRef,
		Installments:      1,
		Payer:             mpPaymentPayer{Type: "customer", ID: data.CustomerID},
		CardID:            data.CardID,
	}
	if data.Recurring {
		body.Metadata = map[string]string{
			"subscription_id": data.SubscriptionID,
			"sequence_number": strconv.Itoa(data.SequenceNumber),
		}
		if data.FirstPaymentID != "" {
			body.Metadata["first_payment_id"] = data.FirstPaymentID
		}
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, mpPaymentsPath, body, data.ExternalRef)
	if err != nil {
		return billing.PaymentResult{}, err
	}

	var resp mpPaymentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return billing.PaymentResult{}, fmt.Errorf("%w: %v", billing.ErrGatewayInvalidResponse, err)
	}

	result := billing.PaymentResult{
		Success:       resp.Status == mpStatusApproved,
		TransactionID: strconv.FormatInt(resp.ID, 10),
		Status:        resp.Status,
		StatusDetail:  resp.StatusDetail,
	}
	if !result.Success {
		result.ErrorMessage = translateStatusDetail(resp.StatusDetail)
	}
	return result, nil
}

// GetCustomerCards lists the cards stored for a gateway customer
func (a *MercadoPagoAdapter) GetCustomerCards(ctx context.Context, customerID string) ([]billing.CardResult, error) {
	path := fmt.Sprintf(mpCustomerCardsPath, customerID)

	respBody, err := a.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	var resp []mpCardResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrGatewayInvalidResponse, err)
	}

	cards := make([]billing.CardResult, len(resp))
	for i, card := range resp {
		cards[i] = billing.CardResult{
			CardID:          card.ID,
			Brand:           card.PaymentMethod.ID,
			LastFourDigits:  card.LastFourDigits,
			FirstSixDigits:  card.FirstSixDigits,
			ExpirationMonth: card.ExpirationMonth,
			ExpirationYear:  card.ExpirationYear,
		}
	}
	return cards, nil
}

// doRequest performs an HTTP request to the Mercado Pago API
func (a *MercadoPagoAdapter) doRequest(ctx context.Context, method, path string, body any, idempotencyKey string) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("mercadopago: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.AccessToken)
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	req.Header.Set("X-Idempotency-Key", idempotencyKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrGatewayRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp mpErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: HTTP %d - %s", billing.ErrGatewayRequestFailed, resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", billing.ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

// Ensure MercadoPagoAdapter implements the PaymentGateway interface
var _ billing.PaymentGateway = (*MercadoPagoAdapter)(nil)
