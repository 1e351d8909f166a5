package invoicing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/config"
)

const spedyInvoicesPath = "/invoices"

// spedyInvoiceRequest is the body for POST /invoices
type spedyInvoiceRequest struct {
	ExternalID string        `json:"external_id"`
	Customer   spedyCustomer `json:"customer"`
	Items      []spedyItem   `json:"items"`
}

type spedyCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	TaxID string `json:"tax_id"`
}

type spedyItem struct {
	Description string  `json:"description"`
	Code        string  `json:"code"`
	Amount      float64 `json:"amount"`
	Quantity    int     `json:"quantity"`
}

// spedyInvoiceResponse is the body returned by the invoices API
type spedyInvoiceResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SpedyIssuer implements the billing.FiscalDocumentIssuer interface against
// the Spedy invoicing API. Issuance runs after a successful charge and is
// best-effort; a failed issuance never fails the charge.
type SpedyIssuer struct {
	cfg        config.SpedyConfig
	httpClient *http.Client
}

// NewSpedyIssuer creates a new Spedy fiscal document issuer
func NewSpedyIssuer(cfg config.SpedyConfig) *SpedyIssuer {
	return &SpedyIssuer{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// IssueDocument requests a fiscal document for a settled charge
func (s *SpedyIssuer) IssueDocument(ctx context.Context, data billing.FiscalDocumentData) (billing.FiscalDocumentResult, error) {
	amount := decimal.NewFromInt(data.AmountCents).Div(decimal.NewFromInt(100))

	body := spedyInvoiceRequest{
		ExternalID: data.TransactionID,
		Customer: spedyCustomer{
			Name:  data.CustomerName,
			Email: data.CustomerEmail,
			TaxID: data.CustomerTaxID,
		},
		Items: []spedyItem{{
			Description: data.ItemDescription,
			Code:        data.ItemCode,
			Amount:      amount.InexactFloat64(),
			Quantity:    1,
		}},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return billing.FiscalDocumentResult{}, fmt.Errorf("spedy: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+spedyInvoicesPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return billing.FiscalDocumentResult{}, fmt.Errorf("spedy: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return billing.FiscalDocumentResult{}, fmt.Errorf("spedy: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return billing.FiscalDocumentResult{}, fmt.Errorf("spedy: failed to read response: %w", err)
	}

	var respData spedyInvoiceResponse
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return billing.FiscalDocumentResult{}, fmt.Errorf("spedy: failed to parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		message := respData.Error
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return billing.FiscalDocumentResult{Success: false, ErrorMessage: message}, nil
	}

	return billing.FiscalDocumentResult{
		Success:    true,
		DocumentID: respData.ID,
	}, nil
}

// Ensure SpedyIssuer implements the interface
var _ billing.FiscalDocumentIssuer = (*SpedyIssuer)(nil)
