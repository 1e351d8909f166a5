package payment

// mpCustomerRequest is the body for POST /v1/customers
type mpCustomerRequest struct {
	Email          string            `json:"email"`
	FirstName      string            `json:"first_name,omitempty"`
	LastName       string            `json:"last_name,omitempty"`
	Identification *mpIdentification `json:"identification,omitempty"`
	Phone          *mpPhone          `json:"phone,omitempty"`
}

type mpIdentification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type mpPhone struct {
	Number string `json:"number"`
}

// mpCustomerResponse is the body returned by the customers API
type mpCustomerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// mpCardRequest is the body for POST /v1/customers/{id}/cards
type mpCardRequest struct {
	Token string `json:"token"`
}

// mpCardResponse is the body returned by the cards API
type mpCardResponse struct {
	ID              string          `json:"id"`
	FirstSixDigits  string          `json:"first_six_digits"`
	LastFourDigits  string          `json:"last_four_digits"`
	PaymentMethod   mpPaymentMethod `json:"payment_method"`
	ExpirationMonth int             `json:"expiration_month"`
	ExpirationYear  int             `json:"expiration_year"`
}

type mpPaymentMethod struct {
	ID string `json:"id"`
}

// mpPaymentRequest is the body for POST /v1/payments
type mpPaymentRequest struct {
	TransactionAmount float64           `json:"transaction_amount"`
	Description       string            `json:"description"`
	ExternalReference string            `json:"external_reference"`
	Installments      int               `json:"installments"`
	Payer             mpPaymentPayer    `json:"payer"`
	CardID            string            `json:"card_id,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type mpPaymentPayer struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// mpPaymentResponse is the body returned by the payments API
type mpPaymentResponse struct {
	ID           int64  `json:"id"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail"`
}

// mpErrorResponse is the error body returned on 4xx/5xx
type mpErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

// translateStatusDetail maps Mercado Pago rejection codes to the pt-BR
// messages shown to subscribers and recorded on failed invoices.
func translateStatusDetail(statusDetail string) string {
	switch statusDetail {
	case "cc_rejected_insufficient_amount":
		return "Fundos insuficientes"
	case "cc_rejected_bad_filled_security_code":
		return "Código de segurança inválido"
	case "cc_rejected_bad_filled_date":
		return "Data de validade incorreta"
	case "cc_rejected_bad_filled_card_number", "cc_rejected_bad_filled_other":
		return "Dados do cartão incorretos"
	case "cc_rejected_call_for_authorize":
		return "Pagamento requer autorização da operadora do cartão"
	case "cc_rejected_card_disabled":
		return "Cartão desabilitado. Entre em contato com a operadora"
	case "cc_rejected_duplicated_payment":
		return "Pagamento duplicado"
	case "cc_rejected_max_attempts":
		return "Limite de tentativas excedido"
	case "cc_rejected_high_risk":
		return "Pagamento recusado por análise de risco"
	case "cc_rejected_blacklist", "cc_rejected_other_reason":
		return "Pagamento não autorizado"
	case "pending_contingency", "pending_review_manual":
		return "Pagamento em análise"
	default:
		return "Pagamento não autorizado"
	}
}
