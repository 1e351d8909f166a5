package billing

import (
	"context"
	"errors"
)

// Gateway errors. Transport or protocol faults surface as wrapped sentinel
// errors; a charge the gateway declined is NOT an error, it comes back as an
// unsuccessful PaymentResult.
var (
	ErrGatewayRequestFailed   = errors.New("gateway: request failed")
	ErrGatewayInvalidResponse = errors.New("gateway: invalid response")
)

// CustomerData identifies a payer at the gateway. Document carries the
// canonical tax-id digits and DocumentType its classification (CPF or CNPJ).
type CustomerData struct {
	Email        string
	FirstName    string
	LastName     string
	Document     string
	DocumentType string
	Phone        string
}

// CardData carries the tokenized instrument to register at the gateway
type CardData struct {
	Token string
}

// CardResult is the gateway's registered-card descriptor
type CardResult struct {
	CardID          string
	Brand           string
	LastFourDigits  string
	FirstSixDigits  string
	ExpirationMonth int
	ExpirationYear  int
}

// PaymentData describes a single charge request
type PaymentData struct {
	CustomerID     string
	CardID         string
	AmountCents    int64
	Description    string
	ExternalRef    string
	Recurring      bool
	SubscriptionID string
	SequenceNumber int
	FirstPaymentID string
}

// PaymentResult is the outcome of a charge attempt. Success=false is an
// expected business outcome, not an error.
type PaymentResult struct {
	Success       bool
	TransactionID string
	Status        string
	StatusDetail  string
	ErrorMessage  string
}

// PaymentGateway is the contract against the external payment processor
type PaymentGateway interface {
	// CreateCustomer registers a payer and returns the gateway customer id
	CreateCustomer(ctx context.Context, data CustomerData) (string, error)
	// CreateCard registers a tokenized card under the customer
	CreateCard(ctx context.Context, customerID string, data CardData) (CardResult, error)
	// ProcessPayment attempts a charge; declines come back as an unsuccessful result
	ProcessPayment(ctx context.Context, data PaymentData) (PaymentResult, error)
	// GetCustomerCards lists the cards registered under the customer
	GetCustomerCards(ctx context.Context, customerID string) ([]CardResult, error)
}
