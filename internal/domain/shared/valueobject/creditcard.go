package valueobject

import (
	"fmt"
	"time"

	"github.com/billing/backend/internal/domain/shared"
)

// CreditCard is a value object carrying the non-sensitive identification of a
// tokenized payment card. The PAN itself never enters the domain; the gateway
// token stands in for it.
type CreditCard struct {
	token           string
	brand           string
	lastFourDigits  string
	firstSixDigits  string
	expirationMonth int
	expirationYear  int
}

// NewCreditCard validates and creates a CreditCard value object
func NewCreditCard(token, brand, lastFour, firstSix string, expMonth, expYear int) (CreditCard, error) {
	if expMonth < 1 || expMonth > 12 {
		return CreditCard{}, shared.NewDomainError("INVALID_CARD", "Invalid expiration month")
	}
	if expYear < 2000 {
		return CreditCard{}, shared.NewDomainError("INVALID_CARD", "Invalid expiration year")
	}
	if len(lastFour) != 4 {
		return CreditCard{}, shared.NewDomainError("INVALID_CARD", "Last four digits must be 4 characters")
	}
	if len(firstSix) != 6 {
		return CreditCard{}, shared.NewDomainError("INVALID_CARD", "First six digits must be 6 characters")
	}
	return CreditCard{
		token:           token,
		brand:           brand,
		lastFourDigits:  lastFour,
		firstSixDigits:  firstSix,
		expirationMonth: expMonth,
		expirationYear:  expYear,
	}, nil
}

// Token returns the gateway token
func (c CreditCard) Token() string {
	return c.token
}

// Brand returns the card brand
func (c CreditCard) Brand() string {
	return c.brand
}

// LastFourDigits returns the last four PAN digits
func (c CreditCard) LastFourDigits() string {
	return c.lastFourDigits
}

// FirstSixDigits returns the card BIN
func (c CreditCard) FirstSixDigits() string {
	return c.firstSixDigits
}

// ExpirationMonth returns the expiration month (1-12)
func (c CreditCard) ExpirationMonth() int {
	return c.expirationMonth
}

// ExpirationYear returns the four-digit expiration year
func (c CreditCard) ExpirationYear() int {
	return c.expirationYear
}

// IsExpired returns true if the card has expired at the given time.
// A card is valid through the last day of its expiration month.
func (c CreditCard) IsExpired(now time.Time) bool {
	firstOfMonth := time.Date(c.expirationYear, time.Month(c.expirationMonth), 1, 0, 0, 0, 0, time.UTC)
	endOfMonth := firstOfMonth.AddDate(0, 1, 0)
	return !now.Before(endOfMonth)
}

// MaskedNumber returns a masked rendering, e.g. "411111****1111"
func (c CreditCard) MaskedNumber() string {
	return fmt.Sprintf("%s****%s", c.firstSixDigits, c.lastFourDigits)
}
