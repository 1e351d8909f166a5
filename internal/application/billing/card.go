package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
)

// ErrCardExpired rejects an instrument already past its expiration month
var ErrCardExpired = shared.NewDomainError("CARD_EXPIRED", "Cartão expirado")

// cardFromResult builds the card value object from the gateway's registered
// card descriptor. Malformed descriptors and expired instruments are rejected
// here, before any charge is attempted.
func cardFromResult(token string, card billing.CardResult, now time.Time) (valueobject.CreditCard, error) {
	cc, err := valueobject.NewCreditCard(
		token,
		card.Brand,
		card.LastFourDigits,
		card.FirstSixDigits,
		card.ExpirationMonth,
		card.ExpirationYear,
	)
	if err != nil {
		return valueobject.CreditCard{}, err
	}
	if cc.IsExpired(now) {
		return valueobject.CreditCard{}, ErrCardExpired
	}
	return cc, nil
}
