package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceStatus represents the finalization state of a billing attempt
type InvoiceStatus string

const (
	InvoiceStatusStarted  InvoiceStatus = "STARTED"
	InvoiceStatusApproved InvoiceStatus = "APPROVED"
	InvoiceStatusFailed   InvoiceStatus = "FAILED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusStarted, InvoiceStatusApproved, InvoiceStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true once the invoice has been finalized
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusApproved || s == InvoiceStatusFailed
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// Invoice records a single billing attempt. Created once per attempt by an
// orchestrator and finalized exactly once; a terminal invoice is never
// reopened. The transition methods are the only mutators.
type Invoice struct {
	shared.BaseAggregateRoot
	UserID        uuid.UUID
	PlanID        uuid.UUID
	Amount        valueobject.Money
	Status        InvoiceStatus
	TransactionID *string
	CardID        *string
	CardLastFour  *string
	CardBrand     *string
	OrdersCount   *int
	StatusReason  *string
}

// NewInvoice opens a billing attempt record in the started state. The id comes
// from the repository's identity generator so the invoice can be referenced
// before it is first persisted.
func NewInvoice(id uuid.UUID, userID, planID uuid.UUID, amount valueobject.Money, now time.Time) *Invoice {
	return &Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.ReconstituteBaseEntity(id, now, now),
			Version:    1,
		},
		UserID: userID,
		PlanID: planID,
		Amount: amount,
		Status: InvoiceStatusStarted,
	}
}

// ReconstituteInvoice rebuilds an invoice from persisted state
func ReconstituteInvoice(id uuid.UUID, userID, planID uuid.UUID, amount valueobject.Money, status InvoiceStatus,
	transactionID, cardID, cardLastFour, cardBrand *string, ordersCount *int, statusReason *string,
	version int, createdAt, updatedAt time.Time) *Invoice {
	return &Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.ReconstituteBaseEntity(id, createdAt, updatedAt),
			Version:    version,
		},
		UserID:        userID,
		PlanID:        planID,
		Amount:        amount,
		Status:        status,
		TransactionID: transactionID,
		CardID:        cardID,
		CardLastFour:  cardLastFour,
		CardBrand:     cardBrand,
		OrdersCount:   ordersCount,
		StatusReason:  statusReason,
	}
}

// MarkAsApproved finalizes the invoice as approved, recording the gateway
// transaction id. Fails once a terminal status has been reached.
func (i *Invoice) MarkAsApproved(transactionID string, at time.Time) error {
	if i.Status.IsTerminal() {
		return ErrInvoiceAlreadyFinalized
	}
	reason := "Payment approved"
	i.Status = InvoiceStatusApproved
	i.TransactionID = &transactionID
	i.StatusReason = &reason
	i.Touch(at)
	i.IncrementVersion()
	return nil
}

// MarkAsFailed finalizes the invoice as failed with the given reason and an
// optional gateway transaction id. Fails once a terminal status has been
// reached.
func (i *Invoice) MarkAsFailed(reason string, transactionID *string, at time.Time) error {
	if i.Status.IsTerminal() {
		return ErrInvoiceAlreadyFinalized
	}
	i.Status = InvoiceStatusFailed
	i.StatusReason = &reason
	if transactionID != nil {
		i.TransactionID = transactionID
	}
	i.Touch(at)
	i.IncrementVersion()
	return nil
}

// AttachCardInfo records the payment instrument descriptor used for this attempt
func (i *Invoice) AttachCardInfo(cardID, lastFour, brand string, at time.Time) {
	i.CardID = &cardID
	i.CardLastFour = &lastFour
	i.CardBrand = &brand
	i.Touch(at)
}

// SetOrdersCount records the usage count that produced the invoice amount
func (i *Invoice) SetOrdersCount(count int, at time.Time) {
	i.OrdersCount = &count
	i.Touch(at)
}

// IsApproved returns true if the invoice was finalized as approved
func (i *Invoice) IsApproved() bool {
	return i.Status == InvoiceStatusApproved
}

// IsFailed returns true if the invoice was finalized as failed
func (i *Invoice) IsFailed() bool {
	return i.Status == InvoiceStatusFailed
}
