package receipt

import (
	"github.com/dms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReceiptCreatedEvent is emitted when an on-account receipt is recorded
type ReceiptCreatedEvent struct {
	shared.BaseDomainEvent
	ReceiptNumber string          `json:"receipt_number"`
	PayerType     string          `json:"payer_type"`
	PayerID       string          `json:"payer_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewReceiptCreatedEvent creates a new ReceiptCreatedEvent
func NewReceiptCreatedEvent(r *Receipt) *ReceiptCreatedEvent {
	return &ReceiptCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("receipt.created", r.ID),
		ReceiptNumber:   r.ReceiptNumber,
		PayerType:       r.PayerType.String(),
		PayerID:         r.PayerID.String(),
		Amount:          r.Amount,
	}
}

// ReceiptAllocatedEvent is emitted when part of a receipt is applied to a booking
type ReceiptAllocatedEvent struct {
	shared.BaseDomainEvent
	ReceiptNumber string          `json:"receipt_number"`
	BookingID     string          `json:"booking_id"`
	BookingNumber string          `json:"booking_number"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
}

// NewReceiptAllocatedEvent creates a new ReceiptAllocatedEvent
func NewReceiptAllocatedEvent(r *Receipt, a *BookingAllocation) *ReceiptAllocatedEvent {
	return &ReceiptAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("receipt.allocated", r.ID),
		ReceiptNumber:   r.ReceiptNumber,
		BookingID:       a.BookingID.String(),
		BookingNumber:   a.BookingNumber,
		Amount:          a.Amount,
		Status:          r.Status.String(),
	}
}

// ReceiptDeallocatedEvent is emitted when an allocation is reversed
type ReceiptDeallocatedEvent struct {
	shared.BaseDomainEvent
	ReceiptNumber string          `json:"receipt_number"`
	BookingID     string          `json:"booking_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
}

// NewReceiptDeallocatedEvent creates a new ReceiptDeallocatedEvent
func NewReceiptDeallocatedEvent(r *Receipt, a *BookingAllocation) *ReceiptDeallocatedEvent {
	return &ReceiptDeallocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("receipt.deallocated", r.ID),
		ReceiptNumber:   r.ReceiptNumber,
		BookingID:       a.BookingID.String(),
		Amount:          a.Amount,
		Status:          r.Status.String(),
	}
}
