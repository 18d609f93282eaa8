package disbursement

import (
	"github.com/dms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DisbursementCreatedEvent is emitted when a disbursement is recorded
type DisbursementCreatedEvent struct {
	shared.BaseDomainEvent
	DisbursementNumber string          `json:"disbursement_number"`
	BookingID          string          `json:"booking_id"`
	ProviderName       string          `json:"provider_name"`
	Amount             decimal.Decimal `json:"amount"`
}

// NewDisbursementCreatedEvent creates a new DisbursementCreatedEvent
func NewDisbursementCreatedEvent(d *Disbursement) *DisbursementCreatedEvent {
	return &DisbursementCreatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent("disbursement.created", d.ID),
		DisbursementNumber: d.DisbursementNumber,
		BookingID:          d.BookingID.String(),
		ProviderName:       d.ProviderName,
		Amount:             d.Amount,
	}
}

// DisbursementReceivedEvent is emitted when provider funds arrive
type DisbursementReceivedEvent struct {
	shared.BaseDomainEvent
	DisbursementNumber string          `json:"disbursement_number"`
	BookingID          string          `json:"booking_id"`
	Delta              decimal.Decimal `json:"delta"`
	ReceivedAmount     decimal.Decimal `json:"received_amount"`
	Status             string          `json:"status"`
}

// NewDisbursementReceivedEvent creates a new DisbursementReceivedEvent
func NewDisbursementReceivedEvent(d *Disbursement, delta decimal.Decimal) *DisbursementReceivedEvent {
	return &DisbursementReceivedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent("disbursement.received", d.ID),
		DisbursementNumber: d.DisbursementNumber,
		BookingID:          d.BookingID.String(),
		Delta:              delta,
		ReceivedAmount:     d.ReceivedAmount,
		Status:             d.Status.String(),
	}
}

// DisbursementCancelledEvent is emitted when a disbursement is withdrawn
type DisbursementCancelledEvent struct {
	shared.BaseDomainEvent
	DisbursementNumber string `json:"disbursement_number"`
	BookingID          string `json:"booking_id"`
	Reason             string `json:"reason"`
}

// NewDisbursementCancelledEvent creates a new DisbursementCancelledEvent
func NewDisbursementCancelledEvent(d *Disbursement) *DisbursementCancelledEvent {
	return &DisbursementCancelledEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent("disbursement.cancelled", d.ID),
		DisbursementNumber: d.DisbursementNumber,
		BookingID:          d.BookingID.String(),
		Reason:             d.CancelReason,
	}
}
