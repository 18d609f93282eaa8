package ledger

import (
	"github.com/dms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntryCreatedEvent is emitted when a ledger entry is recorded
type EntryCreatedEvent struct {
	shared.BaseDomainEvent
	EntryNumber string          `json:"entry_number"`
	BookingID   string          `json:"booking_id"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentMode string          `json:"payment_mode"`
	Source      string          `json:"source"`
}

// NewEntryCreatedEvent creates a new EntryCreatedEvent
func NewEntryCreatedEvent(e *Entry) *EntryCreatedEvent {
	return &EntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ledger.entry.created", e.ID),
		EntryNumber:     e.EntryNumber,
		BookingID:       e.BookingID.String(),
		EntryType:       e.EntryType.String(),
		Amount:          e.Amount,
		PaymentMode:     e.PaymentMode.String(),
		Source:          string(e.Source),
	}
}

// EntryApprovedEvent is emitted when a ledger entry is approved
type EntryApprovedEvent struct {
	shared.BaseDomainEvent
	EntryNumber string          `json:"entry_number"`
	BookingID   string          `json:"booking_id"`
	Amount      decimal.Decimal `json:"amount"`
	ApprovedBy  string          `json:"approved_by"`
}

// NewEntryApprovedEvent creates a new EntryApprovedEvent
func NewEntryApprovedEvent(e *Entry) *EntryApprovedEvent {
	approvedBy := ""
	if e.ApprovedBy != nil {
		approvedBy = e.ApprovedBy.String()
	}
	return &EntryApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ledger.entry.approved", e.ID),
		EntryNumber:     e.EntryNumber,
		BookingID:       e.BookingID.String(),
		Amount:          e.Amount,
		ApprovedBy:      approvedBy,
	}
}

// EntryRejectedEvent is emitted when a ledger entry is rejected
type EntryRejectedEvent struct {
	shared.BaseDomainEvent
	EntryNumber string `json:"entry_number"`
	BookingID   string `json:"booking_id"`
	Reason      string `json:"reason"`
}

// NewEntryRejectedEvent creates a new EntryRejectedEvent
func NewEntryRejectedEvent(e *Entry) *EntryRejectedEvent {
	return &EntryRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ledger.entry.rejected", e.ID),
		EntryNumber:     e.EntryNumber,
		BookingID:       e.BookingID.String(),
		Reason:          e.RejectReason,
	}
}
