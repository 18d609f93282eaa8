package ledger

import (
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateEntryRequest carries the fields of a manual ledger entry
type CreateEntryRequest struct {
	BookingID     uuid.UUID       `json:"booking_id" binding:"required"`
	EntryType     string          `json:"entry_type" binding:"required,oneof=CREDIT DEBIT"`
	Amount        decimal.Decimal `json:"amount" binding:"required,gt=0"`
	PaymentMode   string          `json:"payment_mode" binding:"required"`
	BankReference string          `json:"bank_reference"`
	CashLocation  string          `json:"cash_location"`
	ReceivedBy    uuid.UUID       `json:"received_by" binding:"required"`
	Remark        string          `json:"remark"`
}

// UpdateEntryRequest patches a ledger entry. Amount changes are only
// accepted while the entry is PENDING.
type UpdateEntryRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Remark *string          `json:"remark"`
}

// ApprovalRequest carries an approve/reject decision
type ApprovalRequest struct {
	Actor  uuid.UUID `json:"actor" binding:"required"`
	Remark string    `json:"remark"`
	Reason string    `json:"reason"`
}

// ListEntriesFilter defines filtering options for entry list queries
type ListEntriesFilter struct {
	BookingID   *uuid.UUID `form:"booking_id"`
	Status      string     `form:"status"`
	EntryType   string     `form:"entry_type"`
	PaymentMode string     `form:"payment_mode"`
	Source      string     `form:"source"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	EntryNumber   string          `json:"entry_number"`
	BookingID     uuid.UUID       `json:"booking_id"`
	BookingNumber string          `json:"booking_number"`
	EntryType     string          `json:"entry_type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMode   string          `json:"payment_mode"`
	BankReference string          `json:"bank_reference,omitempty"`
	CashLocation  string          `json:"cash_location,omitempty"`
	Status        string          `json:"status"`
	Source        string          `json:"source"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
	ReceivedBy    uuid.UUID       `json:"received_by"`
	Remark        string          `json:"remark,omitempty"`
	ApprovedBy    *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	RejectedBy    *uuid.UUID      `json:"rejected_by,omitempty"`
	RejectedAt    *time.Time      `json:"rejected_at,omitempty"`
	RejectReason  string          `json:"reject_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// EntryListResponse is a paginated list of ledger entries
type EntryListResponse struct {
	Entries  []EntryResponse `json:"entries"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

func toEntryResponse(e *ledger.Entry) *EntryResponse {
	return &EntryResponse{
		ID:            e.ID,
		EntryNumber:   e.EntryNumber,
		BookingID:     e.BookingID,
		BookingNumber: e.BookingNumber,
		EntryType:     e.EntryType.String(),
		Amount:        e.Amount,
		PaymentMode:   e.PaymentMode.String(),
		BankReference: e.ModeDetails.BankReference,
		CashLocation:  e.ModeDetails.CashLocation,
		Status:        e.Status.String(),
		Source:        string(e.Source),
		SourceID:      e.SourceID,
		ReceivedBy:    e.ReceivedBy,
		Remark:        e.Remark,
		ApprovedBy:    e.ApprovedBy,
		ApprovedAt:    e.ApprovedAt,
		RejectedBy:    e.RejectedBy,
		RejectedAt:    e.RejectedAt,
		RejectReason:  e.RejectReason,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Version:       e.Version,
	}
}
