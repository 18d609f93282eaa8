package allocation

import (
	"time"

	"github.com/dms/backend/internal/domain/receipt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateReceiptRequest carries the fields to record an on-account receipt
type CreateReceiptRequest struct {
	BranchID        uuid.UUID       `json:"branch_id" binding:"required"`
	PayerType       string          `json:"payer_type" binding:"required,oneof=SUBDEALER BROKER"`
	PayerID         uuid.UUID       `json:"payer_id" binding:"required"`
	PayerName       string          `json:"payer_name" binding:"required"`
	ReferenceNumber string          `json:"reference_number" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required,gt=0"`
	PaymentMode     string          `json:"payment_mode" binding:"required"`
	BankReference   string          `json:"bank_reference"`
	CashLocation    string          `json:"cash_location"`
	ReceiptDate     *time.Time      `json:"receipt_date"`
	Remark          string          `json:"remark"`
	CreatedBy       uuid.UUID       `json:"created_by" binding:"required"`
}

// AllocationTarget is one (booking, amount) pair in an allocation batch
type AllocationTarget struct {
	BookingID uuid.UUID       `json:"booking_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Remark    string          `json:"remark"`
}

// AllocateRequest carries an all-or-nothing allocation batch. Targets are
// applied in the order given; there is no implicit sorting.
type AllocateRequest struct {
	Targets     []AllocationTarget `json:"targets" binding:"required,min=1,dive"`
	AllocatedBy uuid.UUID          `json:"allocated_by" binding:"required"`
	// IdempotencyKey guards against blind retries after an ambiguous
	// failure. Optional; supplied via the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

// DeallocateRequest identifies who reversed an allocation
type DeallocateRequest struct {
	DeallocatedBy uuid.UUID `json:"deallocated_by" binding:"required"`
}

// ListReceiptsFilter defines filtering options for receipt list queries
type ListReceiptsFilter struct {
	Search    string     `form:"search"`
	BranchID  *uuid.UUID `form:"branch_id"`
	PayerType string     `form:"payer_type"`
	PayerID   *uuid.UUID `form:"payer_id"`
	Status    string     `form:"status"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// AllocationResponse represents one allocation in API responses
type AllocationResponse struct {
	ID            uuid.UUID       `json:"id"`
	BookingID     uuid.UUID       `json:"booking_id"`
	BookingNumber string          `json:"booking_number"`
	Amount        decimal.Decimal `json:"amount"`
	LedgerEntryID *uuid.UUID      `json:"ledger_entry_id,omitempty"`
	AllocatedAt   time.Time       `json:"allocated_at"`
	Remark        string          `json:"remark,omitempty"`
}

// ReceiptResponse represents an on-account receipt in API responses
type ReceiptResponse struct {
	ID                uuid.UUID            `json:"id"`
	BranchID          uuid.UUID            `json:"branch_id"`
	ReceiptNumber     string               `json:"receipt_number"`
	PayerType         string               `json:"payer_type"`
	PayerID           uuid.UUID            `json:"payer_id"`
	PayerName         string               `json:"payer_name"`
	ReferenceNumber   string               `json:"reference_number"`
	Amount            decimal.Decimal      `json:"amount"`
	AllocatedAmount   decimal.Decimal      `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal      `json:"unallocated_amount"`
	PaymentMode       string               `json:"payment_mode"`
	Status            string               `json:"status"`
	ReceiptDate       time.Time            `json:"receipt_date"`
	Allocations       []AllocationResponse `json:"allocations"`
	Remark            string               `json:"remark,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	Version           int                  `json:"version"`
}

// ReceiptListResponse is a paginated list of receipts
type ReceiptListResponse struct {
	Receipts []ReceiptResponse `json:"receipts"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func toAllocationResponse(a *receipt.BookingAllocation) AllocationResponse {
	return AllocationResponse{
		ID:            a.ID,
		BookingID:     a.BookingID,
		BookingNumber: a.BookingNumber,
		Amount:        a.Amount,
		LedgerEntryID: a.LedgerEntryID,
		AllocatedAt:   a.AllocatedAt,
		Remark:        a.Remark,
	}
}

func toReceiptResponse(r *receipt.Receipt) *ReceiptResponse {
	allocations := make([]AllocationResponse, 0, len(r.Allocations))
	for i := range r.Allocations {
		allocations = append(allocations, toAllocationResponse(&r.Allocations[i]))
	}
	return &ReceiptResponse{
		ID:                r.ID,
		BranchID:          r.BranchID,
		ReceiptNumber:     r.ReceiptNumber,
		PayerType:         r.PayerType.String(),
		PayerID:           r.PayerID,
		PayerName:         r.PayerName,
		ReferenceNumber:   r.ReferenceNumber,
		Amount:            r.Amount,
		AllocatedAmount:   r.AllocatedAmount,
		UnallocatedAmount: r.UnallocatedAmount(),
		PaymentMode:       r.PaymentMode.String(),
		Status:            r.Status.String(),
		ReceiptDate:       r.ReceiptDate,
		Allocations:       allocations,
		Remark:            r.Remark,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Version:           r.Version,
	}
}
