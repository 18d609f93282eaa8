package receipt

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptStatus represents the allocation status of an on-account receipt.
// The status is always derived from the amounts, never set directly.
type ReceiptStatus string

const (
	ReceiptStatusOpen    ReceiptStatus = "OPEN"    // Nothing allocated yet
	ReceiptStatusPartial ReceiptStatus = "PARTIAL" // Partly allocated to bookings
	ReceiptStatusClosed  ReceiptStatus = "CLOSED"  // Fully allocated
)

// IsValid checks if the status is a valid ReceiptStatus
func (s ReceiptStatus) IsValid() bool {
	switch s {
	case ReceiptStatusOpen, ReceiptStatusPartial, ReceiptStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of ReceiptStatus
func (s ReceiptStatus) String() string {
	return string(s)
}

// DeriveStatus computes the receipt status from its total and allocated
// amounts. Single source of truth for the status column.
func DeriveStatus(amount, allocated decimal.Decimal) ReceiptStatus {
	switch {
	case allocated.LessThanOrEqual(decimal.Zero):
		return ReceiptStatusOpen
	case allocated.LessThan(amount):
		return ReceiptStatusPartial
	default:
		return ReceiptStatusClosed
	}
}

// PayerType identifies who paid the money held on account
type PayerType string

const (
	PayerTypeSubdealer PayerType = "SUBDEALER" // Trusted channel partner
	PayerTypeBroker    PayerType = "BROKER"    // External broker, entries need approval
)

// IsValid checks if the payer type is valid
func (p PayerType) IsValid() bool {
	return p == PayerTypeSubdealer || p == PayerTypeBroker
}

// String returns the string representation of PayerType
func (p PayerType) String() string {
	return string(p)
}

// BookingAllocation is a slice of an on-account receipt applied to one booking
type BookingAllocation struct {
	ID            uuid.UUID       `json:"id"`
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	BookingID     uuid.UUID       `json:"booking_id"`
	BookingNumber string          `json:"booking_number"` // Denormalized for display
	Amount        decimal.Decimal `json:"amount"`
	LedgerEntryID *uuid.UUID      `json:"ledger_entry_id,omitempty"` // Entry posted for this allocation
	AllocatedAt   time.Time       `json:"allocated_at"`
	Remark        string          `json:"remark"`
}

// NewBookingAllocation creates a new booking allocation
func NewBookingAllocation(receiptID, bookingID uuid.UUID, bookingNumber string, amount valueobject.Money, remark string) *BookingAllocation {
	return &BookingAllocation{
		ID:            uuid.New(),
		ReceiptID:     receiptID,
		BookingID:     bookingID,
		BookingNumber: bookingNumber,
		Amount:        amount.Amount(),
		AllocatedAt:   time.Now(),
		Remark:        remark,
	}
}

// GetAmountMoney returns the allocation amount as Money
func (a *BookingAllocation) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(a.Amount)
}

// Allocations is a collection of booking allocations stored as JSONB
type Allocations []BookingAllocation

// Value implements driver.Valuer interface for GORM to store as JSONB
func (a Allocations) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *Allocations) Scan(value interface{}) error {
	if value == nil {
		*a = Allocations{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Allocations", value)
	}

	return json.Unmarshal(bytes, a)
}

// Receipt is an on-account receipt aggregate root. It records money received
// from a subdealer or broker before anyone knows which bookings it settles;
// allocations carve it up afterwards.
type Receipt struct {
	shared.BranchAggregateRoot
	ReceiptNumber   string             `json:"receipt_number"`
	PayerType       PayerType          `json:"payer_type"`
	PayerID         uuid.UUID          `json:"payer_id"`
	PayerName       string             `json:"payer_name"`
	ReferenceNumber string             `json:"reference_number"` // Payer's instrument/transfer reference
	Amount          decimal.Decimal    `json:"amount"`
	AllocatedAmount decimal.Decimal    `json:"allocated_amount"`
	PaymentMode     ledger.PaymentMode `json:"payment_mode"`
	ModeDetails     ledger.ModeDetails `json:"mode_details"`
	Status          ReceiptStatus      `json:"status"`
	ReceiptDate     time.Time          `json:"receipt_date"`
	Allocations     Allocations        `json:"allocations"`
	Remark          string             `json:"remark"`
}

// NewReceipt creates a new on-account receipt
func NewReceipt(
	branchID uuid.UUID,
	receiptNumber string,
	payerType PayerType,
	payerID uuid.UUID,
	payerName string,
	referenceNumber string,
	amount valueobject.Money,
	mode ledger.PaymentMode,
	details ledger.ModeDetails,
	receiptDate time.Time,
) (*Receipt, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if len(receiptNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot exceed 50 characters")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if !payerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYER_TYPE", fmt.Sprintf("Payer type %q is not valid", payerType))
	}
	if payerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYER", "Payer ID cannot be empty")
	}
	if payerName == "" {
		return nil, shared.NewDomainError("INVALID_PAYER_NAME", "Payer name cannot be empty")
	}
	if referenceNumber == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference number cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Receipt amount must be positive")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", fmt.Sprintf("Payment mode %q is not valid", mode))
	}
	if mode.RequiresBankReference() && details.BankReference == "" {
		return nil, shared.NewDomainError("INVALID_MODE_DETAILS", fmt.Sprintf("Payment mode %s requires a bank reference", mode))
	}
	if mode.RequiresCashLocation() && details.CashLocation == "" {
		return nil, shared.NewDomainError("INVALID_MODE_DETAILS", "Payment mode CASH requires a cash location")
	}
	if receiptDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_RECEIPT_DATE", "Receipt date is required")
	}

	r := &Receipt{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		ReceiptNumber:       receiptNumber,
		PayerType:           payerType,
		PayerID:             payerID,
		PayerName:           payerName,
		ReferenceNumber:     referenceNumber,
		Amount:              amount.Amount(),
		AllocatedAmount:     decimal.Zero,
		PaymentMode:         mode,
		ModeDetails:         details,
		Status:              ReceiptStatusOpen,
		ReceiptDate:         receiptDate,
		Allocations:         make([]BookingAllocation, 0),
	}

	r.AddDomainEvent(NewReceiptCreatedEvent(r))

	return r, nil
}

// UnallocatedAmount returns the portion not yet applied to any booking
func (r *Receipt) UnallocatedAmount() decimal.Decimal {
	return r.Amount.Sub(r.AllocatedAmount)
}

// Allocate applies part or all of the receipt to a booking.
// Returns the allocation record created.
func (r *Receipt) Allocate(
	bookingID uuid.UUID,
	bookingNumber string,
	amount valueobject.Money,
	remark string,
) (*BookingAllocation, error) {
	if bookingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOOKING", "Booking ID cannot be empty")
	}
	if bookingNumber == "" {
		return nil, shared.NewDomainError("INVALID_BOOKING_NUMBER", "Booking number is required")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.Amount().GreaterThan(r.UnallocatedAmount()) {
		return nil, shared.NewDomainError("EXCEEDS_UNALLOCATED",
			fmt.Sprintf("Allocation amount %s exceeds unallocated amount %s of receipt %s",
				amount.Amount().StringFixed(2), r.UnallocatedAmount().StringFixed(2), r.ReceiptNumber))
	}

	// One active allocation per booking; top-ups go through deallocate first
	for _, alloc := range r.Allocations {
		if alloc.BookingID == bookingID {
			return nil, shared.NewDomainError("ALREADY_ALLOCATED",
				fmt.Sprintf("Receipt already allocated to booking %s", bookingNumber))
		}
	}

	allocation := NewBookingAllocation(r.ID, bookingID, bookingNumber, amount, remark)
	r.Allocations = append(r.Allocations, *allocation)

	r.AllocatedAmount = r.AllocatedAmount.Add(amount.Amount())
	r.Status = DeriveStatus(r.Amount, r.AllocatedAmount)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewReceiptAllocatedEvent(r, allocation))

	return allocation, nil
}

// Deallocate reverses an allocation, returning the money to the receipt's
// unallocated pool. Deallocating a CLOSED receipt reopens it, which the
// allowReopenClosed policy can forbid.
func (r *Receipt) Deallocate(allocationID uuid.UUID, allowReopenClosed bool) (*BookingAllocation, error) {
	if r.Status == ReceiptStatusClosed && !allowReopenClosed {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Receipt %s is closed and reopening is not allowed", r.ReceiptNumber))
	}

	idx := -1
	for i := range r.Allocations {
		if r.Allocations[i].ID == allocationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, shared.NewDomainError("NOT_FOUND",
			fmt.Sprintf("Allocation %s not found on receipt %s", allocationID, r.ReceiptNumber))
	}

	removed := r.Allocations[idx]
	r.Allocations = append(r.Allocations[:idx], r.Allocations[idx+1:]...)

	r.AllocatedAmount = r.AllocatedAmount.Sub(removed.Amount)
	r.Status = DeriveStatus(r.Amount, r.AllocatedAmount)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewReceiptDeallocatedEvent(r, &removed))

	return &removed, nil
}

// LinkLedgerEntry records the ledger entry posted for an allocation
func (r *Receipt) LinkLedgerEntry(allocationID, entryID uuid.UUID) error {
	for i := range r.Allocations {
		if r.Allocations[i].ID == allocationID {
			r.Allocations[i].LedgerEntryID = &entryID
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND",
		fmt.Sprintf("Allocation %s not found on receipt %s", allocationID, r.ReceiptNumber))
}

// FindAllocation returns the allocation with the given ID, or nil
func (r *Receipt) FindAllocation(allocationID uuid.UUID) *BookingAllocation {
	for i := range r.Allocations {
		if r.Allocations[i].ID == allocationID {
			return &r.Allocations[i]
		}
	}
	return nil
}

// FindAllocationByBooking returns the allocation for the given booking, or nil
func (r *Receipt) FindAllocationByBooking(bookingID uuid.UUID) *BookingAllocation {
	for i := range r.Allocations {
		if r.Allocations[i].BookingID == bookingID {
			return &r.Allocations[i]
		}
	}
	return nil
}

// SetRemark sets the free-text remark
func (r *Receipt) SetRemark(remark string) {
	r.Remark = remark
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// GetAmountMoney returns the total amount as Money
func (r *Receipt) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(r.Amount)
}

// GetAllocatedAmountMoney returns the allocated amount as Money
func (r *Receipt) GetAllocatedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(r.AllocatedAmount)
}

// GetUnallocatedAmountMoney returns the unallocated amount as Money
func (r *Receipt) GetUnallocatedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(r.UnallocatedAmount())
}
