package ledger

import (
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryStatus represents the approval status of a ledger entry
type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "PENDING"  // Awaiting approval, excluded from balances
	EntryStatusApproved EntryStatus = "APPROVED" // Counted toward booking balances
	EntryStatusRejected EntryStatus = "REJECTED" // Permanently excluded, never deleted
)

// IsValid checks if the status is a valid EntryStatus
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusPending, EntryStatusApproved, EntryStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of EntryStatus
func (s EntryStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the status permits no further transitions
func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusApproved || s == EntryStatusRejected
}

// EntryType distinguishes credits from debits
type EntryType string

const (
	EntryTypeCredit EntryType = "CREDIT" // Money received against the booking
	EntryTypeDebit  EntryType = "DEBIT"  // Money returned or charged back
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	return t == EntryTypeCredit || t == EntryTypeDebit
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// PaymentMode represents how money moved for a booking ledger entry
type PaymentMode string

const (
	PaymentModeCash     PaymentMode = "CASH"      // Cash at a branch counter
	PaymentModeBank     PaymentMode = "BANK"      // Bank transfer / deposit
	PaymentModeFinance  PaymentMode = "FINANCE"   // Finance provider disbursement
	PaymentModeExchange PaymentMode = "EXCHANGE"  // Old-vehicle exchange value
	PaymentModePayOrder PaymentMode = "PAY_ORDER" // Pay order / banker's cheque
)

// IsValid checks if the payment mode is valid
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeBank, PaymentModeFinance,
		PaymentModeExchange, PaymentModePayOrder:
		return true
	}
	return false
}

// String returns the string representation of PaymentMode
func (m PaymentMode) String() string {
	return string(m)
}

// RequiresBankReference returns true for modes that must carry a bank reference
func (m PaymentMode) RequiresBankReference() bool {
	return m == PaymentModeBank || m == PaymentModePayOrder
}

// RequiresCashLocation returns true for modes that must name a cash location
func (m PaymentMode) RequiresCashLocation() bool {
	return m == PaymentModeCash
}

// ModeDetails carries the mode-specific fields of a ledger entry. Which fields
// are required is enforced at construction, not by runtime conditionals later.
type ModeDetails struct {
	BankReference string `json:"bank_reference,omitempty"` // BANK / PAY_ORDER
	CashLocation  string `json:"cash_location,omitempty"`  // CASH
}

// EntrySource identifies what created a ledger entry
type EntrySource string

const (
	EntrySourceReceiptAllocation EntrySource = "RECEIPT_ALLOCATION" // On-account receipt allocation
	EntrySourceDisbursement      EntrySource = "DISBURSEMENT"       // Finance disbursement received
	EntrySourceManual            EntrySource = "MANUAL"             // Manually entered receipt/debit
)

// IsValid checks if the entry source is valid
func (s EntrySource) IsValid() bool {
	switch s {
	case EntrySourceReceiptAllocation, EntrySourceDisbursement, EntrySourceManual:
		return true
	}
	return false
}

// Entry is an append-only record of money movement against a booking.
// Entries are never deleted; corrections are new offsetting entries, and
// mistakes are handled through the PENDING -> REJECTED transition.
type Entry struct {
	shared.BaseAggregateRoot
	EntryNumber   string          `json:"entry_number"`
	BookingID     uuid.UUID       `json:"booking_id"`
	BookingNumber string          `json:"booking_number"`
	EntryType     EntryType       `json:"entry_type"`
	Amount        decimal.Decimal `json:"amount"` // Signed: credit positive, debit negative
	PaymentMode   PaymentMode     `json:"payment_mode"`
	ModeDetails   ModeDetails     `json:"mode_details"`
	Status        EntryStatus     `json:"status"`
	Source        EntrySource     `json:"source"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"` // Receipt or disbursement that created it
	ReceivedBy    uuid.UUID       `json:"received_by"`
	Remark        string          `json:"remark,omitempty"`
	ApprovedBy    *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	ApproveRemark string          `json:"approve_remark,omitempty"`
	RejectedBy    *uuid.UUID      `json:"rejected_by,omitempty"`
	RejectedAt    *time.Time      `json:"rejected_at,omitempty"`
	RejectReason  string          `json:"reject_reason,omitempty"`
}

// NewCreditEntry creates a credit (money in) ledger entry in PENDING status
func NewCreditEntry(
	entryNumber string,
	bookingID uuid.UUID,
	bookingNumber string,
	amount valueobject.Money,
	mode PaymentMode,
	details ModeDetails,
	source EntrySource,
	sourceID *uuid.UUID,
	receivedBy uuid.UUID,
) (*Entry, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	return newEntry(entryNumber, bookingID, bookingNumber, EntryTypeCredit,
		amount.Amount(), mode, details, source, sourceID, receivedBy)
}

// NewDebitEntry creates a debit (money out) ledger entry in PENDING status.
// The stored amount is negative.
func NewDebitEntry(
	entryNumber string,
	bookingID uuid.UUID,
	bookingNumber string,
	amount valueobject.Money,
	mode PaymentMode,
	details ModeDetails,
	receivedBy uuid.UUID,
) (*Entry, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Debit amount must be positive")
	}
	return newEntry(entryNumber, bookingID, bookingNumber, EntryTypeDebit,
		amount.Amount().Neg(), mode, details, EntrySourceManual, nil, receivedBy)
}

// NewReversalEntry creates an approved debit that offsets an approved entry.
// The ledger is append-only, so reversing an approved credit means writing
// its negation, not deleting it.
func NewReversalEntry(original *Entry, entryNumber string, actor uuid.UUID) (*Entry, error) {
	if original == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Original entry is required")
	}
	if !original.IsApproved() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reverse ledger entry in %s status", original.Status))
	}

	e, err := newEntry(entryNumber, original.BookingID, original.BookingNumber,
		EntryTypeDebit, original.Amount.Neg(), original.PaymentMode, original.ModeDetails,
		original.Source, original.SourceID, actor)
	if err != nil {
		return nil, err
	}
	e.Remark = fmt.Sprintf("Reversal of entry %s", original.EntryNumber)
	if err := e.Approve(actor, ""); err != nil {
		return nil, err
	}
	return e, nil
}

func newEntry(
	entryNumber string,
	bookingID uuid.UUID,
	bookingNumber string,
	entryType EntryType,
	signedAmount decimal.Decimal,
	mode PaymentMode,
	details ModeDetails,
	source EntrySource,
	sourceID *uuid.UUID,
	receivedBy uuid.UUID,
) (*Entry, error) {
	if entryNumber == "" {
		return nil, shared.NewDomainError("INVALID_ENTRY_NUMBER", "Entry number cannot be empty")
	}
	if bookingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOOKING", "Booking ID cannot be empty")
	}
	if bookingNumber == "" {
		return nil, shared.NewDomainError("INVALID_BOOKING_NUMBER", "Booking number cannot be empty")
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
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Entry source is not valid")
	}
	if receivedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Receiving user ID is required")
	}

	e := &Entry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EntryNumber:       entryNumber,
		BookingID:         bookingID,
		BookingNumber:     bookingNumber,
		EntryType:         entryType,
		Amount:            signedAmount,
		PaymentMode:       mode,
		ModeDetails:       details,
		Status:            EntryStatusPending,
		Source:            source,
		SourceID:          sourceID,
		ReceivedBy:        receivedBy,
	}

	e.AddDomainEvent(NewEntryCreatedEvent(e))

	return e, nil
}

// Approve transitions the entry from PENDING to APPROVED, making its amount
// visible to booking balance calculations.
func (e *Entry) Approve(actor uuid.UUID, remark string) error {
	if e.Status != EntryStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot approve ledger entry in %s status", e.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approving user ID is required")
	}

	now := time.Now()
	e.Status = EntryStatusApproved
	e.ApprovedBy = &actor
	e.ApprovedAt = &now
	e.ApproveRemark = remark
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewEntryApprovedEvent(e))

	return nil
}

// Reject transitions the entry from PENDING to REJECTED. A reason is
// mandatory. The entry stays on record but is excluded from balances.
func (e *Entry) Reject(actor uuid.UUID, reason string) error {
	if e.Status != EntryStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reject ledger entry in %s status", e.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Rejecting user ID is required")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	now := time.Now()
	e.Status = EntryStatusRejected
	e.RejectedBy = &actor
	e.RejectedAt = &now
	e.RejectReason = reason
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewEntryRejectedEvent(e))

	return nil
}

// UpdateAmount changes the entry amount. Only allowed while PENDING; an
// approved entry's amount is already part of balances and cannot change.
func (e *Entry) UpdateAmount(amount valueobject.Money) error {
	if e.Status == EntryStatusApproved {
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			"Cannot change the amount of an approved ledger entry")
	}
	if e.Status == EntryStatusRejected {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot change the amount of a rejected ledger entry")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Entry amount must be positive")
	}

	if e.EntryType == EntryTypeDebit {
		e.Amount = amount.Amount().Neg()
	} else {
		e.Amount = amount.Amount()
	}
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// SetRemark updates the free-text remark. Allowed in any status; remarks are
// non-financial metadata.
func (e *Entry) SetRemark(remark string) {
	e.Remark = remark
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// IsPending returns true if the entry awaits approval
func (e *Entry) IsPending() bool {
	return e.Status == EntryStatusPending
}

// IsApproved returns true if the entry counts toward balances
func (e *Entry) IsApproved() bool {
	return e.Status == EntryStatusApproved
}

// IsRejected returns true if the entry is permanently excluded
func (e *Entry) IsRejected() bool {
	return e.Status == EntryStatusRejected
}

// IsCredit returns true for credit entries
func (e *Entry) IsCredit() bool {
	return e.EntryType == EntryTypeCredit
}

// GetAmountMoney returns the signed amount as Money
func (e *Entry) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(e.Amount)
}
