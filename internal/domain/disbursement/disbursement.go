package disbursement

import (
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DisbursementStatus represents the settlement status of a finance
// disbursement. Derived from the amounts plus the cancelled flag.
type DisbursementStatus string

const (
	DisbursementStatusPending   DisbursementStatus = "PENDING"   // Nothing received from the provider yet
	DisbursementStatusPartial   DisbursementStatus = "PARTIAL"   // Provider paid part of the sanctioned amount
	DisbursementStatusCompleted DisbursementStatus = "COMPLETED" // Fully received
	DisbursementStatusCancelled DisbursementStatus = "CANCELLED" // Withdrawn before completion
)

// IsValid checks if the status is a valid DisbursementStatus
func (s DisbursementStatus) IsValid() bool {
	switch s {
	case DisbursementStatusPending, DisbursementStatusPartial,
		DisbursementStatusCompleted, DisbursementStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DisbursementStatus
func (s DisbursementStatus) String() string {
	return string(s)
}

// DeriveStatus computes the disbursement status from the sanctioned amount,
// the received amount and the cancelled flag. Single source of truth.
func DeriveStatus(amount, received decimal.Decimal, cancelled bool) DisbursementStatus {
	switch {
	case cancelled:
		return DisbursementStatusCancelled
	case received.LessThanOrEqual(decimal.Zero):
		return DisbursementStatusPending
	case received.LessThan(amount):
		return DisbursementStatusPartial
	default:
		return DisbursementStatusCompleted
	}
}

// DisbursementMode represents how the finance provider pays out
type DisbursementMode string

const (
	DisbursementModeNEFT   DisbursementMode = "NEFT"
	DisbursementModeRTGS   DisbursementMode = "RTGS"
	DisbursementModeIMPS   DisbursementMode = "IMPS"
	DisbursementModeCheque DisbursementMode = "CHEQUE"
	DisbursementModeDD     DisbursementMode = "DD"
	DisbursementModeOther  DisbursementMode = "OTHER"
)

// IsValid checks if the disbursement mode is valid
func (m DisbursementMode) IsValid() bool {
	switch m {
	case DisbursementModeNEFT, DisbursementModeRTGS, DisbursementModeIMPS,
		DisbursementModeCheque, DisbursementModeDD, DisbursementModeOther:
		return true
	}
	return false
}

// String returns the string representation of DisbursementMode
func (m DisbursementMode) String() string {
	return string(m)
}

// RequiresInstrumentNumber returns true for paper instrument modes
func (m DisbursementMode) RequiresInstrumentNumber() bool {
	return m == DisbursementModeCheque || m == DisbursementModeDD
}

// Disbursement tracks the amount a finance provider sanctioned for a booking
// against what has actually arrived.
type Disbursement struct {
	shared.BranchAggregateRoot
	DisbursementNumber string             `json:"disbursement_number"`
	BookingID          uuid.UUID          `json:"booking_id"`
	BookingNumber      string             `json:"booking_number"`
	ProviderName       string             `json:"provider_name"`
	ProviderReference  string             `json:"provider_reference"` // Unique per provider sanction
	Amount             decimal.Decimal    `json:"amount"`             // Sanctioned amount
	ReceivedAmount     decimal.Decimal    `json:"received_amount"`
	Mode               DisbursementMode   `json:"mode"`
	InstrumentNumber   string             `json:"instrument_number,omitempty"` // CHEQUE / DD
	Status             DisbursementStatus `json:"status"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
	CancelledBy        *uuid.UUID         `json:"cancelled_by,omitempty"`
	CancelReason       string             `json:"cancel_reason,omitempty"`
	Remark             string             `json:"remark,omitempty"`
}

// NewDisbursement creates a new disbursement record in PENDING status
func NewDisbursement(
	branchID uuid.UUID,
	disbursementNumber string,
	bookingID uuid.UUID,
	bookingNumber string,
	providerName string,
	providerReference string,
	amount valueobject.Money,
	mode DisbursementMode,
	instrumentNumber string,
) (*Disbursement, error) {
	if disbursementNumber == "" {
		return nil, shared.NewDomainError("INVALID_DISBURSEMENT_NUMBER", "Disbursement number cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if bookingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOOKING", "Booking ID cannot be empty")
	}
	if bookingNumber == "" {
		return nil, shared.NewDomainError("INVALID_BOOKING_NUMBER", "Booking number cannot be empty")
	}
	if providerName == "" {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Provider name cannot be empty")
	}
	if providerReference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Provider reference cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Disbursement amount must be positive")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", fmt.Sprintf("Disbursement mode %q is not valid", mode))
	}
	if mode.RequiresInstrumentNumber() && instrumentNumber == "" {
		return nil, shared.NewDomainError("INVALID_MODE_DETAILS",
			fmt.Sprintf("Disbursement mode %s requires an instrument number", mode))
	}

	d := &Disbursement{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		DisbursementNumber:  disbursementNumber,
		BookingID:           bookingID,
		BookingNumber:       bookingNumber,
		ProviderName:        providerName,
		ProviderReference:   providerReference,
		Amount:              amount.Amount(),
		ReceivedAmount:      decimal.Zero,
		Mode:                mode,
		InstrumentNumber:    instrumentNumber,
		Status:              DisbursementStatusPending,
	}

	d.AddDomainEvent(NewDisbursementCreatedEvent(d))

	return d, nil
}

// UpdateReceived records the cumulative amount received from the provider.
// Returns the delta over the previous received amount.
func (d *Disbursement) UpdateReceived(received valueobject.Money) (decimal.Decimal, error) {
	if d.Status == DisbursementStatusCancelled {
		return decimal.Zero, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Disbursement %s is cancelled", d.DisbursementNumber))
	}
	amt := received.Amount()
	if amt.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Received amount cannot be negative")
	}
	if amt.GreaterThan(d.Amount) {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Received amount %s exceeds sanctioned amount %s of disbursement %s",
				amt.StringFixed(2), d.Amount.StringFixed(2), d.DisbursementNumber))
	}
	if amt.LessThan(d.ReceivedAmount) {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Received amount %s is below the already recorded %s",
				amt.StringFixed(2), d.ReceivedAmount.StringFixed(2)))
	}

	delta := amt.Sub(d.ReceivedAmount)
	d.ReceivedAmount = amt
	d.Status = DeriveStatus(d.Amount, d.ReceivedAmount, false)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDisbursementReceivedEvent(d, delta))

	return delta, nil
}

// Cancel withdraws a disbursement that has not started settling
func (d *Disbursement) Cancel(actor uuid.UUID, reason string) error {
	if d.Status == DisbursementStatusCancelled || d.Status == DisbursementStatusCompleted {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel disbursement in %s status", d.Status))
	}
	if d.ReceivedAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot cancel a disbursement that has received funds")
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Cancelling user ID is required")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	d.Status = DisbursementStatusCancelled
	d.CancelledAt = &now
	d.CancelledBy = &actor
	d.CancelReason = reason
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDisbursementCancelledEvent(d))

	return nil
}

// OutstandingAmount returns the sanctioned amount still unpaid
func (d *Disbursement) OutstandingAmount() decimal.Decimal {
	return d.Amount.Sub(d.ReceivedAmount)
}

// GetAmountMoney returns the sanctioned amount as Money
func (d *Disbursement) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(d.Amount)
}

// GetReceivedAmountMoney returns the received amount as Money
func (d *Disbursement) GetReceivedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(d.ReceivedAmount)
}
