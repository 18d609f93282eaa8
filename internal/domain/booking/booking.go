package booking

import (
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is the financial view of a vehicle booking consumed by the
// allocation core. Only the money columns are owned here; the rest of the
// booking document (vehicle, customer, offers) lives with its own module.
type Booking struct {
	shared.BaseAggregateRoot
	BookingNumber       string          `json:"booking_number"`
	BranchID            uuid.UUID       `json:"branch_id"`
	CustomerName        string          `json:"customer_name"`
	DealAmount          decimal.Decimal `json:"deal_amount"`
	DownPaymentExpected decimal.Decimal `json:"down_payment_expected"`
	ReceivedAmount      decimal.Decimal `json:"received_amount"`
	OutstandingAmount   decimal.Decimal `json:"outstanding_amount"`
	DeviationTotal      decimal.Decimal `json:"deviation_total"`
}

// NewBooking creates the financial record for a booking
func NewBooking(
	branchID uuid.UUID,
	bookingNumber string,
	customerName string,
	dealAmount valueobject.Money,
	downPaymentExpected valueobject.Money,
) (*Booking, error) {
	if bookingNumber == "" {
		return nil, shared.NewDomainError("INVALID_BOOKING_NUMBER", "Booking number cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if dealAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Deal amount must be positive")
	}
	if downPaymentExpected.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Down payment expected cannot be negative")
	}
	if downPaymentExpected.Amount().GreaterThan(dealAmount.Amount()) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Down payment expected cannot exceed deal amount")
	}

	return &Booking{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		BookingNumber:       bookingNumber,
		BranchID:            branchID,
		CustomerName:        customerName,
		DealAmount:          dealAmount.Amount(),
		DownPaymentExpected: downPaymentExpected.Amount(),
		ReceivedAmount:      decimal.Zero,
		OutstandingAmount:   dealAmount.Amount(),
		DeviationTotal:      decimal.Zero,
	}, nil
}

// FinanceExpected returns the amount expected from the finance provider:
// deal amount minus the expected down payment.
func (b *Booking) FinanceExpected() decimal.Decimal {
	return b.DealAmount.Sub(b.DownPaymentExpected)
}

// ApplyAllocation records a credit against the booking, reducing the
// outstanding amount. Fails if the credit would overdraw the deal amount.
func (b *Booking) ApplyAllocation(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.Amount().GreaterThan(b.OutstandingAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Allocation amount %s exceeds outstanding balance %s of booking %s",
				amount.Amount().StringFixed(2), b.OutstandingAmount.StringFixed(2), b.BookingNumber))
	}

	b.ReceivedAmount = b.ReceivedAmount.Add(amount.Amount())
	b.OutstandingAmount = b.DealAmount.Sub(b.ReceivedAmount)
	b.Touch()
	return nil
}

// ReleaseAllocation reverses a previously applied credit, restoring the
// outstanding amount. Fails if the reversal exceeds what was received.
func (b *Booking) ReleaseAllocation(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Release amount must be positive")
	}
	if amount.Amount().GreaterThan(b.ReceivedAmount) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Release amount %s exceeds received amount %s of booking %s",
				amount.Amount().StringFixed(2), b.ReceivedAmount.StringFixed(2), b.BookingNumber))
	}

	b.ReceivedAmount = b.ReceivedAmount.Sub(amount.Amount())
	b.OutstandingAmount = b.DealAmount.Sub(b.ReceivedAmount)
	b.Touch()
	return nil
}

// ApplyDeviation records a manager deviation against the booking. A deviation
// counts toward the received side of the deal like a discount would.
func (b *Booking) ApplyDeviation(amount valueobject.Money) error {
	if err := b.ApplyAllocation(amount); err != nil {
		return err
	}
	b.DeviationTotal = b.DeviationTotal.Add(amount.Amount())
	return nil
}

// RecomputeFromLedger replaces the received amount with the given ledger
// total (sum of all non-rejected entries). Used when an entry is rejected or
// amended and the booking's derived amounts must be refreshed.
func (b *Booking) RecomputeFromLedger(ledgerTotal decimal.Decimal) error {
	if ledgerTotal.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Ledger total cannot be negative")
	}
	if ledgerTotal.GreaterThan(b.DealAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Ledger total %s exceeds deal amount %s of booking %s",
				ledgerTotal.StringFixed(2), b.DealAmount.StringFixed(2), b.BookingNumber))
	}

	b.ReceivedAmount = ledgerTotal
	b.OutstandingAmount = b.DealAmount.Sub(ledgerTotal)
	b.Touch()
	return nil
}

// IsSettled returns true when nothing is outstanding
func (b *Booking) IsSettled() bool {
	return b.OutstandingAmount.IsZero()
}

// Touch bumps the updated timestamp and the optimistic-lock version
func (b *Booking) Touch() {
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// GetDealAmountMoney returns the deal amount as Money
func (b *Booking) GetDealAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(b.DealAmount)
}

// GetOutstandingAmountMoney returns the outstanding amount as Money
func (b *Booking) GetOutstandingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(b.OutstandingAmount)
}
