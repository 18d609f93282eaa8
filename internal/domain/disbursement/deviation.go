package disbursement

import (
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManagerDeviation records a manager writing off part of a booking's
// outstanding amount against their personal deviation allowance.
type ManagerDeviation struct {
	shared.BaseEntity
	BookingID     uuid.UUID       `json:"booking_id"`
	BookingNumber string          `json:"booking_number"`
	ManagerID     uuid.UUID       `json:"manager_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	AppliedAt     time.Time       `json:"applied_at"`
}

// NewManagerDeviation creates a deviation record. Limit checks live on
// DeviationAuthority; this only validates the record itself.
func NewManagerDeviation(
	bookingID uuid.UUID,
	bookingNumber string,
	managerID uuid.UUID,
	amount valueobject.Money,
	reason string,
) (*ManagerDeviation, error) {
	if bookingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOOKING", "Booking ID cannot be empty")
	}
	if bookingNumber == "" {
		return nil, shared.NewDomainError("INVALID_BOOKING_NUMBER", "Booking number cannot be empty")
	}
	if managerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MANAGER", "Manager ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Deviation amount must be positive")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Deviation reason is required")
	}

	return &ManagerDeviation{
		BaseEntity:    shared.NewBaseEntity(),
		BookingID:     bookingID,
		BookingNumber: bookingNumber,
		ManagerID:     managerID,
		Amount:        amount.Amount(),
		Reason:        reason,
		AppliedAt:     time.Now(),
	}, nil
}

// GetAmountMoney returns the deviation amount as Money
func (m *ManagerDeviation) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(m.Amount)
}

// DeviationAuthority is a manager's deviation allowance for the current
// administrative period. AvailableDeviation is the running balance; it is
// consumed when a deviation is applied and restored only by period reset.
type DeviationAuthority struct {
	shared.BaseAggregateRoot
	ManagerID           uuid.UUID       `json:"manager_id"`
	ManagerName         string          `json:"manager_name"`
	PerTransactionLimit decimal.Decimal `json:"per_transaction_limit"`
	DeviationLimit      decimal.Decimal `json:"deviation_limit"` // Period total allowance
	AvailableDeviation  decimal.Decimal `json:"available_deviation"`
	PeriodStart         time.Time       `json:"period_start"`
}

// NewDeviationAuthority creates the allowance record for a manager
func NewDeviationAuthority(
	managerID uuid.UUID,
	managerName string,
	perTransactionLimit valueobject.Money,
	deviationLimit valueobject.Money,
) (*DeviationAuthority, error) {
	if managerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MANAGER", "Manager ID cannot be empty")
	}
	if managerName == "" {
		return nil, shared.NewDomainError("INVALID_MANAGER", "Manager name cannot be empty")
	}
	if perTransactionLimit.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Per-transaction limit must be positive")
	}
	if deviationLimit.Amount().LessThan(perTransactionLimit.Amount()) {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			"Deviation limit cannot be below the per-transaction limit")
	}

	return &DeviationAuthority{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		ManagerID:           managerID,
		ManagerName:         managerName,
		PerTransactionLimit: perTransactionLimit.Amount(),
		DeviationLimit:      deviationLimit.Amount(),
		AvailableDeviation:  deviationLimit.Amount(),
		PeriodStart:         time.Now(),
	}, nil
}

// Consume checks both limits and reduces the available balance
func (a *DeviationAuthority) Consume(amount valueobject.Money) error {
	amt := amount.Amount()
	if amt.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Deviation amount must be positive")
	}
	if amt.GreaterThan(a.PerTransactionLimit) {
		return shared.NewDomainError("LIMIT_EXCEEDED",
			fmt.Sprintf("Deviation amount %s exceeds per-transaction limit %s of manager %s",
				amt.StringFixed(2), a.PerTransactionLimit.StringFixed(2), a.ManagerName))
	}
	if amt.GreaterThan(a.AvailableDeviation) {
		return shared.NewDomainError("LIMIT_EXCEEDED",
			fmt.Sprintf("Deviation amount %s exceeds available allowance %s of manager %s",
				amt.StringFixed(2), a.AvailableDeviation.StringFixed(2), a.ManagerName))
	}

	a.AvailableDeviation = a.AvailableDeviation.Sub(amt)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Restore returns a consumed amount to the allowance, capped at the limit.
// Used when the transaction that consumed it rolls back a deviation.
func (a *DeviationAuthority) Restore(amount valueobject.Money) error {
	amt := amount.Amount()
	if amt.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Restore amount must be positive")
	}
	restored := a.AvailableDeviation.Add(amt)
	if restored.GreaterThan(a.DeviationLimit) {
		return shared.NewDomainError("INVALID_AMOUNT",
			"Restore would push the allowance above the deviation limit")
	}

	a.AvailableDeviation = restored
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// ResetPeriod starts a new administrative period with a full allowance
func (a *DeviationAuthority) ResetPeriod() {
	a.AvailableDeviation = a.DeviationLimit
	a.PeriodStart = time.Now()
	a.UpdatedAt = a.PeriodStart
	a.IncrementVersion()
}

// ConsumedDeviation returns how much of the period allowance is used
func (a *DeviationAuthority) ConsumedDeviation() decimal.Decimal {
	return a.DeviationLimit.Sub(a.AvailableDeviation)
}
