package disbursement

import (
	"time"

	"github.com/dms/backend/internal/domain/disbursement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDisbursementRequest carries the fields to record a sanctioned
// disbursement. Amount may be omitted; it then defaults to the booking's
// expected finance amount (deal minus expected down payment).
type CreateDisbursementRequest struct {
	BranchID          uuid.UUID       `json:"branch_id" binding:"required"`
	BookingID         uuid.UUID       `json:"booking_id" binding:"required"`
	ProviderName      string          `json:"provider_name" binding:"required"`
	ProviderReference string          `json:"provider_reference" binding:"required"`
	Amount            decimal.Decimal `json:"amount"`
	Mode              string          `json:"mode" binding:"required"`
	InstrumentNumber  string          `json:"instrument_number"`
	Remark            string          `json:"remark"`
	CreatedBy         uuid.UUID       `json:"created_by" binding:"required"`
}

// UpdateReceivedRequest records the cumulative amount received so far
type UpdateReceivedRequest struct {
	ReceivedAmount decimal.Decimal `json:"received_amount" binding:"required,gt=0"`
	ReceivedBy     uuid.UUID       `json:"received_by" binding:"required"`
}

// CancelRequest withdraws a disbursement
type CancelRequest struct {
	CancelledBy uuid.UUID `json:"cancelled_by" binding:"required"`
	Reason      string    `json:"reason" binding:"required"`
}

// AddDeviationRequest records a manager deviation against a booking
type AddDeviationRequest struct {
	BookingID uuid.UUID       `json:"booking_id"`
	ManagerID uuid.UUID       `json:"manager_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Reason    string          `json:"reason" binding:"required"`
}

// ListDisbursementsFilter defines filtering options for disbursement queries
type ListDisbursementsFilter struct {
	BranchID  *uuid.UUID `form:"branch_id"`
	BookingID *uuid.UUID `form:"booking_id"`
	Status    string     `form:"status"`
	Provider  string     `form:"provider"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// DisbursementResponse represents a disbursement in API responses
type DisbursementResponse struct {
	ID                 uuid.UUID       `json:"id"`
	BranchID           uuid.UUID       `json:"branch_id"`
	DisbursementNumber string          `json:"disbursement_number"`
	BookingID          uuid.UUID       `json:"booking_id"`
	BookingNumber      string          `json:"booking_number"`
	ProviderName       string          `json:"provider_name"`
	ProviderReference  string          `json:"provider_reference"`
	Amount             decimal.Decimal `json:"amount"`
	ReceivedAmount     decimal.Decimal `json:"received_amount"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	Mode               string          `json:"mode"`
	InstrumentNumber   string          `json:"instrument_number,omitempty"`
	Status             string          `json:"status"`
	CancelReason       string          `json:"cancel_reason,omitempty"`
	Remark             string          `json:"remark,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// DisbursementListResponse is a paginated list of disbursements
type DisbursementListResponse struct {
	Disbursements []DisbursementResponse `json:"disbursements"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// DeviationResponse represents a manager deviation in API responses
type DeviationResponse struct {
	ID            uuid.UUID       `json:"id"`
	BookingID     uuid.UUID       `json:"booking_id"`
	BookingNumber string          `json:"booking_number"`
	ManagerID     uuid.UUID       `json:"manager_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	AppliedAt     time.Time       `json:"applied_at"`
}

// AuthorityResponse represents a manager's deviation allowance
type AuthorityResponse struct {
	ManagerID           uuid.UUID       `json:"manager_id"`
	ManagerName         string          `json:"manager_name"`
	PerTransactionLimit decimal.Decimal `json:"per_transaction_limit"`
	DeviationLimit      decimal.Decimal `json:"deviation_limit"`
	AvailableDeviation  decimal.Decimal `json:"available_deviation"`
	PeriodStart         time.Time       `json:"period_start"`
}

// FinanceSummaryResponse is the computed finance position of a booking
type FinanceSummaryResponse struct {
	BookingID           uuid.UUID       `json:"booking_id"`
	BookingNumber       string          `json:"booking_number"`
	DealAmount          decimal.Decimal `json:"deal_amount"`
	DownPaymentExpected decimal.Decimal `json:"down_payment_expected"`
	FinanceExpected     decimal.Decimal `json:"finance_expected"`
	DisbursedTotal      decimal.Decimal `json:"disbursed_total"`
	DeviationTotal      decimal.Decimal `json:"deviation_total"`
	ReceivedAmount      decimal.Decimal `json:"received_amount"`
	OutstandingAmount   decimal.Decimal `json:"outstanding_amount"`
}

func toDisbursementResponse(d *disbursement.Disbursement) *DisbursementResponse {
	return &DisbursementResponse{
		ID:                 d.ID,
		BranchID:           d.BranchID,
		DisbursementNumber: d.DisbursementNumber,
		BookingID:          d.BookingID,
		BookingNumber:      d.BookingNumber,
		ProviderName:       d.ProviderName,
		ProviderReference:  d.ProviderReference,
		Amount:             d.Amount,
		ReceivedAmount:     d.ReceivedAmount,
		OutstandingAmount:  d.OutstandingAmount(),
		Mode:               d.Mode.String(),
		InstrumentNumber:   d.InstrumentNumber,
		Status:             d.Status.String(),
		CancelReason:       d.CancelReason,
		Remark:             d.Remark,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		Version:            d.Version,
	}
}

func toDeviationResponse(d *disbursement.ManagerDeviation) *DeviationResponse {
	return &DeviationResponse{
		ID:            d.ID,
		BookingID:     d.BookingID,
		BookingNumber: d.BookingNumber,
		ManagerID:     d.ManagerID,
		Amount:        d.Amount,
		Reason:        d.Reason,
		AppliedAt:     d.AppliedAt,
	}
}

func toAuthorityResponse(a *disbursement.DeviationAuthority) *AuthorityResponse {
	return &AuthorityResponse{
		ManagerID:           a.ManagerID,
		ManagerName:         a.ManagerName,
		PerTransactionLimit: a.PerTransactionLimit,
		DeviationLimit:      a.DeviationLimit,
		AvailableDeviation:  a.AvailableDeviation,
		PeriodStart:         a.PeriodStart,
	}
}
