package models

import (
	"time"

	"github.com/dms/backend/internal/domain/disbursement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DisbursementModel is the persistence model for the Disbursement aggregate root.
type DisbursementModel struct {
	BranchAggregateModel
	DisbursementNumber string                          `gorm:"type:varchar(50);not null;uniqueIndex"`
	BookingID          uuid.UUID                       `gorm:"type:uuid;not null;index"`
	BookingNumber      string                          `gorm:"type:varchar(50);not null"`
	ProviderName       string                          `gorm:"type:varchar(200);not null;index"`
	ProviderReference  string                          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Amount             decimal.Decimal                 `gorm:"type:decimal(18,4);not null"`
	ReceivedAmount     decimal.Decimal                 `gorm:"type:decimal(18,4);not null"`
	Mode               disbursement.DisbursementMode   `gorm:"type:varchar(10);not null"`
	InstrumentNumber   string                          `gorm:"type:varchar(50)"`
	Status             disbursement.DisbursementStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CancelledAt        *time.Time
	CancelledBy        *uuid.UUID `gorm:"type:uuid"`
	CancelReason       string     `gorm:"type:varchar(500)"`
	Remark             string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DisbursementModel) TableName() string {
	return "disbursements"
}

// ToDomain converts the persistence model to a domain Disbursement entity.
func (m *DisbursementModel) ToDomain() *disbursement.Disbursement {
	return &disbursement.Disbursement{
		BranchAggregateRoot: m.ToDomainBranchAggregateRoot(),
		DisbursementNumber:  m.DisbursementNumber,
		BookingID:           m.BookingID,
		BookingNumber:       m.BookingNumber,
		ProviderName:        m.ProviderName,
		ProviderReference:   m.ProviderReference,
		Amount:              m.Amount,
		ReceivedAmount:      m.ReceivedAmount,
		Mode:                m.Mode,
		InstrumentNumber:    m.InstrumentNumber,
		Status:              m.Status,
		CancelledAt:         m.CancelledAt,
		CancelledBy:         m.CancelledBy,
		CancelReason:        m.CancelReason,
		Remark:              m.Remark,
	}
}

// FromDomain populates the persistence model from a domain Disbursement entity.
func (m *DisbursementModel) FromDomain(d *disbursement.Disbursement) {
	m.FromDomainBranchAggregateRoot(d.BranchAggregateRoot)
	m.DisbursementNumber = d.DisbursementNumber
	m.BookingID = d.BookingID
	m.BookingNumber = d.BookingNumber
	m.ProviderName = d.ProviderName
	m.ProviderReference = d.ProviderReference
	m.Amount = d.Amount
	m.ReceivedAmount = d.ReceivedAmount
	m.Mode = d.Mode
	m.InstrumentNumber = d.InstrumentNumber
	m.Status = d.Status
	m.CancelledAt = d.CancelledAt
	m.CancelledBy = d.CancelledBy
	m.CancelReason = d.CancelReason
	m.Remark = d.Remark
}

// DisbursementModelFromDomain creates a new persistence model from a domain Disbursement.
func DisbursementModelFromDomain(d *disbursement.Disbursement) *DisbursementModel {
	m := &DisbursementModel{}
	m.FromDomain(d)
	return m
}

// ManagerDeviationModel is the persistence model for manager deviation records.
type ManagerDeviationModel struct {
	BaseModel
	BookingID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	BookingNumber string          `gorm:"type:varchar(50);not null"`
	ManagerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason        string          `gorm:"type:varchar(500);not null"`
	AppliedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ManagerDeviationModel) TableName() string {
	return "manager_deviations"
}

// ToDomain converts the persistence model to a domain ManagerDeviation entity.
func (m *ManagerDeviationModel) ToDomain() *disbursement.ManagerDeviation {
	return &disbursement.ManagerDeviation{
		BaseEntity:    m.BaseModel.ToDomain(),
		BookingID:     m.BookingID,
		BookingNumber: m.BookingNumber,
		ManagerID:     m.ManagerID,
		Amount:        m.Amount,
		Reason:        m.Reason,
		AppliedAt:     m.AppliedAt,
	}
}

// FromDomain populates the persistence model from a domain ManagerDeviation entity.
func (m *ManagerDeviationModel) FromDomain(d *disbursement.ManagerDeviation) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.BookingID = d.BookingID
	m.BookingNumber = d.BookingNumber
	m.ManagerID = d.ManagerID
	m.Amount = d.Amount
	m.Reason = d.Reason
	m.AppliedAt = d.AppliedAt
}

// ManagerDeviationModelFromDomain creates a new persistence model from a domain ManagerDeviation.
func ManagerDeviationModelFromDomain(d *disbursement.ManagerDeviation) *ManagerDeviationModel {
	m := &ManagerDeviationModel{}
	m.FromDomain(d)
	return m
}

// DeviationAuthorityModel is the persistence model for a manager's deviation allowance.
type DeviationAuthorityModel struct {
	AggregateModel
	ManagerID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	ManagerName         string          `gorm:"type:varchar(200);not null"`
	PerTransactionLimit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DeviationLimit      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AvailableDeviation  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PeriodStart         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeviationAuthorityModel) TableName() string {
	return "deviation_authorities"
}

// ToDomain converts the persistence model to a domain DeviationAuthority entity.
func (m *DeviationAuthorityModel) ToDomain() *disbursement.DeviationAuthority {
	return &disbursement.DeviationAuthority{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		ManagerID:           m.ManagerID,
		ManagerName:         m.ManagerName,
		PerTransactionLimit: m.PerTransactionLimit,
		DeviationLimit:      m.DeviationLimit,
		AvailableDeviation:  m.AvailableDeviation,
		PeriodStart:         m.PeriodStart,
	}
}

// FromDomain populates the persistence model from a domain DeviationAuthority entity.
func (m *DeviationAuthorityModel) FromDomain(a *disbursement.DeviationAuthority) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.ManagerID = a.ManagerID
	m.ManagerName = a.ManagerName
	m.PerTransactionLimit = a.PerTransactionLimit
	m.DeviationLimit = a.DeviationLimit
	m.AvailableDeviation = a.AvailableDeviation
	m.PeriodStart = a.PeriodStart
}

// DeviationAuthorityModelFromDomain creates a new persistence model from a domain DeviationAuthority.
func DeviationAuthorityModelFromDomain(a *disbursement.DeviationAuthority) *DeviationAuthorityModel {
	m := &DeviationAuthorityModel{}
	m.FromDomain(a)
	return m
}
