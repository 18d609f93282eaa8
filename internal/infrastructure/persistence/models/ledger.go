package models

import (
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryModel is the persistence model for the ledger Entry aggregate
// root. The table is append-only: entries are never deleted, a reversal is a
// new offsetting row.
type LedgerEntryModel struct {
	AggregateModel
	EntryNumber   string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	BookingID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	BookingNumber string             `gorm:"type:varchar(50);not null"`
	EntryType     ledger.EntryType   `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PaymentMode   ledger.PaymentMode `gorm:"type:varchar(20);not null;index"`
	BankReference string             `gorm:"type:varchar(100)"`
	CashLocation  string             `gorm:"type:varchar(100)"`
	Status        ledger.EntryStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Source        ledger.EntrySource `gorm:"type:varchar(30);not null;index"`
	SourceID      *uuid.UUID         `gorm:"type:uuid;index"`
	ReceivedBy    uuid.UUID          `gorm:"type:uuid;not null"`
	Remark        string             `gorm:"type:text"`
	ApprovedBy    *uuid.UUID         `gorm:"type:uuid"`
	ApprovedAt    *time.Time
	ApproveRemark string     `gorm:"type:varchar(500)"`
	RejectedBy    *uuid.UUID `gorm:"type:uuid"`
	RejectedAt    *time.Time
	RejectReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain Entry entity.
func (m *LedgerEntryModel) ToDomain() *ledger.Entry {
	return &ledger.Entry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		EntryNumber:       m.EntryNumber,
		BookingID:         m.BookingID,
		BookingNumber:     m.BookingNumber,
		EntryType:         m.EntryType,
		Amount:            m.Amount,
		PaymentMode:       m.PaymentMode,
		ModeDetails: ledger.ModeDetails{
			BankReference: m.BankReference,
			CashLocation:  m.CashLocation,
		},
		Status:        m.Status,
		Source:        m.Source,
		SourceID:      m.SourceID,
		ReceivedBy:    m.ReceivedBy,
		Remark:        m.Remark,
		ApprovedBy:    m.ApprovedBy,
		ApprovedAt:    m.ApprovedAt,
		ApproveRemark: m.ApproveRemark,
		RejectedBy:    m.RejectedBy,
		RejectedAt:    m.RejectedAt,
		RejectReason:  m.RejectReason,
	}
}

// FromDomain populates the persistence model from a domain Entry entity.
func (m *LedgerEntryModel) FromDomain(e *ledger.Entry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.EntryNumber = e.EntryNumber
	m.BookingID = e.BookingID
	m.BookingNumber = e.BookingNumber
	m.EntryType = e.EntryType
	m.Amount = e.Amount
	m.PaymentMode = e.PaymentMode
	m.BankReference = e.ModeDetails.BankReference
	m.CashLocation = e.ModeDetails.CashLocation
	m.Status = e.Status
	m.Source = e.Source
	m.SourceID = e.SourceID
	m.ReceivedBy = e.ReceivedBy
	m.Remark = e.Remark
	m.ApprovedBy = e.ApprovedBy
	m.ApprovedAt = e.ApprovedAt
	m.ApproveRemark = e.ApproveRemark
	m.RejectedBy = e.RejectedBy
	m.RejectedAt = e.RejectedAt
	m.RejectReason = e.RejectReason
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain Entry.
func LedgerEntryModelFromDomain(e *ledger.Entry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}
