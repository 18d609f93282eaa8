package models

import (
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/receipt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptModel is the persistence model for the on-account Receipt aggregate
// root. Allocations are embedded as JSONB since they only ever change through
// the receipt itself.
type ReceiptModel struct {
	BranchAggregateModel
	ReceiptNumber   string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	PayerType       receipt.PayerType     `gorm:"type:varchar(20);not null;index"`
	PayerID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	PayerName       string                `gorm:"type:varchar(200);not null"`
	ReferenceNumber string                `gorm:"type:varchar(100);not null;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	AllocatedAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentMode     ledger.PaymentMode    `gorm:"type:varchar(20);not null"`
	BankReference   string                `gorm:"type:varchar(100)"`
	CashLocation    string                `gorm:"type:varchar(100)"`
	Status          receipt.ReceiptStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	ReceiptDate     time.Time             `gorm:"not null;index"`
	Allocations     receipt.Allocations   `gorm:"type:jsonb;default:'[]'"`
	Remark          string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt entity.
func (m *ReceiptModel) ToDomain() *receipt.Receipt {
	return &receipt.Receipt{
		BranchAggregateRoot: m.ToDomainBranchAggregateRoot(),
		ReceiptNumber:       m.ReceiptNumber,
		PayerType:           m.PayerType,
		PayerID:             m.PayerID,
		PayerName:           m.PayerName,
		ReferenceNumber:     m.ReferenceNumber,
		Amount:              m.Amount,
		AllocatedAmount:     m.AllocatedAmount,
		PaymentMode:         m.PaymentMode,
		ModeDetails: ledger.ModeDetails{
			BankReference: m.BankReference,
			CashLocation:  m.CashLocation,
		},
		Status:      m.Status,
		ReceiptDate: m.ReceiptDate,
		Allocations: m.Allocations,
		Remark:      m.Remark,
	}
}

// FromDomain populates the persistence model from a domain Receipt entity.
func (m *ReceiptModel) FromDomain(r *receipt.Receipt) {
	m.FromDomainBranchAggregateRoot(r.BranchAggregateRoot)
	m.ReceiptNumber = r.ReceiptNumber
	m.PayerType = r.PayerType
	m.PayerID = r.PayerID
	m.PayerName = r.PayerName
	m.ReferenceNumber = r.ReferenceNumber
	m.Amount = r.Amount
	m.AllocatedAmount = r.AllocatedAmount
	m.PaymentMode = r.PaymentMode
	m.BankReference = r.ModeDetails.BankReference
	m.CashLocation = r.ModeDetails.CashLocation
	m.Status = r.Status
	m.ReceiptDate = r.ReceiptDate
	m.Allocations = r.Allocations
	m.Remark = r.Remark
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt.
func ReceiptModelFromDomain(r *receipt.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}
