package models

import (
	"github.com/dms/backend/internal/domain/booking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingModel is the persistence model for the booking financial record.
type BookingModel struct {
	AggregateModel
	BookingNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	BranchID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName        string          `gorm:"type:varchar(200);not null"`
	DealAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DownPaymentExpected decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OutstandingAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;index"`
	DeviationTotal      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}

// ToDomain converts the persistence model to a domain Booking entity.
func (m *BookingModel) ToDomain() *booking.Booking {
	return &booking.Booking{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		BookingNumber:       m.BookingNumber,
		BranchID:            m.BranchID,
		CustomerName:        m.CustomerName,
		DealAmount:          m.DealAmount,
		DownPaymentExpected: m.DownPaymentExpected,
		ReceivedAmount:      m.ReceivedAmount,
		OutstandingAmount:   m.OutstandingAmount,
		DeviationTotal:      m.DeviationTotal,
	}
}

// FromDomain populates the persistence model from a domain Booking entity.
func (m *BookingModel) FromDomain(b *booking.Booking) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BookingNumber = b.BookingNumber
	m.BranchID = b.BranchID
	m.CustomerName = b.CustomerName
	m.DealAmount = b.DealAmount
	m.DownPaymentExpected = b.DownPaymentExpected
	m.ReceivedAmount = b.ReceivedAmount
	m.OutstandingAmount = b.OutstandingAmount
	m.DeviationTotal = b.DeviationTotal
}

// BookingModelFromDomain creates a new persistence model from a domain Booking.
func BookingModelFromDomain(b *booking.Booking) *BookingModel {
	m := &BookingModel{}
	m.FromDomain(b)
	return m
}
