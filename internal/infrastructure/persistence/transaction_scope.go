package persistence

import (
	"context"

	"github.com/dms/backend/internal/application/allocation"
	appdisbursement "github.com/dms/backend/internal/application/disbursement"
	appledger "github.com/dms/backend/internal/application/ledger"
	"github.com/dms/backend/internal/domain/booking"
	"github.com/dms/backend/internal/domain/disbursement"
	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/receipt"
	"gorm.io/gorm"
)

// GormAllocationTransactionScope implements allocation.TransactionScope.
// All repositories handed to the callback share one gorm transaction.
type GormAllocationTransactionScope struct {
	db *gorm.DB
}

// NewGormAllocationTransactionScope creates a transaction scope for the
// allocation service
func NewGormAllocationTransactionScope(db *gorm.DB) *GormAllocationTransactionScope {
	return &GormAllocationTransactionScope{db: db}
}

// Execute runs fn inside a database transaction
func (s *GormAllocationTransactionScope) Execute(ctx context.Context, fn func(repos allocation.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormAllocationRepositories{tx: tx})
	})
}

type gormAllocationRepositories struct {
	tx *gorm.DB
}

func (r *gormAllocationRepositories) ReceiptRepo() receipt.Repository {
	return NewGormReceiptRepository(r.tx)
}

func (r *gormAllocationRepositories) BookingRepo() booking.Repository {
	return NewGormBookingRepository(r.tx)
}

func (r *gormAllocationRepositories) LedgerRepo() ledger.Repository {
	return NewGormLedgerRepository(r.tx)
}

// GormLedgerTransactionScope implements the ledger service's TransactionScope
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a transaction scope for the
// ledger entry service
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs fn inside a database transaction
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

type gormLedgerRepositories struct {
	tx *gorm.DB
}

func (r *gormLedgerRepositories) LedgerRepo() ledger.Repository {
	return NewGormLedgerRepository(r.tx)
}

func (r *gormLedgerRepositories) BookingRepo() booking.Repository {
	return NewGormBookingRepository(r.tx)
}

// GormDisbursementTransactionScope implements the disbursement service's
// TransactionScope
type GormDisbursementTransactionScope struct {
	db *gorm.DB
}

// NewGormDisbursementTransactionScope creates a transaction scope for the
// disbursement service
func NewGormDisbursementTransactionScope(db *gorm.DB) *GormDisbursementTransactionScope {
	return &GormDisbursementTransactionScope{db: db}
}

// Execute runs fn inside a database transaction
func (s *GormDisbursementTransactionScope) Execute(ctx context.Context, fn func(repos appdisbursement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormDisbursementRepositories{tx: tx})
	})
}

type gormDisbursementRepositories struct {
	tx *gorm.DB
}

func (r *gormDisbursementRepositories) DisbursementRepo() disbursement.Repository {
	return NewGormDisbursementRepository(r.tx)
}

func (r *gormDisbursementRepositories) DeviationRepo() disbursement.DeviationRepository {
	return NewGormDeviationRepository(r.tx)
}

func (r *gormDisbursementRepositories) BookingRepo() booking.Repository {
	return NewGormBookingRepository(r.tx)
}

func (r *gormDisbursementRepositories) LedgerRepo() ledger.Repository {
	return NewGormLedgerRepository(r.tx)
}

var (
	_ allocation.TransactionScope      = (*GormAllocationTransactionScope)(nil)
	_ appledger.TransactionScope       = (*GormLedgerTransactionScope)(nil)
	_ appdisbursement.TransactionScope = (*GormDisbursementTransactionScope)(nil)
)
