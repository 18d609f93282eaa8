package disbursement

import (
	"context"

	"github.com/dms/backend/internal/domain/booking"
	"github.com/dms/backend/internal/domain/disbursement"
	"github.com/dms/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories the
// disbursement and deviation operations touch together. Receiving provider
// funds posts a ledger entry and moves the booking balance in one commit;
// a deviation consumes the manager's allowance and moves the booking in one
// commit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the disbursement repositories
// within a transaction.
type TransactionalRepositories interface {
	// DisbursementRepo returns the disbursement repository scoped to the current transaction
	DisbursementRepo() disbursement.Repository
	// DeviationRepo returns the deviation repository scoped to the current transaction
	DeviationRepo() disbursement.DeviationRepository
	// BookingRepo returns the booking repository scoped to the current transaction
	BookingRepo() booking.Repository
	// LedgerRepo returns the ledger entry repository scoped to the current transaction
	LedgerRepo() ledger.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests with mock repositories.
type NoOpTransactionScope struct {
	disbursementRepo disbursement.Repository
	deviationRepo    disbursement.DeviationRepository
	bookingRepo      booking.Repository
	ledgerRepo       ledger.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	disbursementRepo disbursement.Repository,
	deviationRepo disbursement.DeviationRepository,
	bookingRepo booking.Repository,
	ledgerRepo ledger.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		disbursementRepo: disbursementRepo,
		deviationRepo:    deviationRepo,
		bookingRepo:      bookingRepo,
		ledgerRepo:       ledgerRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// DisbursementRepo returns the disbursement repository.
func (s *NoOpTransactionScope) DisbursementRepo() disbursement.Repository {
	return s.disbursementRepo
}

// DeviationRepo returns the deviation repository.
func (s *NoOpTransactionScope) DeviationRepo() disbursement.DeviationRepository {
	return s.deviationRepo
}

// BookingRepo returns the booking repository.
func (s *NoOpTransactionScope) BookingRepo() booking.Repository {
	return s.bookingRepo
}

// LedgerRepo returns the ledger entry repository.
func (s *NoOpTransactionScope) LedgerRepo() ledger.Repository {
	return s.ledgerRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
