package ledger

import (
	"context"

	"github.com/dms/backend/internal/domain/booking"
	"github.com/dms/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the ledger and booking
// repositories. Posting or rejecting an entry and refreshing the booking's
// derived amounts must commit together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories
// within a transaction.
type TransactionalRepositories interface {
	// LedgerRepo returns the ledger entry repository scoped to the current transaction
	LedgerRepo() ledger.Repository
	// BookingRepo returns the booking repository scoped to the current transaction
	BookingRepo() booking.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests with mock repositories.
type NoOpTransactionScope struct {
	ledgerRepo  ledger.Repository
	bookingRepo booking.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(ledgerRepo ledger.Repository, bookingRepo booking.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{ledgerRepo: ledgerRepo, bookingRepo: bookingRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LedgerRepo returns the ledger entry repository.
func (s *NoOpTransactionScope) LedgerRepo() ledger.Repository {
	return s.ledgerRepo
}

// BookingRepo returns the booking repository.
func (s *NoOpTransactionScope) BookingRepo() booking.Repository {
	return s.bookingRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
