package allocation

import (
	"context"

	"github.com/dms/backend/internal/domain/booking"
	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/receipt"
)

// TransactionScope provides transactional access to the repositories the
// allocation engine touches together. The (receipt, booking, ledger entry)
// tuple must commit or roll back as one unit; sequential independent writes
// would leave the receipt's allocated total out of step with its allocations
// after a crash.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the allocation repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// ReceiptRepo returns the receipt repository scoped to the current transaction
	ReceiptRepo() receipt.Repository
	// BookingRepo returns the booking repository scoped to the current transaction
	BookingRepo() booking.Repository
	// LedgerRepo returns the ledger entry repository scoped to the current transaction
	LedgerRepo() ledger.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests with mock repositories.
type NoOpTransactionScope struct {
	receiptRepo receipt.Repository
	bookingRepo booking.Repository
	ledgerRepo  ledger.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	receiptRepo receipt.Repository,
	bookingRepo booking.Repository,
	ledgerRepo ledger.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		receiptRepo: receiptRepo,
		bookingRepo: bookingRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ReceiptRepo returns the receipt repository.
func (s *NoOpTransactionScope) ReceiptRepo() receipt.Repository {
	return s.receiptRepo
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
