package ledger

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter describes ledger entry query conditions
type Filter struct {
	shared.Filter
	BookingID   *uuid.UUID
	Status      *EntryStatus
	EntryType   *EntryType
	PaymentMode *PaymentMode
	Source      *EntrySource
}

// Repository defines persistence for ledger entries
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	FindByNumber(ctx context.Context, entryNumber string) (*Entry, error)
	FindAll(ctx context.Context, filter Filter) ([]*Entry, error)
	FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Entry, error)
	FindBySource(ctx context.Context, source EntrySource, sourceID uuid.UUID) ([]*Entry, error)
	// SumApprovedByBooking returns the signed sum of APPROVED entry amounts
	// for a booking. Pending and rejected entries do not contribute.
	SumApprovedByBooking(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error)
	// SumActiveByBooking returns the signed sum of PENDING and APPROVED
	// entry amounts for a booking. Matches what the booking's derived
	// received amount tracks.
	SumActiveByBooking(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error)
	// GenerateEntryNumber produces the next sequential entry number
	GenerateEntryNumber(ctx context.Context) (string, error)
	Save(ctx context.Context, entry *Entry) error
	SaveWithLock(ctx context.Context, entry *Entry) error
	Count(ctx context.Context, filter Filter) (int64, error)
}
