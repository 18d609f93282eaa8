package booking

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter defines filtering options for booking queries
type Filter struct {
	shared.Filter
	BranchID *uuid.UUID
	Settled  *bool
}

// Repository defines the persistence interface for booking financials
type Repository interface {
	// FindByID finds a booking by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber finds a booking by booking number
	FindByNumber(ctx context.Context, bookingNumber string) (*Booking, error)

	// FindAll lists bookings with filtering
	FindAll(ctx context.Context, filter Filter) ([]Booking, error)

	// Save creates or updates a booking
	Save(ctx context.Context, b *Booking) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, b *Booking) error

	// Count counts bookings matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)
}
