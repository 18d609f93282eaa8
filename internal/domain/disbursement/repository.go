package disbursement

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter describes disbursement query conditions
type Filter struct {
	shared.Filter
	BranchID  *uuid.UUID
	BookingID *uuid.UUID
	Status    *DisbursementStatus
	Provider  *string
}

// Repository defines persistence for disbursements
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Disbursement, error)
	FindByNumber(ctx context.Context, disbursementNumber string) (*Disbursement, error)
	FindAll(ctx context.Context, filter Filter) ([]*Disbursement, error)
	// ExistsByProviderReference reports whether a disbursement already
	// carries this provider reference.
	ExistsByProviderReference(ctx context.Context, providerReference string) (bool, error)
	// GenerateDisbursementNumber produces the next sequential disbursement number
	GenerateDisbursementNumber(ctx context.Context) (string, error)
	Save(ctx context.Context, d *Disbursement) error
	SaveWithLock(ctx context.Context, d *Disbursement) error
	Count(ctx context.Context, filter Filter) (int64, error)
}

// DeviationRepository defines persistence for manager deviations and
// their authority records
type DeviationRepository interface {
	FindAuthorityByManager(ctx context.Context, managerID uuid.UUID) (*DeviationAuthority, error)
	SaveAuthority(ctx context.Context, a *DeviationAuthority) error
	SaveAuthorityWithLock(ctx context.Context, a *DeviationAuthority) error
	FindDeviationsByBooking(ctx context.Context, bookingID uuid.UUID) ([]*ManagerDeviation, error)
	FindDeviationsByManager(ctx context.Context, managerID uuid.UUID, filter shared.Filter) ([]*ManagerDeviation, error)
	SaveDeviation(ctx context.Context, d *ManagerDeviation) error
}
