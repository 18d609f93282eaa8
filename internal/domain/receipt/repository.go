package receipt

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter describes receipt query conditions
type Filter struct {
	shared.Filter
	BranchID  *uuid.UUID
	PayerType *PayerType
	PayerID   *uuid.UUID
	Status    *ReceiptStatus
}

// Repository defines persistence for on-account receipts
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)
	FindByNumber(ctx context.Context, receiptNumber string) (*Receipt, error)
	FindAll(ctx context.Context, filter Filter) ([]*Receipt, error)
	// ExistsByPayerAndReference reports whether the payer already has a
	// receipt with this reference number. Reference numbers are unique per
	// payer, not globally.
	ExistsByPayerAndReference(ctx context.Context, payerID uuid.UUID, referenceNumber string) (bool, error)
	// GenerateReceiptNumber produces the next sequential receipt number
	GenerateReceiptNumber(ctx context.Context) (string, error)
	Save(ctx context.Context, r *Receipt) error
	SaveWithLock(ctx context.Context, r *Receipt) error
	Count(ctx context.Context, filter Filter) (int64, error)
}
