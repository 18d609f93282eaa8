package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/receipt"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy holds the tunable allocation rules
type Policy struct {
	// AllowReopenClosed permits deallocating from a fully allocated
	// receipt, reopening it.
	AllowReopenClosed bool
	// ConflictRetries bounds the optimistic-lock retry loop. When
	// exhausted the conflict surfaces to the caller.
	ConflictRetries int
}

// DefaultPolicy returns the default allocation policy
func DefaultPolicy() Policy {
	return Policy{
		AllowReopenClosed: true,
		ConflictRetries:   3,
	}
}

// Service coordinates on-account receipts, bookings and ledger entries.
// Every allocate/deallocate call is all-or-nothing: the receipt, the touched
// bookings and the ledger entries commit in one transaction.
type Service struct {
	txScope     TransactionScope
	receiptRepo receipt.Repository
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	policy      Policy
}

// ServiceOption is a functional option for configuring the allocation Service
type ServiceOption func(*Service)

// WithPolicy overrides the default allocation policy
func WithPolicy(p Policy) ServiceOption {
	return func(s *Service) {
		s.policy = p
	}
}

// WithIdempotencyStore enables idempotency-key checking on allocate calls
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) ServiceOption {
	return func(s *Service) {
		s.idempotency = store
		s.idemConfig = cfg
	}
}

// NewService creates an allocation Service
func NewService(txScope TransactionScope, receiptRepo receipt.Repository, opts ...ServiceOption) *Service {
	s := &Service{
		txScope:     txScope,
		receiptRepo: receiptRepo,
		idemConfig:  shared.DefaultIdempotencyConfig(),
		policy:      DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReceipt records an on-account receipt. Reference numbers are unique
// per payer; a duplicate fails with ALREADY_EXISTS.
func (s *Service) CreateReceipt(ctx context.Context, req CreateReceiptRequest) (*ReceiptResponse, error) {
	payerType := receipt.PayerType(req.PayerType)
	if !payerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYER_TYPE",
			fmt.Sprintf("Payer type %q is not valid", req.PayerType))
	}

	exists, err := s.receiptRepo.ExistsByPayerAndReference(ctx, req.PayerID, req.ReferenceNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Receipt with reference %s already exists for this payer", req.ReferenceNumber))
	}

	receiptNumber, err := s.receiptRepo.GenerateReceiptNumber(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoney(req.Amount, valueobject.INR)
	if err != nil {
		return nil, err
	}

	receiptDate := time.Now()
	if req.ReceiptDate != nil {
		receiptDate = *req.ReceiptDate
	}

	r, err := receipt.NewReceipt(
		req.BranchID,
		receiptNumber,
		payerType,
		req.PayerID,
		req.PayerName,
		req.ReferenceNumber,
		amount,
		ledger.PaymentMode(req.PaymentMode),
		ledger.ModeDetails{BankReference: req.BankReference, CashLocation: req.CashLocation},
		receiptDate,
	)
	if err != nil {
		return nil, err
	}
	r.SetCreatedBy(req.CreatedBy)
	if req.Remark != "" {
		r.SetRemark(req.Remark)
	}

	if err := s.receiptRepo.Save(ctx, r); err != nil {
		return nil, err
	}

	return toReceiptResponse(r), nil
}

// GetReceipt returns a receipt by ID
func (s *Service) GetReceipt(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	r, err := s.receiptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(r), nil
}

// ListReceipts returns receipts matching the filter
func (s *Service) ListReceipts(ctx context.Context, f ListReceiptsFilter) (*ReceiptListResponse, error) {
	filter := receipt.Filter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			Search:   f.Search,
		},
		BranchID: f.BranchID,
		PayerID:  f.PayerID,
	}
	if f.PayerType != "" {
		pt := receipt.PayerType(f.PayerType)
		if !pt.IsValid() {
			return nil, shared.NewDomainError("INVALID_PAYER_TYPE",
				fmt.Sprintf("Payer type %q is not valid", f.PayerType))
		}
		filter.PayerType = &pt
	}
	if f.Status != "" {
		st := receipt.ReceiptStatus(f.Status)
		if !st.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Receipt status %q is not valid", f.Status))
		}
		filter.Status = &st
	}

	receipts, err := s.receiptRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.receiptRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		items = append(items, *toReceiptResponse(r))
	}
	return &ReceiptListResponse{
		Receipts: items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// Allocate applies a batch of (booking, amount) targets against a receipt.
// The whole batch succeeds or nothing is written. Targets are validated
// against the live receipt balance and booking outstanding amounts inside
// the transaction, with a bounded retry on optimistic-lock conflicts.
func (s *Service) Allocate(ctx context.Context, receiptID uuid.UUID, req AllocateRequest) (*ReceiptResponse, error) {
	if len(req.Targets) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Allocation batch cannot be empty")
	}
	if req.AllocatedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Allocating user ID is required")
	}
	requestedTotal := decimal.Zero
	for _, t := range req.Targets {
		if t.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
		}
		requestedTotal = requestedTotal.Add(t.Amount)
	}

	if err := s.checkIdempotencyKey(ctx, receiptID, req.IdempotencyKey); err != nil {
		return nil, err
	}

	var result *receipt.Receipt
	err := s.withConflictRetry(ctx, func(repos TransactionalRepositories) error {
		// fresh read inside the transaction; never validate against
		// state loaded before the retry
		r, err := repos.ReceiptRepo().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		if r.Status == receipt.ReceiptStatusClosed {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Receipt %s is fully allocated", r.ReceiptNumber))
		}
		if requestedTotal.GreaterThan(r.UnallocatedAmount()) {
			return shared.NewDomainError("EXCEEDS_UNALLOCATED",
				fmt.Sprintf("Requested total %s exceeds unallocated amount %s of receipt %s",
					requestedTotal.StringFixed(2), r.UnallocatedAmount().StringFixed(2), r.ReceiptNumber))
		}

		for _, target := range req.Targets {
			if err := s.allocateTarget(ctx, repos, r, target, req.AllocatedBy); err != nil {
				return err
			}
		}

		if err := repos.ReceiptRepo().SaveWithLock(ctx, r); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(result), nil
}

func (s *Service) allocateTarget(
	ctx context.Context,
	repos TransactionalRepositories,
	r *receipt.Receipt,
	target AllocationTarget,
	allocatedBy uuid.UUID,
) error {
	b, err := repos.BookingRepo().FindByID(ctx, target.BookingID)
	if err != nil {
		return err
	}

	amount := valueobject.NewMoneyINR(target.Amount)

	alloc, err := r.Allocate(b.ID, b.BookingNumber, amount, target.Remark)
	if err != nil {
		return err
	}
	if err := b.ApplyAllocation(amount); err != nil {
		return err
	}

	entryNumber, err := repos.LedgerRepo().GenerateEntryNumber(ctx)
	if err != nil {
		return err
	}
	sourceID := r.ID
	entry, err := ledger.NewCreditEntry(
		entryNumber, b.ID, b.BookingNumber, amount,
		r.PaymentMode, r.ModeDetails,
		ledger.EntrySourceReceiptAllocation, &sourceID, allocatedBy,
	)
	if err != nil {
		return err
	}
	// subdealer money is trusted and usable immediately; broker entries
	// wait for approval
	if r.PayerType == receipt.PayerTypeSubdealer {
		if err := entry.Approve(allocatedBy, "Auto-approved subdealer allocation"); err != nil {
			return err
		}
	}

	if err := repos.LedgerRepo().Save(ctx, entry); err != nil {
		return err
	}
	if err := r.LinkLedgerEntry(alloc.ID, entry.ID); err != nil {
		return err
	}
	return repos.BookingRepo().SaveWithLock(ctx, b)
}

// Deallocate reverses one allocation: the receipt balance and booking
// outstanding are restored and the linked ledger entry is rejected, or
// offset by a reversal entry when it was already approved.
func (s *Service) Deallocate(ctx context.Context, receiptID, allocationID uuid.UUID, req DeallocateRequest) (*ReceiptResponse, error) {
	if req.DeallocatedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Deallocating user ID is required")
	}

	var result *receipt.Receipt
	err := s.withConflictRetry(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.ReceiptRepo().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}

		removed, err := r.Deallocate(allocationID, s.policy.AllowReopenClosed)
		if err != nil {
			return err
		}

		b, err := repos.BookingRepo().FindByID(ctx, removed.BookingID)
		if err != nil {
			return err
		}
		amount := valueobject.NewMoneyINR(removed.Amount)
		if err := b.ReleaseAllocation(amount); err != nil {
			return err
		}

		if removed.LedgerEntryID != nil {
			if err := s.reverseLedgerEntry(ctx, repos, *removed.LedgerEntryID, req.DeallocatedBy); err != nil {
				return err
			}
		}

		if err := repos.BookingRepo().SaveWithLock(ctx, b); err != nil {
			return err
		}
		if err := repos.ReceiptRepo().SaveWithLock(ctx, r); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(result), nil
}

func (s *Service) reverseLedgerEntry(
	ctx context.Context,
	repos TransactionalRepositories,
	entryID uuid.UUID,
	actor uuid.UUID,
) error {
	entry, err := repos.LedgerRepo().FindByID(ctx, entryID)
	if err != nil {
		return err
	}

	switch {
	case entry.IsPending():
		if err := entry.Reject(actor, "Allocation reversed"); err != nil {
			return err
		}
		return repos.LedgerRepo().SaveWithLock(ctx, entry)
	case entry.IsApproved():
		entryNumber, err := repos.LedgerRepo().GenerateEntryNumber(ctx)
		if err != nil {
			return err
		}
		reversal, err := ledger.NewReversalEntry(entry, entryNumber, actor)
		if err != nil {
			return err
		}
		return repos.LedgerRepo().Save(ctx, reversal)
	default:
		// already rejected, nothing left to reverse
		return nil
	}
}

func (s *Service) checkIdempotencyKey(ctx context.Context, receiptID uuid.UUID, key string) error {
	if key == "" || s.idempotency == nil || !s.idemConfig.Enabled {
		return nil
	}
	fresh, err := s.idempotency.MarkProcessed(ctx, allocationIdempotencyKey(receiptID, key), s.idemConfig.TTL)
	if err != nil {
		return err
	}
	if !fresh {
		return shared.ErrDuplicateRequest
	}
	return nil
}

func allocationIdempotencyKey(receiptID uuid.UUID, key string) string {
	return fmt.Sprintf("allocation:%s:%s", receiptID, key)
}

// withConflictRetry re-runs the transaction on optimistic-lock conflicts,
// up to the policy bound. Business-rule failures are never retried.
func (s *Service) withConflictRetry(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	attempts := s.policy.ConflictRetries
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = s.txScope.Execute(ctx, fn)
		if !isConcurrencyConflict(err) {
			return err
		}
	}
	return err
}

func isConcurrencyConflict(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == "CONCURRENCY_CONFLICT"
	}
	return false
}
