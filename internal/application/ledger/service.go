package ledger

import (
	"context"
	"fmt"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides ledger entry operations: manual postings, amendments and
// the approve/reject state machine. All booking balance effects commit in the
// same transaction as the entry they derive from.
type Service struct {
	txScope    TransactionScope
	ledgerRepo ledger.Repository
}

// NewService creates a ledger Service
func NewService(txScope TransactionScope, ledgerRepo ledger.Repository) *Service {
	return &Service{txScope: txScope, ledgerRepo: ledgerRepo}
}

// CreateEntry records a manual ledger entry against a booking. The entry
// starts PENDING; its amount counts toward the booking's received total
// until it is rejected.
func (s *Service) CreateEntry(ctx context.Context, req CreateEntryRequest) (*EntryResponse, error) {
	mode := ledger.PaymentMode(req.PaymentMode)
	details := ledger.ModeDetails{BankReference: req.BankReference, CashLocation: req.CashLocation}
	amount := valueobject.NewMoneyINR(req.Amount)

	var result *ledger.Entry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		b, err := repos.BookingRepo().FindByID(ctx, req.BookingID)
		if err != nil {
			return err
		}

		entryNumber, err := repos.LedgerRepo().GenerateEntryNumber(ctx)
		if err != nil {
			return err
		}

		var entry *ledger.Entry
		switch ledger.EntryType(req.EntryType) {
		case ledger.EntryTypeCredit:
			entry, err = ledger.NewCreditEntry(entryNumber, b.ID, b.BookingNumber, amount,
				mode, details, ledger.EntrySourceManual, nil, req.ReceivedBy)
			if err != nil {
				return err
			}
			if err := b.ApplyAllocation(amount); err != nil {
				return err
			}
		case ledger.EntryTypeDebit:
			entry, err = ledger.NewDebitEntry(entryNumber, b.ID, b.BookingNumber, amount,
				mode, details, req.ReceivedBy)
			if err != nil {
				return err
			}
			if err := b.ReleaseAllocation(amount); err != nil {
				return err
			}
		default:
			return shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Entry type %q is not valid", req.EntryType))
		}
		if req.Remark != "" {
			entry.SetRemark(req.Remark)
		}

		if err := repos.LedgerRepo().Save(ctx, entry); err != nil {
			return err
		}
		if err := repos.BookingRepo().SaveWithLock(ctx, b); err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toEntryResponse(result), nil
}

// UpdateEntry amends a ledger entry. Amount changes are only allowed while
// PENDING and adjust the booking's derived amounts by the difference.
func (s *Service) UpdateEntry(ctx context.Context, id uuid.UUID, req UpdateEntryRequest) (*EntryResponse, error) {
	var result *ledger.Entry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.LedgerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Amount != nil {
			if entry.Source == ledger.EntrySourceReceiptAllocation {
				return shared.NewDomainError("INVALID_STATE",
					"Allocation-backed entry amounts track the receipt allocation and cannot be amended")
			}
			oldAmount := entry.Amount
			if err := entry.UpdateAmount(valueobject.NewMoneyINR(*req.Amount)); err != nil {
				return err
			}
			delta := entry.Amount.Sub(oldAmount)
			if !delta.IsZero() {
				b, err := repos.BookingRepo().FindByID(ctx, entry.BookingID)
				if err != nil {
					return err
				}
				if delta.IsPositive() {
					err = b.ApplyAllocation(valueobject.NewMoneyINR(delta))
				} else {
					err = b.ReleaseAllocation(valueobject.NewMoneyINR(delta.Neg()))
				}
				if err != nil {
					return err
				}
				if err := repos.BookingRepo().SaveWithLock(ctx, b); err != nil {
					return err
				}
			}
		}
		if req.Remark != nil {
			entry.SetRemark(*req.Remark)
		}

		if err := repos.LedgerRepo().SaveWithLock(ctx, entry); err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toEntryResponse(result), nil
}

// Approve transitions a PENDING entry to APPROVED. The booking's derived
// amounts already include pending entries, so nothing else moves.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, req ApprovalRequest) (*EntryResponse, error) {
	var result *ledger.Entry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.LedgerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := entry.Approve(req.Actor, req.Remark); err != nil {
			return err
		}
		if err := repos.LedgerRepo().SaveWithLock(ctx, entry); err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toEntryResponse(result), nil
}

// Reject transitions a PENDING entry to REJECTED and releases its effect on
// the booking's derived amounts. The entry stays on record. Allocation-backed
// entries are refused here; deallocating the receipt allocation reverses the
// entry and the booking together.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, req ApprovalRequest) (*EntryResponse, error) {
	var result *ledger.Entry
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.LedgerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if entry.Source == ledger.EntrySourceReceiptAllocation {
			return shared.NewDomainError("INVALID_STATE",
				"Allocation-backed entries are reversed by deallocating the receipt allocation")
		}
		if err := entry.Reject(req.Actor, req.Reason); err != nil {
			return err
		}

		b, err := repos.BookingRepo().FindByID(ctx, entry.BookingID)
		if err != nil {
			return err
		}
		if entry.Amount.IsPositive() {
			err = b.ReleaseAllocation(valueobject.NewMoneyINR(entry.Amount))
		} else {
			err = b.ApplyAllocation(valueobject.NewMoneyINR(entry.Amount.Neg()))
		}
		if err != nil {
			return err
		}

		if err := repos.LedgerRepo().SaveWithLock(ctx, entry); err != nil {
			return err
		}
		if err := repos.BookingRepo().SaveWithLock(ctx, b); err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toEntryResponse(result), nil
}

// GetEntry returns a ledger entry by ID
func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// ListEntries returns ledger entries matching the filter
func (s *Service) ListEntries(ctx context.Context, f ListEntriesFilter) (*EntryListResponse, error) {
	filter := ledger.Filter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
		},
		BookingID: f.BookingID,
	}
	if f.Status != "" {
		st := ledger.EntryStatus(f.Status)
		if !st.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Entry status %q is not valid", f.Status))
		}
		filter.Status = &st
	}
	if f.EntryType != "" {
		et := ledger.EntryType(f.EntryType)
		if !et.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Entry type %q is not valid", f.EntryType))
		}
		filter.EntryType = &et
	}
	if f.PaymentMode != "" {
		pm := ledger.PaymentMode(f.PaymentMode)
		if !pm.IsValid() {
			return nil, shared.NewDomainError("INVALID_PAYMENT_MODE",
				fmt.Sprintf("Payment mode %q is not valid", f.PaymentMode))
		}
		filter.PaymentMode = &pm
	}
	if f.Source != "" {
		src := ledger.EntrySource(f.Source)
		if !src.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Entry source %q is not valid", f.Source))
		}
		filter.Source = &src
	}

	entries, err := s.ledgerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.ledgerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, *toEntryResponse(e))
	}
	return &EntryListResponse{
		Entries:  items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// GetBookingLedgerSummary aggregates a booking's entries
type BookingLedgerSummary struct {
	BookingID     uuid.UUID       `json:"booking_id"`
	ApprovedTotal decimal.Decimal `json:"approved_total"`
	ActiveTotal   decimal.Decimal `json:"active_total"`
	Entries       []EntryResponse `json:"entries"`
}

// GetBookingLedger returns the full ledger of one booking with totals
func (s *Service) GetBookingLedger(ctx context.Context, bookingID uuid.UUID) (*BookingLedgerSummary, error) {
	entries, err := s.ledgerRepo.FindByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	approved, err := s.ledgerRepo.SumApprovedByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	active, err := s.ledgerRepo.SumActiveByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	items := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, *toEntryResponse(e))
	}
	return &BookingLedgerSummary{
		BookingID:     bookingID,
		ApprovedTotal: approved,
		ActiveTotal:   active,
		Entries:       items,
	}, nil
}
