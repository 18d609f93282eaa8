package disbursement

import (
	"context"
	"fmt"

	"github.com/dms/backend/internal/domain/disbursement"
	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy holds the tunable disbursement and deviation rules
type Policy struct {
	// RequireExactReconciliation demands that a deviation settles the
	// booking completely: finance plus customer money plus deviations
	// must reconcile to the deal amount at deviation time.
	RequireExactReconciliation bool
}

// Service provides disbursement tracking and manager deviation operations
type Service struct {
	txScope          TransactionScope
	disbursementRepo disbursement.Repository
	deviationRepo    disbursement.DeviationRepository
	policy           Policy
}

// ServiceOption is a functional option for configuring the disbursement Service
type ServiceOption func(*Service)

// WithPolicy overrides the default disbursement policy
func WithPolicy(p Policy) ServiceOption {
	return func(s *Service) {
		s.policy = p
	}
}

// NewService creates a disbursement Service
func NewService(
	txScope TransactionScope,
	disbursementRepo disbursement.Repository,
	deviationRepo disbursement.DeviationRepository,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		txScope:          txScope,
		disbursementRepo: disbursementRepo,
		deviationRepo:    deviationRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDisbursement records a sanctioned finance disbursement. Provider
// references are unique; a duplicate fails with ALREADY_EXISTS. When no
// amount is given the booking's expected finance amount is used.
func (s *Service) CreateDisbursement(ctx context.Context, req CreateDisbursementRequest) (*DisbursementResponse, error) {
	exists, err := s.disbursementRepo.ExistsByProviderReference(ctx, req.ProviderReference)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Disbursement with provider reference %s already exists", req.ProviderReference))
	}

	var result *disbursement.Disbursement
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		b, err := repos.BookingRepo().FindByID(ctx, req.BookingID)
		if err != nil {
			return err
		}

		amount := req.Amount
		if amount.IsZero() {
			amount = b.FinanceExpected()
		}

		number, err := repos.DisbursementRepo().GenerateDisbursementNumber(ctx)
		if err != nil {
			return err
		}

		d, err := disbursement.NewDisbursement(
			req.BranchID,
			number,
			b.ID,
			b.BookingNumber,
			req.ProviderName,
			req.ProviderReference,
			valueobject.NewMoneyINR(amount),
			disbursement.DisbursementMode(req.Mode),
			req.InstrumentNumber,
		)
		if err != nil {
			return err
		}
		d.SetCreatedBy(req.CreatedBy)
		d.Remark = req.Remark

		if err := repos.DisbursementRepo().Save(ctx, d); err != nil {
			return err
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDisbursementResponse(result), nil
}

// GetDisbursement returns a disbursement by ID
func (s *Service) GetDisbursement(ctx context.Context, id uuid.UUID) (*DisbursementResponse, error) {
	d, err := s.disbursementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDisbursementResponse(d), nil
}

// ListDisbursements returns disbursements matching the filter
func (s *Service) ListDisbursements(ctx context.Context, f ListDisbursementsFilter) (*DisbursementListResponse, error) {
	filter := disbursement.Filter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
		},
		BranchID:  f.BranchID,
		BookingID: f.BookingID,
	}
	if f.Status != "" {
		st := disbursement.DisbursementStatus(f.Status)
		if !st.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Disbursement status %q is not valid", f.Status))
		}
		filter.Status = &st
	}
	if f.Provider != "" {
		filter.Provider = &f.Provider
	}

	disbursements, err := s.disbursementRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.disbursementRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]DisbursementResponse, 0, len(disbursements))
	for _, d := range disbursements {
		items = append(items, *toDisbursementResponse(d))
	}
	return &DisbursementListResponse{
		Disbursements: items,
		Total:         total,
		Page:          filter.Page,
		PageSize:      filter.Limit(),
	}, nil
}

// UpdateReceived records the cumulative amount received from the provider.
// The newly arrived portion is posted to the booking's ledger as an approved
// FINANCE credit in the same transaction.
func (s *Service) UpdateReceived(ctx context.Context, id uuid.UUID, req UpdateReceivedRequest) (*DisbursementResponse, error) {
	if req.ReceivedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Receiving user ID is required")
	}

	var result *disbursement.Disbursement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		d, err := repos.DisbursementRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		delta, err := d.UpdateReceived(valueobject.NewMoneyINR(req.ReceivedAmount))
		if err != nil {
			return err
		}

		if delta.IsPositive() {
			b, err := repos.BookingRepo().FindByID(ctx, d.BookingID)
			if err != nil {
				return err
			}
			money := valueobject.NewMoneyINR(delta)
			if err := b.ApplyAllocation(money); err != nil {
				return err
			}

			entryNumber, err := repos.LedgerRepo().GenerateEntryNumber(ctx)
			if err != nil {
				return err
			}
			sourceID := d.ID
			entry, err := ledger.NewCreditEntry(
				entryNumber, b.ID, b.BookingNumber, money,
				ledger.PaymentModeFinance, ledger.ModeDetails{},
				ledger.EntrySourceDisbursement, &sourceID, req.ReceivedBy,
			)
			if err != nil {
				return err
			}
			// provider funds are settled money, no approval gate
			if err := entry.Approve(req.ReceivedBy, "Finance disbursement received"); err != nil {
				return err
			}

			if err := repos.LedgerRepo().Save(ctx, entry); err != nil {
				return err
			}
			if err := repos.BookingRepo().SaveWithLock(ctx, b); err != nil {
				return err
			}
		}

		if err := repos.DisbursementRepo().SaveWithLock(ctx, d); err != nil {
			return err
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDisbursementResponse(result), nil
}

// Cancel withdraws a disbursement that has not started settling
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req CancelRequest) (*DisbursementResponse, error) {
	var result *disbursement.Disbursement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		d, err := repos.DisbursementRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := d.Cancel(req.CancelledBy, req.Reason); err != nil {
			return err
		}
		if err := repos.DisbursementRepo().SaveWithLock(ctx, d); err != nil {
			return err
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDisbursementResponse(result), nil
}

// AddManagerDeviation writes off part of a booking's outstanding amount
// against a manager's deviation allowance. The allowance consumption and the
// booking movement commit together; a limit breach fails with LIMIT_EXCEEDED.
func (s *Service) AddManagerDeviation(ctx context.Context, req AddDeviationRequest) (*DeviationResponse, error) {
	var result *disbursement.ManagerDeviation
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		authority, err := repos.DeviationRepo().FindAuthorityByManager(ctx, req.ManagerID)
		if err != nil {
			return err
		}

		amount := valueobject.NewMoneyINR(req.Amount)
		if err := authority.Consume(amount); err != nil {
			return err
		}

		b, err := repos.BookingRepo().FindByID(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if err := b.ApplyDeviation(amount); err != nil {
			return err
		}
		if s.policy.RequireExactReconciliation && !b.IsSettled() {
			return shared.NewDomainError("RECONCILIATION_MISMATCH",
				fmt.Sprintf("Deviation leaves %s outstanding on booking %s; exact settlement is required",
					b.OutstandingAmount.StringFixed(2), b.BookingNumber))
		}

		deviation, err := disbursement.NewManagerDeviation(b.ID, b.BookingNumber, req.ManagerID, amount, req.Reason)
		if err != nil {
			return err
		}

		if err := repos.DeviationRepo().SaveDeviation(ctx, deviation); err != nil {
			return err
		}
		if err := repos.DeviationRepo().SaveAuthorityWithLock(ctx, authority); err != nil {
			return err
		}
		if err := repos.BookingRepo().SaveWithLock(ctx, b); err != nil {
			return err
		}
		result = deviation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDeviationResponse(result), nil
}

// GetAuthority returns a manager's deviation allowance
func (s *Service) GetAuthority(ctx context.Context, managerID uuid.UUID) (*AuthorityResponse, error) {
	a, err := s.deviationRepo.FindAuthorityByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return toAuthorityResponse(a), nil
}

// ListDeviationsByBooking returns all deviations recorded against a booking
func (s *Service) ListDeviationsByBooking(ctx context.Context, bookingID uuid.UUID) ([]DeviationResponse, error) {
	deviations, err := s.deviationRepo.FindDeviationsByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	items := make([]DeviationResponse, 0, len(deviations))
	for _, d := range deviations {
		items = append(items, *toDeviationResponse(d))
	}
	return items, nil
}

// GetFinanceSummary computes the finance position of a booking: expected
// finance amount, what providers have disbursed, and deviation totals.
func (s *Service) GetFinanceSummary(ctx context.Context, bookingID uuid.UUID) (*FinanceSummaryResponse, error) {
	var resp *FinanceSummaryResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		b, err := repos.BookingRepo().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}

		disbursements, err := repos.DisbursementRepo().FindAll(ctx, disbursement.Filter{BookingID: &bookingID})
		if err != nil {
			return err
		}
		disbursed := decimal.Zero
		for _, d := range disbursements {
			disbursed = disbursed.Add(d.ReceivedAmount)
		}

		resp = &FinanceSummaryResponse{
			BookingID:           b.ID,
			BookingNumber:       b.BookingNumber,
			DealAmount:          b.DealAmount,
			DownPaymentExpected: b.DownPaymentExpected,
			FinanceExpected:     b.FinanceExpected(),
			DisbursedTotal:      disbursed,
			DeviationTotal:      b.DeviationTotal,
			ReceivedAmount:      b.ReceivedAmount,
			OutstandingAmount:   b.OutstandingAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
