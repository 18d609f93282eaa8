package disbursement

import (
	"context"

	"github.com/dms/backend/internal/domain/booking"
	"github.com/dms/backend/internal/domain/disbursement"
	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDisbursementRepository is a mock implementation of disbursement.Repository
type MockDisbursementRepository struct {
	mock.Mock
}

func (m *MockDisbursementRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.Disbursement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.Disbursement), args.Error(1)
}

func (m *MockDisbursementRepository) FindByNumber(ctx context.Context, disbursementNumber string) (*disbursement.Disbursement, error) {
	args := m.Called(ctx, disbursementNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.Disbursement), args.Error(1)
}

func (m *MockDisbursementRepository) FindAll(ctx context.Context, filter disbursement.Filter) ([]*disbursement.Disbursement, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*disbursement.Disbursement), args.Error(1)
}

func (m *MockDisbursementRepository) ExistsByProviderReference(ctx context.Context, providerReference string) (bool, error) {
	args := m.Called(ctx, providerReference)
	return args.Bool(0), args.Error(1)
}

func (m *MockDisbursementRepository) GenerateDisbursementNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDisbursementRepository) Save(ctx context.Context, d *disbursement.Disbursement) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDisbursementRepository) SaveWithLock(ctx context.Context, d *disbursement.Disbursement) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDisbursementRepository) Count(ctx context.Context, filter disbursement.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockDeviationRepository is a mock implementation of disbursement.DeviationRepository
type MockDeviationRepository struct {
	mock.Mock
}

func (m *MockDeviationRepository) FindAuthorityByManager(ctx context.Context, managerID uuid.UUID) (*disbursement.DeviationAuthority, error) {
	args := m.Called(ctx, managerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.DeviationAuthority), args.Error(1)
}

func (m *MockDeviationRepository) SaveAuthority(ctx context.Context, a *disbursement.DeviationAuthority) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockDeviationRepository) SaveAuthorityWithLock(ctx context.Context, a *disbursement.DeviationAuthority) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockDeviationRepository) FindDeviationsByBooking(ctx context.Context, bookingID uuid.UUID) ([]*disbursement.ManagerDeviation, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*disbursement.ManagerDeviation), args.Error(1)
}

func (m *MockDeviationRepository) FindDeviationsByManager(ctx context.Context, managerID uuid.UUID, filter shared.Filter) ([]*disbursement.ManagerDeviation, error) {
	args := m.Called(ctx, managerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*disbursement.ManagerDeviation), args.Error(1)
}

func (m *MockDeviationRepository) SaveDeviation(ctx context.Context, d *disbursement.ManagerDeviation) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// MockBookingRepository is a mock implementation of booking.Repository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByNumber(ctx context.Context, bookingNumber string) (*booking.Booking, error) {
	args := m.Called(ctx, bookingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindAll(ctx context.Context, filter booking.Filter) ([]booking.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) SaveWithLock(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) Count(ctx context.Context, filter booking.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerRepository is a mock implementation of ledger.Repository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) FindByNumber(ctx context.Context, entryNumber string) (*ledger.Entry, error) {
	args := m.Called(ctx, entryNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) FindAll(ctx context.Context, filter ledger.Filter) ([]*ledger.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) FindBySource(ctx context.Context, source ledger.EntrySource, sourceID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, source, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) SumApprovedByBooking(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) SumActiveByBooking(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) GenerateEntryNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerRepository) Save(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveWithLock(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) Count(ctx context.Context, filter ledger.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
