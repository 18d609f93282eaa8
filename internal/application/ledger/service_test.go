package ledger

import (
	"context"
	"testing"

	"github.com/dms/backend/internal/domain/booking"
	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) FindBySource(ctx context.Context, source ledger.EntrySource, sourceID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, source, sourceID)
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

func (m *MockLedgerRepository) Save(ctx context.Context, e *ledger.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveWithLock(ctx context.Context, e *ledger.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockLedgerRepository) Count(ctx context.Context, filter ledger.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
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

type ledgerFixture struct {
	ledgerRepo  *MockLedgerRepository
	bookingRepo *MockBookingRepository
	service     *Service
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		ledgerRepo:  new(MockLedgerRepository),
		bookingRepo: new(MockBookingRepository),
	}
	scope := NewNoOpTransactionScope(f.ledgerRepo, f.bookingRepo)
	f.service = NewService(scope, f.ledgerRepo)
	return f
}

func makeBooking(t *testing.T, deal float64) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(
		uuid.New(),
		"BK-2026-0042",
		"Ramesh Kulkarni",
		valueobject.NewMoneyINRFromFloat(deal),
		valueobject.NewMoneyINRFromFloat(0),
	)
	require.NoError(t, err)
	return b
}

func makePendingCredit(t *testing.T, b *booking.Booking, amount float64) *ledger.Entry {
	t.Helper()
	e, err := ledger.NewCreditEntry("LE-2026-0001", b.ID, b.BookingNumber,
		valueobject.NewMoneyINRFromFloat(amount), ledger.PaymentModeCash,
		ledger.ModeDetails{CashLocation: "Counter 1"},
		ledger.EntrySourceManual, nil, uuid.New())
	require.NoError(t, err)
	return e
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestCreateCreditEntry(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)

	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0001", nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)

	resp, err := f.service.CreateEntry(ctx, CreateEntryRequest{
		BookingID:    b.ID,
		EntryType:    "CREDIT",
		Amount:       decimal.NewFromInt(50000),
		PaymentMode:  "CASH",
		CashLocation: "Pune Counter 1",
		ReceivedBy:   uuid.New(),
		Remark:       "token amount",
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "MANUAL", resp.Source)
	assert.True(t, b.ReceivedAmount.Equal(decimal.NewFromInt(50000)))
}

func TestCreateDebitEntryReleasesBalance(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)
	require.NoError(t, b.ApplyAllocation(valueobject.NewMoneyINRFromFloat(100000)))

	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0002", nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)

	resp, err := f.service.CreateEntry(ctx, CreateEntryRequest{
		BookingID:     b.ID,
		EntryType:     "DEBIT",
		Amount:        decimal.NewFromInt(30000),
		PaymentMode:   "BANK",
		BankReference: "UTR-REFUND-1",
		ReceivedBy:    uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(-30000)))
	assert.True(t, b.ReceivedAmount.Equal(decimal.NewFromInt(70000)))
}

func TestCreateEntryMissingModeDetails(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)

	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0001", nil)

	_, err := f.service.CreateEntry(ctx, CreateEntryRequest{
		BookingID:   b.ID,
		EntryType:   "CREDIT",
		Amount:      decimal.NewFromInt(50000),
		PaymentMode: "CASH",
		ReceivedBy:  uuid.New(),
	})
	assertDomainCode(t, err, "INVALID_MODE_DETAILS")
	f.ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateEntryAmountWhilePending(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)
	require.NoError(t, b.ApplyAllocation(valueobject.NewMoneyINRFromFloat(50000)))
	e := makePendingCredit(t, b, 50000)

	f.ledgerRepo.On("FindByID", ctx, e.ID).Return(e, nil)
	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)
	f.ledgerRepo.On("SaveWithLock", ctx, e).Return(nil)

	amount := decimal.NewFromInt(80000)
	resp, err := f.service.UpdateEntry(ctx, e.ID, UpdateEntryRequest{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(80000)))
	// booking adjusted by the difference
	assert.True(t, b.ReceivedAmount.Equal(decimal.NewFromInt(80000)))
}

func TestUpdateEntryAmountAfterApproval(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)
	e := makePendingCredit(t, b, 50000)
	require.NoError(t, e.Approve(uuid.New(), ""))

	f.ledgerRepo.On("FindByID", ctx, e.ID).Return(e, nil)

	amount := decimal.NewFromInt(80000)
	_, err := f.service.UpdateEntry(ctx, e.ID, UpdateEntryRequest{Amount: &amount})
	assertDomainCode(t, err, "CONCURRENCY_CONFLICT")
	f.ledgerRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestApproveEntry(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)
	e := makePendingCredit(t, b, 50000)
	actor := uuid.New()

	f.ledgerRepo.On("FindByID", ctx, e.ID).Return(e, nil)
	f.ledgerRepo.On("SaveWithLock", ctx, e).Return(nil)

	resp, err := f.service.Approve(ctx, e.ID, ApprovalRequest{Actor: actor, Remark: "checked"})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Status)

	// approval is terminal
	_, err = f.service.Approve(ctx, e.ID, ApprovalRequest{Actor: actor})
	assertDomainCode(t, err, "INVALID_STATE")
}

func TestRejectEntryReleasesBooking(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)
	require.NoError(t, b.ApplyAllocation(valueobject.NewMoneyINRFromFloat(50000)))
	e := makePendingCredit(t, b, 50000)
	actor := uuid.New()

	f.ledgerRepo.On("FindByID", ctx, e.ID).Return(e, nil)
	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("SaveWithLock", ctx, e).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)

	resp, err := f.service.Reject(ctx, e.ID, ApprovalRequest{Actor: actor, Reason: "slip mismatch"})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", resp.Status)
	assert.True(t, b.ReceivedAmount.IsZero())
	assert.True(t, b.OutstandingAmount.Equal(b.DealAmount))
}

func TestRejectWithoutReason(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)
	e := makePendingCredit(t, b, 50000)

	f.ledgerRepo.On("FindByID", ctx, e.ID).Return(e, nil)

	_, err := f.service.Reject(ctx, e.ID, ApprovalRequest{Actor: uuid.New()})
	assertDomainCode(t, err, "INVALID_REASON")
}

func makeAllocationCredit(t *testing.T, b *booking.Booking, amount float64) *ledger.Entry {
	t.Helper()
	sourceID := uuid.New()
	e, err := ledger.NewCreditEntry("LE-2026-0002", b.ID, b.BookingNumber,
		valueobject.NewMoneyINRFromFloat(amount), ledger.PaymentModeBank,
		ledger.ModeDetails{BankReference: "UTR123456"},
		ledger.EntrySourceReceiptAllocation, &sourceID, uuid.New())
	require.NoError(t, err)
	return e
}

func TestRejectAllocationBackedEntry(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)
	require.NoError(t, b.ApplyAllocation(valueobject.NewMoneyINRFromFloat(50000)))
	require.NoError(t, b.ApplyAllocation(valueobject.NewMoneyINRFromFloat(40000)))
	e := makeAllocationCredit(t, b, 40000)

	f.ledgerRepo.On("FindByID", ctx, e.ID).Return(e, nil)

	// rejecting here would release the amount while the receipt allocation
	// still stands, letting a later deallocation release it a second time
	_, err := f.service.Reject(ctx, e.ID, ApprovalRequest{Actor: uuid.New(), Reason: "slip mismatch"})
	assertDomainCode(t, err, "INVALID_STATE")
	assert.True(t, e.IsPending())
	assert.True(t, b.ReceivedAmount.Equal(decimal.NewFromInt(90000)))
	f.bookingRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.ledgerRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestUpdateAllocationBackedEntryAmount(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)
	e := makeAllocationCredit(t, b, 40000)

	f.ledgerRepo.On("FindByID", ctx, e.ID).Return(e, nil)

	amount := decimal.NewFromInt(60000)
	_, err := f.service.UpdateEntry(ctx, e.ID, UpdateEntryRequest{Amount: &amount})
	assertDomainCode(t, err, "INVALID_STATE")
	assert.True(t, e.Amount.Equal(decimal.NewFromInt(40000)))
}

func TestGetBookingLedger(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	b := makeBooking(t, 850000)
	e := makePendingCredit(t, b, 50000)

	f.ledgerRepo.On("FindByBooking", ctx, b.ID).Return([]*ledger.Entry{e}, nil)
	f.ledgerRepo.On("SumApprovedByBooking", ctx, b.ID).Return(decimal.Zero, nil)
	f.ledgerRepo.On("SumActiveByBooking", ctx, b.ID).Return(decimal.NewFromInt(50000), nil)

	summary, err := f.service.GetBookingLedger(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Entries, 1)
	assert.True(t, summary.ApprovedTotal.IsZero())
	assert.True(t, summary.ActiveTotal.Equal(decimal.NewFromInt(50000)))
}
