package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/booking"
	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/receipt"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type allocationFixture struct {
	receiptRepo *MockReceiptRepository
	bookingRepo *MockBookingRepository
	ledgerRepo  *MockLedgerRepository
	service     *Service
}

func newAllocationFixture(opts ...ServiceOption) *allocationFixture {
	f := &allocationFixture{
		receiptRepo: new(MockReceiptRepository),
		bookingRepo: new(MockBookingRepository),
		ledgerRepo:  new(MockLedgerRepository),
	}
	scope := NewNoOpTransactionScope(f.receiptRepo, f.bookingRepo, f.ledgerRepo)
	f.service = NewService(scope, f.receiptRepo, opts...)
	return f
}

func makeReceipt(t *testing.T, payerType receipt.PayerType, amount float64) *receipt.Receipt {
	t.Helper()
	r, err := receipt.NewReceipt(
		uuid.New(),
		"RCP-2026-0001",
		payerType,
		uuid.New(),
		"Shree Motors Satara",
		"UTR20260815001",
		valueobject.NewMoneyINRFromFloat(amount),
		ledger.PaymentModeBank,
		ledger.ModeDetails{BankReference: "UTR20260815001"},
		time.Now(),
	)
	require.NoError(t, err)
	return r
}

func makeBooking(t *testing.T, number string, deal float64) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(
		uuid.New(),
		number,
		"Ramesh Kulkarni",
		valueobject.NewMoneyINRFromFloat(deal),
		valueobject.NewMoneyINRFromFloat(0),
	)
	require.NoError(t, err)
	return b
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestCreateReceipt(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()
	payerID := uuid.New()

	f.receiptRepo.On("ExistsByPayerAndReference", ctx, payerID, "UTR1").Return(false, nil)
	f.receiptRepo.On("GenerateReceiptNumber", ctx).Return("RCP-2026-0001", nil)
	f.receiptRepo.On("Save", ctx, mock.AnythingOfType("*receipt.Receipt")).Return(nil)

	resp, err := f.service.CreateReceipt(ctx, CreateReceiptRequest{
		BranchID:        uuid.New(),
		PayerType:       "SUBDEALER",
		PayerID:         payerID,
		PayerName:       "Shree Motors Satara",
		ReferenceNumber: "UTR1",
		Amount:          decimal.NewFromInt(500000),
		PaymentMode:     "BANK",
		BankReference:   "UTR1",
		CreatedBy:       uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, "RCP-2026-0001", resp.ReceiptNumber)
	assert.Equal(t, "OPEN", resp.Status)
	assert.True(t, resp.UnallocatedAmount.Equal(decimal.NewFromInt(500000)))
	f.receiptRepo.AssertExpectations(t)
}

func TestCreateReceiptDuplicateReference(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()
	payerID := uuid.New()

	f.receiptRepo.On("ExistsByPayerAndReference", ctx, payerID, "UTR1").Return(true, nil)

	_, err := f.service.CreateReceipt(ctx, CreateReceiptRequest{
		BranchID:        uuid.New(),
		PayerType:       "SUBDEALER",
		PayerID:         payerID,
		PayerName:       "Shree Motors Satara",
		ReferenceNumber: "UTR1",
		Amount:          decimal.NewFromInt(500000),
		PaymentMode:     "FINANCE",
		CreatedBy:       uuid.New(),
	})
	assertDomainCode(t, err, "ALREADY_EXISTS")
	f.receiptRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAllocateSingleTarget(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()

	r := makeReceipt(t, receipt.PayerTypeSubdealer, 500000)
	b := makeBooking(t, "BK-2026-0042", 850000)

	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)
	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0001", nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)
	f.receiptRepo.On("SaveWithLock", ctx, r).Return(nil)

	resp, err := f.service.Allocate(ctx, r.ID, AllocateRequest{
		Targets:     []AllocationTarget{{BookingID: b.ID, Amount: decimal.NewFromInt(200000)}},
		AllocatedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", resp.Status)
	assert.True(t, resp.AllocatedAmount.Equal(decimal.NewFromInt(200000)))
	require.Len(t, resp.Allocations, 1)
	assert.NotNil(t, resp.Allocations[0].LedgerEntryID)

	// booking outstanding reduced by the allocated amount
	assert.True(t, b.OutstandingAmount.Equal(decimal.NewFromInt(650000)))

	// subdealer money is approved on the spot
	savedEntry := f.ledgerRepo.Calls[1].Arguments.Get(1).(*ledger.Entry)
	assert.Equal(t, ledger.EntryStatusApproved, savedEntry.Status)
	assert.Equal(t, ledger.EntrySourceReceiptAllocation, savedEntry.Source)
	f.receiptRepo.AssertExpectations(t)
}

func TestAllocateBrokerEntryStaysPending(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()

	r := makeReceipt(t, receipt.PayerTypeBroker, 100000)
	b := makeBooking(t, "BK-2026-0042", 850000)

	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)
	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0001", nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)
	f.receiptRepo.On("SaveWithLock", ctx, r).Return(nil)

	_, err := f.service.Allocate(ctx, r.ID, AllocateRequest{
		Targets:     []AllocationTarget{{BookingID: b.ID, Amount: decimal.NewFromInt(100000)}},
		AllocatedBy: uuid.New(),
	})
	require.NoError(t, err)

	savedEntry := f.ledgerRepo.Calls[1].Arguments.Get(1).(*ledger.Entry)
	assert.Equal(t, ledger.EntryStatusPending, savedEntry.Status)
}

func TestAllocateMultiTargetOrderPreserved(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()

	r := makeReceipt(t, receipt.PayerTypeSubdealer, 500000)
	b1 := makeBooking(t, "BK-2026-0042", 850000)
	b2 := makeBooking(t, "BK-2026-0043", 300000)

	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)
	f.bookingRepo.On("FindByID", ctx, b1.ID).Return(b1, nil)
	f.bookingRepo.On("FindByID", ctx, b2.ID).Return(b2, nil)
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0001", nil).Once()
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0002", nil).Once()
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*booking.Booking")).Return(nil)
	f.receiptRepo.On("SaveWithLock", ctx, r).Return(nil)

	resp, err := f.service.Allocate(ctx, r.ID, AllocateRequest{
		Targets: []AllocationTarget{
			{BookingID: b1.ID, Amount: decimal.NewFromInt(200000)},
			{BookingID: b2.ID, Amount: decimal.NewFromInt(300000)},
		},
		AllocatedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", resp.Status)
	require.Len(t, resp.Allocations, 2)
	// caller order, no implicit sorting
	assert.Equal(t, "BK-2026-0042", resp.Allocations[0].BookingNumber)
	assert.Equal(t, "BK-2026-0043", resp.Allocations[1].BookingNumber)
}

func TestAllocateBatchOverdrawsReceipt(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()

	r := makeReceipt(t, receipt.PayerTypeSubdealer, 100000)
	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)

	_, err := f.service.Allocate(ctx, r.ID, AllocateRequest{
		Targets: []AllocationTarget{
			{BookingID: uuid.New(), Amount: decimal.NewFromInt(60000)},
			{BookingID: uuid.New(), Amount: decimal.NewFromInt(60000)},
		},
		AllocatedBy: uuid.New(),
	})
	assertDomainCode(t, err, "EXCEEDS_UNALLOCATED")
	f.receiptRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAllocateTargetExceedsBookingOutstanding(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()

	r := makeReceipt(t, receipt.PayerTypeSubdealer, 500000)
	b := makeBooking(t, "BK-2026-0042", 100000)

	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)
	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)

	_, err := f.service.Allocate(ctx, r.ID, AllocateRequest{
		Targets:     []AllocationTarget{{BookingID: b.ID, Amount: decimal.NewFromInt(150000)}},
		AllocatedBy: uuid.New(),
	})
	assertDomainCode(t, err, "EXCEEDS_OUTSTANDING")
	// nothing persisted when any target fails
	f.receiptRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.bookingRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestAllocateClosedReceipt(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()

	r := makeReceipt(t, receipt.PayerTypeSubdealer, 100000)
	_, err := r.Allocate(uuid.New(), "BK-2026-0042", valueobject.NewMoneyINRFromFloat(100000), "")
	require.NoError(t, err)
	require.Equal(t, receipt.ReceiptStatusClosed, r.Status)

	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)

	_, err = f.service.Allocate(ctx, r.ID, AllocateRequest{
		Targets:     []AllocationTarget{{BookingID: uuid.New(), Amount: decimal.NewFromInt(1)}},
		AllocatedBy: uuid.New(),
	})
	assertDomainCode(t, err, "INVALID_STATE")
}

func TestAllocateMissingReceipt(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()
	id := uuid.New()

	f.receiptRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.Allocate(ctx, id, AllocateRequest{
		Targets:     []AllocationTarget{{BookingID: uuid.New(), Amount: decimal.NewFromInt(1)}},
		AllocatedBy: uuid.New(),
	})
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestAllocateIdempotencyKeyReplay(t *testing.T) {
	store := newMemoryIdempotencyStore()
	f := newAllocationFixture(WithIdempotencyStore(store, shared.DefaultIdempotencyConfig()))
	ctx := context.Background()

	r := makeReceipt(t, receipt.PayerTypeSubdealer, 500000)
	b := makeBooking(t, "BK-2026-0042", 850000)

	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)
	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0001", nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)
	f.receiptRepo.On("SaveWithLock", ctx, r).Return(nil)

	req := AllocateRequest{
		Targets:        []AllocationTarget{{BookingID: b.ID, Amount: decimal.NewFromInt(100000)}},
		AllocatedBy:    uuid.New(),
		IdempotencyKey: "client-key-1",
	}

	_, err := f.service.Allocate(ctx, r.ID, req)
	require.NoError(t, err)

	_, err = f.service.Allocate(ctx, r.ID, req)
	assertDomainCode(t, err, "DUPLICATE_REQUEST")
}

func TestAllocateConflictRetryExhausted(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()

	b := makeBooking(t, "BK-2026-0042", 850000)
	// fresh receipt per attempt, mirroring a re-read inside each transaction
	for i := 0; i < 3; i++ {
		r := makeReceipt(t, receipt.PayerTypeSubdealer, 500000)
		f.receiptRepo.On("FindByID", ctx, mock.Anything).Return(r, nil).Once()
	}
	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0001", nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)
	f.receiptRepo.On("SaveWithLock", ctx, mock.Anything).Return(shared.ErrConcurrencyConflict)

	_, err := f.service.Allocate(ctx, uuid.New(), AllocateRequest{
		Targets:     []AllocationTarget{{BookingID: b.ID, Amount: decimal.NewFromInt(100000)}},
		AllocatedBy: uuid.New(),
	})
	assertDomainCode(t, err, "CONCURRENCY_CONFLICT")
	f.receiptRepo.AssertNumberOfCalls(t, "FindByID", 3)
}

func TestDeallocateRestoresBalances(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()
	actor := uuid.New()

	r := makeReceipt(t, receipt.PayerTypeBroker, 500000)
	b := makeBooking(t, "BK-2026-0042", 850000)
	alloc, err := r.Allocate(b.ID, b.BookingNumber, valueobject.NewMoneyINRFromFloat(200000), "")
	require.NoError(t, err)
	require.NoError(t, b.ApplyAllocation(valueobject.NewMoneyINRFromFloat(200000)))

	entry, err := ledger.NewCreditEntry("LE-2026-0001", b.ID, b.BookingNumber,
		valueobject.NewMoneyINRFromFloat(200000), ledger.PaymentModeBank,
		ledger.ModeDetails{BankReference: "UTR1"},
		ledger.EntrySourceReceiptAllocation, &r.ID, actor)
	require.NoError(t, err)
	require.NoError(t, r.LinkLedgerEntry(alloc.ID, entry.ID))

	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)
	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("FindByID", ctx, entry.ID).Return(entry, nil)
	f.ledgerRepo.On("SaveWithLock", ctx, entry).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)
	f.receiptRepo.On("SaveWithLock", ctx, r).Return(nil)

	resp, err := f.service.Deallocate(ctx, r.ID, alloc.ID, DeallocateRequest{DeallocatedBy: actor})
	require.NoError(t, err)

	assert.Equal(t, "OPEN", resp.Status)
	assert.True(t, resp.AllocatedAmount.IsZero())
	assert.True(t, b.OutstandingAmount.Equal(decimal.NewFromInt(850000)))
	// the pending broker entry is rejected, not deleted
	assert.Equal(t, ledger.EntryStatusRejected, entry.Status)
}

func TestDeallocateApprovedEntryWritesReversal(t *testing.T) {
	f := newAllocationFixture()
	ctx := context.Background()
	actor := uuid.New()

	r := makeReceipt(t, receipt.PayerTypeSubdealer, 200000)
	b := makeBooking(t, "BK-2026-0042", 850000)
	alloc, err := r.Allocate(b.ID, b.BookingNumber, valueobject.NewMoneyINRFromFloat(200000), "")
	require.NoError(t, err)
	require.NoError(t, b.ApplyAllocation(valueobject.NewMoneyINRFromFloat(200000)))

	entry, err := ledger.NewCreditEntry("LE-2026-0001", b.ID, b.BookingNumber,
		valueobject.NewMoneyINRFromFloat(200000), ledger.PaymentModeBank,
		ledger.ModeDetails{BankReference: "UTR1"},
		ledger.EntrySourceReceiptAllocation, &r.ID, actor)
	require.NoError(t, err)
	require.NoError(t, entry.Approve(actor, ""))
	require.NoError(t, r.LinkLedgerEntry(alloc.ID, entry.ID))

	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)
	f.bookingRepo.On("FindByID", ctx, b.ID).Return(b, nil)
	f.ledgerRepo.On("FindByID", ctx, entry.ID).Return(entry, nil)
	f.ledgerRepo.On("GenerateEntryNumber", ctx).Return("LE-2026-0002", nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)
	f.bookingRepo.On("SaveWithLock", ctx, b).Return(nil)
	f.receiptRepo.On("SaveWithLock", ctx, r).Return(nil)

	_, err = f.service.Deallocate(ctx, r.ID, alloc.ID, DeallocateRequest{DeallocatedBy: actor})
	require.NoError(t, err)

	// the approved credit stays; its negation is appended
	assert.Equal(t, ledger.EntryStatusApproved, entry.Status)
	var reversal *ledger.Entry
	for _, call := range f.ledgerRepo.Calls {
		if call.Method == "Save" {
			reversal = call.Arguments.Get(1).(*ledger.Entry)
		}
	}
	require.NotNil(t, reversal)
	assert.Equal(t, ledger.EntryTypeDebit, reversal.EntryType)
	assert.True(t, reversal.Amount.Equal(decimal.NewFromInt(-200000)))
	assert.Equal(t, ledger.EntryStatusApproved, reversal.Status)
}

func TestDeallocateClosedReceiptPolicyForbidden(t *testing.T) {
	policy := DefaultPolicy()
	policy.AllowReopenClosed = false
	f := newAllocationFixture(WithPolicy(policy))
	ctx := context.Background()

	r := makeReceipt(t, receipt.PayerTypeSubdealer, 100000)
	alloc, err := r.Allocate(uuid.New(), "BK-2026-0042", valueobject.NewMoneyINRFromFloat(100000), "")
	require.NoError(t, err)
	require.Equal(t, receipt.ReceiptStatusClosed, r.Status)

	f.receiptRepo.On("FindByID", ctx, r.ID).Return(r, nil)

	_, err = f.service.Deallocate(ctx, r.ID, alloc.ID, DeallocateRequest{DeallocatedBy: uuid.New()})
	assertDomainCode(t, err, "INVALID_STATE")
}
