package disbursement

import (
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisbursement(t *testing.T, amount float64) *Disbursement {
	t.Helper()
	d, err := NewDisbursement(
		uuid.New(),
		"DSB-2026-0001",
		uuid.New(),
		"BK-2026-0042",
		"HDFC Bank Ltd",
		"SANC-88411",
		valueobject.NewMoneyINRFromFloat(amount),
		DisbursementModeNEFT,
		"",
	)
	require.NoError(t, err)
	return d
}

func TestDeriveDisbursementStatus(t *testing.T) {
	amount := decimal.NewFromInt(700000)
	tests := []struct {
		name      string
		received  decimal.Decimal
		cancelled bool
		want      DisbursementStatus
	}{
		{"nothing received", decimal.Zero, false, DisbursementStatusPending},
		{"part received", decimal.NewFromInt(300000), false, DisbursementStatusPartial},
		{"fully received", amount, false, DisbursementStatusCompleted},
		{"cancelled wins", decimal.NewFromInt(300000), true, DisbursementStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(amount, tt.received, tt.cancelled))
		})
	}
}

func TestNewDisbursementValidation(t *testing.T) {
	_, err := NewDisbursement(
		uuid.New(), "DSB-2026-0002", uuid.New(), "BK-2026-0042",
		"HDFC Bank Ltd", "SANC-1",
		valueobject.NewMoneyINRFromFloat(700000),
		DisbursementModeCheque, "",
	)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_MODE_DETAILS", domainErr.Code)

	d, err := NewDisbursement(
		uuid.New(), "DSB-2026-0002", uuid.New(), "BK-2026-0042",
		"HDFC Bank Ltd", "SANC-1",
		valueobject.NewMoneyINRFromFloat(700000),
		DisbursementModeCheque, "CHQ-000412",
	)
	require.NoError(t, err)
	assert.Equal(t, DisbursementStatusPending, d.Status)

	_, err = NewDisbursement(
		uuid.New(), "DSB-2026-0003", uuid.New(), "BK-2026-0042",
		"HDFC Bank Ltd", "SANC-2",
		valueobject.NewMoneyINRFromFloat(700000),
		DisbursementMode("UPI"), "",
	)
	require.Error(t, err)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_MODE", domainErr.Code)
}

func TestUpdateReceived(t *testing.T) {
	d := newTestDisbursement(t, 700000)

	delta, err := d.UpdateReceived(valueobject.NewMoneyINRFromFloat(300000))
	require.NoError(t, err)
	assert.True(t, delta.Equal(decimal.NewFromInt(300000)))
	assert.Equal(t, DisbursementStatusPartial, d.Status)
	assert.True(t, d.OutstandingAmount().Equal(decimal.NewFromInt(400000)))

	// cumulative, not additive
	delta, err = d.UpdateReceived(valueobject.NewMoneyINRFromFloat(700000))
	require.NoError(t, err)
	assert.True(t, delta.Equal(decimal.NewFromInt(400000)))
	assert.Equal(t, DisbursementStatusCompleted, d.Status)

	_, err = d.UpdateReceived(valueobject.NewMoneyINRFromFloat(700001))
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)

	// cannot go backwards
	_, err = d.UpdateReceived(valueobject.NewMoneyINRFromFloat(600000))
	require.Error(t, err)
}

func TestCancelDisbursement(t *testing.T) {
	d := newTestDisbursement(t, 700000)
	actor := uuid.New()

	err := d.Cancel(actor, "")
	require.Error(t, err)

	require.NoError(t, d.Cancel(actor, "booking converted to cash deal"))
	assert.Equal(t, DisbursementStatusCancelled, d.Status)

	_, err = d.UpdateReceived(valueobject.NewMoneyINRFromFloat(1000))
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestCancelAfterFundsReceived(t *testing.T) {
	d := newTestDisbursement(t, 700000)
	_, err := d.UpdateReceived(valueobject.NewMoneyINRFromFloat(100000))
	require.NoError(t, err)

	err = d.Cancel(uuid.New(), "provider pullout")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}
