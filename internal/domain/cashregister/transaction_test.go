package cashregister

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func TestSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(50)

	tests := []struct {
		txType TransactionType
		want   decimal.Decimal
	}{
		{TransactionTypeOpening, decimal.NewFromInt(50)},
		{TransactionTypeSale, decimal.NewFromInt(50)},
		{TransactionTypeDeposit, decimal.NewFromInt(50)},
		{TransactionTypeRefund, decimal.NewFromInt(-50)},
		{TransactionTypeWithdrawal, decimal.NewFromInt(-50)},
		{TransactionTypeTransfer, decimal.NewFromInt(-50)},
		{TransactionTypeShiftClose, decimal.NewFromInt(50)},
		{TransactionTypeAdjustment, decimal.NewFromInt(50)},
	}

	for _, tt := range tests {
		t.Run(tt.txType.String(), func(t *testing.T) {
			assert.True(t, SignedAmount(tt.txType, amount).Equal(tt.want))
		})
	}

	assert.True(t, SignedAmount(TransactionTypeShiftClose, decimal.NewFromInt(-30)).Equal(decimal.NewFromInt(-30)))
}

func TestNewTransaction(t *testing.T) {
	tenantID, branchID := uuid.New(), uuid.New()

	t.Run("opening on empty ledger", func(t *testing.T) {
		txn, err := NewTransaction(tenantID, branchID, TransactionTypeOpening, decimal.NewFromInt(200), decimal.Zero, now)
		require.NoError(t, err)
		assert.True(t, txn.BalanceBefore.IsZero())
		assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromInt(200)))
		assert.NoError(t, txn.Validate())
	})

	t.Run("withdrawal decreases balance", func(t *testing.T) {
		txn, err := NewTransaction(tenantID, branchID, TransactionTypeWithdrawal, decimal.NewFromInt(80), decimal.NewFromInt(200), now)
		require.NoError(t, err)
		assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromInt(120)))
	})

	t.Run("zero opening is allowed", func(t *testing.T) {
		_, err := NewTransaction(tenantID, branchID, TransactionTypeOpening, decimal.Zero, decimal.Zero, now)
		assert.NoError(t, err)
	})

	t.Run("zero deposit is rejected", func(t *testing.T) {
		_, err := NewTransaction(tenantID, branchID, TransactionTypeDeposit, decimal.Zero, decimal.Zero, now)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("negative withdrawal is rejected", func(t *testing.T) {
		_, err := NewTransaction(tenantID, branchID, TransactionTypeWithdrawal, decimal.NewFromInt(-5), decimal.Zero, now)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := NewTransaction(tenantID, branchID, TransactionType("BOGUS"), decimal.NewFromInt(1), decimal.Zero, now)
		assert.ErrorIs(t, err, ErrInvalidType)
	})
}

func TestNewShiftCloseTransaction(t *testing.T) {
	tenantID, branchID, shiftID := uuid.New(), uuid.New(), uuid.New()

	txn, err := NewShiftCloseTransaction(tenantID, branchID, shiftID, decimal.NewFromInt(520), decimal.NewFromInt(500), now)
	require.NoError(t, err)

	assert.Equal(t, TransactionTypeShiftClose, txn.Type)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(-20)))
	assert.True(t, txn.BalanceBefore.Equal(decimal.NewFromInt(520)))
	assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, ShiftRef(shiftID), txn.Reference)
	require.NotNil(t, txn.ShiftID)
	assert.Equal(t, shiftID, *txn.ShiftID)
	assert.NoError(t, txn.Validate())
}

func TestTransaction_Validate(t *testing.T) {
	txn, err := NewTransaction(uuid.New(), uuid.New(), TransactionTypeDeposit, decimal.NewFromInt(10), decimal.NewFromInt(5), now)
	require.NoError(t, err)

	txn.BalanceAfter = decimal.NewFromInt(99)
	assert.ErrorIs(t, txn.Validate(), ErrChainBroken)
}

func TestReference(t *testing.T) {
	id := uuid.New()

	assert.NoError(t, NoReference.Validate())
	assert.NoError(t, ShiftRef(id).Validate())
	assert.NoError(t, Reference{Kind: ReferenceManual}.Validate())
	assert.ErrorIs(t, Reference{Kind: ReferenceOrder}.Validate(), ErrInvalidReference)
	assert.ErrorIs(t, Reference{Kind: "INVOICE", ID: id}.Validate(), ErrInvalidReference)
	assert.ErrorIs(t, Reference{ID: id}.Validate(), ErrInvalidReference)

	parsed := ParseReference("shift", &id)
	assert.Equal(t, ShiftRef(id), parsed)
	assert.Nil(t, NoReference.IDPtr())
}

func TestFormatTransactionNumber(t *testing.T) {
	branchID := uuid.MustParse("1a2b3c4d-0000-0000-0000-000000000000")
	assert.Equal(t, "CR-1A2B3C4D-20260302-0007", FormatTransactionNumber(branchID, now, 7))
}
