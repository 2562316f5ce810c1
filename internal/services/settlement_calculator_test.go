package services

import (
	"math"
	"testing"

	"goride-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePayout(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		feeBps  int64
		fee     int64
		net     int64
		wantErr error
	}{
		{name: "ten percent", amount: 60000, feeBps: 1000, fee: 6000, net: 54000},
		{name: "truncates driver share", amount: 99, feeBps: 1000, fee: 10, net: 89},
		{name: "no fee", amount: 12345, feeBps: 0, fee: 0, net: 12345},
		{name: "full fee", amount: 500, feeBps: 10000, fee: 500, net: 0},
		{name: "zero amount", amount: 0, feeBps: 1000},
		{name: "negative amount", amount: -1, feeBps: 1000, wantErr: ErrInvalidAmount},
		{name: "rate above scale", amount: 100, feeBps: 10001, wantErr: ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, net, err := ComputePayout(tt.amount, tt.feeBps)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.fee, fee)
			assert.Equal(t, tt.net, net)
			assert.Equal(t, tt.amount, fee+net)
		})
	}
}

func TestComputeRefund(t *testing.T) {
	policy := DefaultFeePolicy()

	refund, err := ComputeRefund(60000, models.CancelledByDriver, policy)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), refund)

	refund, err = ComputeRefund(60000, models.CancelledByRejection, policy)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), refund)

	refund, err = ComputeRefund(60000, models.CancelledByPassenger, policy)
	require.NoError(t, err)
	assert.Equal(t, int64(48000), refund)

	refund, err = ComputeRefund(33333, models.CancelledByPassenger, policy)
	require.NoError(t, err)
	assert.Equal(t, int64(26666), refund)

	_, err = ComputeRefund(100, models.CancelledBy("nobody"), policy)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyBpsDoesNotOverflow(t *testing.T) {
	amount := int64(math.MaxInt64 / 2)
	assert.Equal(t, amount, applyBps(amount, 10000))
	assert.Equal(t, amount/10000*8000+amount%10000*8000/10000, applyBps(amount, 8000))
}
