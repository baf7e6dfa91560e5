package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkPaid(t *testing.T) {
	t.Run("closes an open invoice", func(t *testing.T) {
		next, err := MarkPaid(StatusOpen)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, next)
	})

	t.Run("refuses every other state", func(t *testing.T) {
		for _, status := range []PaymentStatus{
			StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusCancelled, StatusRefunded,
		} {
			next, err := MarkPaid(status)
			assert.ErrorIs(t, err, ErrNotOpen, "state %s", status)
			assert.Equal(t, status, next, "state must be left untouched on refusal")
		}
	})
}

func TestValidPaymentStatus(t *testing.T) {
	assert.True(t, ValidPaymentStatus(StatusOpen))
	assert.True(t, ValidPaymentStatus(StatusRefunded))
	assert.False(t, ValidPaymentStatus(PaymentStatus("SETTLED")))
	assert.False(t, ValidPaymentStatus(PaymentStatus("")))
}
