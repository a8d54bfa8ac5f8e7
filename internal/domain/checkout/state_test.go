package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPathRunsToSettled(t *testing.T) {
	txn := NewTransaction()
	assert.Equal(t, StatusIdle, txn.Status())

	require.NoError(t, txn.BeginValidation())
	assert.Equal(t, StatusValidating, txn.Status())

	require.NoError(t, txn.Confirm())
	assert.Equal(t, StatusCommitting, txn.Status())

	require.NoError(t, txn.Settle())
	assert.Equal(t, StatusSettled, txn.Status())
}

func TestValidationFailureReturnsToIdle(t *testing.T) {
	txn := NewTransaction()
	require.NoError(t, txn.BeginValidation())

	require.NoError(t, txn.FailValidation("empty cart"))
	assert.Equal(t, StatusIdle, txn.Status())
	assert.Equal(t, "empty cart", txn.FailureReason)

	// The failed transaction can be retried from the top.
	require.NoError(t, txn.BeginValidation())
	assert.Empty(t, txn.FailureReason)
}

func TestRevalidationIsIdempotent(t *testing.T) {
	txn := NewTransaction()
	require.NoError(t, txn.BeginValidation())
	require.NoError(t, txn.BeginValidation())
	assert.Equal(t, StatusValidating, txn.Status())
}

func TestSettleIsIdempotent(t *testing.T) {
	txn := NewTransaction()
	require.NoError(t, txn.BeginValidation())
	require.NoError(t, txn.Confirm())
	require.NoError(t, txn.Settle())
	require.NoError(t, txn.Settle())
	assert.Equal(t, StatusSettled, txn.Status())
}

func TestIllegalTransitions(t *testing.T) {
	t.Run("confirm from idle", func(t *testing.T) {
		txn := NewTransaction()
		assert.ErrorIs(t, txn.Confirm(), ErrInvalidStateTransition)
	})

	t.Run("settle from validating", func(t *testing.T) {
		txn := NewTransaction()
		require.NoError(t, txn.BeginValidation())
		assert.ErrorIs(t, txn.Settle(), ErrInvalidStateTransition)
	})

	t.Run("fail after confirm", func(t *testing.T) {
		txn := NewTransaction()
		require.NoError(t, txn.BeginValidation())
		require.NoError(t, txn.Confirm())
		assert.ErrorIs(t, txn.FailValidation("late"), ErrInvalidStateTransition)
	})

	t.Run("revalidate after settle", func(t *testing.T) {
		txn := NewTransaction()
		require.NoError(t, txn.BeginValidation())
		require.NoError(t, txn.Confirm())
		require.NoError(t, txn.Settle())
		assert.ErrorIs(t, txn.BeginValidation(), ErrInvalidStateTransition)
	})
}
