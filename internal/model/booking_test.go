package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingBooking() *Booking {
	return &Booking{
		ID:            "b1",
		CarID:         "c1",
		PickupDate:    "2024-06-01",
		ReturnDate:    "2024-06-05",
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
	}
}

func TestTotalFor(t *testing.T) {
	// Three inclusive days at 1000 per day.
	assert.Equal(t, int64(3000), TotalFor("2024-06-01", "2024-06-03", 1000))
	// A single-day rental still costs one day.
	assert.Equal(t, int64(1000), TotalFor("2024-06-01", "2024-06-01", 1000))
}

func TestBeginPayment(t *testing.T) {
	b := pendingBooking()
	require.NoError(t, b.BeginPayment("pi_1"))
	assert.Equal(t, PaymentAwaiting, b.PaymentStatus)
	require.NotNil(t, b.PaymentIntentID)
	assert.Equal(t, "pi_1", *b.PaymentIntentID)

	// Re-issuing an intent before settlement is allowed and replaces the
	// reference.
	require.NoError(t, b.BeginPayment("pi_2"))
	assert.Equal(t, "pi_2", *b.PaymentIntentID)

	// A settled booking refuses a new intent.
	b.MarkPaid()
	assert.ErrorIs(t, b.BeginPayment("pi_3"), ErrAlreadySettled)
	assert.Equal(t, PaymentPaid, b.PaymentStatus)
	assert.Equal(t, "pi_2", *b.PaymentIntentID)
}

func TestMarkPaid(t *testing.T) {
	t.Run("confirms a pending booking", func(t *testing.T) {
		b := pendingBooking()
		assert.True(t, b.MarkPaid())
		assert.Equal(t, PaymentPaid, b.PaymentStatus)
		assert.Equal(t, StatusConfirmed, b.Status)
	})

	t.Run("duplicate delivery is inert", func(t *testing.T) {
		b := pendingBooking()
		assert.True(t, b.MarkPaid())
		assert.False(t, b.MarkPaid())
		assert.Equal(t, PaymentPaid, b.PaymentStatus)
	})

	t.Run("does not resurrect a refund", func(t *testing.T) {
		b := pendingBooking()
		b.MarkPaid()
		require.True(t, b.MarkRefunded())
		assert.False(t, b.MarkPaid())
		assert.Equal(t, PaymentRefunded, b.PaymentStatus)
	})

	t.Run("recovers from failed", func(t *testing.T) {
		b := pendingBooking()
		require.True(t, b.MarkFailed())
		assert.True(t, b.MarkPaid())
		assert.Equal(t, PaymentPaid, b.PaymentStatus)
	})

	t.Run("does not touch administrative statuses", func(t *testing.T) {
		b := pendingBooking()
		b.Status = StatusCompleted
		assert.True(t, b.MarkPaid())
		assert.Equal(t, StatusCompleted, b.Status)
	})
}

func TestMarkFailed(t *testing.T) {
	t.Run("marks an awaiting booking", func(t *testing.T) {
		b := pendingBooking()
		require.NoError(t, b.BeginPayment("pi_1"))
		assert.True(t, b.MarkFailed())
		assert.Equal(t, PaymentFailed, b.PaymentStatus)
	})

	t.Run("never downgrades a paid booking", func(t *testing.T) {
		// Out-of-order delivery: the failure of an earlier attempt
		// arrives after the retry succeeded.
		b := pendingBooking()
		b.MarkPaid()
		assert.False(t, b.MarkFailed())
		assert.Equal(t, PaymentPaid, b.PaymentStatus)
		assert.Equal(t, StatusConfirmed, b.Status)
	})

	t.Run("never downgrades a mock-paid booking", func(t *testing.T) {
		b := pendingBooking()
		require.NoError(t, b.MarkMockPaid("mock:1"))
		assert.False(t, b.MarkFailed())
		assert.Equal(t, PaymentMockPaid, b.PaymentStatus)
	})

	t.Run("duplicate failure is inert", func(t *testing.T) {
		b := pendingBooking()
		require.True(t, b.MarkFailed())
		assert.False(t, b.MarkFailed())
	})
}

func TestMarkRefunded(t *testing.T) {
	b := pendingBooking()

	// Refund before payment makes no sense and is dropped.
	assert.False(t, b.MarkRefunded())
	assert.Equal(t, PaymentPending, b.PaymentStatus)

	b.MarkPaid()
	assert.True(t, b.MarkRefunded())
	assert.Equal(t, PaymentRefunded, b.PaymentStatus)

	// Refund is terminal.
	assert.False(t, b.MarkRefunded())
	assert.False(t, b.MarkPaid())
	assert.False(t, b.MarkFailed())
	assert.Equal(t, PaymentRefunded, b.PaymentStatus)
}

func TestMarkMockPaid(t *testing.T) {
	b := pendingBooking()
	require.NoError(t, b.MarkMockPaid("mock:42"))
	assert.Equal(t, PaymentMockPaid, b.PaymentStatus)
	assert.Equal(t, StatusConfirmed, b.Status)
	require.NotNil(t, b.PaymentIntentID)
	assert.Equal(t, "mock:42", *b.PaymentIntentID)

	// Paying twice, by either path, is refused.
	assert.ErrorIs(t, b.MarkMockPaid("mock:43"), ErrAlreadySettled)
	b2 := pendingBooking()
	b2.MarkPaid()
	assert.ErrorIs(t, b2.MarkMockPaid("mock:44"), ErrAlreadySettled)
}

func TestActiveAndOverlapsRange(t *testing.T) {
	b := pendingBooking()
	assert.True(t, b.Active())
	assert.True(t, b.OverlapsRange("2024-06-05", "2024-06-08"))
	assert.False(t, b.OverlapsRange("2024-06-06", "2024-06-08"))

	b.Status = StatusCancelled
	assert.False(t, b.Active())
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("paid"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("PENDING"))
}
