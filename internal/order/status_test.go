package order

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusShipped, StatusProcessing, false},
		{StatusDelivered, StatusShipped, false},

		// cancelled is reachable from any non-terminal state only
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},

		// re-entering the same state is a no-op
		{StatusPending, StatusPending, true},
		{StatusDelivered, StatusDelivered, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.ok, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to PaymentStatus
		ok       bool
	}{
		{PaymentPending, PaymentPaid, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentPaid, PaymentRefunded, true},
		{PaymentPending, PaymentRefunded, false},
		{PaymentPaid, PaymentFailed, false},
		{PaymentFailed, PaymentPaid, false},
		{PaymentRefunded, PaymentPaid, false},
		{PaymentPaid, PaymentPaid, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.ok, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusValid(t *testing.T) {
	require.True(t, StatusPending.Valid())
	require.True(t, PaymentRefunded.Valid())
	require.False(t, Status("unknown").Valid())
	require.False(t, PaymentStatus("unknown").Valid())
}
