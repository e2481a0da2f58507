package status

import (
	"testing"

	ordererrors "github.com/skmunene/dukahub/internal/order/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{name: "pending", input: "pending", want: Pending},
		{name: "paid", input: "paid", want: Paid},
		{name: "ready_for_delivery", input: "ready_for_delivery", want: ReadyForDelivery},
		{name: "delivered", input: "delivered", want: Delivered},
		{name: "cancelled", input: "cancelled", want: Cancelled},
		{name: "unknown", input: "shipped", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ordererrors.ErrUnknownStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{Pending, Paid},
		{Paid, ReadyForDelivery},
		{ReadyForDelivery, Delivered},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	statuses := []Status{Pending, Paid, ReadyForDelivery, Delivered, Cancelled}

	// No skips, no backward moves, no edge into cancelled, delivered and
	// cancelled terminal.
	denied := []struct{ from, to Status }{
		{Pending, ReadyForDelivery},
		{Pending, Delivered},
		{Paid, Delivered},
		{Paid, Pending},
		{ReadyForDelivery, Paid},
		{Delivered, Pending},
		{Delivered, Paid},
		{Delivered, ReadyForDelivery},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
	for _, from := range statuses {
		assert.False(t, CanTransition(from, Cancelled), "%s -> cancelled should be denied", from)
		assert.False(t, CanTransition(Cancelled, from), "cancelled -> %s should be denied", from)
	}
}

func TestTransition(t *testing.T) {
	next, err := Transition(Pending, Paid)
	require.NoError(t, err)
	assert.Equal(t, Paid, next)

	_, err = Transition(Pending, Delivered)
	require.Error(t, err)
	assert.ErrorIs(t, err, ordererrors.ErrInvalidTransition)
	// The message must name both statuses so an operator can be told why.
	assert.Contains(t, err.Error(), "pending")
	assert.Contains(t, err.Error(), "delivered")
}
