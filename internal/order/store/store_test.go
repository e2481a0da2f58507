package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredStock(t *testing.T) {
	tests := []struct {
		name          string
		quantity      int32
		piecesPerUnit int32
		want          int64
	}{
		{"single piece", 1, 1, 1},
		{"two bales of twelve", 2, 12, 24},
		{"product exceeds int32 range", 65536, 32768, 2147483648},
		{"product wraps int32 to a small value", 65535, 65537, 4294967295},
		{"both factors at int32 max", 2147483647, 2147483647, 4611686014132420609},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CreateOrderItemParams{Quantity: tt.quantity, PiecesPerUnit: tt.piecesPerUnit}
			got := p.RequiredStock()
			assert.Equal(t, tt.want, got)
			assert.Positive(t, got, "required stock must stay positive for positive inputs")
		})
	}
}
