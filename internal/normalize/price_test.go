package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceCents(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int64
	}{
		{name: "dollar amount", text: "$19.99", want: cents(1999)},
		{name: "whole dollars", text: "$50", want: cents(5000)},
		{name: "thousands separator", text: "$1,299.00", want: cents(129900)},
		{name: "amount in sentence", text: "Now only $24.95 with coupon", want: cents(2495)},
		{name: "free", text: "Free", want: nil},
		{name: "empty", text: "", want: nil},
		{name: "no amount", text: "See price in cart", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceCents(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func cents(v int64) *int64 {
	return &v
}
