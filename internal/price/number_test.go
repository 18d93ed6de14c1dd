package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocaleNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		// The same amount in every locale shape the sites produce.
		{"46 000 zł", 46000, true},
		{"46.000,00", 46000, true},
		{"46000", 46000, true},
		{"46 000 PLN", 46000, true},
		{"46,000.00 zl", 46000, true},

		{"11.500 €", 11500, true},
		{"€11,500", 11500, true},
		{"1,200.50", 1200.50, true},
		{"129,99", 129.99, true},
		{"12,5", 12.5, true},
		{"9.900", 9900, true},
		{"1.234.567", 1234567, true},
		{"5.", 5, true},
		{"Cena: 8 900 zł do negocjacji", 8900, true},

		{"", 0, false},
		{"free", 0, false},
		{"zł", 0, false},
		{"...,,,", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLocaleNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
		}
	}
}

func TestParseLocaleNumberPathological(t *testing.T) {
	// Degrades to absent, never panics.
	for _, in := range []string{"12,34,56", "€ € €", "zł 0x12", "- ", ".,.,", "1 2 3 zł €"} {
		assert.NotPanics(t, func() { ParseLocaleNumber(in) }, "input %q", in)
	}
}
