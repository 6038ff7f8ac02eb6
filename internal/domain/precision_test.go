package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/rollpos-api/internal/domain"
)

func TestFitsScale(t *testing.T) {
	cases := []struct {
		in    string
		scale int32
		want  bool
	}{
		{"100", domain.QuantityScale, true},
		{"1.234", domain.QuantityScale, true},
		{"1.2340", domain.QuantityScale, true},
		{"1.2345", domain.QuantityScale, false},
		{"-0.0001", domain.QuantityScale, false},
		{"12000.50", domain.MoneyScale, true},
		{"12000.505", domain.MoneyScale, false},
		{"0.1900", domain.RateScale, true},
		{"0.19005", domain.RateScale, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.FitsScale(decimal.RequireFromString(tc.in), tc.scale))
		})
	}
}
