package services_test

import (
	"testing"

	"mystic/contexts/trading/marketplace-engine/domain/services"

	"github.com/shopspring/decimal"
)

func TestPerItemFee(t *testing.T) {
	cases := []struct {
		name  string
		rate  int64
		price string
		want  string
	}{
		{"three percent of 1e17", 30000, "100000000000000000", "3000000000000000"},
		{"zero rate", 0, "100000000000000000", "0"},
		{"floors fractional result", 30000, "33", "0"},
		{"one below floor boundary", 30000, "34", "1"},
		{"max rate", 999999, "1000000", "999999"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price := decimal.RequireFromString(tc.price)
			want := decimal.RequireFromString(tc.want)
			got := services.PerItemFee(tc.rate, price)
			if !got.Equal(want) {
				t.Fatalf("PerItemFee(%d, %s) = %s, want %s", tc.rate, tc.price, got, want)
			}
		})
	}
}

func TestValidFeeRate(t *testing.T) {
	cases := []struct {
		rate int64
		want bool
	}{
		{0, true},
		{30000, true},
		{999999, true},
		{1000000, false},
		{-1, false},
	}
	for _, tc := range cases {
		if got := services.ValidFeeRate(tc.rate); got != tc.want {
			t.Fatalf("ValidFeeRate(%d) = %v, want %v", tc.rate, got, tc.want)
		}
	}
}
