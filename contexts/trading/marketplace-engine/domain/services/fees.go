package services

import "github.com/shopspring/decimal"

// FeeRateDenominator is the implicit denominator of the fixed-point fee
// rate: a rate of 30000 charges 3% of the unit price.
const FeeRateDenominator = 1_000_000

var feeRateDenominator = decimal.NewFromInt(FeeRateDenominator)

// ValidFeeRate reports whether rate is inside [0, FeeRateDenominator).
func ValidFeeRate(rate int64) bool {
	return rate >= 0 && rate < FeeRateDenominator
}

// PerItemFee computes floor(rate * price / denominator). The floor keeps the
// fee an exact smallest-unit amount, rounding in the seller's favor.
func PerItemFee(rate int64, priceUnit decimal.Decimal) decimal.Decimal {
	return priceUnit.
		Mul(decimal.NewFromInt(rate)).
		Div(feeRateDenominator).
		Floor()
}
