package domain

import "github.com/shopspring/decimal"

// Shapes of the stored money columns: catalog and purchase-line prices are
// NUMERIC(10,2), purchase totals and balances NUMERIC(20,4).
const (
	PricePrecision  = 10
	PriceScale      = 2
	AmountPrecision = 20
	AmountScale     = 4
)

// FitsNumeric reports whether a NUMERIC(precision, scale) column stores d
// without rounding or overflow.
func FitsNumeric(d decimal.Decimal, precision, scale int32) bool {
	if !d.Equal(d.Truncate(scale)) {
		return false
	}
	return d.Abs().LessThan(decimal.New(1, precision-scale))
}

// ValidPrice reports whether d is a storable price.
func ValidPrice(d decimal.Decimal) bool {
	return !d.IsNegative() && FitsNumeric(d, PricePrecision, PriceScale)
}

// ValidAmount reports whether d is a storable total or balance.
func ValidAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && FitsNumeric(d, AmountPrecision, AmountScale)
}
