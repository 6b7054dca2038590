// Package pricing is the single source of truth for every displayed or
// aggregated price. All totals must be sums of DiscountedPrice output;
// a second rounding path is not allowed.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/luminacart/storefront/pkg/types"
)

// Round2 truncates to two decimal digits, rounding half away from zero on
// the cents boundary. NaN propagates so callers can guard upstream.
func Round2(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	out, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return out
}

// DiscountedPrice applies the product's percentage discount to its base
// price and rounds to cents.
func DiscountedPrice(product types.Product) float64 {
	return Round2(product.Price * (1 - product.DiscountPercentage/100))
}
