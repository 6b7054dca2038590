package cart

import (
	"github.com/luminacart/storefront/pkg/enums"
	"github.com/luminacart/storefront/pkg/pricing"
	"github.com/luminacart/storefront/pkg/types"
)

// TotalAmount sums the per-line discounted prices and re-rounds the sum to
// guard floating-point drift. Every line price comes from pkg/pricing; no
// second rounding path exists.
func TotalAmount(lines []types.CartLine) float64 {
	total := 0.0
	for _, line := range lines {
		total += pricing.DiscountedPrice(line.Product) * float64(line.Quantity)
	}
	return pricing.Round2(total)
}

// TotalItems sums the line quantities.
func TotalItems(lines []types.CartLine) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

// Lines returns a deep copy of the current line list.
func (s *Slice) Lines() []types.CartLine {
	return types.CloneLines(s.State().Lines)
}

// TotalAmount derives the cart total from the current lines.
func (s *Slice) TotalAmount() float64 {
	return TotalAmount(s.State().Lines)
}

// TotalItems derives the item count from the current lines.
func (s *Slice) TotalItems() int {
	return TotalItems(s.State().Lines)
}

// EmptyConfirmed reports whether the cart is known to be empty: the first
// load has completed, no request is in flight, and no lines remain. Views
// key the empty-cart redirect off this, never off a transiently empty list.
func (s *Slice) EmptyConfirmed() bool {
	state := s.State()
	return state.Loaded && state.Status == enums.RequestStatusIdle && len(state.Lines) == 0
}
