package types

import "github.com/google/uuid"

// CartLine is one product entry in a user's cart. Product is a denormalized
// snapshot taken by the remote API at add time.
type CartLine struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user"`
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
}

// Clone returns an independent copy of the line for order snapshots.
func (c CartLine) Clone() CartLine {
	out := c
	if len(c.Product.Images) > 0 {
		out.Product.Images = append([]string(nil), c.Product.Images...)
	}
	return out
}

// CloneLines deep-copies a slice of cart lines.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	for i, line := range lines {
		out[i] = line.Clone()
	}
	return out
}
