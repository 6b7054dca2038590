package types

import "github.com/google/uuid"

// Product mirrors the remote catalog record. Discounted price is always
// derived via pkg/pricing, never stored on the struct.
type Product struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Price              float64   `json:"price"`
	DiscountPercentage float64   `json:"discountPercentage"`
	Stock              int       `json:"stock"`
	Category           string    `json:"category"`
	Brand              string    `json:"brand"`
	Thumbnail          string    `json:"thumbnail,omitempty"`
	Images             []string  `json:"images,omitempty"`
	Rating             float64   `json:"rating,omitempty"`
	Deleted            bool      `json:"deleted,omitempty"`
}

// ProductPage is the catalog listing envelope returned by the remote API.
type ProductPage struct {
	Data       []Product `json:"data"`
	TotalItems int       `json:"totalItems"`
}
