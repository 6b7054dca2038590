package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/luminacart/storefront/pkg/enums"
)

// Order is the checkout snapshot persisted by the remote API. TotalAmount
// and TotalItems are computed client-side at submission and not recomputed
// from the lines afterward.
type Order struct {
	ID              uuid.UUID           `json:"id"`
	Items           []CartLine          `json:"items"`
	TotalAmount     float64             `json:"totalAmount"`
	TotalItems      int                 `json:"totalItems"`
	UserID          uuid.UUID           `json:"user"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	SelectedAddress Address             `json:"selectedAddress"`
	Status          enums.OrderStatus   `json:"status"`
	CreatedAt       time.Time           `json:"createdAt,omitempty"`
}

// OrderPage is the admin order listing envelope returned by the remote API.
type OrderPage struct {
	Data  []Order `json:"data"`
	Items int     `json:"items"`
}
