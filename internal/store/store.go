// Package store is the composition root: one API client shared by every
// slice, plus the checkout coordinator that spans two of them.
package store

import (
	"fmt"

	"github.com/luminacart/storefront/internal/api"
	"github.com/luminacart/storefront/internal/cart"
	"github.com/luminacart/storefront/internal/checkout"
	"github.com/luminacart/storefront/internal/orders"
	"github.com/luminacart/storefront/internal/products"
	"github.com/luminacart/storefront/internal/session"
	"github.com/luminacart/storefront/internal/users"
	"github.com/luminacart/storefront/pkg/logger"
)

// Store bundles the state slices behind a single handle. Slices are
// independent; only checkout coordinates across them.
type Store struct {
	Products *products.Slice
	Cart     *cart.Slice
	Orders   *orders.Slice
	Session  *session.Slice
	Users    *users.Slice
	Checkout *checkout.Service
}

// New wires every slice to the shared API client. The session slice also
// receives the client as its token sink so a login installs the bearer
// token for all subsequent calls.
func New(client *api.Client, log *logger.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("api client required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	cartSlice := cart.NewSlice(client, log)
	orderSlice := orders.NewSlice(client, log)

	return &Store{
		Products: products.NewSlice(client, log),
		Cart:     cartSlice,
		Orders:   orderSlice,
		Session:  session.NewSlice(client, client, log),
		Users:    users.NewSlice(client, log),
		Checkout: checkout.NewService(cartSlice, orderSlice, log),
	}, nil
}

// Subscribe registers a listener on every slice.
func (s *Store) Subscribe(fn func()) {
	s.Products.Subscribe(fn)
	s.Cart.Subscribe(fn)
	s.Orders.Subscribe(fn)
	s.Session.Subscribe(fn)
	s.Users.Subscribe(fn)
}
