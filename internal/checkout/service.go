// Package checkout assembles an order from the cart and places it. It is
// the only writer that touches both the cart and order slices.
package checkout

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/luminacart/storefront/internal/cart"
	"github.com/luminacart/storefront/pkg/enums"
	pkgerrors "github.com/luminacart/storefront/pkg/errors"
	"github.com/luminacart/storefront/pkg/logger"
	"github.com/luminacart/storefront/pkg/types"
)

// Basket is the cart surface checkout reads and clears.
type Basket interface {
	State() cart.State
	Lines() []types.CartLine
	TotalAmount() float64
	TotalItems() int
	Reset(ctx context.Context) error
}

// Placer submits the assembled order.
type Placer interface {
	Create(ctx context.Context, order types.Order) (*types.Order, error)
}

// Input is what the checkout form submits. Everything else on the order is
// derived from the cart at placement time.
type Input struct {
	UserID        uuid.UUID           `validate:"required"`
	PaymentMethod enums.PaymentMethod `validate:"required"`
	Address       *types.Address      `validate:"required"`
}

// Service coordinates order placement.
type Service struct {
	cart     Basket
	orders   Placer
	validate *validator.Validate
	log      *logger.Logger
}

// NewService builds the checkout coordinator.
func NewService(basket Basket, orders Placer, log *logger.Logger) *Service {
	return &Service{
		cart:     basket,
		orders:   orders,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// PlaceOrder validates the checkout input against the cart, assembles the
// order payload, and submits it. Every rejection is reported at once rather
// than one field at a time. After a successful placement the cart is
// cleared; a failed clear is logged but does not undo the order.
func (s *Service) PlaceOrder(ctx context.Context, input Input) (*types.Order, error) {
	ctx = s.log.WithOperation(ctx, "checkout/place")

	if err := s.reject(input); err != nil {
		return nil, err
	}

	lines := s.cart.Lines()
	order := types.Order{
		Items:           lines,
		TotalAmount:     s.cart.TotalAmount(),
		TotalItems:      s.cart.TotalItems(),
		UserID:          input.UserID,
		PaymentMethod:   input.PaymentMethod,
		SelectedAddress: input.Address.Clone(),
		Status:          enums.OrderStatusPending,
	}

	placed, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	if err := s.cart.Reset(ctx); err != nil {
		s.log.Error(ctx, "cart clear after checkout failed", err)
	}
	return placed, nil
}

func (s *Service) reject(input Input) error {
	var errs error
	if err := s.validate.Struct(input); err != nil {
		errs = multierr.Append(errs, err)
	}
	if input.PaymentMethod != "" && !input.PaymentMethod.IsValid() {
		errs = multierr.Append(errs, fmt.Errorf("unknown payment method %q", input.PaymentMethod))
	}

	state := s.cart.State()
	switch {
	case !state.Loaded:
		errs = multierr.Append(errs, fmt.Errorf("cart has not been loaded"))
	case len(state.Lines) == 0:
		errs = multierr.Append(errs, fmt.Errorf("cart is empty"))
	}

	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "checkout rejected")
	}
	return nil
}
