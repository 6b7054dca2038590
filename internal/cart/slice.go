// Package cart holds the cart slice and its derived totals. The line list
// always mirrors the last successful remote response; totals are recomputed
// from it on every read and never stored.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/luminacart/storefront/pkg/enums"
	pkgerrors "github.com/luminacart/storefront/pkg/errors"
	"github.com/luminacart/storefront/pkg/logger"
	"github.com/luminacart/storefront/pkg/types"
)

// Quantity bounds exposed by the storefront quantity picker.
const (
	MinLineQuantity = 1
	MaxLineQuantity = 5
)

// Basket is the remote API surface this slice consumes.
type Basket interface {
	FetchCart(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error)
	AddToCart(ctx context.Context, line types.CartLine) (*types.CartLine, error)
	UpdateCartLine(ctx context.Context, id uuid.UUID, quantity int) (*types.CartLine, error)
	DeleteCartLine(ctx context.Context, id uuid.UUID) error
}

// State is the cart slice record. Loaded distinguishes "empty and
// confirmed" from "not yet fetched": the empty-cart redirect must never
// fire off a cart that is merely still loading.
type State struct {
	Lines  []types.CartLine
	Loaded bool
	Status enums.RequestStatus
	Err    error
}

type action interface{ isAction() }

type opStarted struct{}
type fetchSucceeded struct{ lines []types.CartLine }
type lineAdded struct{ line types.CartLine }
type lineUpdated struct{ line types.CartLine }
type lineRemoved struct{ id uuid.UUID }
type cartCleared struct{}
type opFailed struct{ err error }

func (opStarted) isAction()      {}
func (fetchSucceeded) isAction() {}
func (lineAdded) isAction()      {}
func (lineUpdated) isAction()    {}
func (lineRemoved) isAction()    {}
func (cartCleared) isAction()    {}
func (opFailed) isAction()       {}

func reduce(state State, act action) State {
	switch a := act.(type) {
	case opStarted:
		state.Status = enums.RequestStatusLoading
	case fetchSucceeded:
		state.Status = enums.RequestStatusIdle
		state.Lines = a.lines
		state.Loaded = true
		state.Err = nil
	case lineAdded:
		state.Status = enums.RequestStatusIdle
		state.Lines = append(append([]types.CartLine(nil), state.Lines...), a.line)
		state.Err = nil
	case lineUpdated:
		state.Status = enums.RequestStatusIdle
		lines := append([]types.CartLine(nil), state.Lines...)
		for i := range lines {
			if lines[i].ID == a.line.ID {
				lines[i] = a.line
				break
			}
		}
		state.Lines = lines
		state.Err = nil
	case lineRemoved:
		state.Status = enums.RequestStatusIdle
		lines := make([]types.CartLine, 0, len(state.Lines))
		for _, line := range state.Lines {
			if line.ID != a.id {
				lines = append(lines, line)
			}
		}
		state.Lines = lines
		state.Err = nil
	case cartCleared:
		state.Status = enums.RequestStatusIdle
		state.Lines = nil
		state.Loaded = true
		state.Err = nil
	case opFailed:
		state.Status = enums.RequestStatusIdle
		state.Err = a.err
	}
	return state
}

// Slice owns the cart state.
type Slice struct {
	client Basket
	log    *logger.Logger

	mu        sync.Mutex
	state     State
	listeners []func()
}

// NewSlice builds the cart slice.
func NewSlice(client Basket, log *logger.Logger) *Slice {
	return &Slice{
		client: client,
		log:    log,
		state:  State{Status: enums.RequestStatusIdle},
	}
}

// State returns a snapshot of the current slice state.
func (s *Slice) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a listener invoked after every applied action.
func (s *Slice) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Slice) dispatch(act action) {
	s.mu.Lock()
	s.state = reduce(s.state, act)
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Fetch mirrors the user's cart from the remote API.
func (s *Slice) Fetch(ctx context.Context, userID uuid.UUID) error {
	ctx = s.log.WithOperation(ctx, "cart/fetch")
	s.dispatch(opStarted{})

	lines, err := s.client.FetchCart(ctx, userID)
	if err != nil {
		s.log.Error(ctx, "cart fetch failed", err)
		s.dispatch(opFailed{err: err})
		return err
	}
	s.dispatch(fetchSucceeded{lines: lines})
	return nil
}

// Add creates a cart line for the product.
func (s *Slice) Add(ctx context.Context, line types.CartLine) error {
	if line.Quantity == 0 {
		line.Quantity = MinLineQuantity
	}
	if err := validateQuantity(line.Quantity); err != nil {
		return err
	}
	ctx = s.log.WithOperation(ctx, "cart/add")
	s.dispatch(opStarted{})

	created, err := s.client.AddToCart(ctx, line)
	if err != nil {
		s.log.Error(ctx, "cart add failed", err)
		s.dispatch(opFailed{err: err})
		return err
	}
	s.dispatch(lineAdded{line: *created})
	return nil
}

// UpdateQuantity changes the quantity on a line. Out-of-bounds quantities
// are rejected locally before any network call.
func (s *Slice) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	ctx = s.log.WithOperation(ctx, "cart/update")
	s.dispatch(opStarted{})

	updated, err := s.client.UpdateCartLine(ctx, id, quantity)
	if err != nil {
		s.log.Error(ctx, "cart update failed", err)
		s.dispatch(opFailed{err: err})
		return err
	}
	s.dispatch(lineUpdated{line: *updated})
	return nil
}

// Remove deletes a line from the cart.
func (s *Slice) Remove(ctx context.Context, id uuid.UUID) error {
	ctx = s.log.WithOperation(ctx, "cart/remove")
	s.dispatch(opStarted{})

	if err := s.client.DeleteCartLine(ctx, id); err != nil {
		s.log.Error(ctx, "cart remove failed", err)
		s.dispatch(opFailed{err: err})
		return err
	}
	s.dispatch(lineRemoved{id: id})
	return nil
}

// Reset deletes every line, one delete per line the way the storefront
// clears a converted cart. The first failing delete aborts and surfaces.
func (s *Slice) Reset(ctx context.Context) error {
	ctx = s.log.WithOperation(ctx, "cart/reset")
	lines := s.State().Lines
	s.dispatch(opStarted{})

	for _, line := range lines {
		if err := s.client.DeleteCartLine(ctx, line.ID); err != nil {
			s.log.Error(ctx, "cart reset failed", err)
			s.dispatch(opFailed{err: err})
			return err
		}
		s.dispatch(lineRemoved{id: line.ID})
	}
	s.dispatch(cartCleared{})
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < MinLineQuantity || quantity > MaxLineQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be between %d and %d", MinLineQuantity, MaxLineQuantity))
	}
	return nil
}
