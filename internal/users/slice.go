// Package users holds the profile slice: the signed-in user's full record
// (address book included) and their order history.
package users

import (
	"context"
	"fmt"
	"sync"

	"github.com/luminacart/storefront/pkg/enums"
	pkgerrors "github.com/luminacart/storefront/pkg/errors"
	"github.com/luminacart/storefront/pkg/logger"
	"github.com/luminacart/storefront/pkg/types"
)

// Directory is the remote API surface this slice consumes.
type Directory interface {
	FetchProfile(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, user types.User) (*types.User, error)
	FetchUserOrders(ctx context.Context) ([]types.Order, error)
}

// State is the profile slice record.
type State struct {
	Profile *types.User
	Orders  []types.Order
	Status  enums.RequestStatus
	Err     error
}

type action interface{ isAction() }

type opStarted struct{}
type profileLoaded struct{ user types.User }
type ordersLoaded struct{ orders []types.Order }
type opFailed struct{ err error }

func (opStarted) isAction()     {}
func (profileLoaded) isAction() {}
func (ordersLoaded) isAction()  {}
func (opFailed) isAction()      {}

func reduce(state State, act action) State {
	switch a := act.(type) {
	case opStarted:
		state.Status = enums.RequestStatusLoading
	case profileLoaded:
		state.Status = enums.RequestStatusIdle
		user := a.user
		state.Profile = &user
		state.Err = nil
	case ordersLoaded:
		state.Status = enums.RequestStatusIdle
		state.Orders = a.orders
		state.Err = nil
	case opFailed:
		state.Status = enums.RequestStatusIdle
		state.Err = a.err
	}
	return state
}

// Slice owns the profile state.
type Slice struct {
	client Directory
	log    *logger.Logger

	mu        sync.Mutex
	state     State
	listeners []func()
}

// NewSlice builds the profile slice.
func NewSlice(client Directory, log *logger.Logger) *Slice {
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

// Profile returns the current user record, nil before the first load.
func (s *Slice) Profile() *types.User {
	return s.State().Profile
}

// Fetch loads the signed-in user's record.
func (s *Slice) Fetch(ctx context.Context) error {
	ctx = s.log.WithOperation(ctx, "users/fetch")
	s.dispatch(opStarted{})

	user, err := s.client.FetchProfile(ctx)
	if err != nil {
		s.log.Error(ctx, "profile fetch failed", err)
		s.dispatch(opFailed{err: err})
		return err
	}
	s.dispatch(profileLoaded{user: *user})
	return nil
}

// Update replaces the user record. The server response is authoritative.
func (s *Slice) Update(ctx context.Context, user types.User) error {
	ctx = s.log.WithOperation(ctx, "users/update")
	s.dispatch(opStarted{})

	updated, err := s.client.UpdateProfile(ctx, user)
	if err != nil {
		s.log.Error(ctx, "profile update failed", err)
		s.dispatch(opFailed{err: err})
		return err
	}
	s.dispatch(profileLoaded{user: *updated})
	return nil
}

// AddAddress appends an address to the user's book and persists the record.
func (s *Slice) AddAddress(ctx context.Context, address types.Address) error {
	profile := s.Profile()
	if profile == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile not loaded")
	}
	user := *profile
	user.Addresses = append(append([]types.Address(nil), user.Addresses...), address)
	return s.Update(ctx, user)
}

// RemoveAddress drops the address at the given index and persists the
// record. Past orders keep their own copies.
func (s *Slice) RemoveAddress(ctx context.Context, index int) error {
	profile := s.Profile()
	if profile == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile not loaded")
	}
	if index < 0 || index >= len(profile.Addresses) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no address at index %d", index))
	}
	user := *profile
	addresses := append([]types.Address(nil), user.Addresses...)
	user.Addresses = append(addresses[:index], addresses[index+1:]...)
	return s.Update(ctx, user)
}

// FetchOrders loads the user's order history.
func (s *Slice) FetchOrders(ctx context.Context) error {
	ctx = s.log.WithOperation(ctx, "users/orders")
	s.dispatch(opStarted{})

	orders, err := s.client.FetchUserOrders(ctx)
	if err != nil {
		s.log.Error(ctx, "order history fetch failed", err)
		s.dispatch(opFailed{err: err})
		return err
	}
	s.dispatch(ordersLoaded{orders: orders})
	return nil
}
