// Package orders holds the order slice: the admin listing, the order most
// recently placed, and the status-update path.
package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/luminacart/storefront/pkg/enums"
	pkgerrors "github.com/luminacart/storefront/pkg/errors"
	"github.com/luminacart/storefront/pkg/logger"
	"github.com/luminacart/storefront/pkg/query"
	"github.com/luminacart/storefront/pkg/types"
)

// Ledger is the remote API surface this slice consumes.
type Ledger interface {
	CreateOrder(ctx context.Context, order types.Order) (*types.Order, error)
	UpdateOrder(ctx context.Context, order types.Order) (*types.Order, error)
	FetchAllOrders(ctx context.Context, sort query.Sort, page query.Pagination) (*types.OrderPage, error)
}

// State is the order slice record. Current holds the order placed by the
// latest successful checkout and keys the confirmation view; it is cleared
// once the confirmation has been consumed.
type State struct {
	Orders      []types.Order
	TotalOrders int
	Current     *types.Order
	Status      enums.RequestStatus
	Err         error

	listGen uint64
}

type action interface{ isAction() }

type opStarted struct{}
type listStarted struct{ gen uint64 }
type listSucceeded struct {
	gen  uint64
	page types.OrderPage
}
type listFailed struct {
	gen uint64
	err error
}
type createSucceeded struct{ order types.Order }
type updateSucceeded struct{ order types.Order }
type opFailed struct{ err error }
type currentReset struct{}

func (opStarted) isAction()       {}
func (listStarted) isAction()     {}
func (listSucceeded) isAction()   {}
func (listFailed) isAction()      {}
func (createSucceeded) isAction() {}
func (updateSucceeded) isAction() {}
func (opFailed) isAction()        {}
func (currentReset) isAction()    {}

func reduce(state State, act action) State {
	switch a := act.(type) {
	case opStarted:
		state.Status = enums.RequestStatusLoading
	case listStarted:
		state.Status = enums.RequestStatusLoading
		state.listGen = a.gen
	case listSucceeded:
		if a.gen != state.listGen {
			return state
		}
		state.Status = enums.RequestStatusIdle
		state.Orders = a.page.Data
		state.TotalOrders = a.page.Items
		state.Err = nil
	case listFailed:
		if a.gen != state.listGen {
			return state
		}
		state.Status = enums.RequestStatusIdle
		state.Err = a.err
	case createSucceeded:
		state.Status = enums.RequestStatusIdle
		state.Orders = append(append([]types.Order(nil), state.Orders...), a.order)
		order := a.order
		state.Current = &order
		state.Err = nil
	case updateSucceeded:
		state.Status = enums.RequestStatusIdle
		orders := append([]types.Order(nil), state.Orders...)
		for i := range orders {
			if orders[i].ID == a.order.ID {
				orders[i] = a.order
				break
			}
		}
		state.Orders = orders
		state.Err = nil
	case opFailed:
		state.Status = enums.RequestStatusIdle
		state.Err = a.err
	case currentReset:
		state.Current = nil
	}
	return state
}

// Slice owns the order state.
type Slice struct {
	client Ledger
	log    *logger.Logger

	mu        sync.Mutex
	state     State
	nextGen   uint64
	listeners []func()
}

// NewSlice builds the order slice.
func NewSlice(client Ledger, log *logger.Logger) *Slice {
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

func (s *Slice) issueGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGen++
	return s.nextGen
}

// Create submits an assembled checkout payload. The persisted order, with
// its server-assigned identity, becomes the current order.
func (s *Slice) Create(ctx context.Context, order types.Order) (*types.Order, error) {
	ctx = s.log.WithOperation(ctx, "orders/create")
	s.dispatch(opStarted{})

	created, err := s.client.CreateOrder(ctx, order)
	if err != nil {
		s.log.Error(ctx, "order create failed", err)
		s.dispatch(opFailed{err: err})
		return nil, err
	}
	s.dispatch(createSucceeded{order: *created})
	return created, nil
}

// UpdateStatus moves an order along the status graph (admin). A transition
// the graph disallows is rejected locally before any network call. The
// write submits the full order object; the server's response is what lands
// in the slice.
func (s *Slice) UpdateStatus(ctx context.Context, order types.Order, next enums.OrderStatus) (*types.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", next))
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", order.Status, next))
	}

	ctx = s.log.WithOperation(ctx, "orders/update")
	s.dispatch(opStarted{})

	order.Status = next
	updated, err := s.client.UpdateOrder(ctx, order)
	if err != nil {
		s.log.Error(ctx, "order update failed", err)
		s.dispatch(opFailed{err: err})
		return nil, err
	}
	s.dispatch(updateSucceeded{order: *updated})
	return updated, nil
}

// FetchAll loads an admin order page. Stale responses are discarded.
func (s *Slice) FetchAll(ctx context.Context, sort query.Sort, page query.Pagination) error {
	ctx = s.log.WithOperation(ctx, "orders/list")
	gen := s.issueGen()
	s.dispatch(listStarted{gen: gen})

	out, err := s.client.FetchAllOrders(ctx, sort, page)
	if err != nil {
		s.log.Error(ctx, "order listing fetch failed", err)
		s.dispatch(listFailed{gen: gen, err: err})
		return err
	}
	s.dispatch(listSucceeded{gen: gen, page: *out})
	return nil
}

// ResetCurrent clears the confirmation slot after the view consumed it.
func (s *Slice) ResetCurrent() {
	s.dispatch(currentReset{})
}
