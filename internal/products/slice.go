// Package products holds the catalog slice: the last-fetched product page,
// the selected product, and the admin write operations.
package products

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/luminacart/storefront/pkg/enums"
	"github.com/luminacart/storefront/pkg/logger"
	"github.com/luminacart/storefront/pkg/query"
	"github.com/luminacart/storefront/pkg/types"
)

// Catalog is the remote API surface this slice consumes.
type Catalog interface {
	FetchProducts(ctx context.Context, desc query.Descriptor) (*types.ProductPage, error)
	FetchProductByID(ctx context.Context, id uuid.UUID) (*types.Product, error)
	CreateProduct(ctx context.Context, product types.Product) (*types.Product, error)
	UpdateProduct(ctx context.Context, product types.Product) (*types.Product, error)
}

// State is the catalog slice record. Data is replaced wholesale on every
// successful list fetch; a failed fetch keeps the previous data.
type State struct {
	Items      []types.Product
	TotalItems int
	Selected   *types.Product
	Status     enums.RequestStatus
	Err        error

	// listGen is the generation of the latest issued list fetch. Responses
	// from older generations are discarded so an out-of-order resolution
	// can never overwrite a newer result set.
	listGen uint64
}

type action interface{ isAction() }

type listStarted struct{ gen uint64 }
type listSucceeded struct {
	gen  uint64
	page types.ProductPage
}
type listFailed struct {
	gen uint64
	err error
}
type detailStarted struct{}
type detailSucceeded struct{ product types.Product }
type detailFailed struct{ err error }
type writeStarted struct{}
type createSucceeded struct{ product types.Product }
type updateSucceeded struct{ product types.Product }
type writeFailed struct{ err error }

func (listStarted) isAction()     {}
func (listSucceeded) isAction()   {}
func (listFailed) isAction()      {}
func (detailStarted) isAction()   {}
func (detailSucceeded) isAction() {}
func (detailFailed) isAction()    {}
func (writeStarted) isAction()    {}
func (createSucceeded) isAction() {}
func (updateSucceeded) isAction() {}
func (writeFailed) isAction()     {}

func reduce(state State, act action) State {
	switch a := act.(type) {
	case listStarted:
		state.Status = enums.RequestStatusLoading
		state.listGen = a.gen
	case listSucceeded:
		if a.gen != state.listGen {
			return state
		}
		state.Status = enums.RequestStatusIdle
		state.Items = a.page.Data
		state.TotalItems = a.page.TotalItems
		state.Err = nil
	case listFailed:
		if a.gen != state.listGen {
			return state
		}
		state.Status = enums.RequestStatusIdle
		state.Err = a.err
	case detailStarted:
		state.Status = enums.RequestStatusLoading
	case detailSucceeded:
		state.Status = enums.RequestStatusIdle
		product := a.product
		state.Selected = &product
		state.Err = nil
	case detailFailed:
		state.Status = enums.RequestStatusIdle
		state.Err = a.err
	case writeStarted:
		state.Status = enums.RequestStatusLoading
	case createSucceeded:
		state.Status = enums.RequestStatusIdle
		state.Items = append(append([]types.Product(nil), state.Items...), a.product)
		state.Err = nil
	case updateSucceeded:
		state.Status = enums.RequestStatusIdle
		items := append([]types.Product(nil), state.Items...)
		for i := range items {
			if items[i].ID == a.product.ID {
				items[i] = a.product
				break
			}
		}
		state.Items = items
		if state.Selected != nil && state.Selected.ID == a.product.ID {
			product := a.product
			state.Selected = &product
		}
		state.Err = nil
	case writeFailed:
		state.Status = enums.RequestStatusIdle
		state.Err = a.err
	}
	return state
}

// Slice owns the catalog state. All mutations flow through the reducer
// under one lock, the in-process analog of a single-threaded event loop.
type Slice struct {
	client Catalog
	log    *logger.Logger

	mu        sync.Mutex
	state     State
	nextGen   uint64
	listeners []func()
}

// NewSlice builds the catalog slice.
func NewSlice(client Catalog, log *logger.Logger) *Slice {
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

// FetchByFilters loads a catalog page for the descriptor. A response that
// resolves after a newer fetch was issued is dropped.
func (s *Slice) FetchByFilters(ctx context.Context, desc query.Descriptor) error {
	ctx = s.log.WithOperation(ctx, "products/fetch")
	gen := s.issueGen()
	s.dispatch(listStarted{gen: gen})

	page, err := s.client.FetchProducts(ctx, desc)
	if err != nil {
		s.log.Error(ctx, "product listing fetch failed", err)
		s.dispatch(listFailed{gen: gen, err: err})
		return err
	}
	s.dispatch(listSucceeded{gen: gen, page: *page})
	return nil
}

// FetchByID loads one product into the selected slot.
func (s *Slice) FetchByID(ctx context.Context, id uuid.UUID) error {
	ctx = s.log.WithOperation(ctx, "products/detail")
	s.dispatch(detailStarted{})

	product, err := s.client.FetchProductByID(ctx, id)
	if err != nil {
		s.log.Error(ctx, "product detail fetch failed", err)
		s.dispatch(detailFailed{err: err})
		return err
	}
	s.dispatch(detailSucceeded{product: *product})
	return nil
}

// Create registers a new product (admin).
func (s *Slice) Create(ctx context.Context, product types.Product) (*types.Product, error) {
	ctx = s.log.WithOperation(ctx, "products/create")
	s.dispatch(writeStarted{})

	created, err := s.client.CreateProduct(ctx, product)
	if err != nil {
		s.log.Error(ctx, "product create failed", err)
		s.dispatch(writeFailed{err: err})
		return nil, err
	}
	s.dispatch(createSucceeded{product: *created})
	return created, nil
}

// Update replaces a product (admin). The server response, not the local
// argument, is what lands in the slice.
func (s *Slice) Update(ctx context.Context, product types.Product) (*types.Product, error) {
	ctx = s.log.WithOperation(ctx, "products/update")
	s.dispatch(writeStarted{})

	updated, err := s.client.UpdateProduct(ctx, product)
	if err != nil {
		s.log.Error(ctx, "product update failed", err)
		s.dispatch(writeFailed{err: err})
		return nil, err
	}
	s.dispatch(updateSucceeded{product: *updated})
	return updated, nil
}

// SoftDelete marks the product deleted via the admin update path. The
// record stays in the remote catalog and the local slice.
func (s *Slice) SoftDelete(ctx context.Context, product types.Product) (*types.Product, error) {
	product.Deleted = true
	return s.Update(ctx, product)
}
