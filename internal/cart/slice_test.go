package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/luminacart/storefront/pkg/enums"
	pkgerrors "github.com/luminacart/storefront/pkg/errors"
	"github.com/luminacart/storefront/pkg/logger"
	"github.com/luminacart/storefront/pkg/types"
)

type stubBasket struct {
	lines     []types.CartLine
	fetchErr  error
	updateErr error
	deleteErr error
	deleted   []uuid.UUID
	updates   int
}

func (s *stubBasket) FetchCart(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.lines, nil
}

func (s *stubBasket) AddToCart(ctx context.Context, line types.CartLine) (*types.CartLine, error) {
	line.ID = uuid.New()
	return &line, nil
}

func (s *stubBasket) UpdateCartLine(ctx context.Context, id uuid.UUID, quantity int) (*types.CartLine, error) {
	s.updates++
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &types.CartLine{ID: id, Quantity: quantity}, nil
}

func (s *stubBasket) DeleteCartLine(ctx context.Context, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func sampleLines() []types.CartLine {
	return []types.CartLine{
		{ID: uuid.New(), Product: types.Product{Price: 100, DiscountPercentage: 0}, Quantity: 2},
		{ID: uuid.New(), Product: types.Product{Price: 50, DiscountPercentage: 50}, Quantity: 1},
	}
}

func TestCartTotals(t *testing.T) {
	lines := sampleLines()
	if got := TotalAmount(lines); got != 225 {
		t.Fatalf("expected totalAmount 225, got %v", got)
	}
	if got := TotalItems(lines); got != 3 {
		t.Fatalf("expected totalItems 3, got %d", got)
	}
}

func TestCartTotalsEmpty(t *testing.T) {
	if got := TotalAmount(nil); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := TotalItems(nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestCartTotalsRoundPerLineThenSum(t *testing.T) {
	// Each line rounds to cents before summing: 3 x 17.99, not
	// round2(3 x 17.991).
	lines := []types.CartLine{
		{Product: types.Product{Price: 19.99, DiscountPercentage: 10}, Quantity: 3},
	}
	if got := TotalAmount(lines); got != 53.97 {
		t.Fatalf("expected 53.97, got %v", got)
	}
}

func TestEmptyConfirmedOnlyAfterFirstLoad(t *testing.T) {
	slice := NewSlice(&stubBasket{}, testLogger())

	if slice.EmptyConfirmed() {
		t.Fatal("must not confirm empty before the first load")
	}

	slice.dispatch(opStarted{})
	if slice.EmptyConfirmed() {
		t.Fatal("must not confirm empty while loading")
	}

	slice.dispatch(fetchSucceeded{lines: nil})
	if !slice.EmptyConfirmed() {
		t.Fatal("expected empty confirmed after loading zero lines")
	}
}

func TestEmptyConfirmedFalseWithLines(t *testing.T) {
	slice := NewSlice(&stubBasket{lines: sampleLines()}, testLogger())
	if err := slice.Fetch(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slice.EmptyConfirmed() {
		t.Fatal("cart with lines must not report empty")
	}
}

func TestFetchFailureRetainsLines(t *testing.T) {
	basket := &stubBasket{lines: sampleLines()}
	slice := NewSlice(basket, testLogger())
	if err := slice.Fetch(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	basket.fetchErr = errors.New("api down")
	if err := slice.Fetch(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected fetch error")
	}

	state := slice.State()
	if len(state.Lines) != 2 {
		t.Fatalf("previous lines must survive a failed fetch, got %d", len(state.Lines))
	}
	if state.Err == nil || state.Status != enums.RequestStatusIdle {
		t.Fatalf("expected recorded error and idle status, got %+v", state)
	}
}

func TestUpdateQuantityBounds(t *testing.T) {
	basket := &stubBasket{}
	slice := NewSlice(basket, testLogger())

	for _, quantity := range []int{0, -1, 6, 100} {
		err := slice.UpdateQuantity(context.Background(), uuid.New(), quantity)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("quantity %d: expected validation error, got %v", quantity, err)
		}
	}
	if basket.updates != 0 {
		t.Fatalf("out-of-bounds quantities must not reach the network, got %d calls", basket.updates)
	}

	if err := slice.UpdateQuantity(context.Background(), uuid.New(), 5); err != nil {
		t.Fatalf("quantity 5 must be accepted: %v", err)
	}
}

func TestRemoveDropsLine(t *testing.T) {
	lines := sampleLines()
	slice := NewSlice(&stubBasket{lines: lines}, testLogger())
	if err := slice.Fetch(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := slice.Remove(context.Background(), lines[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state := slice.State()
	if len(state.Lines) != 1 || state.Lines[0].ID != lines[1].ID {
		t.Fatalf("expected first line removed, got %+v", state.Lines)
	}
}

func TestResetDeletesEveryLine(t *testing.T) {
	lines := sampleLines()
	basket := &stubBasket{lines: lines}
	slice := NewSlice(basket, testLogger())
	if err := slice.Fetch(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := slice.Reset(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(basket.deleted) != 2 {
		t.Fatalf("expected one delete per line, got %d", len(basket.deleted))
	}
	if got := slice.State().Lines; len(got) != 0 {
		t.Fatalf("expected empty cart after reset, got %+v", got)
	}
	if !slice.EmptyConfirmed() {
		t.Fatal("reset cart must report empty confirmed")
	}
}
