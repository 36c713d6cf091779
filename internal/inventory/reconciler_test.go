package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommerce-platform/checkout-service/internal/inventory"
)

func newProduct(t *testing.T, store *inventory.MemoryStore, name string, stock int) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	store.Put(&inventory.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromInt(50),
		Currency: "USD",
		Stock:    stock,
	})
	return id
}

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		want      inventory.StockLevel
	}{
		{"zero_is_out", 0, inventory.StockOut},
		{"at_threshold_is_low", 5, inventory.StockLow},
		{"one_is_low", 1, inventory.StockLow},
		{"above_threshold_is_ok", 6, inventory.StockOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inventory.ClassifyStock(tt.remaining, 5))
		})
	}
}

func TestReconciler_ApplyOrder_Classification(t *testing.T) {
	store := inventory.NewMemoryStore()
	rec := inventory.NewReconciler(store, 5)
	ctx := context.Background()

	// остаток 1 - low, не out
	lowID := newProduct(t, store, "widget", 3)
	_, events, err := rec.ApplyOrder(ctx, []inventory.Demand{{ProductID: lowID, Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, inventory.StockLow, events[0].Level)
	assert.Equal(t, 1, events[0].Remaining)

	// остаток 0 - out, не low
	outID := newProduct(t, store, "gadget", 2)
	_, events, err = rec.ApplyOrder(ctx, []inventory.Demand{{ProductID: outID, Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, inventory.StockOut, events[0].Level)
	assert.Equal(t, 0, events[0].Remaining)
}

func TestReconciler_ApplyOrder_InsufficientStock(t *testing.T) {
	store := inventory.NewMemoryStore()
	rec := inventory.NewReconciler(store, 5)
	ctx := context.Background()

	okID := newProduct(t, store, "widget", 10)
	shortID := newProduct(t, store, "gadget", 1)

	applied, _, err := rec.ApplyOrder(ctx, []inventory.Demand{
		{ProductID: okID, Quantity: 2},
		{ProductID: shortID, Quantity: 5},
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	require.Len(t, applied, 1, "only the first demand was applied")

	rec.Compensate(ctx, applied)

	p, err := store.GetByID(ctx, okID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock, "compensation restored the decrement")

	p, err = store.GetByID(ctx, shortID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock, "failed demand changed nothing")
}

func TestStore_ConcurrentDecrement_NeverNegative(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()

	const initialStock = 5
	id := newProduct(t, store, "widget", initialStock)

	const callers = 12
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.DecrementStock(ctx, id, 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
		}
	}
	assert.Equal(t, initialStock, succeeded)

	p, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.GreaterOrEqual(t, p.Stock, 0)
}
