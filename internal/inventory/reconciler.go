package inventory

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// Demand is one ordered line to subtract from stock.
type Demand struct {
	ProductID uuid.UUID
	Quantity  int
}

// Reconciler applies order demands to stock and classifies the result.
type Reconciler struct {
	store        Store
	lowThreshold int
}

func NewReconciler(store Store, lowThreshold int) *Reconciler {
	if lowThreshold <= 0 {
		lowThreshold = DefaultLowStockThreshold
	}
	return &Reconciler{store: store, lowThreshold: lowThreshold}
}

// ApplyOrder decrements stock per demand. On failure it returns the
// already-applied prefix so the caller can run Compensate; the failed
// demand itself changed nothing.
func (r *Reconciler) ApplyOrder(ctx context.Context, demands []Demand) (applied []Demand, events []StockEvent, err error) {
	for _, d := range demands {
		remaining, decErr := r.store.DecrementStock(ctx, d.ProductID, d.Quantity)
		if decErr != nil {
			return applied, nil, fmt.Errorf("reconciler: product %s: %w", d.ProductID, decErr)
		}
		applied = append(applied, d)

		level := ClassifyStock(remaining, r.lowThreshold)
		if level == StockOK {
			continue
		}
		name := ""
		if p, getErr := r.store.GetByID(ctx, d.ProductID); getErr == nil {
			name = p.Name
		}
		events = append(events, StockEvent{
			ProductID:   d.ProductID,
			ProductName: name,
			Level:       level,
			Remaining:   remaining,
		})
	}
	return applied, events, nil
}

// Compensate возвращает на склад уже списанные позиции (в обратном порядке).
// Ошибки логируются и не прерывают остальные возвраты.
func (r *Reconciler) Compensate(ctx context.Context, applied []Demand) {
	for i := len(applied) - 1; i >= 0; i-- {
		d := applied[i]
		if err := r.store.RestoreStock(ctx, d.ProductID, d.Quantity); err != nil {
			log.Error().Err(err).
				Stringer("product_id", d.ProductID).
				Int("quantity", d.Quantity).
				Msg("reconciler: failed to restore stock during compensation")
		}
	}
}
