package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

var errDuplicateOrderNumber = errors.New("order number already exists")

// MemoryRepository is a mutex-guarded Repository used by tests and
// database-less runs. It enforces order-number uniqueness like the
// UNIQUE constraint in the Postgres schema.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*Order
	numbers map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]*Order),
		numbers: make(map[string]struct{}),
	}
}

func (r *MemoryRepository) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.numbers[o.OrderNumber]; exists {
		return errDuplicateOrderNumber
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	for i := range o.Items {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		o.Items[i].ID = id
		o.Items[i].OrderID = o.ID
		o.Items[i].CreatedAt = now
	}

	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	r.byID[o.ID] = &cp
	r.numbers[o.OrderNumber] = struct{}{}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, orderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	delete(r.numbers, o.OrderNumber)
	delete(r.byID, orderID)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, orderID uuid.UUID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp, nil
}

func (r *MemoryRepository) ListForUser(_ context.Context, userID uuid.UUID) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := make([]Order, 0)
	for _, o := range r.byID {
		if o.UserID != userID {
			continue
		}
		cp := *o
		cp.Items = append([]Item(nil), o.Items...)
		orders = append(orders, cp)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, orderID uuid.UUID, newStatus Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	return nil
}
