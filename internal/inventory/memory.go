package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

// MemoryStore keeps products in a mutex-guarded map. DecrementStock holds
// the lock across check and subtract, matching the guarded UPDATE.
type MemoryStore struct {
	mu sync.Mutex
	m  map[uuid.UUID]*Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[uuid.UUID]*Product)}
}

func (s *MemoryStore) Put(p *Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.m[p.ID] = &cp
}

func (s *MemoryStore) GetByID(_ context.Context, productID uuid.UUID) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) DecrementStock(_ context.Context, productID uuid.UUID, qty int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	if p.Stock < qty {
		return 0, ErrInsufficientStock
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	return p.Stock, nil
}

func (s *MemoryStore) RestoreStock(_ context.Context, productID uuid.UUID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[productID]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock += qty
	p.UpdatedAt = time.Now().UTC()
	return nil
}
