package coupon

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// standalone runs without PostgreSQL; Redeem holds the lock across the
// check and the increment, matching the guarded UPDATE semantics.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]*Coupon
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]*Coupon)}
}

func (s *MemoryStore) Put(c *Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.m[c.Code] = &cp
}

func (s *MemoryStore) GetByCode(_ context.Context, code string) (*Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[code]
	if !ok {
		return nil, ErrCouponInvalid
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) Redeem(_ context.Context, code string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[code]
	if !ok {
		return ErrCouponInvalid
	}
	if err := c.Validate(now); err != nil {
		return err
	}
	c.UsedCount++
	return nil
}

func (s *MemoryStore) Release(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[code]
	if !ok {
		return ErrCouponInvalid
	}
	if c.UsedCount > 0 {
		c.UsedCount--
	}
	return nil
}
