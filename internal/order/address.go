package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAddressNotFound = errors.New("address not found")

// Address is a user-owned shipping/billing address. The order stores a
// text snapshot of it, immune to later edits of the source record.
type Address struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Recipient  string    `json:"recipient" db:"recipient"`
	Line1      string    `json:"line1" db:"line1"`
	Line2      string    `json:"line2,omitempty" db:"line2"`
	City       string    `json:"city" db:"city"`
	PostalCode string    `json:"postal_code" db:"postal_code"`
	Country    string    `json:"country" db:"country"`
}

// Snapshot flattens the address into the immutable text stored on orders.
func (a Address) Snapshot() string {
	parts := []string{a.Recipient, a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, a.City, a.PostalCode, a.Country)
	return strings.Join(parts, ", ")
}

// AddressStore resolves addresses with ownership enforced: an address that
// exists but belongs to another user is reported as not found.
type AddressStore interface {
	GetForUser(ctx context.Context, addressID, userID uuid.UUID) (*Address, error)
}

type postgresAddressStore struct {
	db *pgxpool.Pool
}

func NewPostgresAddressStore(db *pgxpool.Pool) AddressStore {
	return &postgresAddressStore{db: db}
}

func (s *postgresAddressStore) GetForUser(ctx context.Context, addressID, userID uuid.UUID) (*Address, error) {
	query := `
		SELECT id, user_id, recipient, line1, line2, city, postal_code, country
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`

	var a Address
	err := s.db.QueryRow(ctx, query, addressID, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.Recipient,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.PostalCode,
		&a.Country,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("repository: failed to select address %s: %w", addressID, err)
	}

	return &a, nil
}

// MemoryAddressStore - in-memory реализация для тестов и dev-запуска.
type MemoryAddressStore struct {
	mu sync.Mutex
	m  map[uuid.UUID]*Address
}

func NewMemoryAddressStore() *MemoryAddressStore {
	return &MemoryAddressStore{m: make(map[uuid.UUID]*Address)}
}

func (s *MemoryAddressStore) Put(a *Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.m[a.ID] = &cp
}

func (s *MemoryAddressStore) GetForUser(_ context.Context, addressID, userID uuid.UUID) (*Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.m[addressID]
	if !ok || a.UserID != userID {
		return nil, ErrAddressNotFound
	}
	cp := *a
	return &cp, nil
}
