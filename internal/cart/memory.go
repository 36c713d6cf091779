package cart

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/ecommerce-platform/checkout-service/internal/inventory"
)

type memoryLine struct {
	productID uuid.UUID
	quantity  int
}

// MemoryStore keeps cart lines in memory and joins them with a product
// store at read time, mirroring the SQL join against live prices.
type MemoryStore struct {
	mu       sync.Mutex
	lines    map[uuid.UUID][]memoryLine
	products *inventory.MemoryStore
}

func NewMemoryStore(products *inventory.MemoryStore) *MemoryStore {
	return &MemoryStore{
		lines:    make(map[uuid.UUID][]memoryLine),
		products: products,
	}
}

func (s *MemoryStore) Add(userID, productID uuid.UUID, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[userID] = append(s.lines[userID], memoryLine{productID: productID, quantity: qty})
}

func (s *MemoryStore) LinesForUser(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	s.mu.Lock()
	stored := append([]memoryLine(nil), s.lines[userID]...)
	s.mu.Unlock()

	lines := make([]Line, 0, len(stored))
	for _, ml := range stored {
		p, err := s.products.GetByID(ctx, ml.productID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{
			UserID:      userID,
			ProductID:   ml.productID,
			ProductName: p.Name,
			Quantity:    ml.quantity,
			UnitPrice:   p.Price,
		})
	}
	return lines, nil
}

func (s *MemoryStore) ClearForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines, userID)
	return nil
}
