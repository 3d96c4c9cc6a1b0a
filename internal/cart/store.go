package cart

import (
	"context"
	"sync"
	"time"
)

// Store is a keyed table-cart store. Update runs fn against the current cart
// of a table as one atomic read-modify-write; carts are created lazily.
type Store interface {
	Get(ctx context.Context, tableID string) (TableCart, error)
	Update(ctx context.Context, tableID string, fn func(c *TableCart) error) (TableCart, error)
}

// MemoryStore keeps carts in process memory, one writer at a time.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]*TableCart
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]*TableCart),
		now:   time.Now,
	}
}

func (s *MemoryStore) cart(tableID string) *TableCart {
	c, ok := s.carts[tableID]
	if !ok {
		fresh := newCart(tableID, s.now())
		c = &fresh
		s.carts[tableID] = c
	}
	return c
}

func (s *MemoryStore) Get(_ context.Context, tableID string) (TableCart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart(tableID).Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, tableID string, fn func(c *TableCart) error) (TableCart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.cart(tableID)
	working := current.Clone()
	if err := fn(&working); err != nil {
		return current.Clone(), err
	}
	working.UpdatedAt = s.now()
	*current = working

	return working.Clone(), nil
}
