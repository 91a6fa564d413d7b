package store

import (
	"context"
	"sort"
	"sync"

	"github.com/neuralsearch/backend/internal/domain"
)

// MemoryStore is a thread-safe in-memory tenant index store. Each Put swaps
// the whole index pointer under the lock, so concurrent readers see either
// the previous index or the new one, never a partially written one. Indexes
// must not be mutated after Put.
type MemoryStore struct {
	mu      sync.RWMutex
	indexes map[string]*domain.TenantIndex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		indexes: make(map[string]*domain.TenantIndex),
	}
}

// Put replaces any existing index for the shop.
func (s *MemoryStore) Put(ctx context.Context, index *domain.TenantIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.indexes[index.ShopID] = index
	return nil
}

// Get returns the current index for the shop, or domain.ErrNotTrained.
func (s *MemoryStore) Get(ctx context.Context, shopID string) (*domain.TenantIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, exists := s.indexes[shopID]
	if !exists {
		return nil, domain.ErrNotTrained
	}
	return index, nil
}

// Summary returns the registry entry for the shop, or domain.ErrNotTrained.
func (s *MemoryStore) Summary(ctx context.Context, shopID string) (*domain.ShopSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, exists := s.indexes[shopID]
	if !exists {
		return nil, domain.ErrNotTrained
	}
	summary := index.Summary()
	return &summary, nil
}

// List returns registry entries for every trained shop, ordered by shop_id.
func (s *MemoryStore) List(ctx context.Context) ([]domain.ShopSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.ShopSummary, 0, len(s.indexes))
	for _, index := range s.indexes {
		summaries = append(summaries, index.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ShopID < summaries[j].ShopID
	})
	return summaries, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
