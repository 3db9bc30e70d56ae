package content

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps items in a map guarded by a mutex.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]*Item)}
}

func (m *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return item.Clone(), nil
}

func (m *MemoryRepository) ListForPage(_ context.Context, pageID uuid.UUID) ([]*Item, error) {
	return m.filter(func(i *Item) bool { return i.PageID == pageID }), nil
}

func (m *MemoryRepository) ListForRegion(_ context.Context, pageID uuid.UUID, region string) ([]*Item, error) {
	return m.filter(func(i *Item) bool { return i.PageID == pageID && i.Region == region }), nil
}

func (m *MemoryRepository) Create(_ context.Context, item *Item) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := item.Clone()
	m.items[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *MemoryRepository) Update(_ context.Context, item *Item) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return nil, &NotFoundError{Key: item.ID.String()}
	}
	stored := item.Clone()
	m.items[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryRepository) DeleteForPage(_ context.Context, pageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteForPage(pageID)
	return nil
}

func (m *MemoryRepository) ReplaceForPage(_ context.Context, pageID uuid.UUID, items []*Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteForPage(pageID)
	for _, item := range items {
		stored := item.Clone()
		m.items[stored.ID] = stored
	}
	return nil
}

func (m *MemoryRepository) deleteForPage(pageID uuid.UUID) {
	for id, item := range m.items {
		if item.PageID == pageID {
			delete(m.items, id)
		}
	}
}

func (m *MemoryRepository) filter(keep func(*Item) bool) []*Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Item
	for _, item := range m.items {
		if keep(item) {
			out = append(out, item.Clone())
		}
	}
	slices.SortFunc(out, compareItems)
	return out
}

func compareItems(a, b *Item) int {
	return cmp.Or(
		cmp.Compare(a.Region, b.Region),
		cmp.Compare(a.Ordering, b.Ordering),
		cmp.Compare(a.ID.String(), b.ID.String()),
	)
}
