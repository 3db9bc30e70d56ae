package pages

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryPageRepository is an in-memory PageRepository for tests and the
// memory storage driver.
type MemoryPageRepository struct {
	mu    sync.RWMutex
	pages map[uuid.UUID]*Page
}

// NewMemoryPageRepository constructs an empty repository.
func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{pages: make(map[uuid.UUID]*Page)}
}

func (m *MemoryPageRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return page.Clone(), nil
}

func (m *MemoryPageRepository) GetByPath(_ context.Context, path string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, page := range m.pages {
		if page.Path == path {
			return page.Clone(), nil
		}
	}
	return nil, &NotFoundError{Key: path}
}

func (m *MemoryPageRepository) List(_ context.Context) ([]*Page, error) {
	return m.filter(func(*Page) bool { return true }, byPath), nil
}

func (m *MemoryPageRepository) ListChildren(_ context.Context, parentID *uuid.UUID) ([]*Page, error) {
	return m.filter(func(p *Page) bool { return sameUUID(p.ParentID, parentID) }, byPosition), nil
}

func (m *MemoryPageRepository) Ancestors(_ context.Context, id uuid.UUID) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	var chain []*Page
	seen := map[uuid.UUID]bool{id: true}
	for parentID := page.ParentID; parentID != nil; {
		parent, ok := m.pages[*parentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		chain = append(chain, parent.Clone())
		parentID = parent.ParentID
	}
	slices.Reverse(chain)
	for depth, ancestor := range chain {
		ancestor.TreeDepth = depth
	}
	return chain, nil
}

func (m *MemoryPageRepository) Descendants(_ context.Context, id uuid.UUID) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.pages[id]; !ok {
		return nil, &NotFoundError{Key: id.String()}
	}

	children := map[uuid.UUID][]*Page{}
	for _, page := range m.pages {
		if page.ParentID != nil {
			children[*page.ParentID] = append(children[*page.ParentID], page)
		}
	}

	var out []*Page
	level := []uuid.UUID{id}
	for depth := 1; len(level) > 0; depth++ {
		var next []*Page
		for _, parentID := range level {
			next = append(next, children[parentID]...)
		}
		slices.SortStableFunc(next, byPosition)
		level = level[:0]
		for _, page := range next {
			cloned := page.Clone()
			cloned.TreeDepth = depth
			out = append(out, cloned)
			level = append(level, page.ID)
		}
	}
	return out, nil
}

func (m *MemoryPageRepository) ListByNamespace(_ context.Context, namespace, language string) ([]*Page, error) {
	return m.filter(func(p *Page) bool {
		return p.AppNamespace == namespace && p.LanguageCode == language
	}, byPath), nil
}

func (m *MemoryPageRepository) ListRedirectingTo(_ context.Context, id uuid.UUID) ([]*Page, error) {
	return m.filter(func(p *Page) bool {
		return p.RedirectToPageID != nil && *p.RedirectToPageID == id
	}, byPath), nil
}

func (m *MemoryPageRepository) ListTranslationsOf(_ context.Context, id uuid.UUID) ([]*Page, error) {
	return m.filter(func(p *Page) bool {
		return p.TranslationOfID != nil && *p.TranslationOfID == id
	}, byPath), nil
}

func (m *MemoryPageRepository) ListActiveByTypes(_ context.Context, typeKeys []string) ([]*Page, error) {
	return m.filter(func(p *Page) bool {
		return p.IsActive && slices.Contains(typeKeys, p.PageType)
	}, func(a, b *Page) int {
		return cmp.Or(
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.PageType, b.PageType),
			cmp.Compare(a.AppNamespace, b.AppNamespace),
			cmp.Compare(a.LanguageCode, b.LanguageCode),
		)
	}), nil
}

func (m *MemoryPageRepository) SaveTree(_ context.Context, page *Page, isNew bool, related []*Page) (*Page, error) {
	if page == nil {
		return nil, ErrPageRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pages[page.ID]; !isNew && !exists {
		return nil, &NotFoundError{Key: page.ID.String()}
	}
	for _, rel := range related {
		if _, ok := m.pages[rel.ID]; !ok {
			return nil, &NotFoundError{Key: rel.ID.String()}
		}
	}

	stored := page.Clone()
	stored.TreeDepth = 0
	m.pages[stored.ID] = stored
	for _, rel := range related {
		cloned := rel.Clone()
		cloned.TreeDepth = 0
		m.pages[cloned.ID] = cloned
	}
	return stored.Clone(), nil
}

func (m *MemoryPageRepository) DeleteTree(_ context.Context, ids []uuid.UUID, related []*Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rel := range related {
		if _, ok := m.pages[rel.ID]; ok {
			m.pages[rel.ID] = rel.Clone()
		}
	}
	for _, id := range ids {
		delete(m.pages, id)
	}
	return nil
}

func (m *MemoryPageRepository) filter(keep func(*Page) bool, order func(a, b *Page) int) []*Page {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Page
	for _, page := range m.pages {
		if keep(page) {
			out = append(out, page.Clone())
		}
	}
	slices.SortStableFunc(out, order)
	return out
}

func byPath(a, b *Page) int {
	return cmp.Compare(a.Path, b.Path)
}

func byPosition(a, b *Page) int {
	return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.Path, b.Path))
}
