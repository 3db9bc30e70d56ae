package pages

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PageRepository persists the page tree. Multi-row writes go through
// SaveTree and DeleteTree so a subtree is never partially persisted.
type PageRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetByPath(ctx context.Context, path string) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	// ListChildren returns direct children ordered by position. A nil parent
	// lists the roots.
	ListChildren(ctx context.Context, parentID *uuid.UUID) ([]*Page, error)
	// Ancestors returns the ancestor chain root first, excluding the page.
	Ancestors(ctx context.Context, id uuid.UUID) ([]*Page, error)
	// Descendants returns the subtree below the page ordered by depth then
	// position, excluding the page. TreeDepth is relative to the page.
	Descendants(ctx context.Context, id uuid.UUID) ([]*Page, error)
	ListByNamespace(ctx context.Context, namespace, language string) ([]*Page, error)
	ListRedirectingTo(ctx context.Context, id uuid.UUID) ([]*Page, error)
	ListTranslationsOf(ctx context.Context, id uuid.UUID) ([]*Page, error)
	// ListActiveByTypes returns active pages of the given types ordered by
	// path, page type, namespace and language.
	ListActiveByTypes(ctx context.Context, typeKeys []string) ([]*Page, error)
	SaveTree(ctx context.Context, page *Page, isNew bool, related []*Page) (*Page, error)
	DeleteTree(ctx context.Context, ids []uuid.UUID, related []*Page) error
}

// NewPageRepository creates the go-repository-bun repository for pages. The
// path column is the natural identifier.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "path"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.Path
		},
	})
}
