package content

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists content items.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	// ListForPage returns the items of a page ordered by region, ordering
	// and id.
	ListForPage(ctx context.Context, pageID uuid.UUID) ([]*Item, error)
	ListForRegion(ctx context.Context, pageID uuid.UUID, region string) ([]*Item, error)
	Create(ctx context.Context, item *Item) (*Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteForPage(ctx context.Context, pageID uuid.UUID) error
	// ReplaceForPage swaps every item of the page for items in one step.
	ReplaceForPage(ctx context.Context, pageID uuid.UUID, items []*Item) error
}

// NewItemRepository creates the go-repository-bun repository for items.
func NewItemRepository(db *bun.DB) repository.Repository[*Item] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Item]{
		NewRecord: func() *Item { return &Item{} },
		GetID: func(i *Item) uuid.UUID {
			return i.ID
		},
		SetID: func(i *Item, id uuid.UUID) {
			i.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(i *Item) string {
			return i.ID.String()
		},
	})
}
