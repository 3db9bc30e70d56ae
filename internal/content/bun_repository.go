package content

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository implements Repository on bun.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Item]
}

// NewBunRepository creates a bun backed item repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, repo: NewItemRepository(db)}
}

func (r *BunRepository) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return item, nil
}

func (r *BunRepository) ListForPage(ctx context.Context, pageID uuid.UUID) ([]*Item, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page_id = ?", pageID)
	})
}

func (r *BunRepository) ListForRegion(ctx context.Context, pageID uuid.UUID, region string) ([]*Item, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page_id = ?", pageID).
			Where("?TableAlias.region = ?", region)
	})
}

func (r *BunRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	record, err := r.repo.Create(ctx, item)
	if err != nil {
		return nil, mapRepositoryError(err, item.ID.String())
	}
	return record, nil
}

func (r *BunRepository) Update(ctx context.Context, item *Item) (*Item, error) {
	record, err := r.repo.Update(ctx, item)
	if err != nil {
		return nil, mapRepositoryError(err, item.ID.String())
	}
	return record, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &Item{ID: id}); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return nil
}

func (r *BunRepository) DeleteForPage(ctx context.Context, pageID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Item)(nil)).
		Where("?TableAlias.page_id = ?", pageID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete content for page %s: %w", pageID, err)
	}
	return nil
}

func (r *BunRepository) ReplaceForPage(ctx context.Context, pageID uuid.UUID, items []*Item) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Item)(nil)).
			Where("?TableAlias.page_id = ?", pageID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete content for page %s: %w", pageID, err)
		}
		if len(items) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return fmt.Errorf("insert content for page %s: %w", pageID, err)
		}
		return nil
	})
}

func (r *BunRepository) list(ctx context.Context, fn func(*bun.SelectQuery) *bun.SelectQuery) ([]*Item, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return fn(q).OrderExpr("?TableAlias.region ASC, ?TableAlias.ordering ASC, ?TableAlias.id ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("content repository error: %w", err)
	}
	return records, nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("content repository error: %w", err)
}
