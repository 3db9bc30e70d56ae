package pages

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const pageNamespace = "page"

const descendantsQuery = `
WITH RECURSIVE tree AS (
	SELECT p.*, 1 AS tree_depth FROM pages AS p WHERE p.parent_id = ?
	UNION ALL
	SELECT c.*, tree.tree_depth + 1 FROM pages AS c JOIN tree ON c.parent_id = tree.id
)
SELECT * FROM tree ORDER BY tree_depth ASC, position ASC, path ASC`

const ancestorsQuery = `
WITH RECURSIVE chain AS (
	SELECT p.*, 0 AS tree_depth FROM pages AS p WHERE p.id = ?
	UNION ALL
	SELECT a.*, chain.tree_depth + 1 FROM pages AS a JOIN chain ON a.id = chain.parent_id
)
SELECT * FROM chain WHERE id <> ? ORDER BY tree_depth DESC`

// BunPageRepository implements PageRepository on bun. Ancestor and
// descendant lookups are single recursive CTE queries. Only the keyed
// lookups go through the cache; filtered lists always hit the database.
type BunPageRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Page]
	base         repository.Repository[*Page]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunPageRepository creates a page repository without caching.
func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return NewBunPageRepositoryWithCache(db, nil, nil)
}

// NewBunPageRepositoryWithCache wraps the base repository with
// go-repository-cache when both services are provided.
func NewBunPageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPageRepository {
	base := NewPageRepository(db)
	repo := base
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		repo = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = pageNamespace + cache.KeySeparator
	}
	return &BunPageRepository{db: db, repo: repo, base: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunPageRepository) GetByPath(ctx context.Context, path string) (*Page, error) {
	record, err := r.repo.GetByIdentifier(ctx, path)
	if err != nil {
		return nil, mapRepositoryError(err, path)
	}
	return record, nil
}

func (r *BunPageRepository) List(ctx context.Context) ([]*Page, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.path ASC")
	})
}

func (r *BunPageRepository) ListChildren(ctx context.Context, parentID *uuid.UUID) ([]*Page, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		if parentID == nil {
			q = q.Where("?TableAlias.parent_id IS NULL")
		} else {
			q = q.Where("?TableAlias.parent_id = ?", *parentID)
		}
		return q.OrderExpr("?TableAlias.position ASC, ?TableAlias.path ASC")
	})
}

func (r *BunPageRepository) Ancestors(ctx context.Context, id uuid.UUID) ([]*Page, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	var records []*Page
	if err := r.db.NewRaw(ancestorsQuery, id, id).Scan(ctx, &records); err != nil {
		return nil, fmt.Errorf("page ancestors: %w", err)
	}
	for depth, record := range records {
		record.TreeDepth = depth
	}
	return records, nil
}

func (r *BunPageRepository) Descendants(ctx context.Context, id uuid.UUID) ([]*Page, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	var records []*Page
	if err := r.db.NewRaw(descendantsQuery, id).Scan(ctx, &records); err != nil {
		return nil, fmt.Errorf("page descendants: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) ListByNamespace(ctx context.Context, namespace, language string) ([]*Page, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.app_namespace = ?", namespace).
			Where("?TableAlias.language_code = ?", language).
			OrderExpr("?TableAlias.path ASC")
	})
}

func (r *BunPageRepository) ListRedirectingTo(ctx context.Context, id uuid.UUID) ([]*Page, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.redirect_to_page_id = ?", id).
			OrderExpr("?TableAlias.path ASC")
	})
}

func (r *BunPageRepository) ListTranslationsOf(ctx context.Context, id uuid.UUID) ([]*Page, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.translation_of_id = ?", id).
			OrderExpr("?TableAlias.path ASC")
	})
}

func (r *BunPageRepository) ListActiveByTypes(ctx context.Context, typeKeys []string) ([]*Page, error) {
	if len(typeKeys) == 0 {
		return nil, nil
	}
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.is_active = ?", true).
			Where("?TableAlias.page_type IN (?)", bun.In(typeKeys)).
			OrderExpr("?TableAlias.path ASC, ?TableAlias.page_type ASC, ?TableAlias.app_namespace ASC, ?TableAlias.language_code ASC")
	})
}

// SaveTree persists the page and every related row in one transaction. A
// lone page goes through the generic repository.
func (r *BunPageRepository) SaveTree(ctx context.Context, page *Page, isNew bool, related []*Page) (*Page, error) {
	if page == nil {
		return nil, ErrPageRequired
	}
	if len(related) == 0 {
		var (
			record *Page
			err    error
		)
		if isNew {
			record, err = r.repo.Create(ctx, page)
		} else {
			record, err = r.repo.Update(ctx, page)
		}
		if err != nil {
			return nil, mapRepositoryError(err, page.ID.String())
		}
		return record, r.InvalidateCache(ctx)
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if isNew {
			if _, err := tx.NewInsert().Model(page).Exec(ctx); err != nil {
				return fmt.Errorf("insert page: %w", err)
			}
		} else if _, err := tx.NewUpdate().Model(page).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update page: %w", err)
		}
		for _, rel := range related {
			if _, err := tx.NewUpdate().Model(rel).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update page %s: %w", rel.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, r.InvalidateCache(ctx)
}

// DeleteTree removes the given pages after persisting the related rows whose
// references were cleared.
func (r *BunPageRepository) DeleteTree(ctx context.Context, ids []uuid.UUID, related []*Page) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, rel := range related {
			if _, err := tx.NewUpdate().Model(rel).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update page %s: %w", rel.ID, err)
			}
		}
		if _, err := tx.NewDelete().
			Model((*Page)(nil)).
			Where("?TableAlias.id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete pages: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops every cached page entry.
func (r *BunPageRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

// list bypasses the cache wrapper: it keys raw processors by call site, not
// by the values they capture.
func (r *BunPageRepository) list(ctx context.Context, fn func(*bun.SelectQuery) *bun.SelectQuery) ([]*Page, error) {
	records, _, err := r.base.List(ctx, repository.SelectRawProcessor(fn))
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
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
	return fmt.Errorf("page repository error: %w", err)
}
