package regions

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/renderer"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// Contents holds the items of one owner grouped by region. Items of a
// region are ordered by their ordering key; items sharing a key keep the
// order they were handed in.
type Contents struct {
	regions   map[string][]renderer.Item
	inherited map[string]uuid.UUID
}

// Group partitions items by region.
func Group(items []renderer.Item) *Contents {
	c := &Contents{
		regions:   make(map[string][]renderer.Item),
		inherited: make(map[string]uuid.UUID),
	}
	for _, item := range items {
		c.regions[item.RegionKey()] = append(c.regions[item.RegionKey()], item)
	}
	for _, list := range c.regions {
		slices.SortStableFunc(list, func(a, b renderer.Item) int {
			return cmp.Compare(a.Order(), b.Order())
		})
	}
	return c
}

// Region returns the ordered items of a region.
func (c *Contents) Region(key string) []renderer.Item {
	if c == nil {
		return nil
	}
	return slices.Clone(c.regions[key])
}

// Regions lists the non-empty region keys in name order.
func (c *Contents) Regions() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.regions))
}

// InheritedFrom reports the ancestor a region was filled from.
func (c *Contents) InheritedFrom(key string) (uuid.UUID, bool) {
	if c == nil {
		return uuid.Nil, false
	}
	id, ok := c.inherited[key]
	return id, ok
}

// ItemSource lists the content rows of a page.
type ItemSource interface {
	ListForPage(ctx context.Context, pageID uuid.UUID) ([]*content.Item, error)
}

// AncestorSource lists the ancestors of a page, root first.
type AncestorSource interface {
	Ancestors(ctx context.Context, id uuid.UUID, includeSelf bool) ([]*pages.Page, error)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the loader logger.
func WithLoaderLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader builds the Contents of a page. Regions flagged as inherited by the
// page type take the items of the nearest ancestor that has any when the
// page leaves them empty.
type Loader struct {
	items  ItemSource
	tree   AncestorSource
	types  *pages.Types
	logger interfaces.Logger
}

// NewLoader constructs a Loader. tree may be nil when inheritance is not
// needed.
func NewLoader(items ItemSource, tree AncestorSource, types *pages.Types, opts ...LoaderOption) *Loader {
	l := &Loader{
		items:  items,
		tree:   tree,
		types:  types,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load returns the contents of page including inherited regions.
func (l *Loader) Load(ctx context.Context, page *pages.Page) (*Contents, error) {
	own, err := l.items.ListForPage(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	contents := Group(asItems(own))
	if l.tree == nil || l.types == nil || page.ParentID == nil {
		return contents, nil
	}

	var missing []string
	for _, region := range l.types.RegionsFor(page) {
		if region.Inherited && len(contents.regions[region.Key]) == 0 {
			missing = append(missing, region.Key)
		}
	}
	if len(missing) == 0 {
		return contents, nil
	}

	ancestors, err := l.tree.Ancestors(ctx, page.ID, false)
	if err != nil {
		return nil, err
	}
	for i := len(ancestors) - 1; i >= 0 && len(missing) > 0; i-- {
		ancestor := ancestors[i]
		rows, err := l.items.ListForPage(ctx, ancestor.ID)
		if err != nil {
			return nil, err
		}
		found := Group(asItems(rows))
		missing = slices.DeleteFunc(missing, func(key string) bool {
			items := found.regions[key]
			if len(items) == 0 {
				return false
			}
			contents.regions[key] = items
			contents.inherited[key] = ancestor.ID
			l.logger.Debug("regions.inherited", "page_id", page.ID, "region", key, "ancestor_id", ancestor.ID)
			return true
		})
	}
	return contents, nil
}

func asItems(rows []*content.Item) []renderer.Item {
	out := make([]renderer.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	return out
}
