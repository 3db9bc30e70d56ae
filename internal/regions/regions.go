package regions

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/renderer"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// ItemRenderer renders a single content item.
type ItemRenderer interface {
	Render(ctx context.Context, item renderer.Item, data map[string]any) (string, error)
}

// HookFunc produces the markup emitted when a section opens or closes.
type HookFunc func(ctx context.Context, section string, data map[string]any) (string, error)

// SectionHandler wraps a run of items of one section tag.
type SectionHandler struct {
	Enter HookFunc
	Exit  HookFunc
}

// Option configures Regions.
type Option func(*Regions)

// WithSection registers the hooks of a section tag.
func WithSection(key string, handler SectionHandler) Option {
	return func(r *Regions) {
		r.sections[key] = handler
	}
}

// WithCache enables RenderCached.
func WithCache(cache *Cache) Option {
	return func(r *Regions) {
		r.cache = cache
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Regions) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Regions renders the items of a region section by section.
type Regions struct {
	items    ItemRenderer
	sections map[string]SectionHandler
	cache    *Cache
	logger   interfaces.Logger
}

// New constructs the region pipeline over an item renderer.
func New(items ItemRenderer, opts ...Option) (*Regions, error) {
	if items == nil {
		return nil, ErrRendererRequired
	}
	r := &Regions{
		items:    items,
		sections: make(map[string]SectionHandler),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Render renders one region of contents.
func (r *Regions) Render(ctx context.Context, contents *Contents, region string, data map[string]any) (string, error) {
	if contents == nil {
		return "", ErrContentsRequired
	}
	return r.RenderItems(ctx, contents.Region(region), data)
}

// RenderItems renders an ordered item list. The enter hook of a section runs
// before its first item and the exit hook after its last one, including the
// run still open at the end of the list. The first failing item aborts the
// whole render.
func (r *Regions) RenderItems(ctx context.Context, items []renderer.Item, data map[string]any) (string, error) {
	var out strings.Builder
	for section := range Sections(items) {
		handler, err := r.handler(section.Key)
		if err != nil {
			return "", err
		}
		if err := r.hook(ctx, &out, handler.Enter, section.Key, data); err != nil {
			return "", err
		}
		for _, item := range section.Items {
			html, err := r.items.Render(ctx, item, data)
			if err != nil {
				r.logger.Error("regions.render.failed", "item_id", item.ItemID(), "plugin_type", item.PluginType(), "region", item.RegionKey(), "error", err)
				return "", err
			}
			out.WriteString(html)
		}
		if err := r.hook(ctx, &out, handler.Exit, section.Key, data); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

// RenderCached serves a region from the cache, loading and rendering it only
// on a miss. Without a cache it always renders.
func (r *Regions) RenderCached(ctx context.Context, key CacheKey, ttl time.Duration, load func(context.Context) (*Contents, error), data map[string]any) (string, error) {
	render := func(ctx context.Context) (string, error) {
		contents, err := load(ctx)
		if err != nil {
			return "", err
		}
		return r.Render(ctx, contents, key.Region, data)
	}
	if r.cache == nil {
		return render(ctx)
	}
	return r.cache.Fetch(ctx, key, ttl, render)
}

func (r *Regions) handler(section string) (SectionHandler, error) {
	if section == "" {
		return SectionHandler{}, nil
	}
	handler, ok := r.sections[section]
	if !ok {
		return SectionHandler{}, &SectionNotRegisteredError{Section: section}
	}
	return handler, nil
}

func (r *Regions) hook(ctx context.Context, out *strings.Builder, fn HookFunc, section string, data map[string]any) error {
	if fn == nil {
		return nil
	}
	html, err := fn(ctx, section, data)
	if err != nil {
		return err
	}
	out.WriteString(html)
	return nil
}
