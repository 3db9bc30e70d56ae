package renderer

import (
	"context"
	"html/template"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// Item is the view of a content row the renderer and the region pipeline
// need.
type Item interface {
	PluginType() string
	ItemID() string
	RegionKey() string
	Order() int
	SectionKey() string
}

// RenderFunc renders one item to markup. data is the ambient template
// context of the region render call.
type RenderFunc func(ctx context.Context, item Item, data map[string]any) (string, error)

// Template is the template a plugin renders through. Names are tried in
// order and the first one known to the template renderer wins; Parsed is
// executed directly.
type Template struct {
	Names  []string
	Parsed *template.Template
}

// TemplateSource picks the template for an item. It runs on every render so
// the choice may depend on the item.
type TemplateSource func(item Item) (Template, error)

// ContextFunc builds the data passed to a plugin template.
type ContextFunc func(item Item, data map[string]any) map[string]any

// Names returns a source that always uses the given template names.
func Names(names ...string) TemplateSource {
	names = slices.Clone(names)
	return func(Item) (Template, error) {
		return Template{Names: names}, nil
	}
}

// Parsed returns a source that always executes tpl.
func Parsed(tpl *template.Template) TemplateSource {
	return func(Item) (Template, error) {
		return Template{Parsed: tpl}, nil
	}
}

// DefaultContext exposes the item as "plugin" on top of the ambient data.
func DefaultContext(item Item, data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+1)
	maps.Copy(out, data)
	out["plugin"] = item
	return out
}

type entry struct {
	render   RenderFunc
	source   TemplateSource
	contextF ContextFunc
}

// Option configures a Registry.
type Option func(*Registry)

// WithTemplates sets the renderer used for template based plugins.
func WithTemplates(templates interfaces.TemplateRenderer) Option {
	return func(r *Registry) {
		r.templates = templates
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry maps plugin types to rendering strategies.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]entry
	templates interfaces.TemplateRenderer
	logger    interfaces.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register binds a render callback to pluginType, replacing any previous
// registration.
func (r *Registry) Register(pluginType string, fn RenderFunc) error {
	pluginType = strings.TrimSpace(pluginType)
	if pluginType == "" {
		return ErrPluginTypeRequired
	}
	if fn == nil {
		return ErrRenderFuncNil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[pluginType] = entry{render: fn}
	return nil
}

// RegisterTemplate binds a template source to pluginType. A nil context func
// falls back to DefaultContext.
func (r *Registry) RegisterTemplate(pluginType string, source TemplateSource, contextF ContextFunc) error {
	pluginType = strings.TrimSpace(pluginType)
	if pluginType == "" {
		return ErrPluginTypeRequired
	}
	if source == nil {
		return ErrTemplateSourceNil
	}
	if contextF == nil {
		contextF = DefaultContext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[pluginType] = entry{source: source, contextF: contextF}
	return nil
}

// Has reports whether pluginType can be rendered.
func (r *Registry) Has(pluginType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[pluginType]
	return ok
}

// Types lists the registered plugin types in name order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Render renders a single item. Unknown plugin types fail with
// PluginNotRegisteredError.
func (r *Registry) Render(ctx context.Context, item Item, data map[string]any) (string, error) {
	r.mu.RLock()
	e, ok := r.entries[item.PluginType()]
	r.mu.RUnlock()
	if !ok {
		r.logger.Error("renderer.plugin.unregistered", "plugin_type", item.PluginType(), "item_id", item.ItemID())
		return "", &PluginNotRegisteredError{Type: item.PluginType()}
	}
	if e.render != nil {
		return e.render(ctx, item, data)
	}
	return r.renderTemplate(item, e, data)
}

func (r *Registry) renderTemplate(item Item, e entry, data map[string]any) (string, error) {
	tpl, err := e.source(item)
	if err != nil {
		return "", err
	}
	payload := e.contextF(item, data)
	if tpl.Parsed != nil {
		var out strings.Builder
		if err := tpl.Parsed.Execute(&out, payload); err != nil {
			return "", err
		}
		return out.String(), nil
	}
	if r.templates == nil {
		return "", ErrTemplatesMissing
	}
	for _, name := range tpl.Names {
		if r.templates.Lookup(name) {
			return r.templates.Render(name, payload)
		}
	}
	return "", &TemplateNotFoundError{Type: item.PluginType(), Names: slices.Clone(tpl.Names)}
}
