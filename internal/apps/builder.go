package apps

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/i18n"
	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/urls"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// DefaultNamespacePrefix prefixes the per-language outer namespaces.
const DefaultNamespacePrefix = "apps"

var contentKeySpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("feincms.apps.urlconf"))

// Source returns the mounts of every active application page ordered by
// path, page type, namespace and language.
type Source interface {
	ActiveApplications(ctx context.Context) ([]pages.AppMount, error)
}

// Result is the outcome of an asynchronous routing table lookup.
type Result struct {
	ID    string
	Table *urls.Table
	Err   error
}

// Builder layers the active application mounts on top of the static root
// routing table and memoises the result per distinct configuration.
type Builder struct {
	source    Source
	types     *pages.Types
	modules   *Modules
	root      *urls.Table
	registry  *Registry
	prefix    string
	languages i18n.Config
	lookup    NamespaceLookup
	logger    interfaces.Logger
	baseURL   string

	linkMu  sync.Mutex
	linkers map[string]*urls.Linker
}

// BuilderOption configures the builder.
type BuilderOption func(*Builder)

// WithNamespacePrefix overrides the outer namespace prefix.
func WithNamespacePrefix(prefix string) BuilderOption {
	return func(b *Builder) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			b.prefix = trimmed
		}
	}
}

// WithRegistry shares a routing table registry between builders.
func WithRegistry(registry *Registry) BuilderOption {
	return func(b *Builder) {
		if registry != nil {
			b.registry = registry
		}
	}
}

// WithLanguages sets the language order used by ReverseApp when no
// languages are passed explicitly.
func WithLanguages(cfg i18n.Config) BuilderOption {
	return func(b *Builder) {
		b.languages = cfg
	}
}

// WithNamespaceLookup enables PageForAppRequest.
func WithNamespaceLookup(lookup NamespaceLookup) BuilderOption {
	return func(b *Builder) {
		b.lookup = lookup
	}
}

// WithBuilderLogger sets the builder logger.
func WithBuilderLogger(logger interfaces.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder validates that every application type has a url module and
// returns the builder.
func NewBuilder(source Source, types *pages.Types, modules *Modules, root *urls.Table, opts ...BuilderOption) (*Builder, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if root == nil {
		return nil, ErrRootTableRequired
	}
	if modules == nil {
		modules = NewModules()
	}
	if err := modules.Validate(types); err != nil {
		return nil, err
	}
	b := &Builder{
		source:   source,
		types:    types,
		modules:  modules,
		root:     root,
		registry: NewRegistry(),
		prefix:   DefaultNamespacePrefix,
		logger:   logging.NoOp(),
		linkers:  map[string]*urls.Linker{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Root returns the static root routing table.
func (b *Builder) Root() *urls.Table {
	return b.root
}

// NamespacePrefix returns the outer namespace prefix.
func (b *Builder) NamespacePrefix() string {
	return b.prefix
}

// LanguageNamespace is the outer namespace of language.
func (b *Builder) LanguageNamespace(language string) string {
	return b.prefix + "-" + language
}

// Mounts returns the active application mounts. Inside a request started
// with BeginRequest the source is queried at most once.
func (b *Builder) Mounts(ctx context.Context) ([]pages.AppMount, error) {
	fetch := func() ([]pages.AppMount, error) {
		return b.source.ActiveApplications(ctx)
	}
	if memo := memoFromContext(ctx); memo != nil {
		return memo.load(fetch)
	}
	return fetch()
}

// AppsURLConf returns the id of the routing table for the current mounts.
// Without active applications it is the id of the root table.
func (b *Builder) AppsURLConf(ctx context.Context) (string, error) {
	table, err := b.Table(ctx)
	if err != nil {
		return "", err
	}
	return table.ID(), nil
}

// AppsURLConfAsync runs AppsURLConf on its own goroutine. The request memo
// on ctx is shared with synchronous callers.
func (b *Builder) AppsURLConfAsync(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		table, err := b.Table(ctx)
		if err != nil {
			out <- Result{Err: err}
			return
		}
		out <- Result{ID: table.ID(), Table: table}
	}()
	return out
}

// Table returns the routing table for the current mounts.
func (b *Builder) Table(ctx context.Context) (*urls.Table, error) {
	mounts, err := b.Mounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("apps: load active applications: %w", err)
	}
	return b.Build(mounts)
}

// Lookup returns a table previously produced by the builder.
func (b *Builder) Lookup(id string) (*urls.Table, error) {
	if id == b.root.ID() {
		return b.root, nil
	}
	if table, ok := b.registry.Get(id); ok {
		return table, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTableNotRegistered, id)
}

// Build returns the routing table for mounts, constructing it only the
// first time a configuration is seen.
func (b *Builder) Build(mounts []pages.AppMount) (*urls.Table, error) {
	if len(mounts) == 0 {
		return b.root, nil
	}
	id := TableID(mounts)
	if table, ok := b.registry.Get(id); ok {
		return table, nil
	}
	table, err := b.construct(id, mounts)
	if err != nil {
		return nil, err
	}
	b.registry.Put(table)
	b.logger.Info("apps.urlconf.built", "table_id", id, "mounts", len(mounts))
	return table, nil
}

func (b *Builder) construct(id string, mounts []pages.AppMount) (*urls.Table, error) {
	byLanguage := map[string][]urls.Route{}
	for _, mount := range mounts {
		app, ok := b.types.Application(mount.PageType)
		if !ok {
			continue
		}
		module, ok := b.modules.Lookup(app.URLConf)
		if !ok {
			b.logger.Warn("apps.urlconf.module_missing", "page_type", app.Key, "url_module", app.URLConf)
			continue
		}
		namespace := mount.Namespace
		if namespace == "" {
			namespace = app.Key
		}
		prefix := strings.TrimPrefix(mount.Path, "/")
		byLanguage[mount.LanguageCode] = append(byLanguage[mount.LanguageCode], urls.Prefix(prefix, namespace, module))
	}

	languages := make([]string, 0, len(byLanguage))
	for language := range byLanguage {
		languages = append(languages, language)
	}
	slices.Sort(languages)

	routes := make([]urls.Route, 0, len(languages)+len(b.root.Routes()))
	for _, language := range languages {
		outer := b.LanguageNamespace(language)
		group, err := urls.New(id+"/"+outer, byLanguage[language])
		if err != nil {
			return nil, fmt.Errorf("apps: build %s: %w", outer, err)
		}
		routes = append(routes, urls.Include("", outer, group))
	}
	routes = append(routes, b.root.Routes()...)

	table, err := urls.New(id, routes, urls.WithErrorHandlers(b.root.ErrorHandlers()))
	if err != nil {
		return nil, fmt.Errorf("apps: build routing table: %w", err)
	}
	return table, nil
}

// TableID derives the routing table id from the mount tuples. Equal tuple
// lists give equal ids; any change gives a different id.
func TableID(mounts []pages.AppMount) string {
	var buf strings.Builder
	for _, mount := range mounts {
		buf.WriteString(mount.Path)
		buf.WriteByte(0x1f)
		buf.WriteString(mount.PageType)
		buf.WriteByte(0x1f)
		buf.WriteString(mount.Namespace)
		buf.WriteByte(0x1f)
		buf.WriteString(mount.LanguageCode)
		buf.WriteByte(0x1e)
	}
	return "urlconf-" + uuid.NewSHA1(contentKeySpace, []byte(buf.String())).String()
}
