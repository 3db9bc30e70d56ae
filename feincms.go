package feincms

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/goliatone/go-feincms/internal/apps"
	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/internal/di"
	"github.com/goliatone/go-feincms/internal/fixtures"
	feinhttp "github.com/goliatone/go-feincms/internal/http"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/regions"
	"github.com/goliatone/go-feincms/internal/renderer"
	"github.com/goliatone/go-feincms/internal/urls"
)

// PageService exports the page tree service contract.
type PageService = pages.Service

// ContentService exports the content item service contract.
type ContentService = content.Service

type (
	Page             = pages.Page
	PageType         = pages.Type
	TemplateType     = pages.TemplateType
	ApplicationType  = pages.ApplicationType
	Region           = pages.Region
	MovePageRequest  = pages.MovePageRequest
	MovePosition     = pages.MovePosition
	ClonePageRequest = pages.ClonePageRequest
	ContentItem      = content.Item
	Route            = urls.Route
	URLTable         = urls.Table
	RenderFunc       = renderer.RenderFunc
	SectionHandler   = regions.SectionHandler
	FixtureResult    = fixtures.Result
	Option           = di.Option
	AdminOption      = feinhttp.AdminOption
	PageViewOption   = feinhttp.PageViewOption
	PluginRegistrar  = di.PluginRegistrar
	ReverseOption    = apps.ReverseOption
)

const (
	MoveFirstChild = pages.MoveFirstChild
	MoveLastChild  = pages.MoveLastChild
	MoveLeft       = pages.MoveLeft
	MoveRight      = pages.MoveRight
)

var (
	WithLoggerProvider      = di.WithLoggerProvider
	WithBunDB               = di.WithBunDB
	WithCache               = di.WithCache
	WithRegionCacheProvider = di.WithRegionCacheProvider
	WithPageTypes           = di.WithPageTypes
	WithURLModule           = di.WithURLModule
	WithRootRoutes          = di.WithRootRoutes
	WithNotFoundHandler     = di.WithNotFoundHandler
	WithTemplateFS          = di.WithTemplateFS
	WithPlugins             = di.WithPlugins
	WithSection             = di.WithSection
	WithPluginConfig        = di.WithPluginConfig
	WithPageViewOptions     = di.WithPageViewOptions

	WithParams           = apps.WithParams
	WithReverseLanguages = apps.WithReverseLanguages
	WithFallback         = apps.WithFallback
	ReverseFallback      = apps.ReverseFallback
)

// NewURLTable compiles an application url module.
func NewURLTable(id string, routes ...Route) (*URLTable, error) {
	return urls.New(id, routes)
}

// Path declares a route. ":name" captures one segment, "*name" the rest.
func Path(pattern, name string, handler http.Handler) Route {
	return urls.Path(pattern, name, handler)
}

// Module represents the top level runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional
// DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases storage and cache connections.
func (m *Module) Close() error {
	return m.container.Close()
}

// Pages returns the page tree service.
func (m *Module) Pages() PageService {
	return m.container.PageService()
}

// Content returns the content item service.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// Types returns the page type registry.
func (m *Module) Types() *pages.Types {
	return m.container.Types()
}

// Plugins returns the plugin renderer registry.
func (m *Module) Plugins() *renderer.Registry {
	return m.container.Plugins()
}

// Regions returns the region rendering pipeline.
func (m *Module) Regions() *regions.Regions {
	return m.container.Regions()
}

// RegionCache returns the region cache, nil when the feature is off.
func (m *Module) RegionCache() *regions.Cache {
	return m.container.RegionCache()
}

// Apps returns the application routing builder.
func (m *Module) Apps() *apps.Builder {
	return m.container.Builder()
}

// Handler serves the public site.
func (m *Module) Handler() http.Handler {
	return m.container.Handler()
}

// AdminAPI returns the JSON administration API.
func (m *Module) AdminAPI(opts ...AdminOption) *feinhttp.AdminAPI {
	return m.container.AdminAPI(opts...)
}

// PageForAppRequest returns the page that mounted the application serving
// the request.
func (m *Module) PageForAppRequest(r *http.Request) (*Page, error) {
	return m.container.Builder().PageForAppRequest(r.Context())
}

// ReverseApp builds a URL for a view inside a mounted application.
func (m *Module) ReverseApp(ctx context.Context, namespaces []string, viewName string, opts ...ReverseOption) (string, error) {
	return m.container.Builder().ReverseApp(ctx, namespaces, viewName, opts...)
}

// ReverseAny returns the URL of the first view name that reverses.
func (m *Module) ReverseAny(ctx context.Context, viewNames []string, opts ...ReverseOption) (string, error) {
	return m.container.Builder().ReverseAny(ctx, viewNames, opts...)
}

// AbsoluteURL reverses like ReverseApp and prefixes the site base URL.
func (m *Module) AbsoluteURL(ctx context.Context, namespaces []string, viewName string, opts ...ReverseOption) (string, error) {
	return m.container.Builder().AbsoluteURL(ctx, namespaces, viewName, opts...)
}

// ImportFixtures loads Markdown documents from fsys into the page tree.
func (m *Module) ImportFixtures(ctx context.Context, fsys fs.FS, dryRun bool) (FixtureResult, error) {
	return m.container.Importer().Import(ctx, fsys, fixtures.Options{DryRun: dryRun})
}
