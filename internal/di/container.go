package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-feincms/internal/apps"
	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/internal/fixtures"
	feinhttp "github.com/goliatone/go-feincms/internal/http"
	"github.com/goliatone/go-feincms/internal/i18n"
	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/logging/console"
	"github.com/goliatone/go-feincms/internal/logging/gologger"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/plugins"
	"github.com/goliatone/go-feincms/internal/regions"
	"github.com/goliatone/go-feincms/internal/renderer"
	"github.com/goliatone/go-feincms/internal/runtimeconfig"
	"github.com/goliatone/go-feincms/internal/urls"
	"github.com/goliatone/go-feincms/internal/validation"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// PluginRegistrar adds application specific plugin types after the built-in
// ones are registered.
type PluginRegistrar func(reg *renderer.Registry, schemas *validation.Schemas) error

// Container wires the page tree, content, region rendering and application
// routing modules from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	db            *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	redisClient   redis.UniversalClient
	regionStore   interfaces.CacheProvider

	pageTypes   []pages.Type
	urlModules  map[string]*urls.Table
	rootRoutes  []urls.Route
	notFound    http.Handler
	templateFS  fs.FS
	registrars  []PluginRegistrar
	sections    map[string]regions.SectionHandler
	pluginCfg   plugins.Config
	viewOptions []feinhttp.PageViewOption

	types       *pages.Types
	modules     *apps.Modules
	pageRepo    pages.PageRepository
	itemRepo    content.Repository
	pageSvc     pages.Service
	contentSvc  content.Service
	cloner      *contentClonerProxy
	resolver    *apps.Resolver
	schemas     *validation.Schemas
	plugins     *renderer.Registry
	templates   *renderer.HTMLTemplates
	regionCache *regions.Cache
	pipeline    *regions.Regions
	loader      *regions.Loader
	pageView    *feinhttp.PageView
	root        *urls.Table
	builder     *apps.Builder
	negotiator  *i18n.Negotiator
	importer    *fixtures.Importer
}

// Option mutates the container before services are wired.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider selected by the config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB supplies an open database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithRegionCacheProvider overrides the store backing the region cache.
func WithRegionCacheProvider(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.regionStore = provider
	}
}

// WithPageTypes declares the page types. Without it a single "standard"
// template type with a "main" region is used.
func WithPageTypes(types ...pages.Type) Option {
	return func(c *Container) {
		c.pageTypes = append(c.pageTypes, types...)
	}
}

// WithURLModule registers the url module application types refer to by
// URLConf.
func WithURLModule(name string, table *urls.Table) Option {
	return func(c *Container) {
		if c.urlModules == nil {
			c.urlModules = map[string]*urls.Table{}
		}
		c.urlModules[name] = table
	}
}

// WithRootRoutes adds routes to the root table ahead of the page catch-all.
func WithRootRoutes(routes ...urls.Route) Option {
	return func(c *Container) {
		c.rootRoutes = append(c.rootRoutes, routes...)
	}
}

// WithNotFoundHandler sets the handler for unknown pages and paths.
func WithNotFoundHandler(handler http.Handler) Option {
	return func(c *Container) {
		c.notFound = handler
	}
}

// WithTemplateFS overrides the template directory from the config.
func WithTemplateFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.templateFS = fsys
	}
}

// WithPlugins registers additional plugin types.
func WithPlugins(registrar PluginRegistrar) Option {
	return func(c *Container) {
		if registrar != nil {
			c.registrars = append(c.registrars, registrar)
		}
	}
}

// WithSection registers section hooks on the region pipeline.
func WithSection(key string, handler regions.SectionHandler) Option {
	return func(c *Container) {
		if c.sections == nil {
			c.sections = map[string]regions.SectionHandler{}
		}
		c.sections[key] = handler
	}
}

// WithPluginConfig tunes the built-in plugins. Snippets from the template
// config are appended.
func WithPluginConfig(cfg plugins.Config) Option {
	return func(c *Container) {
		c.pluginCfg = cfg
	}
}

// WithPageViewOptions passes options to the public page view.
func WithPageViewOptions(opts ...feinhttp.PageViewOption) Option {
	return func(c *Container) {
		c.viewOptions = append(c.viewOptions, opts...)
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLoggerProvider,
		c.configureStorage,
		c.configureCacheDefaults,
		c.configureRepositories,
		c.configureTypes,
		c.configureServices,
		c.configureRendering,
		c.configureRouting,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	logging.ModuleLogger(c.loggerProvider, "cms").Info("container.configured",
		"storage", c.storageDriver(),
		"cache", c.Config.Cache.Enabled,
		"region_cache", c.regionCache != nil,
		"languages", c.Config.LanguageCodes(),
		"page_types", len(c.types.All()),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}
	switch normalize(c.Config.Logging.Provider) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) storageDriver() string {
	if c.db != nil && normalize(c.Config.Storage.Driver) == "memory" {
		return "bun"
	}
	return normalize(c.Config.Storage.Driver)
}

func (c *Container) configureStorage() error {
	if c.db != nil {
		return nil
	}
	var (
		driverName string
		dialect    func(*sql.DB) *bun.DB
	)
	switch normalize(c.Config.Storage.Driver) {
	case "sqlite":
		driverName = "sqlite3"
		dialect = func(sqlDB *sql.DB) *bun.DB { return bun.NewDB(sqlDB, sqlitedialect.New()) }
	case "postgres":
		driverName = "pgx"
		dialect = func(sqlDB *sql.DB) *bun.DB { return bun.NewDB(sqlDB, pgdialect.New()) }
	default:
		return nil
	}
	sqlDB, err := sql.Open(driverName, c.Config.Storage.DSN)
	if err != nil {
		return fmt.Errorf("di: open %s: %w", driverName, err)
	}
	c.db = dialect(sqlDB)
	c.ownsDB = true
	return c.ensureSchema(context.Background())
}

// ensureSchema creates the page and content tables when they are missing.
func (c *Container) ensureSchema(ctx context.Context) error {
	models := []any{(*pages.Page)(nil), (*content.Item)(nil)}
	for _, model := range models {
		if _, err := c.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("di: create table for %T: %w", model, err)
		}
	}
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		return nil
	}

	if c.db != nil && c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}

	if !c.Config.Features.RegionCache {
		return nil
	}
	if c.regionStore == nil {
		switch normalize(c.Config.Cache.Provider) {
		case "redis":
			c.redisClient = redis.NewClient(&redis.Options{Addr: c.Config.Cache.RedisAddr})
			c.regionStore = regions.NewRedisCache(c.redisClient, "feincms:regions")
		default:
			c.regionStore = regions.NewMemoryCache(nil)
		}
	}
	c.regionCache = regions.NewCache(c.regionStore,
		regions.WithDefaultTTL(c.Config.Cache.RegionTTL),
		regions.WithCacheLogger(logging.RegionsLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureRepositories() error {
	if c.db == nil {
		c.pageRepo = pages.NewMemoryPageRepository()
		c.itemRepo = content.NewMemoryRepository()
		return nil
	}
	if c.cacheService != nil {
		c.pageRepo = pages.NewBunPageRepositoryWithCache(c.db, c.cacheService, c.keySerializer)
	} else {
		c.pageRepo = pages.NewBunPageRepository(c.db)
	}
	c.itemRepo = content.NewBunRepository(c.db)
	return nil
}

func (c *Container) configureTypes() error {
	declared := c.pageTypes
	if len(declared) == 0 {
		declared = []pages.Type{defaultPageType()}
	}
	types, err := pages.NewTypes(declared...)
	if err != nil {
		return err
	}
	c.types = types

	c.modules = apps.NewModules()
	for name, table := range c.urlModules {
		if err := c.modules.Register(name, table); err != nil {
			return err
		}
	}
	return nil
}

func defaultPageType() pages.Type {
	return pages.TemplateType{
		Key:      "standard",
		Title:    "Standard",
		Template: "pages/standard.html",
		Regions:  []pages.Region{{Key: "main", Title: "Main"}},
	}
}

func (c *Container) configureServices() error {
	c.resolver = apps.NewResolver(c.types, c.pageRepo,
		apps.WithResolverLogger(logging.AppsLogger(c.loggerProvider)),
	)
	c.cloner = newContentClonerProxy()
	c.pageSvc = pages.NewService(c.pageRepo, c.types,
		pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
		pages.WithLanguages(c.Config.DefaultLanguage, c.Config.LanguageCodes()...),
		pages.WithMenus(c.Config.MenuKeys()...),
		pages.WithNamespaceResolver(c.resolver),
		pages.WithContentCloner(c.cloner),
	)

	c.templates = renderer.NewHTMLTemplates(c.templateSource())
	c.plugins = renderer.NewRegistry(
		renderer.WithTemplates(c.templates),
		renderer.WithLogger(logging.RendererLogger(c.loggerProvider)),
	)
	c.schemas = validation.NewSchemas()
	pluginCfg := c.pluginCfg
	pluginCfg.Snippets = append(pluginCfg.Snippets, c.Config.Templates.Snippets...)
	if err := plugins.Register(c.plugins, c.schemas, pluginCfg); err != nil {
		return err
	}
	for _, registrar := range c.registrars {
		if err := registrar(c.plugins, c.schemas); err != nil {
			return err
		}
	}

	c.contentSvc = content.NewService(c.itemRepo,
		content.WithPages(c.pageSvc),
		content.WithPluginTypes(c.plugins),
		content.WithSchemas(c.schemas),
		content.WithLogger(logging.ContentLogger(c.loggerProvider)),
	)
	c.cloner.swap(c.contentSvc)

	c.importer = fixtures.NewImporter(c.pageSvc, c.contentSvc,
		fixtures.WithLogger(logging.FixturesLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) templateSource() fs.FS {
	if c.templateFS != nil {
		return c.templateFS
	}
	if dir := strings.TrimSpace(c.Config.Templates.Dir); dir != "" {
		return os.DirFS(dir)
	}
	return nil
}

func (c *Container) configureRendering() error {
	opts := []regions.Option{regions.WithLogger(logging.RegionsLogger(c.loggerProvider))}
	if c.regionCache != nil {
		opts = append(opts, regions.WithCache(c.regionCache))
	}
	for key, handler := range c.sections {
		opts = append(opts, regions.WithSection(key, handler))
	}
	pipeline, err := regions.New(c.plugins, opts...)
	if err != nil {
		return err
	}
	c.pipeline = pipeline
	c.loader = regions.NewLoader(c.contentSvc, c.pageSvc, c.types,
		regions.WithLoaderLogger(logging.RegionsLogger(c.loggerProvider)),
	)

	viewOpts := []feinhttp.PageViewOption{
		feinhttp.WithMenus(c.Config.MenuKeys()...),
		feinhttp.WithViewLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.Config.Cache.RegionTTL > 0 {
		viewOpts = append(viewOpts, feinhttp.WithRegionTTL(c.Config.Cache.RegionTTL))
	}
	if c.notFound != nil {
		viewOpts = append(viewOpts, feinhttp.WithNotFoundHandler(c.notFound))
	}
	viewOpts = append(viewOpts, c.viewOptions...)
	c.pageView = feinhttp.NewPageView(c.pageSvc, c.loader, c.pipeline, c.templates, viewOpts...)
	return nil
}

func (c *Container) configureRouting() error {
	routes := append([]urls.Route{}, c.rootRoutes...)
	routes = append(routes,
		urls.Path("", "page-root", c.pageView),
		urls.Path("*path", "page", c.pageView),
	)
	var tableOpts []urls.Option
	if c.notFound != nil {
		tableOpts = append(tableOpts, urls.WithErrorHandler(http.StatusNotFound, c.notFound))
	}
	root, err := urls.New("root", routes, tableOpts...)
	if err != nil {
		return err
	}
	c.root = root

	languages := i18n.FromModuleConfig(c.Config.DefaultLanguage, c.Config.LanguageCodes())
	builder, err := apps.NewBuilder(c.pageSvc, c.types, c.modules, c.root,
		apps.WithNamespacePrefix(c.Config.Apps.NamespacePrefix),
		apps.WithLanguages(languages),
		apps.WithNamespaceLookup(c.pageRepo),
		apps.WithBuilderLogger(logging.AppsLogger(c.loggerProvider)),
		apps.WithBaseURL(c.Config.Site.BaseURL),
	)
	if err != nil {
		return err
	}
	c.builder = builder
	c.negotiator = i18n.NewNegotiator(languages)
	return nil
}

// Close releases the database and cache connections the container opened.
func (c *Container) Close() error {
	var errs []error
	if c.redisClient != nil {
		errs = append(errs, c.redisClient.Close())
		c.redisClient = nil
	}
	if c.db != nil && c.ownsDB {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	return errors.Join(errs...)
}

// Handler serves the public site: language negotiation, application mounts
// and the page catch-all.
func (c *Container) Handler() http.Handler {
	return c.negotiator.Middleware(c.builder.Handler())
}

// AdminAPI returns the JSON administration API over the page and content
// services. Writes clear the region cache when it is enabled.
func (c *Container) AdminAPI(opts ...feinhttp.AdminOption) *feinhttp.AdminAPI {
	base := []feinhttp.AdminOption{
		feinhttp.WithPageService(c.pageSvc),
		feinhttp.WithContentService(c.contentSvc),
		feinhttp.WithPayloadSchemas(c.schemas),
		feinhttp.WithAdminLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.regionCache != nil {
		base = append(base, feinhttp.WithRegionCache(c.regionCache))
	}
	return feinhttp.NewAdminAPI(append(base, opts...)...)
}

// LoggerProvider returns the configured provider, nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns a module logger from the configured provider.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// DB returns the bun database, nil for in-memory storage.
func (c *Container) DB() *bun.DB {
	return c.db
}

func (c *Container) Types() *pages.Types {
	return c.types
}

func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

func (c *Container) PageRepository() pages.PageRepository {
	return c.pageRepo
}

func (c *Container) ContentService() content.Service {
	return c.contentSvc
}

func (c *Container) Plugins() *renderer.Registry {
	return c.plugins
}

func (c *Container) Schemas() *validation.Schemas {
	return c.schemas
}

func (c *Container) Templates() *renderer.HTMLTemplates {
	return c.templates
}

// RegionCache returns nil when the region cache feature is off.
func (c *Container) RegionCache() *regions.Cache {
	return c.regionCache
}

func (c *Container) Regions() *regions.Regions {
	return c.pipeline
}

func (c *Container) Loader() *regions.Loader {
	return c.loader
}

func (c *Container) PageView() *feinhttp.PageView {
	return c.pageView
}

func (c *Container) Resolver() *apps.Resolver {
	return c.resolver
}

func (c *Container) Builder() *apps.Builder {
	return c.builder
}

func (c *Container) RootTable() *urls.Table {
	return c.root
}

func (c *Container) Negotiator() *i18n.Negotiator {
	return c.negotiator
}

func (c *Container) Importer() *fixtures.Importer {
	return c.importer
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
