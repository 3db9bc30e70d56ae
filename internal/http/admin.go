package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	pagescmd "github.com/goliatone/go-feincms/internal/commands/pages"
	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/validation"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// CacheInvalidator drops rendered output after admin writes.
type CacheInvalidator interface {
	Clear(ctx context.Context) error
}

// AdminAPI registers the page tree and content admin endpoints.
type AdminAPI struct {
	basePath string
	pages    pages.Service
	content  content.Service
	cache    CacheInvalidator
	schemas  *validation.Schemas
	logger   interfaces.Logger

	move   *pagescmd.MovePageHandler
	clone  *pagescmd.ClonePageHandler
	delete *pagescmd.DeletePageHandler
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/admin/api",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	if api.pages != nil {
		api.move = pagescmd.NewMovePageHandler(api.pages, api.logger)
		api.clone = pagescmd.NewClonePageHandler(api.pages, api.logger)
		api.delete = pagescmd.NewDeletePageHandler(api.pages, api.logger)
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithPageService wires the page tree service.
func WithPageService(service pages.Service) AdminOption {
	return func(api *AdminAPI) {
		api.pages = service
	}
}

// WithContentService wires the content item service.
func WithContentService(service content.Service) AdminOption {
	return func(api *AdminAPI) {
		api.content = service
	}
}

// WithRegionCache clears cached region output after every successful write.
func WithRegionCache(cache CacheInvalidator) AdminOption {
	return func(api *AdminAPI) {
		api.cache = cache
	}
}

// WithPayloadSchemas publishes the plugin payload schemas in the API
// description.
func WithPayloadSchemas(schemas *validation.Schemas) AdminOption {
	return func(api *AdminAPI) {
		api.schemas = schemas
	}
}

// WithAdminLogger sets the logger used by the API and its commands.
func WithAdminLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	base := joinPath(api.basePath, "")

	api.registerPageRoutes(mux, base)
	api.registerContentRoutes(mux, base)
	mux.HandleFunc("GET "+joinPath(base, "types"), api.handleTypes)
	mux.HandleFunc("GET "+joinPath(base, "openapi.json"), api.handleOpenAPI)

	return nil
}

// changed runs after a successful write. Cache failures are logged only.
func (api *AdminAPI) changed(ctx context.Context, operation string) {
	if api.cache == nil {
		return
	}
	if err := api.cache.Clear(ctx); err != nil {
		api.logger.Warn("admin.cache.clear_failed", "operation", operation, "error", err)
	}
}

type regionView struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Inherited bool   `json:"inherited,omitempty"`
}

type typeView struct {
	Key         string       `json:"key"`
	Title       string       `json:"title"`
	Template    string       `json:"template,omitempty"`
	Application bool         `json:"application"`
	URLConf     string       `json:"urlconf,omitempty"`
	Regions     []regionView `json:"regions"`
}

func (api *AdminAPI) handleTypes(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	all := api.pages.Types().All()
	out := make([]typeView, 0, len(all))
	for _, t := range all {
		view := typeView{Key: t.TypeKey(), Title: t.TypeTitle(), Template: t.TemplateName(), Regions: []regionView{}}
		if app, ok := t.(pages.ApplicationType); ok {
			view.Application = true
			view.URLConf = app.URLConf
		}
		for _, region := range t.RegionList() {
			view.Regions = append(view.Regions, regionView{Key: region.Key, Title: region.Title, Inherited: region.Inherited})
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}
