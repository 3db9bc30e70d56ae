package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/i18n"
	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/regions"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// ErrTemplateMissing reports a page type without a template to render.
var ErrTemplateMissing = errors.New("http: page type has no template")

// PageSource resolves the pages served by PageView.
type PageSource interface {
	GetByPath(ctx context.Context, path string) (*pages.Page, error)
	Get(ctx context.Context, id uuid.UUID) (*pages.Page, error)
	MenuPages(ctx context.Context, menu, language string) ([]*pages.Page, error)
	Types() *pages.Types
}

// PageView serves active pages by their materialised path.
type PageView struct {
	pages     PageSource
	loader    *regions.Loader
	regions   *regions.Regions
	templates interfaces.TemplateRenderer
	notFound  http.Handler
	menus     []string
	regionTTL time.Duration
	permanent bool
	logger    interfaces.Logger
}

// PageViewOption configures PageView.
type PageViewOption func(*PageView)

// WithNotFoundHandler serves unknown and inactive paths.
func WithNotFoundHandler(handler http.Handler) PageViewOption {
	return func(v *PageView) {
		if handler != nil {
			v.notFound = handler
		}
	}
}

// WithMenus exposes the pages of each menu key to templates as
// .menus.<key>, filtered by the page language.
func WithMenus(keys ...string) PageViewOption {
	return func(v *PageView) {
		v.menus = append([]string(nil), keys...)
	}
}

// WithRegionTTL sets the expiry of cached region output.
func WithRegionTTL(ttl time.Duration) PageViewOption {
	return func(v *PageView) {
		v.regionTTL = ttl
	}
}

// WithPermanentRedirects answers redirect pages with 301 instead of 302.
func WithPermanentRedirects(permanent bool) PageViewOption {
	return func(v *PageView) {
		v.permanent = permanent
	}
}

// WithViewLogger sets the view logger.
func WithViewLogger(logger interfaces.Logger) PageViewOption {
	return func(v *PageView) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewPageView wires the view to its page source, region pipeline and
// templates.
func NewPageView(source PageSource, loader *regions.Loader, pipeline *regions.Regions, templates interfaces.TemplateRenderer, opts ...PageViewOption) *PageView {
	v := &PageView{
		pages:     source,
		loader:    loader,
		regions:   pipeline,
		templates: templates,
		notFound:  http.NotFoundHandler(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

func (v *PageView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := r.URL.Path
	if path == "" {
		path = "/"
	}

	page, err := v.pages.GetByPath(ctx, path)
	if pages.IsNotFound(err) && !strings.HasSuffix(path, "/") {
		if _, slashErr := v.pages.GetByPath(ctx, path+"/"); slashErr == nil {
			target := path + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
	}
	switch {
	case pages.IsNotFound(err):
		v.notFound.ServeHTTP(w, r)
		return
	case err != nil:
		v.fail(w, r, err)
		return
	}
	if !page.IsActive {
		v.notFound.ServeHTTP(w, r)
		return
	}

	if page.Redirects() {
		target, err := v.redirectTarget(ctx, page)
		if err != nil {
			v.fail(w, r, err)
			return
		}
		status := http.StatusFound
		if v.permanent {
			status = http.StatusMovedPermanently
		}
		http.Redirect(w, r, target, status)
		return
	}

	ctx = i18n.WithLanguage(ctx, page.LanguageCode)
	html, err := v.Render(ctx, page, nil)
	if err != nil {
		v.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", page.LanguageCode)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (v *PageView) redirectTarget(ctx context.Context, page *pages.Page) (string, error) {
	if page.RedirectToURL != "" {
		return page.RedirectToURL, nil
	}
	target, err := v.pages.Get(ctx, *page.RedirectToPageID)
	if err != nil {
		return "", err
	}
	return target.Path, nil
}

// Render renders the template of page with every declared region. extra is
// merged into the template data, which always carries page, language,
// regions and menus.
func (v *PageView) Render(ctx context.Context, page *pages.Page, extra map[string]any) (string, error) {
	pageType := v.pages.Types().Lookup(page.PageType)
	name := pageType.TemplateName()
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrTemplateMissing, pageType.TypeKey())
	}

	load := sync.OnceValues(func() (*regions.Contents, error) {
		return v.loader.Load(ctx, page)
	})
	regionData := map[string]any{"page": page, "language": page.LanguageCode}
	rendered := make(map[string]template.HTML, len(pageType.RegionList()))
	for _, region := range pageType.RegionList() {
		key := regions.CacheKey{Label: "page", ID: page.ID.String(), Region: region.Key}
		html, err := v.regions.RenderCached(ctx, key, v.regionTTL, func(context.Context) (*regions.Contents, error) {
			return load()
		}, regionData)
		if err != nil {
			return "", err
		}
		rendered[region.Key] = template.HTML(html)
	}

	menus := make(map[string][]*pages.Page, len(v.menus))
	for _, menu := range v.menus {
		list, err := v.pages.MenuPages(ctx, menu, page.LanguageCode)
		if err != nil {
			return "", err
		}
		menus[menu] = list
	}

	data := map[string]any{
		"page":     page,
		"language": page.LanguageCode,
		"regions":  rendered,
		"menus":    menus,
	}
	maps.Copy(data, extra)
	return v.templates.Render(name, data)
}

func (v *PageView) fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.WithPageContext(v.logger, r.URL.Path, i18n.Language(r.Context()), "").
		Error("http.page.render_failed", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
