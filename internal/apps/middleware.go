package apps

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-feincms/internal/i18n"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/urls"
)

// Middleware scopes the application memo to the request and clears it
// once the request is done.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, finish := BeginRequest(r.Context())
		defer finish()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Handler routes requests through the routing table of the current
// application mounts. Application matches activate the mount language.
func (b *Builder) Handler() http.Handler {
	return Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		table, err := b.Table(ctx)
		if err != nil {
			b.logger.Error("apps.urlconf.failed", "error", err, "path", r.URL.Path)
			b.root.ServeError(w, r, http.StatusInternalServerError)
			return
		}
		match, err := table.Resolve(r.URL.Path)
		if err != nil {
			table.ServeError(w, r, http.StatusNotFound)
			return
		}
		match.TableID = table.ID()
		ctx = urls.WithMatch(ctx, match)
		if language, ok := b.matchLanguage(match); ok {
			ctx = i18n.WithLanguage(ctx, language)
		}
		match.Handler.ServeHTTP(w, r.WithContext(ctx))
	}))
}

// matchLanguage extracts the language from the outer namespace of an
// application match.
func (b *Builder) matchLanguage(match *urls.Match) (string, bool) {
	if len(match.Namespaces) < 2 {
		return "", false
	}
	outer := b.prefix + "-"
	if !strings.HasPrefix(match.Namespaces[0], outer) {
		return "", false
	}
	return strings.TrimPrefix(match.Namespaces[0], outer), true
}

// PageForAppRequest returns the page that mounted the application serving
// the current request.
func (b *Builder) PageForAppRequest(ctx context.Context) (*pages.Page, error) {
	match, ok := urls.MatchFromContext(ctx)
	if !ok {
		return nil, ErrNotApplicationMatch
	}
	language, ok := b.matchLanguage(match)
	if !ok {
		return nil, ErrNotApplicationMatch
	}
	if b.lookup == nil {
		return nil, ErrMountingPageNotFound
	}
	mounted, err := b.lookup.ListByNamespace(ctx, match.Namespaces[1], language)
	if err != nil {
		return nil, err
	}
	for _, page := range mounted {
		if page.IsActive {
			return page, nil
		}
	}
	return nil, ErrMountingPageNotFound
}
