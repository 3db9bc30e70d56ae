package apps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// NamespaceLookup finds pages mounted under an application namespace.
type NamespaceLookup interface {
	ListByNamespace(ctx context.Context, namespace, language string) ([]*pages.Page, error)
}

// Resolver computes application namespaces and rejects configurations that
// would mount the same application twice in one language.
type Resolver struct {
	types  *pages.Types
	lookup NamespaceLookup
	logger interfaces.Logger
}

// ResolverOption configures the resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a resolver over the static type registry.
func NewResolver(types *pages.Types, lookup NamespaceLookup, opts ...ResolverOption) *Resolver {
	r := &Resolver{types: types, lookup: lookup, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// NamespaceFor returns the application namespace of page, or "" for
// template types.
func (r *Resolver) NamespaceFor(page *pages.Page) string {
	app, ok := r.types.Lookup(page.PageType).(pages.ApplicationType)
	if !ok {
		return ""
	}
	return app.Namespace(page)
}

// Validate reports missing required fields and namespace clashes as a
// field-attributed validation error.
func (r *Resolver) Validate(ctx context.Context, page *pages.Page) error {
	app, ok := r.types.Lookup(page.PageType).(pages.ApplicationType)
	if !ok {
		return nil
	}
	errs := validation.Errors{}
	for _, field := range app.RequiredFields {
		if strings.TrimSpace(page.FieldValue(field)) == "" {
			errs[field] = fmt.Errorf("required by application %s", app.Key)
		}
	}

	namespace := page.AppNamespace
	if namespace == "" {
		namespace = app.Namespace(page)
	}
	if r.lookup != nil && namespace != "" {
		mounted, err := r.lookup.ListByNamespace(ctx, namespace, page.LanguageCode)
		if err != nil {
			return err
		}
		for _, other := range mounted {
			if other.ID == page.ID {
				continue
			}
			errs["page_type"] = errors.New("application namespace " + namespace + " is already mounted at " + other.Path + " for language " + page.LanguageCode)
			r.logger.Warn("apps.namespace.clash", "namespace", namespace, "language", page.LanguageCode, "existing_path", other.Path, "page_path", page.Path)
			break
		}
	}

	if len(errs) > 0 {
		return pages.ValidationFailure(errs)
	}
	return nil
}
