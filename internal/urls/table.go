package urls

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Route is one entry of a routing table: either a view with a handler or an
// include of another table below a prefix.
type Route struct {
	Pattern   string
	Name      string
	Handler   http.Handler
	Include   *Table
	Namespace string
	// Literal marks an include prefix that is matched verbatim.
	Literal bool

	compiled *pattern
}

// Path declares a view route.
func Path(pattern, name string, handler http.Handler) Route {
	return Route{Pattern: pattern, Name: name, Handler: handler}
}

// HandleFunc declares a view route from a function.
func HandleFunc(pattern, name string, fn http.HandlerFunc) Route {
	return Route{Pattern: pattern, Name: name, Handler: fn}
}

// Include mounts table below the pattern under namespace. An empty
// namespace makes the included names visible in the parent.
func Include(pattern, namespace string, table *Table) Route {
	return Route{Pattern: pattern, Namespace: namespace, Include: table}
}

// Prefix mounts table below a literal path prefix. Characters with a
// meaning in route patterns are escaped.
func Prefix(prefix, namespace string, table *Table) Route {
	return Route{Pattern: prefix, Namespace: namespace, Include: table, Literal: true}
}

// IsInclude reports whether the route mounts another table.
func (r Route) IsInclude() bool {
	return r.Include != nil
}

// Option configures a table.
type Option func(*Table)

// WithErrorHandler sets the handler for one of the 400, 403, 404 and 500
// responses.
func WithErrorHandler(status int, handler http.Handler) Option {
	return func(t *Table) {
		if t.handlers == nil {
			t.handlers = map[int]http.Handler{}
		}
		t.handlers[status] = handler
	}
}

// WithErrorHandlers copies every error handler in handlers.
func WithErrorHandlers(handlers map[int]http.Handler) Option {
	return func(t *Table) {
		for status, handler := range handlers {
			WithErrorHandler(status, handler)(t)
		}
	}
}

var errorStatuses = []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError}

// Table is an immutable ordered routing table. The first route that matches
// wins, both for dynamic and static entries.
type Table struct {
	id       string
	routes   []Route
	handlers map[int]http.Handler
}

// New compiles routes into a table identified by id.
func New(id string, routes []Route, opts ...Option) (*Table, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrTableIDRequired
	}
	t := &Table{id: id, routes: make([]Route, 0, len(routes))}
	for _, route := range routes {
		compiled, err := compileRoute(route)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", id, err)
		}
		t.routes = append(t.routes, compiled)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	for status := range t.handlers {
		if !slices.Contains(errorStatuses, status) {
			return nil, fmt.Errorf("%w: %d", ErrErrorStatus, status)
		}
	}
	return t, nil
}

// MustNew is New for tables declared at start.
func MustNew(id string, routes []Route, opts ...Option) *Table {
	t, err := New(id, routes, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func compileRoute(route Route) (Route, error) {
	var (
		compiled *pattern
		err      error
	)
	switch {
	case route.Include != nil && route.Literal:
		compiled, err = compileLiteral(route.Pattern)
	case route.Include != nil:
		compiled, err = compileTemplate(route.Pattern, false)
	case route.Handler == nil:
		return route, fmt.Errorf("%w: %q", ErrRouteHandlerNil, route.Pattern)
	default:
		compiled, err = compileTemplate(route.Pattern, true)
	}
	if err != nil {
		return route, err
	}
	route.compiled = compiled
	return route, nil
}

// ID identifies the table in a registry.
func (t *Table) ID() string {
	return t.id
}

// Routes returns the routes in declaration order.
func (t *Table) Routes() []Route {
	return slices.Clone(t.routes)
}

// ErrorHandler returns the handler configured for status.
func (t *Table) ErrorHandler(status int) (http.Handler, bool) {
	handler, ok := t.handlers[status]
	return handler, ok
}

// ErrorHandlers returns a copy of the configured error handlers.
func (t *Table) ErrorHandlers() map[int]http.Handler {
	return maps.Clone(t.handlers)
}

// Namespaces lists the namespaces of the table's includes, in order.
func (t *Table) Namespaces() []string {
	var out []string
	for _, route := range t.routes {
		if route.Include != nil && route.Namespace != "" {
			out = append(out, route.Namespace)
		}
	}
	return out
}
