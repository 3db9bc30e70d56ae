package urls

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Match is the outcome of resolving a request path.
type Match struct {
	Handler    http.Handler
	Name       string
	Namespaces []string
	Params     map[string]string
	Path       string
	TableID    string
}

// Namespace joins the namespaces the match passed through.
func (m *Match) Namespace() string {
	return strings.Join(m.Namespaces, ":")
}

// ViewName is the fully qualified name of the matched route.
func (m *Match) ViewName() string {
	if ns := m.Namespace(); ns != "" && m.Name != "" {
		return ns + ":" + m.Name
	}
	return m.Name
}

// Param returns the captured value of name.
func (m *Match) Param(name string) string {
	return m.Params[name]
}

// Resolve finds the first route matching path. Leading slashes are ignored so
// "/blog/" and "blog/" resolve the same way.
func (t *Table) Resolve(path string) (*Match, error) {
	m, ok := t.resolve(strings.TrimPrefix(path, "/"), nil, map[string]string{})
	if !ok {
		return nil, &NoMatchError{Path: path}
	}
	m.Path = path
	m.TableID = t.id
	return m, nil
}

func (t *Table) resolve(path string, namespaces []string, params map[string]string) (*Match, bool) {
	for _, route := range t.routes {
		captured := maps.Clone(params)
		rest, ok := route.compiled.match(path, captured)
		if !ok {
			continue
		}
		if route.Include == nil {
			return &Match{
				Handler:    route.Handler,
				Name:       route.Name,
				Namespaces: slices.Clone(namespaces),
				Params:     captured,
			}, true
		}
		nested := namespaces
		if route.Namespace != "" {
			nested = append(slices.Clone(namespaces), route.Namespace)
		}
		if m, ok := route.Include.resolve(rest, nested, captured); ok {
			return m, true
		}
	}
	return nil, false
}

// ServeHTTP dispatches to the matched handler with the match stored in the
// request context. Unmatched paths go to the 404 handler.
func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m, err := t.Resolve(r.URL.Path)
	if err != nil {
		t.ServeError(w, r, http.StatusNotFound)
		return
	}
	m.Handler.ServeHTTP(w, r.WithContext(WithMatch(r.Context(), m)))
}

// ServeError writes status through the configured error handler or the
// plain status text.
func (t *Table) ServeError(w http.ResponseWriter, r *http.Request, status int) {
	if handler, ok := t.handlers[status]; ok && handler != nil {
		handler.ServeHTTP(w, r)
		return
	}
	http.Error(w, http.StatusText(status), status)
}

// Reverse builds the path of a namespaced view name such as
// "apps-en:blog:detail".
func (t *Table) Reverse(viewName string, params map[string]string) (string, error) {
	parts := strings.Split(strings.TrimSpace(viewName), ":")
	name := parts[len(parts)-1]
	if name == "" {
		return "", &NoReverseMatchError{Names: []string{viewName}}
	}
	prefixes, route, ok := t.lookup(parts[:len(parts)-1], name)
	if !ok {
		return "", &NoReverseMatchError{Names: []string{viewName}}
	}
	var out strings.Builder
	out.WriteString("/")
	for _, p := range append(prefixes, route.compiled) {
		segment, err := p.expand(params)
		if err != nil {
			return "", fmt.Errorf("reverse %s: %w", viewName, err)
		}
		out.WriteString(segment)
	}
	return out.String(), nil
}

// lookup walks namespaces to the route called name. Includes without a
// namespace are transparent.
func (t *Table) lookup(namespaces []string, name string) ([]*pattern, *Route, bool) {
	for i := range t.routes {
		route := &t.routes[i]
		if route.Include == nil {
			if len(namespaces) == 0 && route.Name == name {
				return nil, route, true
			}
			continue
		}
		var (
			prefixes []*pattern
			found    *Route
			ok       bool
		)
		switch {
		case route.Namespace == "":
			prefixes, found, ok = route.Include.lookup(namespaces, name)
		case len(namespaces) > 0 && route.Namespace == namespaces[0]:
			prefixes, found, ok = route.Include.lookup(namespaces[1:], name)
		}
		if ok {
			return append([]*pattern{route.compiled}, prefixes...), found, true
		}
	}
	return nil, nil, false
}

type matchKey struct{}

// WithMatch stores the resolved match on ctx.
func WithMatch(ctx context.Context, m *Match) context.Context {
	return context.WithValue(ctx, matchKey{}, m)
}

// MatchFromContext returns the match stored by ServeHTTP.
func MatchFromContext(ctx context.Context) (*Match, bool) {
	if ctx == nil {
		return nil, false
	}
	m, ok := ctx.Value(matchKey{}).(*Match)
	return m, ok && m != nil
}
