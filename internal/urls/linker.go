package urls

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const rootGroup = "site"

// RouteConfig exports the named routes of the table as a go-urlkit
// configuration. Namespaced includes become nested groups; includes
// without a namespace are flattened into their parent.
func (t *Table) RouteConfig(baseURL string) *urlkit.Config {
	root := urlkit.GroupConfig{
		Name:    rootGroup,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Paths:   map[string]string{},
	}
	t.fillGroup(&root, "")
	return &urlkit.Config{Groups: []urlkit.GroupConfig{root}}
}

func (t *Table) fillGroup(group *urlkit.GroupConfig, prefix string) {
	for _, route := range t.routes {
		switch {
		case route.Include == nil:
			if route.Name == "" {
				continue
			}
			if _, exists := group.Paths[route.Name]; !exists {
				group.Paths[route.Name] = "/" + prefix + route.compiled.urlkitPath()
			}
		case route.Namespace == "":
			route.Include.fillGroup(group, prefix+route.compiled.urlkitPath())
		default:
			if hasGroup(group.Groups, route.Namespace) {
				continue
			}
			child := urlkit.GroupConfig{
				Name:  route.Namespace,
				Path:  groupPath(prefix + route.compiled.urlkitPath()),
				Paths: map[string]string{},
			}
			route.Include.fillGroup(&child, "")
			group.Groups = append(group.Groups, child)
		}
	}
}

func hasGroup(groups []urlkit.GroupConfig, name string) bool {
	for _, g := range groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

func groupPath(prefix string) string {
	trimmed := strings.TrimSuffix(prefix, "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

// Linker builds absolute URLs for namespaced view names through a go-urlkit
// route manager generated from a table.
type Linker struct {
	manager *urlkit.RouteManager
}

// NewLinker exports table to go-urlkit with baseURL as the site root.
func NewLinker(table *Table, baseURL string) *Linker {
	return &Linker{manager: urlkit.NewRouteManager(table.RouteConfig(baseURL))}
}

// URL builds the absolute URL of viewName. query values are appended in
// map order.
func (l *Linker) URL(viewName string, params map[string]string, query map[string]string) (string, error) {
	parts := strings.Split(strings.TrimSpace(viewName), ":")
	name := parts[len(parts)-1]

	group, err := safeGroup(func() *urlkit.Group { return l.manager.Group(rootGroup) })
	if err != nil {
		return "", err
	}
	for _, ns := range parts[:len(parts)-1] {
		parent := group
		if group, err = safeGroup(func() *urlkit.Group { return parent.Group(ns) }); err != nil {
			return "", &NoReverseMatchError{Names: []string{viewName}}
		}
	}

	builder, err := safeBuilder(group, name)
	if err != nil {
		return "", &NoReverseMatchError{Names: []string{viewName}}
	}
	for key, value := range params {
		builder.WithParam(key, value)
	}
	for key, value := range query {
		builder.WithQuery(key, value)
	}
	return builder.Build()
}

func safeGroup(fn func() *urlkit.Group) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("urls: urlkit group lookup: %v", rec)
		}
	}()
	group = fn()
	if group == nil {
		return nil, fmt.Errorf("urls: urlkit group not found")
	}
	return group, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("urls: urlkit route %q: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}
