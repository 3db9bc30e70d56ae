package pages

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTypesEmpty           = errors.New("pages: at least one page type is required")
	ErrTypeKeyRequired      = errors.New("pages: page type key is required")
	ErrTypeTitleRequired    = errors.New("pages: page type title is required")
	ErrTypeDuplicateKey     = errors.New("pages: duplicate page type key")
	ErrTypeTemplateRequired = errors.New("pages: template type requires a template name")
	ErrTypeURLConfRequired  = errors.New("pages: application type requires a url module")
)

// Region is a named content slot declared by a page type.
type Region struct {
	Key   string
	Title string
	// Inherited regions fall back to the nearest ancestor's content when the
	// page has none of its own.
	Inherited bool
}

// Type is the closed set of page type descriptors: TemplateType or
// ApplicationType.
type Type interface {
	TypeKey() string
	TypeTitle() string
	TemplateName() string
	RegionList() []Region
	pageType()
}

// TemplateType renders a page through a template and its regions.
type TemplateType struct {
	Key      string
	Title    string
	Template string
	Regions  []Region
}

func (t TemplateType) TypeKey() string      { return t.Key }
func (t TemplateType) TypeTitle() string    { return t.Title }
func (t TemplateType) TemplateName() string { return t.Template }
func (t TemplateType) RegionList() []Region { return t.Regions }
func (TemplateType) pageType()              {}

// ApplicationType mounts a URL module below the page path.
type ApplicationType struct {
	Key   string
	Title string
	// URLConf identifies the URL module included under the page path.
	URLConf string
	// RequiredFields must be non-empty on pages of this type. Names follow
	// Page.FieldValue.
	RequiredFields []string
	// AppNamespace derives the instance namespace. Defaults to the type key.
	AppNamespace func(*Page) string
	Template     string
	Regions      []Region
}

func (t ApplicationType) TypeKey() string      { return t.Key }
func (t ApplicationType) TypeTitle() string    { return t.Title }
func (t ApplicationType) TemplateName() string { return t.Template }
func (t ApplicationType) RegionList() []Region { return t.Regions }
func (ApplicationType) pageType()              {}

// Namespace returns the instance namespace for the page.
func (t ApplicationType) Namespace(page *Page) string {
	if t.AppNamespace != nil {
		if ns := t.AppNamespace(page); ns != "" {
			return ns
		}
	}
	return t.Key
}

// Types is the immutable registry of page types, built once at start.
type Types struct {
	ordered []Type
	byKey   map[string]Type
}

// NewTypes validates the descriptors and freezes them in declaration order.
func NewTypes(types ...Type) (*Types, error) {
	if len(types) == 0 {
		return nil, ErrTypesEmpty
	}
	registry := &Types{
		ordered: make([]Type, 0, len(types)),
		byKey:   make(map[string]Type, len(types)),
	}
	for _, t := range types {
		key := strings.TrimSpace(t.TypeKey())
		if key == "" {
			return nil, ErrTypeKeyRequired
		}
		if strings.TrimSpace(t.TypeTitle()) == "" {
			return nil, fmt.Errorf("%w: %s", ErrTypeTitleRequired, key)
		}
		if _, dup := registry.byKey[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrTypeDuplicateKey, key)
		}
		switch typed := t.(type) {
		case TemplateType:
			if strings.TrimSpace(typed.Template) == "" {
				return nil, fmt.Errorf("%w: %s", ErrTypeTemplateRequired, key)
			}
		case ApplicationType:
			if strings.TrimSpace(typed.URLConf) == "" {
				return nil, fmt.Errorf("%w: %s", ErrTypeURLConfRequired, key)
			}
		}
		registry.ordered = append(registry.ordered, t)
		registry.byKey[key] = t
	}
	return registry, nil
}

// MustTypes is NewTypes for static declarations.
func MustTypes(types ...Type) *Types {
	registry, err := NewTypes(types...)
	if err != nil {
		panic(err)
	}
	return registry
}

// Lookup returns the type for key. Unknown keys resolve to the first declared
// type so pages referencing a removed type keep rendering.
func (t *Types) Lookup(key string) Type {
	if found, ok := t.byKey[key]; ok {
		return found
	}
	return t.ordered[0]
}

// Has reports whether key is declared.
func (t *Types) Has(key string) bool {
	_, ok := t.byKey[key]
	return ok
}

// Default returns the first declared type.
func (t *Types) Default() Type {
	return t.ordered[0]
}

// All returns the types in declaration order.
func (t *Types) All() []Type {
	return append([]Type(nil), t.ordered...)
}

// Application returns the application type declared under key.
func (t *Types) Application(key string) (ApplicationType, bool) {
	app, ok := t.byKey[key].(ApplicationType)
	return app, ok
}

// Applications returns every application type in declaration order.
func (t *Types) Applications() []ApplicationType {
	var out []ApplicationType
	for _, typ := range t.ordered {
		if app, ok := typ.(ApplicationType); ok {
			out = append(out, app)
		}
	}
	return out
}

// ApplicationKeys returns the keys of every application type.
func (t *Types) ApplicationKeys() []string {
	apps := t.Applications()
	keys := make([]string, 0, len(apps))
	for _, app := range apps {
		keys = append(keys, app.Key)
	}
	return keys
}

// RegionsFor returns the regions of the page's (resolved) type.
func (t *Types) RegionsFor(page *Page) []Region {
	return t.Lookup(page.PageType).RegionList()
}
