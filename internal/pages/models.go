package pages

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is one node of the page tree. Path is materialised from the ancestor
// chain on every save unless StaticPath is set.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID               uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	ParentID         *uuid.UUID        `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Position         int               `bun:"position,notnull,default:0" json:"position"`
	Title            string            `bun:"title,notnull" json:"title"`
	Slug             string            `bun:"slug,notnull,default:''" json:"slug"`
	Path             string            `bun:"path,notnull" json:"path"`
	StaticPath       bool              `bun:"static_path,notnull,default:false" json:"static_path"`
	IsActive         bool              `bun:"is_active,notnull" json:"is_active"`
	PageType         string            `bun:"page_type,notnull" json:"page_type"`
	AppNamespace     string            `bun:"app_namespace,notnull,default:''" json:"app_namespace"`
	AppOptions       map[string]string `bun:"app_options,type:jsonb" json:"app_options,omitempty"`
	LanguageCode     string            `bun:"language_code,notnull" json:"language_code"`
	TranslationOfID  *uuid.UUID        `bun:"translation_of_id,type:uuid" json:"translation_of_id,omitempty"`
	Menu             string            `bun:"menu,notnull,default:''" json:"menu"`
	RedirectToURL    string            `bun:"redirect_to_url,notnull,default:''" json:"redirect_to_url"`
	RedirectToPageID *uuid.UUID        `bun:"redirect_to_page_id,type:uuid" json:"redirect_to_page_id,omitempty"`
	CreatedAt        time.Time         `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time         `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	// TreeDepth is filled by tree queries; roots have depth 0.
	TreeDepth int `bun:"tree_depth,scanonly" json:"tree_depth,omitempty"`
}

// AppMount is the routing view of an active application page.
type AppMount struct {
	Path         string
	PageType     string
	Namespace    string
	LanguageCode string
}

// IsRoot reports whether the page has no parent.
func (p *Page) IsRoot() bool {
	return p.ParentID == nil
}

// Redirects reports whether the page is configured to redirect.
func (p *Page) Redirects() bool {
	return p.RedirectToURL != "" || p.RedirectToPageID != nil
}

// FieldValue returns a named attribute as a string. Application options are
// consulted after the fixed columns so applications can require their own
// fields.
func (p *Page) FieldValue(name string) string {
	switch name {
	case "title":
		return p.Title
	case "slug":
		return p.Slug
	case "path":
		return p.Path
	case "page_type":
		return p.PageType
	case "language_code":
		return p.LanguageCode
	case "menu":
		return p.Menu
	case "redirect_to_url":
		return p.RedirectToURL
	case "app_namespace":
		return p.AppNamespace
	case "redirect_to_page_id":
		return uuidString(p.RedirectToPageID)
	case "translation_of_id":
		return uuidString(p.TranslationOfID)
	case "parent_id":
		return uuidString(p.ParentID)
	}
	return p.AppOptions[name]
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	cloned := *p
	cloned.ParentID = cloneUUID(p.ParentID)
	cloned.TranslationOfID = cloneUUID(p.TranslationOfID)
	cloned.RedirectToPageID = cloneUUID(p.RedirectToPageID)
	cloned.AppOptions = maps.Clone(p.AppOptions)
	return &cloned
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func sameUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
