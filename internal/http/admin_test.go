package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/internal/pages"
)

type countingCache struct {
	clears atomic.Int32
}

func (c *countingCache) Clear(context.Context) error {
	c.clears.Add(1)
	return nil
}

func setupAdminAPI(t *testing.T) (*http.ServeMux, *countingCache) {
	t.Helper()
	tree, items := newSite(t)
	cache := &countingCache{}
	api := NewAdminAPI(WithPageService(tree), WithContentService(items), WithRegionCache(cache))
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return mux, cache
}

func createPage(t *testing.T, mux http.Handler, body map[string]any) pages.Page {
	t.Helper()
	var page pages.Page
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages", body, http.StatusCreated), &page)
	return page
}

func TestAdminAPI_PageTreeLifecycle(t *testing.T) {
	mux, cache := setupAdminAPI(t)

	home := createPage(t, mux, map[string]any{"title": "Home"})
	if home.Path != "/" || !home.IsActive {
		t.Fatalf("unexpected home %+v", home)
	}
	blog := createPage(t, mux, map[string]any{"title": "Blog", "parent_id": home.ID.String()})
	if blog.Path != "/blog/" || blog.Position != 10 {
		t.Fatalf("expected derived slug and position, got %+v", blog)
	}
	news := createPage(t, mux, map[string]any{"title": "News", "slug": "news", "parent_id": home.ID.String()})

	var list []pages.Page
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages", nil, http.StatusOK), &list)
	if len(list) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(list))
	}

	var updated pages.Page
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodPut, "/admin/api/pages/"+blog.ID.String(),
		map[string]any{"slug": "journal"}, http.StatusOK), &updated)
	if updated.Path != "/journal/" || updated.Title != "Blog" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	var moved pages.Page
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages/"+news.ID.String()+"/move",
		map[string]any{"target_id": blog.ID.String(), "position": "first-child"}, http.StatusOK), &moved)
	if moved.Path != "/journal/news/" {
		t.Fatalf("expected moved path /journal/news/, got %q", moved.Path)
	}

	var children []pages.Page
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/"+blog.ID.String()+"/children", nil, http.StatusOK), &children)
	if len(children) != 1 || children[0].ID != news.ID {
		t.Fatalf("unexpected children %+v", children)
	}

	var ancestors []pages.Page
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/"+news.ID.String()+"/ancestors", nil, http.StatusOK), &ancestors)
	if len(ancestors) != 2 || ancestors[0].ID != home.ID || ancestors[1].ID != blog.ID {
		t.Fatalf("expected root first ancestors, got %+v", ancestors)
	}

	doJSONRequest(t, mux, http.MethodDelete, "/admin/api/pages/"+blog.ID.String(), nil, http.StatusNoContent)
	doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/"+news.ID.String(), nil, http.StatusNotFound)

	if cache.clears.Load() != 6 {
		t.Fatalf("expected a cache clear per write, got %d", cache.clears.Load())
	}
}

func TestAdminAPI_CloneWithContent(t *testing.T) {
	mux, _ := setupAdminAPI(t)
	home := createPage(t, mux, map[string]any{"title": "Home"})
	source := createPage(t, mux, map[string]any{"title": "Source", "parent_id": home.ID.String(), "menu": "main"})
	target := createPage(t, mux, map[string]any{"title": "Target", "parent_id": home.ID.String()})

	sourceContent := "/admin/api/pages/" + source.ID.String() + "/content"
	var item content.Item
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodPost, sourceContent,
		map[string]any{"region": "main", "type": "text", "payload": map[string]any{"text": "hello"}}, http.StatusCreated), &item)
	if item.Ordering != 10 || item.PageID != source.ID {
		t.Fatalf("unexpected item %+v", item)
	}
	doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages/"+target.ID.String()+"/content",
		map[string]any{"region": "main", "type": "text", "payload": map[string]any{"text": "replaced"}}, http.StatusCreated)

	var cloned pages.Page
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages/"+source.ID.String()+"/clone",
		map[string]any{"target_id": target.ID.String(), "fields": []string{"menu"}, "replace_content": true}, http.StatusOK), &cloned)
	if cloned.ID != target.ID || cloned.Menu != "main" || cloned.Title != "Target" {
		t.Fatalf("unexpected clone result %+v", cloned)
	}

	var targetItems []content.Item
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/"+target.ID.String()+"/content", nil, http.StatusOK), &targetItems)
	if len(targetItems) != 1 || targetItems[0].PayloadString("text") != "hello" || targetItems[0].ID == item.ID {
		t.Fatalf("expected copied content on target, got %+v", targetItems)
	}
	var sourceItems []content.Item
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodGet, sourceContent+"?region=main", nil, http.StatusOK), &sourceItems)
	if len(sourceItems) != 1 || sourceItems[0].ID != item.ID {
		t.Fatalf("expected source content untouched, got %+v", sourceItems)
	}
}

func TestAdminAPI_ContentItemLifecycle(t *testing.T) {
	mux, _ := setupAdminAPI(t)
	home := createPage(t, mux, map[string]any{"title": "Home"})

	var item content.Item
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages/"+home.ID.String()+"/content",
		map[string]any{"region": "sidebar", "type": "text", "payload": map[string]any{"text": "one"}}, http.StatusCreated), &item)

	itemPath := "/admin/api/content/" + item.ID.String()
	var updated content.Item
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodPut, itemPath,
		map[string]any{"payload": map[string]any{"text": "two"}}, http.StatusOK), &updated)
	if updated.PayloadString("text") != "two" || updated.Region != "sidebar" || updated.Ordering != item.Ordering {
		t.Fatalf("unexpected update %+v", updated)
	}

	doJSONRequest(t, mux, http.MethodDelete, itemPath, nil, http.StatusNoContent)
	doJSONRequest(t, mux, http.MethodGet, itemPath, nil, http.StatusNotFound)
}

func TestAdminAPI_Errors(t *testing.T) {
	mux, _ := setupAdminAPI(t)
	home := createPage(t, mux, map[string]any{"title": "Home"})
	child := createPage(t, mux, map[string]any{"title": "Child", "parent_id": home.ID.String()})

	var resp errorResponse
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages",
		map[string]any{"title": "Clash", "slug": "child", "parent_id": home.ID.String(), "menu": "sidebar"}, http.StatusUnprocessableEntity), &resp)
	if resp.Error != "validation_failed" || resp.Code != "PAGE_VALIDATION_FAILED" {
		t.Fatalf("unexpected error response %+v", resp)
	}
	fields := map[string]bool{}
	for _, field := range resp.Fields {
		fields[field.Field] = true
	}
	if !fields["path"] || !fields["menu"] {
		t.Fatalf("expected path and menu field errors, got %+v", resp.Fields)
	}

	doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages/"+child.ID.String()+"/move",
		map[string]any{"target_id": home.ID.String(), "position": "sideways"}, http.StatusUnprocessableEntity)
	doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages/"+home.ID.String()+"/move",
		map[string]any{"target_id": child.ID.String(), "position": "last-child"}, http.StatusBadRequest)
	doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages/"+home.ID.String()+"/content",
		map[string]any{"region": "footer", "type": "text"}, http.StatusUnprocessableEntity)
	doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/"+uuid.NewString(), nil, http.StatusNotFound)
	doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/not-a-uuid", nil, http.StatusBadRequest)
	doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages", map[string]any{"unknown": true}, http.StatusBadRequest)
}

func TestAdminAPI_Types(t *testing.T) {
	mux, _ := setupAdminAPI(t)
	var types []typeView
	decodeJSONBody(t, doJSONRequest(t, mux, http.MethodGet, "/admin/api/types", nil, http.StatusOK), &types)
	if len(types) != 1 || types[0].Key != "standard" || len(types[0].Regions) != 2 || !types[0].Regions[1].Inherited {
		t.Fatalf("unexpected types %+v", types)
	}
}

func TestAdminAPI_Unavailable(t *testing.T) {
	mux := http.NewServeMux()
	if err := NewAdminAPI().Register(mux); err != nil {
		t.Fatalf("Register: %v", err)
	}
	doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages", nil, http.StatusServiceUnavailable)
	doJSONRequest(t, mux, http.MethodGet, "/admin/api/content/"+uuid.NewString(), nil, http.StatusServiceUnavailable)
}
