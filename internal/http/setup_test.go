package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/renderer"
)

// lateCloner breaks the construction cycle between the page and content
// services.
type lateCloner struct {
	svc content.Service
}

func (l *lateCloner) ReplaceContent(ctx context.Context, sourceID, targetID uuid.UUID) error {
	return l.svc.ReplaceContent(ctx, sourceID, targetID)
}

func (l *lateCloner) DeleteContent(ctx context.Context, pageID uuid.UUID) error {
	return l.svc.DeleteContent(ctx, pageID)
}

func siteTypes() *pages.Types {
	return pages.MustTypes(
		pages.TemplateType{
			Key:      "standard",
			Title:    "Standard",
			Template: "pages/standard.html",
			Regions: []pages.Region{
				{Key: "main", Title: "Main"},
				{Key: "sidebar", Title: "Sidebar", Inherited: true},
			},
		},
	)
}

func newSite(t *testing.T) (pages.Service, content.Service) {
	t.Helper()
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	cloner := &lateCloner{}
	tree := pages.NewService(pages.NewMemoryPageRepository(), siteTypes(),
		pages.WithClock(func() time.Time { return now }),
		pages.WithLanguages("en", "en", "de"),
		pages.WithMenus("main"),
		pages.WithContentCloner(cloner),
	)
	items := content.NewService(content.NewMemoryRepository(),
		content.WithPages(tree),
		content.WithPluginTypes(textRegistry(t)),
	)
	cloner.svc = items
	return tree, items
}

func textRegistry(t *testing.T) *renderer.Registry {
	t.Helper()
	reg := renderer.NewRegistry()
	err := reg.Register("text", func(_ context.Context, item renderer.Item, _ map[string]any) (string, error) {
		payload, ok := item.(*content.Item)
		if !ok {
			return "", fmt.Errorf("unexpected item %T", item)
		}
		return "<p>" + payload.PayloadString("text") + "</p>", nil
	})
	if err != nil {
		t.Fatalf("register text: %v", err)
	}
	return reg
}

func savePage(t *testing.T, svc pages.Service, page *pages.Page) *pages.Page {
	t.Helper()
	saved, err := svc.Save(context.Background(), page)
	if err != nil {
		t.Fatalf("save %s: %v", page.Title, err)
	}
	return saved
}

func addText(t *testing.T, svc content.Service, pageID uuid.UUID, region, text string) *content.Item {
	t.Helper()
	item, err := svc.Add(context.Background(), &content.Item{
		PageID:  pageID,
		Region:  region,
		Type:    "text",
		Payload: map[string]any{"text": text},
	})
	if err != nil {
		t.Fatalf("add %q: %v", text, err)
	}
	return item
}

func doJSONRequest(t *testing.T, handler http.Handler, method, path string, body any, expectedStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != expectedStatus {
		t.Fatalf("%s %s: expected status %d got %d body=%s", method, path, expectedStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rec.Body.String())
	}
}
