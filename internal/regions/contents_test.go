package regions

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/internal/pages"
)

func TestLoaderInheritsNearestAncestorRegion(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	types := pages.MustTypes(pages.TemplateType{
		Key:      "standard",
		Title:    "Standard",
		Template: "pages/standard.html",
		Regions: []pages.Region{
			{Key: "main", Title: "Main"},
			{Key: "sidebar", Title: "Sidebar", Inherited: true},
		},
	})
	tree := pages.NewService(pages.NewMemoryPageRepository(), types, pages.WithClock(func() time.Time { return now }))
	items := content.NewService(content.NewMemoryRepository())

	save := func(page *pages.Page) *pages.Page {
		t.Helper()
		saved, err := tree.Save(ctx, page)
		if err != nil {
			t.Fatalf("save %s: %v", page.Title, err)
		}
		return saved
	}
	add := func(page *pages.Page, region, text string) {
		t.Helper()
		if _, err := items.Add(ctx, &content.Item{PageID: page.ID, Region: region, Type: "text", Payload: map[string]any{"text": text}}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	home := save(&pages.Page{Title: "Home", IsActive: true})
	docs := save(&pages.Page{Title: "Docs", Slug: "docs", ParentID: &home.ID, IsActive: true})
	guide := save(&pages.Page{Title: "Guide", Slug: "guide", ParentID: &docs.ID, IsActive: true})
	own := save(&pages.Page{Title: "Own", Slug: "own", ParentID: &docs.ID, IsActive: true})

	add(home, "sidebar", "home sidebar")
	add(docs, "sidebar", "docs sidebar")
	add(guide, "main", "guide main")
	add(own, "sidebar", "own sidebar")

	loader := NewLoader(items, tree, types)

	contents, err := loader.Load(ctx, guide)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sidebar := contents.Region("sidebar")
	if len(sidebar) != 1 || sidebar[0].(*content.Item).PayloadString("text") != "docs sidebar" {
		t.Fatalf("expected sidebar from docs, got %+v", sidebar)
	}
	if from, ok := contents.InheritedFrom("sidebar"); !ok || from != docs.ID {
		t.Fatalf("expected sidebar inherited from docs, got %v %v", from, ok)
	}
	if _, ok := contents.InheritedFrom("main"); ok {
		t.Fatal("main is not an inherited region")
	}

	ownContents, err := loader.Load(ctx, own)
	if err != nil {
		t.Fatalf("Load own: %v", err)
	}
	if _, ok := ownContents.InheritedFrom("sidebar"); ok {
		t.Fatal("expected a page's own sidebar to win")
	}

	rootContents, err := loader.Load(ctx, home)
	if err != nil {
		t.Fatalf("Load home: %v", err)
	}
	if len(rootContents.Region("sidebar")) != 1 || len(rootContents.Region("main")) != 0 {
		t.Fatalf("unexpected root contents %v", rootContents.Regions())
	}
}
