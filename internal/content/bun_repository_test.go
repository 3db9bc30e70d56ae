package content_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/pkg/testsupport"
)

func TestBunRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, (*content.Item)(nil))
	now := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)
	svc := content.NewService(content.NewBunRepository(db), content.WithClock(func() time.Time { return now }))

	source := uuid.New()
	target := uuid.New()

	text, err := svc.Add(ctx, &content.Item{PageID: source, Region: "main", Type: "text", Payload: map[string]any{"text": "hello"}})
	if err != nil {
		t.Fatalf("add text: %v", err)
	}
	image, err := svc.Add(ctx, &content.Item{PageID: source, Region: "main", Type: "image", Payload: map[string]any{"src": "/a.png", "width": 320}})
	if err != nil {
		t.Fatalf("add image: %v", err)
	}
	if _, err := svc.Add(ctx, &content.Item{PageID: target, Region: "main", Type: "text"}); err != nil {
		t.Fatalf("add target: %v", err)
	}

	loaded, err := svc.Get(ctx, image.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.PayloadString("src") != "/a.png" || loaded.PayloadInt("width") != 320 {
		t.Fatalf("unexpected payload after reload: %v", loaded.Payload)
	}

	items, err := svc.ListForRegion(ctx, source, "main")
	if err != nil {
		t.Fatalf("ListForRegion: %v", err)
	}
	if len(items) != 2 || items[0].ID != text.ID || items[1].ID != image.ID {
		t.Fatalf("unexpected order: %+v", items)
	}

	if err := svc.ReplaceContent(ctx, source, target); err != nil {
		t.Fatalf("ReplaceContent: %v", err)
	}
	copies, err := svc.ListForPage(ctx, target)
	if err != nil {
		t.Fatalf("ListForPage: %v", err)
	}
	if len(copies) != 2 || copies[0].Type != "text" || copies[1].Type != "image" {
		t.Fatalf("unexpected copies: %+v", copies)
	}
	still, _ := svc.ListForPage(ctx, source)
	if len(still) != 2 {
		t.Fatalf("expected source rows to remain, got %d", len(still))
	}

	if err := svc.Delete(ctx, text.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, text.ID); !content.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, text.ID); !content.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if err := svc.DeleteContent(ctx, target); err != nil {
		t.Fatalf("DeleteContent: %v", err)
	}
	if rest, _ := svc.ListForPage(ctx, target); len(rest) != 0 {
		t.Fatalf("expected target to be empty, got %d", len(rest))
	}
}
