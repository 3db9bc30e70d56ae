package pagescmd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/pages"
)

func newTree(t *testing.T) (pages.Service, *pages.Page, *pages.Page, *pages.Page) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	svc := pages.NewService(pages.NewMemoryPageRepository(),
		pages.MustTypes(pages.TemplateType{Key: "standard", Title: "Standard", Template: "pages/standard.html"}),
		pages.WithClock(func() time.Time { return now }),
	)
	save := func(page *pages.Page) *pages.Page {
		saved, err := svc.Save(ctx, page)
		if err != nil {
			t.Fatalf("save %s: %v", page.Title, err)
		}
		return saved
	}
	home := save(&pages.Page{Title: "Home", IsActive: true})
	a := save(&pages.Page{Title: "A", Slug: "a", ParentID: &home.ID, IsActive: true})
	b := save(&pages.Page{Title: "B", Slug: "b", ParentID: &home.ID, IsActive: true})
	return svc, home, a, b
}

func TestMovePageHandler(t *testing.T) {
	ctx := context.Background()
	svc, _, a, b := newTree(t)
	handler := NewMovePageHandler(svc, logging.NoOp())

	if err := handler.Execute(ctx, MovePageCommand{PageID: b.ID, TargetID: a.ID, Position: "last-child"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	moved, err := svc.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if moved.Path != "/a/b/" {
		t.Fatalf("expected /a/b/, got %q", moved.Path)
	}

	err = handler.Execute(ctx, MovePageCommand{PageID: a.ID, TargetID: b.ID, Position: "first-child"})
	if !errors.Is(err, pages.ErrMoveIntoSelf) {
		t.Fatalf("expected ErrMoveIntoSelf, got %v", err)
	}
}

func TestMovePageCommandValidation(t *testing.T) {
	svc, _, _, _ := newTree(t)
	handler := NewMovePageHandler(svc, nil)
	err := handler.Execute(context.Background(), MovePageCommand{Position: "above"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	msg := MovePageCommand{Position: "above"}.Validate().Error()
	for _, key := range []string{"page_id", "target_id", "position"} {
		if !strings.Contains(msg, key) {
			t.Fatalf("expected %s in %q", key, msg)
		}
	}
}

type recordingCloner struct {
	requests []pages.ClonePageRequest
}

func (r *recordingCloner) Clone(_ context.Context, req pages.ClonePageRequest) (*pages.Page, error) {
	r.requests = append(r.requests, req)
	return &pages.Page{ID: req.TargetID}, nil
}

func TestClonePageHandler(t *testing.T) {
	ctx := context.Background()
	cloner := &recordingCloner{}
	handler := NewClonePageHandler(cloner, nil)
	source, target := uuid.New(), uuid.New()

	if err := handler.Execute(ctx, ClonePageCommand{SourceID: source, TargetID: target, Fields: []string{"title"}, ReplaceContent: true}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(cloner.requests) != 1 || cloner.requests[0].TargetID != target || !cloner.requests[0].ReplaceContent {
		t.Fatalf("unexpected clone requests %+v", cloner.requests)
	}

	invalid := []ClonePageCommand{
		{SourceID: source, TargetID: source, Fields: []string{"title"}},
		{SourceID: source, TargetID: target, Fields: []string{"slug"}},
		{SourceID: source, TargetID: target},
		{TargetID: target, ReplaceContent: true},
	}
	for _, msg := range invalid {
		if err := handler.Execute(ctx, msg); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation failure for %+v, got %v", msg, err)
		}
	}
	if len(cloner.requests) != 1 {
		t.Fatalf("expected invalid commands not to reach the service, got %d calls", len(cloner.requests))
	}
}

func TestDeletePageHandler(t *testing.T) {
	ctx := context.Background()
	svc, home, a, _ := newTree(t)
	handler := NewDeletePageHandler(svc, nil)

	if err := handler.Execute(ctx, DeletePageCommand{PageID: home.ID}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID); !pages.IsNotFound(err) {
		t.Fatalf("expected subtree to be removed, got %v", err)
	}
	if err := handler.Execute(ctx, DeletePageCommand{}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}
