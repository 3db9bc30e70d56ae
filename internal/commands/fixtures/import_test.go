package fixturescmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-feincms/internal/fixtures"
	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/pkg/testsupport"
)

func TestImportFixturesHandler(t *testing.T) {
	ctx := context.Background()
	dir := testsupport.WriteFiles(t, map[string]string{
		"index.md":      "---\ntitle: Home\n---\n",
		"blog/index.md": "---\ntitle: Blog\n---\n",
	})

	tree := pages.NewService(pages.NewMemoryPageRepository(),
		pages.MustTypes(pages.TemplateType{Key: "standard", Title: "Standard", Template: "pages/standard.html"}),
	)
	var result fixtures.Result
	handler := NewImportFixturesHandler(fixtures.NewImporter(tree, nil), logging.NoOp(),
		WithResultHook(func(r fixtures.Result) { result = r }),
	)

	if err := handler.Execute(ctx, ImportFixturesCommand{Dir: dir}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(result.Pages))
	}
	if _, err := tree.GetByPath(ctx, "/blog/"); err != nil {
		t.Fatalf("expected /blog/ to exist: %v", err)
	}
}

func TestImportFixturesHandlerErrors(t *testing.T) {
	ctx := context.Background()
	tree := pages.NewService(pages.NewMemoryPageRepository(),
		pages.MustTypes(pages.TemplateType{Key: "standard", Title: "Standard", Template: "pages/standard.html"}),
	)
	handler := NewImportFixturesHandler(fixtures.NewImporter(tree, nil), logging.NoOp())

	err := handler.Execute(ctx, ImportFixturesCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = handler.Execute(ctx, ImportFixturesCommand{Dir: t.TempDir()})
	if !errors.Is(err, fixtures.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}
