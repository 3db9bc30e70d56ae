package apps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/urls"
)

func newPageService(t *testing.T) (pages.Service, *pages.MemoryPageRepository) {
	t.Helper()
	repo := pages.NewMemoryPageRepository()
	types := appTypes()
	svc := pages.NewService(repo, types,
		pages.WithLanguages("en", "en", "de"),
		pages.WithNamespaceResolver(NewResolver(types, repo)),
	)
	return svc, repo
}

func savePage(t *testing.T, svc pages.Service, page *pages.Page) *pages.Page {
	t.Helper()
	saved, err := svc.Save(context.Background(), page)
	if err != nil {
		t.Fatalf("save %q: %v", page.Title, err)
	}
	return saved
}

func TestResolverNamespaceFor(t *testing.T) {
	r := NewResolver(appTypes(), nil)

	cases := []struct {
		page *pages.Page
		want string
	}{
		{page: &pages.Page{PageType: "standard"}, want: ""},
		{page: &pages.Page{PageType: "shop"}, want: "shop"},
		{page: &pages.Page{PageType: "blog", AppOptions: map[string]string{"category": "news"}}, want: "blog-news"},
		{page: &pages.Page{PageType: "removed"}, want: ""},
	}
	for _, tc := range cases {
		if got := r.NamespaceFor(tc.page); got != tc.want {
			t.Fatalf("NamespaceFor(%s): expected %q, got %q", tc.page.PageType, tc.want, got)
		}
	}
}

func TestResolverRejectsMissingRequiredFields(t *testing.T) {
	svc, _ := newPageService(t)
	home := savePage(t, svc, &pages.Page{Title: "Home", IsActive: true})

	_, err := svc.Save(context.Background(), &pages.Page{Title: "Blog", Slug: "blog", ParentID: &home.ID, PageType: "blog"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := pages.FieldErrors(err)["category"]; !ok {
		t.Fatalf("expected category field error, got %v", pages.FieldErrors(err))
	}
}

func TestResolverRejectsNamespaceClashPerLanguage(t *testing.T) {
	svc, _ := newPageService(t)
	home := savePage(t, svc, &pages.Page{Title: "Home", IsActive: true})
	options := map[string]string{"category": "news"}

	first := savePage(t, svc, &pages.Page{Title: "Blog", Slug: "blog", ParentID: &home.ID, PageType: "blog", AppOptions: options, IsActive: true})
	if first.AppNamespace != "blog-news" {
		t.Fatalf("expected stored namespace, got %q", first.AppNamespace)
	}
	savePage(t, svc, first)

	_, err := svc.Save(context.Background(), &pages.Page{Title: "News", Slug: "news", ParentID: &home.ID, PageType: "blog", AppOptions: options})
	if _, ok := pages.FieldErrors(err)["page_type"]; !ok {
		t.Fatalf("expected page_type clash, got %v", err)
	}

	savePage(t, svc, &pages.Page{Title: "Blog DE", Slug: "blog-de", ParentID: &home.ID, PageType: "blog", AppOptions: options, LanguageCode: "de"})
	savePage(t, svc, &pages.Page{Title: "Other", Slug: "other", ParentID: &home.ID, PageType: "blog", AppOptions: map[string]string{"category": "other"}})
}

func TestPageForAppRequestFindsMountingPage(t *testing.T) {
	svc, repo := newPageService(t)
	home := savePage(t, svc, &pages.Page{Title: "Home", IsActive: true})
	blog := savePage(t, svc, &pages.Page{Title: "Blog", Slug: "blog", ParentID: &home.ID, PageType: "blog", AppOptions: map[string]string{"category": "news"}, IsActive: true})

	var (
		b         *Builder
		found     *pages.Page
		lookupErr error
	)
	modules := NewModules()
	modules.MustRegister("blog", urls.MustNew("blog", []urls.Route{
		urls.HandleFunc("", "index", func(w http.ResponseWriter, r *http.Request) {
			found, lookupErr = b.PageForAppRequest(r.Context())
		}),
	}))
	modules.MustRegister("shop", urls.MustNew("shop", []urls.Route{urls.Path("", "index", write("shop"))}))

	b, err := NewBuilder(svc, appTypes(), modules, rootTable(), WithNamespaceLookup(repo))
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	b.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/blog/", nil))
	if lookupErr != nil {
		t.Fatalf("PageForAppRequest: %v", lookupErr)
	}
	if found == nil || found.ID != blog.ID {
		t.Fatalf("expected blog page, got %+v", found)
	}

	if _, err := b.PageForAppRequest(context.Background()); !errors.Is(err, ErrNotApplicationMatch) {
		t.Fatalf("expected ErrNotApplicationMatch, got %v", err)
	}
}
