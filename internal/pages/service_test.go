package pages

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

func testTypes() *Types {
	return MustTypes(
		TemplateType{
			Key:      "standard",
			Title:    "Standard",
			Template: "pages/standard.html",
			Regions: []Region{
				{Key: "main", Title: "Main"},
				{Key: "sidebar", Title: "Sidebar", Inherited: true},
			},
		},
		ApplicationType{
			Key:            "blog",
			Title:          "Blog",
			URLConf:        "blog",
			RequiredFields: []string{"category"},
			AppNamespace: func(p *Page) string {
				return "blog-" + p.FieldValue("category")
			},
			Template: "pages/standard.html",
		},
		ApplicationType{
			Key:     "shop",
			Title:   "Shop",
			URLConf: "shop",
		},
	)
}

type fixture struct {
	svc  Service
	repo *MemoryPageRepository
}

func newFixture(t *testing.T, opts ...ServiceOption) fixture {
	t.Helper()
	repo := NewMemoryPageRepository()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	base := []ServiceOption{
		WithClock(func() time.Time { return now }),
		WithLanguages("en", "en", "de"),
		WithMenus("main", "footer"),
	}
	return fixture{svc: NewService(repo, testTypes(), append(base, opts...)...), repo: repo}
}

func (f fixture) save(t *testing.T, page *Page) *Page {
	t.Helper()
	saved, err := f.svc.Save(context.Background(), page)
	if err != nil {
		t.Fatalf("save %q: %v", page.Title, err)
	}
	return saved
}

func (f fixture) get(t *testing.T, id uuid.UUID) *Page {
	t.Helper()
	page, err := f.svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return page
}

func ref(id uuid.UUID) *uuid.UUID {
	return &id
}

func expectFieldError(t *testing.T, err error, field string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error on %q", field)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if _, ok := FieldErrors(err)[field]; !ok {
		t.Fatalf("expected error on %q, got %v", field, FieldErrors(err))
	}
}

func TestSaveMaterialisesPathsFromParentChain(t *testing.T) {
	f := newFixture(t)

	home := f.save(t, &Page{Title: "Home", IsActive: true})
	about := f.save(t, &Page{Title: "About Us", ParentID: ref(home.ID), IsActive: true})
	team := f.save(t, &Page{Title: "Team", Slug: "team", ParentID: ref(about.ID), IsActive: true})

	if home.Path != "/" {
		t.Fatalf("expected root path /, got %q", home.Path)
	}
	if about.Slug != "about-us" || about.Path != "/about-us/" {
		t.Fatalf("expected derived slug path, got slug=%q path=%q", about.Slug, about.Path)
	}
	if team.Path != "/about-us/team/" {
		t.Fatalf("unexpected team path %q", team.Path)
	}

	about.Slug = "company"
	f.save(t, about)

	if got := f.get(t, team.ID).Path; got != "/company/team/" {
		t.Fatalf("expected descendant path to follow rename, got %q", got)
	}
}

func TestSaveKeepsStaticPaths(t *testing.T) {
	f := newFixture(t)

	home := f.save(t, &Page{Title: "Home", IsActive: true})
	section := f.save(t, &Page{Title: "Section", Slug: "section", ParentID: ref(home.ID), IsActive: true})
	landing := f.save(t, &Page{Title: "Landing", Slug: "landing", ParentID: ref(section.ID), StaticPath: true, Path: "/campaign/", IsActive: true})
	child := f.save(t, &Page{Title: "Offer", Slug: "offer", ParentID: ref(landing.ID), IsActive: true})

	if landing.Path != "/campaign/" || child.Path != "/campaign/offer/" {
		t.Fatalf("unexpected static paths %q %q", landing.Path, child.Path)
	}

	section.Slug = "renamed"
	f.save(t, section)

	if got := f.get(t, landing.ID).Path; got != "/campaign/" {
		t.Fatalf("expected static path to survive, got %q", got)
	}
	if got := f.get(t, child.ID).Path; got != "/campaign/offer/" {
		t.Fatalf("expected child of static page untouched, got %q", got)
	}
}

func TestSaveRejectsInvalidStaticPath(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Save(context.Background(), &Page{Title: "Bad", StaticPath: true, Path: "nope"})
	expectFieldError(t, err, "path")
}

func TestSaveRejectsDuplicatePath(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home", IsActive: true})
	f.save(t, &Page{Title: "News", Slug: "news", ParentID: ref(home.ID)})

	_, err := f.svc.Save(context.Background(), &Page{Title: "News 2", Slug: "news", ParentID: ref(home.ID)})
	expectFieldError(t, err, "path")
}

func TestSaveRejectsDescendantPathClash(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home", IsActive: true})
	a := f.save(t, &Page{Title: "A", Slug: "a", ParentID: ref(home.ID)})
	f.save(t, &Page{Title: "X", Slug: "x", ParentID: ref(a.ID)})
	f.save(t, &Page{Title: "Taken", Slug: "b", ParentID: ref(home.ID), StaticPath: true, Path: "/c/x/"})

	a.Slug = "c"
	_, err := f.svc.Save(context.Background(), a)
	expectFieldError(t, err, "path")
}

func TestInactiveFlagCascades(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home", IsActive: true})
	a := f.save(t, &Page{Title: "A", Slug: "a", ParentID: ref(home.ID), IsActive: true})
	b := f.save(t, &Page{Title: "B", Slug: "b", ParentID: ref(a.ID), IsActive: true})
	c := f.save(t, &Page{Title: "C", Slug: "c", ParentID: ref(b.ID), IsActive: true})

	a.IsActive = false
	f.save(t, a)

	for _, id := range []uuid.UUID{b.ID, c.ID} {
		if f.get(t, id).IsActive {
			t.Fatalf("expected descendant %s to be inactive", id)
		}
	}

	d := f.save(t, &Page{Title: "D", Slug: "d", ParentID: ref(c.ID), IsActive: true})
	if d.IsActive {
		t.Fatal("expected new child of inactive page to be inactive")
	}
}

func TestSaveAssignsSiblingPositions(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home"})
	first := f.save(t, &Page{Title: "First", Slug: "first", ParentID: ref(home.ID)})
	second := f.save(t, &Page{Title: "Second", Slug: "second", ParentID: ref(home.ID)})
	explicit := f.save(t, &Page{Title: "Explicit", Slug: "explicit", ParentID: ref(home.ID), Position: 5})

	if first.Position != 10 || second.Position != 20 || explicit.Position != 5 {
		t.Fatalf("unexpected positions %d %d %d", first.Position, second.Position, explicit.Position)
	}
}

func TestSaveRejectsParentCycle(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home"})
	a := f.save(t, &Page{Title: "A", Slug: "a", ParentID: ref(home.ID)})
	b := f.save(t, &Page{Title: "B", Slug: "b", ParentID: ref(a.ID)})

	a.ParentID = ref(b.ID)
	_, err := f.svc.Save(context.Background(), a)
	expectFieldError(t, err, "parent_id")

	home.ParentID = ref(home.ID)
	_, err = f.svc.Save(context.Background(), home)
	expectFieldError(t, err, "parent_id")
}

func TestSaveValidatesLanguageAndMenu(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Save(context.Background(), &Page{Title: "Accueil", LanguageCode: "fr"})
	expectFieldError(t, err, "language_code")

	_, err = f.svc.Save(context.Background(), &Page{Title: "Home", Menu: "sidebar"})
	expectFieldError(t, err, "menu")

	_, err = f.svc.Save(context.Background(), &Page{Title: "  "})
	expectFieldError(t, err, "title")
}

func TestTranslationRules(t *testing.T) {
	f := newFixture(t)
	en := f.save(t, &Page{Title: "Home", Slug: "en", LanguageCode: "en"})
	de := f.save(t, &Page{Title: "Startseite", Slug: "de", LanguageCode: "de", TranslationOfID: ref(en.ID)})

	if de.TranslationOfID == nil || *de.TranslationOfID != en.ID {
		t.Fatal("expected german page to reference primary page")
	}

	_, err := f.svc.Save(context.Background(), &Page{Title: "Other", Slug: "other", LanguageCode: "en", TranslationOfID: ref(en.ID)})
	expectFieldError(t, err, "translation_of_id")

	_, err = f.svc.Save(context.Background(), &Page{Title: "Andere", Slug: "andere", LanguageCode: "de", TranslationOfID: ref(de.ID)})
	expectFieldError(t, err, "translation_of_id")

	translations, err := f.svc.Translations(context.Background(), de.ID)
	if err != nil {
		t.Fatalf("Translations: %v", err)
	}
	if len(translations) != 2 || translations[0].ID != en.ID || translations[1].ID != de.ID {
		t.Fatalf("unexpected translation group %+v", translations)
	}
}

func TestRedirectRules(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home"})
	target := f.save(t, &Page{Title: "Target", Slug: "target", ParentID: ref(home.ID)})
	alias := f.save(t, &Page{Title: "Alias", Slug: "alias", ParentID: ref(home.ID), RedirectToPageID: ref(target.ID)})

	_, err := f.svc.Save(context.Background(), &Page{Title: "Chain", Slug: "chain", ParentID: ref(home.ID), RedirectToPageID: ref(alias.ID)})
	expectFieldError(t, err, "redirect_to_page_id")

	target.RedirectToURL = "https://example.com/"
	_, err = f.svc.Save(context.Background(), target)
	expectFieldError(t, err, "redirect_to_url")

	alias.RedirectToPageID = ref(alias.ID)
	_, err = f.svc.Save(context.Background(), alias)
	expectFieldError(t, err, "redirect_to_page_id")

	_, err = f.svc.Save(context.Background(), &Page{Title: "Both", Slug: "both", ParentID: ref(home.ID), RedirectToURL: "/x/", RedirectToPageID: ref(target.ID)})
	expectFieldError(t, err, "redirect_to_url")

	_, err = f.svc.Save(context.Background(), &Page{Title: "Relative", Slug: "relative", ParentID: ref(home.ID), RedirectToURL: "x/"})
	expectFieldError(t, err, "redirect_to_url")
}

func TestUnknownPageTypeFallsBackToFirstType(t *testing.T) {
	types := testTypes()
	if got := types.Lookup("removed").TypeKey(); got != "standard" {
		t.Fatalf("expected fallback to first type, got %q", got)
	}

	f := newFixture(t)
	page := f.save(t, &Page{Title: "Legacy", PageType: "removed"})
	if page.PageType != "removed" || page.AppNamespace != "" {
		t.Fatalf("expected stored type kept and empty namespace, got %q %q", page.PageType, page.AppNamespace)
	}
}

func TestSaveDerivesApplicationNamespace(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home"})
	blog := f.save(t, &Page{
		Title:      "Blog",
		Slug:       "blog",
		ParentID:   ref(home.ID),
		PageType:   "blog",
		AppOptions: map[string]string{"category": "news"},
	})
	if blog.AppNamespace != "blog-news" {
		t.Fatalf("expected derived namespace, got %q", blog.AppNamespace)
	}

	blog.PageType = "standard"
	blog = f.save(t, blog)
	if blog.AppNamespace != "" {
		t.Fatalf("expected namespace cleared for template type, got %q", blog.AppNamespace)
	}
}

func TestListReturnsDepthFirstOrder(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home"})
	b := f.save(t, &Page{Title: "B", Slug: "b", ParentID: ref(home.ID), Position: 20})
	a := f.save(t, &Page{Title: "A", Slug: "a", ParentID: ref(home.ID), Position: 10})
	a1 := f.save(t, &Page{Title: "A1", Slug: "a1", ParentID: ref(a.ID)})

	list, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []uuid.UUID{home.ID, a.ID, a1.ID, b.ID}
	if len(list) != len(want) {
		t.Fatalf("expected %d pages, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: expected %s got %s (%s)", i, id, list[i].ID, list[i].Path)
		}
	}
	if list[2].TreeDepth != 2 {
		t.Fatalf("expected depth 2 for grandchild, got %d", list[2].TreeDepth)
	}
}

func TestAncestorsAndDescendants(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home"})
	a := f.save(t, &Page{Title: "A", Slug: "a", ParentID: ref(home.ID)})
	b := f.save(t, &Page{Title: "B", Slug: "b", ParentID: ref(a.ID)})

	ancestors, err := f.svc.Ancestors(context.Background(), b.ID, true)
	if err != nil {
		t.Fatalf("Ancestors: %v", err)
	}
	if len(ancestors) != 3 || ancestors[0].ID != home.ID || ancestors[2].ID != b.ID {
		t.Fatalf("unexpected ancestors %+v", ancestors)
	}

	descendants, err := f.svc.Descendants(context.Background(), home.ID, false)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if len(descendants) != 2 || descendants[0].ID != a.ID || descendants[1].TreeDepth != 2 {
		t.Fatalf("unexpected descendants %+v", descendants)
	}
}

func TestMenuPagesFiltersActiveLanguageAndMenu(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home", IsActive: true})
	f.save(t, &Page{Title: "About", Slug: "about", ParentID: ref(home.ID), Menu: "main", IsActive: true})
	f.save(t, &Page{Title: "Hidden", Slug: "hidden", ParentID: ref(home.ID), Menu: "main"})
	f.save(t, &Page{Title: "Legal", Slug: "legal", ParentID: ref(home.ID), Menu: "footer", IsActive: true})

	main, err := f.svc.MenuPages(context.Background(), "main", "en")
	if err != nil {
		t.Fatalf("MenuPages: %v", err)
	}
	if len(main) != 1 || main[0].Slug != "about" {
		t.Fatalf("unexpected menu pages %+v", main)
	}
}

func TestActiveApplicationsAreOrdered(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home", IsActive: true})
	f.save(t, &Page{Title: "Shop", Slug: "shop", ParentID: ref(home.ID), PageType: "shop", IsActive: true})
	f.save(t, &Page{Title: "Blog", Slug: "blog", ParentID: ref(home.ID), PageType: "blog", AppOptions: map[string]string{"category": "a"}, IsActive: true})
	f.save(t, &Page{Title: "Off", Slug: "off", ParentID: ref(home.ID), PageType: "shop", LanguageCode: "de"})

	mounts, err := f.svc.ActiveApplications(context.Background())
	if err != nil {
		t.Fatalf("ActiveApplications: %v", err)
	}
	want := []AppMount{
		{Path: "/blog/", PageType: "blog", Namespace: "blog-a", LanguageCode: "en"},
		{Path: "/shop/", PageType: "shop", Namespace: "shop", LanguageCode: "en"},
	}
	if len(mounts) != len(want) {
		t.Fatalf("expected %d mounts, got %+v", len(want), mounts)
	}
	for i := range want {
		if mounts[i] != want[i] {
			t.Fatalf("mount %d: expected %+v got %+v", i, want[i], mounts[i])
		}
	}
}

type recordingCloner struct {
	replaced [][2]uuid.UUID
	deleted  []uuid.UUID
	err      error
}

func (r *recordingCloner) ReplaceContent(_ context.Context, sourceID, targetID uuid.UUID) error {
	r.replaced = append(r.replaced, [2]uuid.UUID{sourceID, targetID})
	return r.err
}

func (r *recordingCloner) DeleteContent(_ context.Context, pageID uuid.UUID) error {
	r.deleted = append(r.deleted, pageID)
	return r.err
}

func TestDeleteRemovesSubtreeAndClearsReferences(t *testing.T) {
	cloner := &recordingCloner{}
	f := newFixture(t, WithContentCloner(cloner))
	home := f.save(t, &Page{Title: "Home"})
	a := f.save(t, &Page{Title: "A", Slug: "a", ParentID: ref(home.ID)})
	b := f.save(t, &Page{Title: "B", Slug: "b", ParentID: ref(a.ID)})
	alias := f.save(t, &Page{Title: "Alias", Slug: "alias", ParentID: ref(home.ID), RedirectToPageID: ref(b.ID)})

	if err := f.svc.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), b.ID); !IsNotFound(err) {
		t.Fatalf("expected descendant removed, got %v", err)
	}
	if got := f.get(t, alias.ID); got.RedirectToPageID != nil {
		t.Fatal("expected redirect reference to be cleared")
	}
	if len(cloner.deleted) != 2 {
		t.Fatalf("expected content deletion for two pages, got %v", cloner.deleted)
	}
}

func TestGetMissingPageReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

type failingDeleteRepository struct {
	*MemoryPageRepository
}

func (failingDeleteRepository) DeleteTree(context.Context, []uuid.UUID, []*Page) error {
	return errors.New("delete tree failed")
}

func TestDeleteKeepsContentWhenTreeDeleteFails(t *testing.T) {
	cloner := &recordingCloner{}
	repo := failingDeleteRepository{MemoryPageRepository: NewMemoryPageRepository()}
	svc := NewService(repo, testTypes(), WithContentCloner(cloner))
	home, err := svc.Save(context.Background(), &Page{Title: "Home"})
	if err != nil {
		t.Fatalf("save home: %v", err)
	}

	if err := svc.Delete(context.Background(), home.ID); err == nil {
		t.Fatal("expected delete to fail")
	}
	if len(cloner.deleted) != 0 {
		t.Fatalf("expected content untouched, got deletions %v", cloner.deleted)
	}
	if _, err := svc.Get(context.Background(), home.ID); err != nil {
		t.Fatalf("expected page to survive, got %v", err)
	}
}

func TestNewServiceDefaultsPrimaryLanguage(t *testing.T) {
	svc := NewService(NewMemoryPageRepository(), testTypes())
	page, err := svc.Save(context.Background(), &Page{Title: "Home"})
	if err != nil {
		t.Fatalf("save without languages: %v", err)
	}
	if page.LanguageCode != DefaultLanguage {
		t.Fatalf("expected %q, got %q", DefaultLanguage, page.LanguageCode)
	}

	svc = NewService(NewMemoryPageRepository(), testTypes(), WithLanguages("", "de", "en"))
	page, err = svc.Save(context.Background(), &Page{Title: "Start"})
	if err != nil {
		t.Fatalf("save with languages: %v", err)
	}
	if page.LanguageCode != "de" {
		t.Fatalf("expected first configured language, got %q", page.LanguageCode)
	}
}
