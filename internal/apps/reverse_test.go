package apps

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-feincms/internal/i18n"
)

func TestViewNamesVaryLanguageSlowest(t *testing.T) {
	got := ViewNames("apps", []string{"de", "en"}, []string{"blog", "news"}, "detail")
	want := []string{
		"apps-de:blog:detail",
		"apps-de:news:detail",
		"apps-en:blog:detail",
		"apps-en:news:detail",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestReverseAppPrefersLanguageOrder(t *testing.T) {
	source := &stubSource{}
	source.set(blogDE, blogEN)
	b := newBuilder(t, source)
	params := WithParams(map[string]string{"slug": "hello"})

	path, err := b.ReverseApp(context.Background(), []string{"blog-news"}, "detail", params, WithReverseLanguages("de", "en"))
	if err != nil {
		t.Fatalf("ReverseApp: %v", err)
	}
	if path != "/de/blog/hello/" {
		t.Fatalf("expected german mount, got %q", path)
	}

	source.set(blogEN)
	path, err = b.ReverseApp(context.Background(), []string{"blog-news"}, "detail", params, WithReverseLanguages("de", "en"))
	if err != nil {
		t.Fatalf("ReverseApp: %v", err)
	}
	if path != "/blog/hello/" {
		t.Fatalf("expected english fallback, got %q", path)
	}
}

func TestReverseAppUsesActiveLanguage(t *testing.T) {
	source := &stubSource{}
	source.set(blogDE, blogEN)
	b := newBuilder(t, source, WithLanguages(i18n.FromModuleConfig("en", []string{"en", "de"})))

	ctx := i18n.WithLanguage(context.Background(), "de")
	path, err := b.ReverseApp(ctx, []string{"blog-news"}, "index")
	if err != nil {
		t.Fatalf("ReverseApp: %v", err)
	}
	if path != "/de/blog/" {
		t.Fatalf("expected active language mount, got %q", path)
	}

	path, err = b.ReverseApp(context.Background(), []string{"blog-news"}, "index")
	if err != nil {
		t.Fatalf("ReverseApp: %v", err)
	}
	if path != "/blog/" {
		t.Fatalf("expected default language mount, got %q", path)
	}
}

func TestReverseAppTriesNamespacesInOrder(t *testing.T) {
	source := &stubSource{}
	source.set(blogEN, shopEN)
	b := newBuilder(t, source)

	path, err := b.ReverseApp(context.Background(), []string{"missing", "shop"}, "index", WithReverseLanguages("en"))
	if err != nil {
		t.Fatalf("ReverseApp: %v", err)
	}
	if path != "/shop/" {
		t.Fatalf("expected shop index, got %q", path)
	}
}

func TestReverseFailuresAndFallbacks(t *testing.T) {
	source := &stubSource{}
	source.set(blogEN)
	b := newBuilder(t, source)
	ctx := context.Background()

	_, err := b.ReverseApp(ctx, []string{"shop"}, "index", WithReverseLanguages("en", "de"))
	var noMatch *NoReverseMatchError
	if !errors.As(err, &noMatch) || len(noMatch.ViewNames) != 2 {
		t.Fatalf("expected NoReverseMatchError with two names, got %v", err)
	}

	path, err := b.ReverseApp(ctx, []string{"shop"}, "index", WithReverseLanguages("en"), WithFallback("/fallback/"))
	if err != nil || path != "/fallback/" {
		t.Fatalf("expected fallback, got %q (%v)", path, err)
	}

	path, err = b.ReverseAny(ctx, []string{"apps-en:shop:index", "page"}, WithParams(map[string]string{"path": "about/"}))
	if err != nil || path != "/about/" {
		t.Fatalf("expected root page route, got %q (%v)", path, err)
	}

	path, err = ReverseFallback("/home/", func() (string, error) {
		return b.ReverseApp(ctx, []string{"shop"}, "index", WithReverseLanguages("en"))
	})
	if err != nil || path != "/home/" {
		t.Fatalf("expected ReverseFallback to recover, got %q (%v)", path, err)
	}

	boom := errors.New("boom")
	if _, err := ReverseFallback("/home/", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected unrelated error to propagate, got %v", err)
	}
}
