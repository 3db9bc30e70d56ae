package apps

import (
	"context"
	"strings"

	"github.com/goliatone/go-feincms/internal/urls"
)

// WithBaseURL sets the site root used by AbsoluteURL.
func WithBaseURL(baseURL string) BuilderOption {
	return func(b *Builder) {
		b.baseURL = strings.TrimSpace(baseURL)
	}
}

// BaseURL returns the configured site root.
func (b *Builder) BaseURL() string {
	return b.baseURL
}

// Linker returns the go-urlkit linker for the routing table of the current
// mounts. A linker is exported once per table.
func (b *Builder) Linker(ctx context.Context) (*urls.Linker, error) {
	table, err := b.Table(ctx)
	if err != nil {
		return nil, err
	}
	b.linkMu.Lock()
	defer b.linkMu.Unlock()
	if linker, ok := b.linkers[table.ID()]; ok {
		return linker, nil
	}
	linker := urls.NewLinker(table, b.baseURL)
	b.linkers[table.ID()] = linker
	return linker, nil
}

// AbsoluteURL resolves like ReverseApp and returns the URL rooted at the
// configured base URL.
func (b *Builder) AbsoluteURL(ctx context.Context, namespaces []string, viewName string, opts ...ReverseOption) (string, error) {
	cfg := applyReverse(opts)
	languages := cfg.languages
	if len(languages) == 0 {
		languages = b.languages.Preference(ctx)
	}
	linker, err := b.Linker(ctx)
	if err != nil {
		return "", err
	}
	names := ViewNames(b.prefix, languages, namespaces, viewName)
	for _, name := range names {
		if url, err := linker.URL(name, cfg.params, nil); err == nil {
			return url, nil
		}
	}
	if cfg.hasFallback {
		return cfg.fallback, nil
	}
	return "", &NoReverseMatchError{ViewNames: names}
}
