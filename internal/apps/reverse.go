package apps

import (
	"context"
	"errors"

	"github.com/goliatone/go-feincms/internal/urls"
)

type reverseConfig struct {
	params      map[string]string
	languages   []string
	fallback    string
	hasFallback bool
}

// ReverseOption tunes a reverse lookup.
type ReverseOption func(*reverseConfig)

// WithParams sets the route parameters.
func WithParams(params map[string]string) ReverseOption {
	return func(c *reverseConfig) {
		c.params = params
	}
}

// WithReverseLanguages replaces the request language preference.
func WithReverseLanguages(languages ...string) ReverseOption {
	return func(c *reverseConfig) {
		c.languages = languages
	}
}

// WithFallback returns value instead of an error when nothing matches.
func WithFallback(value string) ReverseOption {
	return func(c *reverseConfig) {
		c.fallback = value
		c.hasFallback = true
	}
}

// ViewNames lists the compound view names ReverseApp tries, in order. The
// language varies slowest, so every namespace is tried in the preferred
// language before the next language is considered.
func ViewNames(prefix string, languages, namespaces []string, viewName string) []string {
	out := make([]string, 0, len(languages)*len(namespaces))
	for _, language := range languages {
		for _, namespace := range namespaces {
			out = append(out, prefix+"-"+language+":"+namespace+":"+viewName)
		}
	}
	return out
}

// ReverseApp reverses viewName inside the first application namespace that
// is mounted, trying languages in preference order. The preference is the
// active language followed by the configured languages unless
// WithReverseLanguages is given.
func (b *Builder) ReverseApp(ctx context.Context, namespaces []string, viewName string, opts ...ReverseOption) (string, error) {
	cfg := applyReverse(opts)
	languages := cfg.languages
	if len(languages) == 0 {
		languages = b.languages.Preference(ctx)
	}
	return b.ReverseAny(ctx, ViewNames(b.prefix, languages, namespaces, viewName), opts...)
}

// ReverseAny returns the path of the first view name that reverses.
func (b *Builder) ReverseAny(ctx context.Context, viewNames []string, opts ...ReverseOption) (string, error) {
	cfg := applyReverse(opts)
	table, err := b.Table(ctx)
	if err != nil {
		return "", err
	}
	for _, name := range viewNames {
		if path, err := table.Reverse(name, cfg.params); err == nil {
			return path, nil
		}
	}
	if cfg.hasFallback {
		return cfg.fallback, nil
	}
	return "", &NoReverseMatchError{ViewNames: viewNames}
}

// ReverseFallback runs reverse and returns fallback when it finds no match.
// Other errors are returned unchanged.
func ReverseFallback(fallback string, reverse func() (string, error)) (string, error) {
	path, err := reverse()
	if err == nil {
		return path, nil
	}
	if errors.Is(err, ErrNoReverseMatch) || errors.Is(err, urls.ErrNoReverseMatch) {
		return fallback, nil
	}
	return "", err
}

func applyReverse(opts []ReverseOption) reverseConfig {
	var cfg reverseConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
