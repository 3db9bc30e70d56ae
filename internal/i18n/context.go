package i18n

import (
	"context"
	"slices"
)

type languageKey struct{}

// WithLanguage activates code for the rest of the request.
func WithLanguage(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, languageKey{}, code)
}

// Language returns the active language, or "" when none was activated.
func Language(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	code, _ := ctx.Value(languageKey{}).(string)
	return code
}

// Preference returns the active language followed by every configured
// language in declaration order, without duplicates.
func (c Config) Preference(ctx context.Context) []string {
	out := make([]string, 0, len(c.Languages)+1)
	if active := Language(ctx); active != "" {
		out = append(out, active)
	} else if c.Default != "" {
		out = append(out, c.Default)
	}
	for _, code := range c.Languages {
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out
}
