package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

// Negotiator picks the request language from the Accept-Language header.
type Negotiator struct {
	cfg     Config
	matcher language.Matcher
	tags    []language.Tag
}

// NewNegotiator builds a matcher over the configured languages. The default
// language is preferred on ties.
func NewNegotiator(cfg Config) *Negotiator {
	codes := cfg.Languages
	if cfg.Default != "" {
		codes = append([]string{cfg.Default}, codes...)
	}
	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tags = append(tags, language.Make(code))
	}
	return &Negotiator{cfg: cfg, matcher: language.NewMatcher(tags), tags: tags}
}

// Negotiate returns the configured language that best fits header.
func (n *Negotiator) Negotiate(header string) string {
	if len(n.tags) == 0 {
		return n.cfg.Default
	}
	requested, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(requested) == 0 {
		return n.fallback()
	}
	_, index, confidence := n.matcher.Match(requested...)
	if confidence == language.No {
		return n.fallback()
	}
	return n.code(index)
}

func (n *Negotiator) code(index int) string {
	if n.cfg.Default != "" {
		if index == 0 {
			return n.cfg.Default
		}
		return n.cfg.Languages[index-1]
	}
	return n.cfg.Languages[index]
}

func (n *Negotiator) fallback() string {
	if n.cfg.Default != "" {
		return n.cfg.Default
	}
	return n.cfg.Languages[0]
}

// Middleware activates the negotiated language unless a language is already
// active on the request.
func (n *Negotiator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Language(r.Context()) != "" {
			next.ServeHTTP(w, r)
			return
		}
		code := n.Negotiate(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), code)))
	})
}
