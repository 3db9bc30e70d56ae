package plugins

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"maps"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-feincms/internal/markdown"
	"github.com/goliatone/go-feincms/internal/renderer"
	"github.com/goliatone/go-feincms/internal/validation"
)

const (
	TypeRichText = "richtext"
	TypeHTML     = "html"
	TypeImage    = "image"
	TypeExternal = "external"
	TypeSnippet  = "snippet"
	TypeMarkdown = "markdown"
)

var (
	ErrPayloadUnsupported = errors.New("plugins: item does not expose a payload")
	ErrSnippetNotAllowed  = errors.New("plugins: snippet is not allowed")
)

// PayloadItem is a content item whose payload values can be read by key.
type PayloadItem interface {
	renderer.Item
	PayloadString(key string) string
	PayloadInt(key string) int
}

// Config selects the behaviour of the built-in plugins.
type Config struct {
	// Snippets lists the template names the snippet plugin may render.
	Snippets []string
	// SnippetPrefix is prepended to a snippet name to find its template.
	SnippetPrefix string
	Markdown      markdown.Options
	// Policy sanitises rich text and markdown output; nil uses the UGC
	// policy.
	Policy *bluemonday.Policy
}

// Register binds every built-in plugin type to reg and stores its payload
// schema in schemas. schemas may be nil.
func Register(reg *renderer.Registry, schemas *validation.Schemas, cfg Config) error {
	policy := cfg.Policy
	if policy == nil {
		policy = bluemonday.UGCPolicy()
	}
	if cfg.SnippetPrefix == "" {
		cfg.SnippetPrefix = "snippets/"
	}
	md := markdown.NewParser(cfg.Markdown)

	funcs := map[string]renderer.RenderFunc{
		TypeRichText: payloadRender(func(item PayloadItem) (string, error) {
			return policy.Sanitize(item.PayloadString("html")), nil
		}),
		TypeHTML: payloadRender(func(item PayloadItem) (string, error) {
			return item.PayloadString("html"), nil
		}),
		TypeExternal: payloadRender(renderExternal),
		TypeMarkdown: payloadRender(func(item PayloadItem) (string, error) {
			out, err := md.Parse([]byte(item.PayloadString("markdown")))
			if err != nil {
				return "", err
			}
			return policy.Sanitize(string(out)), nil
		}),
	}
	for _, key := range slices.Sorted(maps.Keys(funcs)) {
		if err := reg.Register(key, funcs[key]); err != nil {
			return err
		}
	}
	if err := reg.RegisterTemplate(TypeImage, renderer.Parsed(imageTemplate), imageContext); err != nil {
		return err
	}
	if err := reg.RegisterTemplate(TypeSnippet, snippetSource(cfg), nil); err != nil {
		return err
	}

	if schemas == nil {
		return nil
	}
	for _, key := range slices.Sorted(maps.Keys(payloadSchemas)) {
		if err := schemas.Register(key, payloadSchemas[key]); err != nil {
			return fmt.Errorf("register %s schema: %w", key, err)
		}
	}
	return nil
}

func payloadRender(fn func(PayloadItem) (string, error)) renderer.RenderFunc {
	return func(_ context.Context, item renderer.Item, _ map[string]any) (string, error) {
		payload, ok := item.(PayloadItem)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrPayloadUnsupported, item.PluginType())
		}
		return fn(payload)
	}
}

var imageTemplate = template.Must(template.New(TypeImage).Parse(
	`<figure class="image"><img src="{{ .src }}" alt="{{ .alt }}"` +
		`{{ with .width }} width="{{ . }}"{{ end }}{{ with .height }} height="{{ . }}"{{ end }}>` +
		`{{ with .caption }}<figcaption>{{ . }}</figcaption>{{ end }}</figure>`,
))

func imageContext(item renderer.Item, data map[string]any) map[string]any {
	out := renderer.DefaultContext(item, data)
	if payload, ok := item.(PayloadItem); ok {
		out["src"] = payload.PayloadString("src")
		out["alt"] = payload.PayloadString("alt")
		out["caption"] = payload.PayloadString("caption")
		out["width"] = payload.PayloadInt("width")
		out["height"] = payload.PayloadInt("height")
	}
	return out
}

func snippetSource(cfg Config) renderer.TemplateSource {
	allowed := slices.Clone(cfg.Snippets)
	return func(item renderer.Item) (renderer.Template, error) {
		payload, ok := item.(PayloadItem)
		if !ok {
			return renderer.Template{}, fmt.Errorf("%w: %s", ErrPayloadUnsupported, item.PluginType())
		}
		name := strings.TrimSpace(payload.PayloadString("template"))
		if !slices.Contains(allowed, name) {
			return renderer.Template{}, fmt.Errorf("%w: %q", ErrSnippetNotAllowed, name)
		}
		return renderer.Template{Names: []string{cfg.SnippetPrefix + name}}, nil
	}
}
