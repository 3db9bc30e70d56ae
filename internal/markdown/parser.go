package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options configures the goldmark engine.
type Options struct {
	// Extensions by name; empty selects gfm, linkify and tasklist.
	Extensions []string
	HardWraps  bool
	// Unsafe keeps raw HTML blocks. Output is expected to be sanitised by
	// the caller when it is enabled.
	Unsafe bool
}

// Parser converts Markdown to HTML. It is safe for concurrent use.
type Parser struct {
	engine goldmark.Markdown
}

// NewParser builds the goldmark engine once for the given options.
func NewParser(opts Options) *Parser {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return &Parser{engine: goldmark.New(engineOptions...)}
}

// Parse renders source to HTML.
func (p *Parser) Parse(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseString renders source to an HTML string.
func (p *Parser) ParseString(source string) (string, error) {
	out, err := p.Parse([]byte(source))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify, extension.TaskList}
	}
	var extenders []goldmark.Extender
	seen := map[string]bool{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := extensionRegistry[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		extenders = append(extenders, ext)
	}
	return extenders
}
