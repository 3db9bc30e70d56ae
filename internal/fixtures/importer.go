package fixtures

import (
	"context"
	"io/fs"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/internal/identity"
	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// MarkdownPluginType is the plugin type of imported document bodies.
const MarkdownPluginType = "markdown"

// PageSaver persists pages through the tree save pipeline.
type PageSaver interface {
	Save(ctx context.Context, page *pages.Page) (*pages.Page, error)
}

// ContentWriter replaces the content rows of imported pages.
type ContentWriter interface {
	DeleteContent(ctx context.Context, pageID uuid.UUID) error
	Add(ctx context.Context, item *content.Item) (*content.Item, error)
}

// Options controls a single import run.
type Options struct {
	// DryRun parses and orders the documents without writing.
	DryRun bool
}

// Result summarises an import run.
type Result struct {
	Pages []*pages.Page
	Items int
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the importer logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Importer turns a directory of Markdown documents into pages with one
// markdown item each. Page and item IDs derive from the document path, so
// re-importing updates the same rows.
type Importer struct {
	pages   PageSaver
	content ContentWriter
	logger  interfaces.Logger
}

// NewImporter constructs an importer. content may be nil to import pages
// only.
func NewImporter(saver PageSaver, writer ContentWriter, opts ...Option) *Importer {
	i := &Importer{pages: saver, content: writer, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Import loads fsys and saves its documents parents first.
func (i *Importer) Import(ctx context.Context, fsys fs.FS, opts Options) (Result, error) {
	if i.pages == nil {
		return Result{}, ErrPagesRequired
	}
	docs, err := Load(fsys)
	if err != nil {
		return Result{}, err
	}
	ordered, err := plan(docs)
	if err != nil {
		return Result{}, err
	}

	result := Result{}
	if opts.DryRun {
		for _, doc := range ordered {
			result.Pages = append(result.Pages, i.pageFor(doc))
		}
		i.logger.Info("fixtures.import.dry_run", "documents", len(ordered))
		return result, nil
	}

	for _, doc := range ordered {
		saved, err := i.pages.Save(ctx, i.pageFor(doc))
		if err != nil {
			return result, &DocumentError{Path: doc.Path, Err: err}
		}
		result.Pages = append(result.Pages, saved)
		if i.content == nil {
			continue
		}
		if err := i.content.DeleteContent(ctx, saved.ID); err != nil {
			return result, &DocumentError{Path: doc.Path, Err: err}
		}
		if strings.TrimSpace(string(doc.Body)) == "" {
			continue
		}
		region := doc.region()
		_, err = i.content.Add(ctx, &content.Item{
			ID:       identity.ContentItemUUID(saved.ID, region, 0),
			PageID:   saved.ID,
			Region:   region,
			Ordering: 10,
			Type:     MarkdownPluginType,
			Payload:  map[string]any{"markdown": string(doc.Body)},
		})
		if err != nil {
			return result, &DocumentError{Path: doc.Path, Err: err}
		}
		result.Items++
	}
	i.logger.Info("fixtures.import.completed", "pages", len(result.Pages), "items", result.Items)
	return result, nil
}

func (i *Importer) pageFor(doc planned) *pages.Page {
	page := &pages.Page{
		ID:            identity.PageUUID(doc.Key),
		Title:         strings.TrimSpace(doc.Meta.Title),
		Slug:          doc.SlugValue(),
		Position:      doc.Meta.Position,
		IsActive:      doc.active(),
		PageType:      strings.TrimSpace(doc.Meta.Type),
		LanguageCode:  strings.TrimSpace(doc.Meta.Language),
		Menu:          strings.TrimSpace(doc.Meta.Menu),
		RedirectToURL: strings.TrimSpace(doc.Meta.RedirectToURL),
		AppOptions:    maps.Clone(doc.Meta.AppOptions),
	}
	if static := strings.TrimSpace(doc.Meta.StaticPath); static != "" {
		page.StaticPath = true
		page.Path = static
	}
	if doc.hasParent {
		id := identity.PageUUID(doc.parent)
		page.ParentID = &id
	}
	if translation := translationKey(doc.Document); translation != "" {
		id := identity.PageUUID(translation)
		page.TranslationOfID = &id
	}
	return page
}

type planned struct {
	Document
	parent    string
	hasParent bool
}

// plan orders docs so every parent and translation target precedes the
// documents referencing it. Top level documents become roots when there is
// no root index document.
func plan(docs []Document) ([]planned, error) {
	byKey := make(map[string]bool, len(docs))
	for _, doc := range docs {
		byKey[doc.Key] = true
	}

	pending := make([]planned, 0, len(docs))
	for _, doc := range docs {
		parent, ok := doc.ParentKey()
		if ok && parent == "" && !byKey[""] {
			ok = false
		}
		if ok && !byKey[parent] {
			return nil, &DocumentError{Path: doc.Path, Err: ErrParentMissing}
		}
		if target := translationKey(doc); target != "" && !byKey[target] {
			return nil, &DocumentError{Path: doc.Path, Err: ErrTranslationKey}
		}
		pending = append(pending, planned{Document: doc, parent: parent, hasParent: ok})
	}

	done := make(map[string]bool, len(docs))
	out := make([]planned, 0, len(docs))
	for len(pending) > 0 {
		var rest []planned
		for _, p := range pending {
			target := translationKey(p.Document)
			if (p.hasParent && !done[p.parent]) || (target != "" && !done[target]) {
				rest = append(rest, p)
				continue
			}
			done[p.Key] = true
			out = append(out, p)
		}
		if len(rest) == len(pending) {
			keys := make([]string, 0, len(rest))
			for _, p := range rest {
				keys = append(keys, p.Key)
			}
			return nil, &UnresolvedParentsError{Keys: keys}
		}
		pending = rest
	}
	return out, nil
}

func translationKey(doc Document) string {
	return strings.Trim(strings.TrimSpace(doc.Meta.TranslationOf), "/")
}
