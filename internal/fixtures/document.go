package fixtures

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/goliatone/go-feincms/internal/markdown"
)

// Meta is the frontmatter of a fixture document.
type Meta struct {
	Title         string            `yaml:"title"`
	Slug          *string           `yaml:"slug"`
	Parent        *string           `yaml:"parent"`
	Language      string            `yaml:"language"`
	Type          string            `yaml:"type"`
	Position      int               `yaml:"position"`
	Active        *bool             `yaml:"active"`
	Menu          string            `yaml:"menu"`
	StaticPath    string            `yaml:"static_path"`
	RedirectToURL string            `yaml:"redirect_to_url"`
	TranslationOf string            `yaml:"translation_of"`
	AppOptions    map[string]string `yaml:"app_options"`
	Region        string            `yaml:"region"`
}

// Document is one parsed fixture file. Key is its path without extension,
// with "index" naming the enclosing directory; the root index has key "".
type Document struct {
	Key  string
	Path string
	Meta Meta
	Body []byte
}

// ParentKey returns the key of the parent document and whether the document
// has a parent at all. An explicit empty parent makes the document a root.
func (d Document) ParentKey() (string, bool) {
	if d.Meta.Parent != nil {
		parent := strings.Trim(strings.TrimSpace(*d.Meta.Parent), "/")
		return parent, parent != ""
	}
	if d.Key == "" {
		return "", false
	}
	dir := path.Dir(d.Key)
	if dir == "." {
		return "", true
	}
	return dir, true
}

// SlugValue returns the configured slug or the last segment of the key.
func (d Document) SlugValue() string {
	if d.Meta.Slug != nil {
		return strings.TrimSpace(*d.Meta.Slug)
	}
	if d.Key == "" {
		return ""
	}
	return path.Base(d.Key)
}

func (d Document) active() bool {
	return d.Meta.Active == nil || *d.Meta.Active
}

func (d Document) region() string {
	if region := strings.TrimSpace(d.Meta.Region); region != "" {
		return region
	}
	return "main"
}

// Load parses every .md file of fsys in path order.
func Load(fsys fs.FS) ([]Document, error) {
	var docs []Document
	seen := map[string]string{}
	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || strings.ToLower(path.Ext(name)) != ".md" {
			return nil
		}
		source, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		doc := Document{Key: documentKey(name), Path: name}
		body, err := markdown.SplitFrontMatter(source, &doc.Meta)
		if err != nil {
			return &DocumentError{Path: name, Err: err}
		}
		doc.Body = body
		if strings.TrimSpace(doc.Meta.Title) == "" {
			return &DocumentError{Path: name, Err: ErrTitleRequired}
		}
		if other, dup := seen[doc.Key]; dup {
			return &DocumentError{Path: name, Err: fmt.Errorf("%w (%s)", ErrDuplicateKey, other)}
		}
		seen[doc.Key] = name
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	slices.SortFunc(docs, func(a, b Document) int { return strings.Compare(a.Path, b.Path) })
	return docs, nil
}

func documentKey(name string) string {
	key := strings.TrimSuffix(name, path.Ext(name))
	if key == "index" {
		return ""
	}
	return strings.TrimSuffix(key, "/index")
}
