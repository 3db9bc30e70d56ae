package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"maps"
	"path"
	"strings"
	"sync"
)

// HTMLTemplates implements interfaces.TemplateRenderer on html/template.
// Templates are parsed from an fs.FS on first use and addressed by their
// slash separated path relative to the root, e.g. "pages/standard.html".
type HTMLTemplates struct {
	fsys fs.FS

	mu      sync.RWMutex
	tpl     *template.Template
	funcs   template.FuncMap
	globals map[string]any
	loaded  bool
}

// NewHTMLTemplates returns a renderer over every .html and .tmpl file in
// fsys. A nil fsys yields an empty template set.
func NewHTMLTemplates(fsys fs.FS) *HTMLTemplates {
	return &HTMLTemplates{
		fsys: fsys,
		funcs: template.FuncMap{
			"safeHTML": func(value any) template.HTML { return template.HTML(fmt.Sprint(value)) },
		},
		globals: map[string]any{},
	}
}

func (t *HTMLTemplates) ensure() (*template.Template, error) {
	t.mu.RLock()
	if t.loaded {
		tpl := t.tpl
		t.mu.RUnlock()
		return tpl, nil
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return t.tpl, nil
	}
	root := template.New("feincms").Funcs(t.funcs)
	if t.fsys == nil {
		t.tpl = root
		t.loaded = true
		return root, nil
	}
	err := fs.WalkDir(t.fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(name)) {
		case ".html", ".tmpl":
		default:
			return nil
		}
		body, err := fs.ReadFile(t.fsys, name)
		if err != nil {
			return err
		}
		if _, err := root.New(name).Parse(string(body)); err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.tpl = root
	t.loaded = true
	return root, nil
}

// Lookup reports whether a template with that name exists.
func (t *HTMLTemplates) Lookup(name string) bool {
	tpl, err := t.ensure()
	if err != nil {
		return false
	}
	return tpl.Lookup(name) != nil
}

func (t *HTMLTemplates) Render(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := t.ensure()
	if err != nil {
		return "", err
	}
	if tpl.Lookup(name) == nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return execute(out, func(w io.Writer) error {
		return tpl.ExecuteTemplate(w, name, t.withGlobals(data))
	})
}

func (t *HTMLTemplates) RenderString(content string, data any, out ...io.Writer) (string, error) {
	t.mu.RLock()
	funcs := maps.Clone(t.funcs)
	t.mu.RUnlock()
	tpl, err := template.New("inline").Funcs(funcs).Parse(content)
	if err != nil {
		return "", err
	}
	return execute(out, func(w io.Writer) error {
		return tpl.Execute(w, t.withGlobals(data))
	})
}

// RegisterFilter exposes fn to templates as a two argument function. Filters
// must be registered before the first render.
func (t *HTMLTemplates) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return ErrTemplatesLoaded
	}
	t.funcs[name] = fn
	return nil
}

// GlobalContext merges data into the context of every render whose data is a
// map. Non map data is rendered untouched.
func (t *HTMLTemplates) GlobalContext(data any) error {
	values, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("renderer: global context must be map[string]any, got %T", data)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	maps.Copy(t.globals, values)
	return nil
}

func (t *HTMLTemplates) withGlobals(data any) any {
	values, ok := data.(map[string]any)
	if !ok {
		return data
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.globals) == 0 {
		return data
	}
	merged := maps.Clone(t.globals)
	maps.Copy(merged, values)
	return merged
}

func execute(out []io.Writer, run func(io.Writer) error) (string, error) {
	if len(out) > 0 && out[0] != nil {
		return "", run(out[0])
	}
	var buffer bytes.Buffer
	if err := run(&buffer); err != nil {
		return "", err
	}
	return buffer.String(), nil
}
