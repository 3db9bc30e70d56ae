package main

import (
	"embed"
	"io"
	"io/fs"
	"net/http"

	feincms "github.com/goliatone/go-feincms"
)

//go:embed templates
var templateFiles embed.FS

func siteTypes() []feincms.PageType {
	return []feincms.PageType{
		feincms.TemplateType{
			Key:      "standard",
			Title:    "Standard page",
			Template: "pages/standard.html",
			Regions: []feincms.Region{
				{Key: "main", Title: "Main content"},
				{Key: "sidebar", Title: "Sidebar", Inherited: true},
			},
		},
		feincms.ApplicationType{
			Key:     "blog",
			Title:   "Blog",
			URLConf: "blog",
			Regions: []feincms.Region{
				{Key: "sidebar", Title: "Sidebar", Inherited: true},
			},
		},
	}
}

// buildSite wires the page types, the blog url module and the templates
// into a module.
func buildSite(cfg feincms.Config, opts ...feincms.Option) (*feincms.Module, error) {
	templates, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, err
	}
	blog := newBlogApp(defaultPosts())
	table, err := blog.urls()
	if err != nil {
		return nil, err
	}

	base := []feincms.Option{
		feincms.WithPageTypes(siteTypes()...),
		feincms.WithURLModule("blog", table),
		feincms.WithTemplateFS(templates),
		feincms.WithNotFoundHandler(http.HandlerFunc(notFound)),
	}
	module, err := feincms.New(cfg, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	blog.module = module
	return module, nil
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, "<h1>Page not found</h1>")
}
