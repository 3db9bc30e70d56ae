package main

import (
	"bytes"
	"net/http"
	"slices"

	feincms "github.com/goliatone/go-feincms"
	"github.com/goliatone/go-feincms/internal/urls"
)

type post struct {
	Slug  string
	Title string
	Body  string
}

// blogApp is a small application mounted below every page of the blog
// type. The page it is mounted on supplies the title and language.
type blogApp struct {
	module *feincms.Module
	posts  []post
}

func newBlogApp(posts []post) *blogApp {
	return &blogApp{posts: posts}
}

func defaultPosts() []post {
	return []post{
		{Slug: "hello-world", Title: "Hello world", Body: "The first post on this blog."},
		{Slug: "page-trees", Title: "Page trees", Body: "Pages form a tree and applications mount below them."},
	}
}

func (b *blogApp) urls() (*feincms.URLTable, error) {
	return feincms.NewURLTable("blog",
		feincms.Path("", "index", http.HandlerFunc(b.index)),
		feincms.Path(":slug/", "detail", http.HandlerFunc(b.detail)),
	)
}

type postLink struct {
	post
	URL string
}

func (b *blogApp) index(w http.ResponseWriter, r *http.Request) {
	page, err := b.module.PageForAppRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	namespaces := []string{page.AppNamespace}
	links := make([]postLink, 0, len(b.posts))
	for _, p := range b.posts {
		href, err := b.module.ReverseApp(r.Context(), namespaces, "detail",
			feincms.WithParams(map[string]string{"slug": p.Slug}),
			feincms.WithFallback(page.Path),
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		links = append(links, postLink{post: p, URL: href})
	}
	b.render(w, "blog/index.html", map[string]any{"page": page, "posts": links})
}

func (b *blogApp) detail(w http.ResponseWriter, r *http.Request) {
	page, err := b.module.PageForAppRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	match, _ := urls.MatchFromContext(r.Context())
	index := slices.IndexFunc(b.posts, func(p post) bool { return p.Slug == match.Param("slug") })
	if index < 0 {
		notFound(w, r)
		return
	}
	namespaces := []string{page.AppNamespace}
	back, _ := b.module.ReverseApp(r.Context(), namespaces, "index", feincms.WithFallback(page.Path))
	canonical, _ := b.module.AbsoluteURL(r.Context(), namespaces, "detail",
		feincms.WithParams(map[string]string{"slug": match.Param("slug")}),
		feincms.WithFallback(""),
	)
	b.render(w, "blog/detail.html", map[string]any{
		"page":      page,
		"post":      b.posts[index],
		"back":      back,
		"canonical": canonical,
	})
}

func (b *blogApp) render(w http.ResponseWriter, name string, data map[string]any) {
	var buf bytes.Buffer
	if _, err := b.module.Container().Templates().Render(name, data, &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
