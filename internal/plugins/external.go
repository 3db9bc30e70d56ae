package plugins

import (
	"html/template"
	"net/url"
	"regexp"
	"strings"
)

var (
	youtubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	vimeoID   = regexp.MustCompile(`^[0-9]+$`)
)

var (
	embedTemplate = template.Must(template.New("embed").Parse(
		`<div class="embed embed-{{ .provider }}"><iframe src="{{ .src }}" frameborder="0" allow="autoplay; fullscreen; picture-in-picture" allowfullscreen></iframe></div>`,
	))
	linkTemplate = template.Must(template.New("link").Parse(
		`<a href="{{ .url }}" rel="noopener">{{ .title }}</a>`,
	))
)

// EmbedURL returns the player URL for YouTube and Vimeo links.
func EmbedURL(raw string) (provider, src string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch host {
	case "youtube.com", "m.youtube.com":
		id := u.Query().Get("v")
		if len(segments) == 2 && (segments[0] == "embed" || segments[0] == "shorts") {
			id = segments[1]
		}
		if youtubeID.MatchString(id) {
			return "youtube", "https://www.youtube-nocookie.com/embed/" + id, true
		}
	case "youtu.be":
		if len(segments) == 1 && youtubeID.MatchString(segments[0]) {
			return "youtube", "https://www.youtube-nocookie.com/embed/" + segments[0], true
		}
	case "vimeo.com", "player.vimeo.com":
		id := segments[len(segments)-1]
		if vimeoID.MatchString(id) {
			return "vimeo", "https://player.vimeo.com/video/" + id, true
		}
	}
	return "", "", false
}

func renderExternal(item PayloadItem) (string, error) {
	raw := item.PayloadString("url")
	var out strings.Builder
	if provider, src, ok := EmbedURL(raw); ok {
		err := embedTemplate.Execute(&out, map[string]any{"provider": provider, "src": src})
		return out.String(), err
	}
	title := item.PayloadString("title")
	if title == "" {
		title = raw
	}
	err := linkTemplate.Execute(&out, map[string]any{"url": raw, "title": title})
	return out.String(), err
}
