package http

import (
	"maps"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/content"
)

type itemPayload struct {
	ID       *uuid.UUID     `json:"id,omitempty"`
	Region   *string        `json:"region,omitempty"`
	Ordering *int           `json:"ordering,omitempty"`
	Type     *string        `json:"type,omitempty"`
	Section  *string        `json:"section,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

func (p itemPayload) apply(item *content.Item) {
	setIf(&item.Region, p.Region)
	setIf(&item.Ordering, p.Ordering)
	setIf(&item.Type, p.Type)
	setIf(&item.Section, p.Section)
	if p.Payload != nil {
		item.Payload = maps.Clone(p.Payload)
	}
}

func (api *AdminAPI) registerContentRoutes(mux *http.ServeMux, base string) {
	pagesRoot := joinPath(base, "pages")
	mux.HandleFunc("GET "+pagesRoot+"/{id}/content", api.handleContentList)
	mux.HandleFunc("POST "+pagesRoot+"/{id}/content", api.handleContentAdd)

	root := joinPath(base, "content")
	mux.HandleFunc("GET "+root+"/{id}", api.handleContentGet)
	mux.HandleFunc("PUT "+root+"/{id}", api.handleContentUpdate)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handleContentDelete)
}

func (api *AdminAPI) contentReady(w http.ResponseWriter) bool {
	if api == nil || api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return false
	}
	return true
}

// handleContentList returns the items of a page ordered by region and
// ordering, or the items of one region when ?region= is set.
func (api *AdminAPI) handleContentList(w http.ResponseWriter, r *http.Request) {
	if !api.contentReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var (
		items []*content.Item
		err   error
	)
	if region := strings.TrimSpace(r.URL.Query().Get("region")); region != "" {
		items, err = api.content.ListForRegion(r.Context(), id, region)
	} else {
		items, err = api.content.ListForPage(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (api *AdminAPI) handleContentAdd(w http.ResponseWriter, r *http.Request) {
	if !api.contentReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload itemPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json")
		return
	}
	item := &content.Item{PageID: id}
	if payload.ID != nil {
		item.ID = *payload.ID
	}
	payload.apply(item)
	saved, err := api.content.Add(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}
	api.changed(r.Context(), "content.add")
	writeJSON(w, http.StatusCreated, saved)
}

func (api *AdminAPI) handleContentGet(w http.ResponseWriter, r *http.Request) {
	if !api.contentReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := api.content.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (api *AdminAPI) handleContentUpdate(w http.ResponseWriter, r *http.Request) {
	if !api.contentReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload itemPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json")
		return
	}
	item, err := api.content.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	payload.apply(item)
	saved, err := api.content.Update(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}
	api.changed(r.Context(), "content.update")
	writeJSON(w, http.StatusOK, saved)
}

func (api *AdminAPI) handleContentDelete(w http.ResponseWriter, r *http.Request) {
	if !api.contentReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := api.content.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	api.changed(r.Context(), "content.delete")
	w.WriteHeader(http.StatusNoContent)
}
