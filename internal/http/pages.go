package http

import (
	"maps"
	"net/http"
	"strings"

	"github.com/google/uuid"

	pagescmd "github.com/goliatone/go-feincms/internal/commands/pages"
	"github.com/goliatone/go-feincms/internal/pages"
)

// pagePayload carries editable page fields. Absent fields keep their stored
// value on update.
type pagePayload struct {
	ParentID         optionalUUID      `json:"parent_id"`
	Position         *int              `json:"position,omitempty"`
	Title            *string           `json:"title,omitempty"`
	Slug             *string           `json:"slug,omitempty"`
	Path             *string           `json:"path,omitempty"`
	StaticPath       *bool             `json:"static_path,omitempty"`
	IsActive         *bool             `json:"is_active,omitempty"`
	PageType         *string           `json:"page_type,omitempty"`
	AppOptions       map[string]string `json:"app_options,omitempty"`
	LanguageCode     *string           `json:"language_code,omitempty"`
	TranslationOfID  optionalUUID      `json:"translation_of_id"`
	Menu             *string           `json:"menu,omitempty"`
	RedirectToURL    *string           `json:"redirect_to_url,omitempty"`
	RedirectToPageID optionalUUID      `json:"redirect_to_page_id"`
}

func (p pagePayload) apply(page *pages.Page) {
	p.ParentID.apply(&page.ParentID)
	p.TranslationOfID.apply(&page.TranslationOfID)
	p.RedirectToPageID.apply(&page.RedirectToPageID)
	setIf(&page.Position, p.Position)
	setIf(&page.Title, p.Title)
	setIf(&page.Slug, p.Slug)
	setIf(&page.Path, p.Path)
	setIf(&page.StaticPath, p.StaticPath)
	setIf(&page.IsActive, p.IsActive)
	setIf(&page.PageType, p.PageType)
	setIf(&page.LanguageCode, p.LanguageCode)
	setIf(&page.Menu, p.Menu)
	setIf(&page.RedirectToURL, p.RedirectToURL)
	if p.AppOptions != nil {
		page.AppOptions = maps.Clone(p.AppOptions)
	}
}

func setIf[T any](dst *T, value *T) {
	if value != nil {
		*dst = *value
	}
}

type movePayload struct {
	TargetID uuid.UUID `json:"target_id"`
	Position string    `json:"position"`
}

type clonePayload struct {
	TargetID       uuid.UUID `json:"target_id"`
	Fields         []string  `json:"fields,omitempty"`
	ReplaceContent bool      `json:"replace_content"`
}

func (api *AdminAPI) registerPageRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "pages")
	mux.HandleFunc("GET "+root, api.handlePageList)
	mux.HandleFunc("POST "+root, api.handlePageCreate)
	mux.HandleFunc("GET "+root+"/{id}", api.handlePageGet)
	mux.HandleFunc("PUT "+root+"/{id}", api.handlePageUpdate)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handlePageDelete)
	mux.HandleFunc("GET "+root+"/{id}/children", api.handlePageChildren)
	mux.HandleFunc("GET "+root+"/{id}/ancestors", api.handlePageAncestors)
	mux.HandleFunc("GET "+root+"/{id}/translations", api.handlePageTranslations)
	mux.HandleFunc("POST "+root+"/{id}/move", api.handlePageMove)
	mux.HandleFunc("POST "+root+"/{id}/clone", api.handlePageClone)
}

func (api *AdminAPI) pagesReady(w http.ResponseWriter) bool {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// handlePageList returns the tree in depth-first order. The menu and
// language query parameters narrow it to the active pages of a menu.
func (api *AdminAPI) handlePageList(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	var (
		list []*pages.Page
		err  error
	)
	query := r.URL.Query()
	if menu := strings.TrimSpace(query.Get("menu")); menu != "" {
		list, err = api.pages.MenuPages(r.Context(), menu, strings.TrimSpace(query.Get("language")))
	} else {
		list, err = api.pages.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (api *AdminAPI) handlePageGet(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	record, err := api.pages.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handlePageCreate(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	var payload pagePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json")
		return
	}
	page := &pages.Page{IsActive: true}
	payload.apply(page)
	saved, err := api.pages.Save(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	api.changed(r.Context(), "pages.create")
	writeJSON(w, http.StatusCreated, saved)
}

func (api *AdminAPI) handlePageUpdate(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload pagePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json")
		return
	}
	existing, err := api.pages.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	payload.apply(existing)
	saved, err := api.pages.Save(r.Context(), existing)
	if err != nil {
		writeError(w, err)
		return
	}
	api.changed(r.Context(), "pages.update")
	writeJSON(w, http.StatusOK, saved)
}

func (api *AdminAPI) handlePageDelete(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := api.delete.Execute(r.Context(), pagescmd.DeletePageCommand{PageID: id}); err != nil {
		writeError(w, err)
		return
	}
	api.changed(r.Context(), "pages.delete")
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handlePageChildren(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := api.pages.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	list, err := api.pages.Children(r.Context(), &id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (api *AdminAPI) handlePageAncestors(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	includeSelf := r.URL.Query().Get("include_self") == "true"
	list, err := api.pages.Ancestors(r.Context(), id, includeSelf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (api *AdminAPI) handlePageTranslations(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := api.pages.Translations(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (api *AdminAPI) handlePageMove(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload movePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json")
		return
	}
	cmd := pagescmd.MovePageCommand{PageID: id, TargetID: payload.TargetID, Position: payload.Position}
	if err := api.move.Execute(r.Context(), cmd); err != nil {
		writeError(w, err)
		return
	}
	api.changed(r.Context(), "pages.move")
	api.writePage(w, r, id)
}

func (api *AdminAPI) handlePageClone(w http.ResponseWriter, r *http.Request) {
	if !api.pagesReady(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload clonePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json")
		return
	}
	cmd := pagescmd.ClonePageCommand{
		SourceID:       id,
		TargetID:       payload.TargetID,
		Fields:         payload.Fields,
		ReplaceContent: payload.ReplaceContent,
	}
	if err := api.clone.Execute(r.Context(), cmd); err != nil {
		writeError(w, err)
		return
	}
	api.changed(r.Context(), "pages.clone")
	api.writePage(w, r, payload.TargetID)
}

func (api *AdminAPI) writePage(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	record, err := api.pages.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
