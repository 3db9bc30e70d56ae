package pages

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"
)

// ClonePageRequest copies selected fields, and optionally the content, of
// SourceID onto TargetID.
type ClonePageRequest struct {
	SourceID       uuid.UUID
	TargetID       uuid.UUID
	Fields         []string
	ReplaceContent bool
}

var cloneableFields = map[string]func(dst, src *Page){
	"title":     func(dst, src *Page) { dst.Title = src.Title },
	"page_type": func(dst, src *Page) { dst.PageType = src.PageType },
	"menu":      func(dst, src *Page) { dst.Menu = src.Menu },
	"is_active": func(dst, src *Page) { dst.IsActive = src.IsActive },
	"app_options": func(dst, src *Page) {
		dst.AppOptions = maps.Clone(src.AppOptions)
	},
	"redirect_to_url": func(dst, src *Page) { dst.RedirectToURL = src.RedirectToURL },
	"redirect_to_page_id": func(dst, src *Page) {
		dst.RedirectToPageID = cloneUUID(src.RedirectToPageID)
	},
}

// CloneableFields lists the field names accepted by Clone.
func CloneableFields() []string {
	return []string{"title", "page_type", "menu", "is_active", "app_options", "redirect_to_url", "redirect_to_page_id"}
}

// Clone copies the requested fields to the target and saves it. With
// ReplaceContent the target's content rows are replaced by copies of the
// source rows; the source keeps its own rows.
func (s *service) Clone(ctx context.Context, req ClonePageRequest) (*Page, error) {
	if req.SourceID == req.TargetID {
		return nil, ErrCloneSameTarget
	}
	for _, field := range req.Fields {
		if _, ok := cloneableFields[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrCloneFieldUnknown, field)
		}
	}
	if req.ReplaceContent && s.content == nil {
		return nil, ErrContentClonerMissing
	}

	source, err := s.repo.GetByID(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.GetByID(ctx, req.TargetID)
	if err != nil {
		return nil, err
	}

	for _, field := range req.Fields {
		cloneableFields[field](target, source)
	}

	saved := target
	if len(req.Fields) > 0 {
		if saved, err = s.save(ctx, target, nil); err != nil {
			return nil, err
		}
	}
	if req.ReplaceContent {
		if err := s.content.ReplaceContent(ctx, source.ID, saved.ID); err != nil {
			return nil, err
		}
	}
	s.logger.Info("pages.clone", "source_id", source.ID, "target_id", saved.ID, "fields", req.Fields, "replace_content", req.ReplaceContent)
	return saved, nil
}
