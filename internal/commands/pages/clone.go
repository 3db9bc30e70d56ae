package pagescmd

import (
	"context"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/commands"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

const clonePageMessageType = "cms.pages.clone"

var _ command.Commander[ClonePageCommand] = (*ClonePageHandler)(nil)

// PageCloner copies fields and content between pages.
type PageCloner interface {
	Clone(ctx context.Context, req pages.ClonePageRequest) (*pages.Page, error)
}

// ClonePageCommand copies Fields, and the content rows when ReplaceContent
// is set, from SourceID onto TargetID.
type ClonePageCommand struct {
	SourceID       uuid.UUID `json:"source_id"`
	TargetID       uuid.UUID `json:"target_id"`
	Fields         []string  `json:"fields,omitempty"`
	ReplaceContent bool      `json:"replace_content"`
}

// Type implements command.Message.
func (ClonePageCommand) Type() string { return clonePageMessageType }

// Validate checks the pages and the requested fields.
func (m ClonePageCommand) Validate() error {
	errs := validation.Errors{}
	if m.SourceID == uuid.Nil {
		errs["source_id"] = validation.NewError("cms.pages.clone.source_id_required", "source_id is required")
	}
	if m.TargetID == uuid.Nil {
		errs["target_id"] = validation.NewError("cms.pages.clone.target_id_required", "target_id is required")
	} else if m.TargetID == m.SourceID {
		errs["target_id"] = validation.NewError("cms.pages.clone.target_id_same", "target_id must differ from source_id")
	}
	allowed := pages.CloneableFields()
	for _, field := range m.Fields {
		if !slices.Contains(allowed, field) {
			errs["fields"] = validation.NewError("cms.pages.clone.field_unknown", "unknown field "+field)
			break
		}
	}
	if len(m.Fields) == 0 && !m.ReplaceContent {
		errs["fields"] = validation.NewError("cms.pages.clone.nothing_selected", "select fields or replace_content")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ClonePageHandler runs ClonePageCommand against the page service.
type ClonePageHandler struct {
	inner *commands.Handler[ClonePageCommand]
}

// NewClonePageHandler constructs a handler wired to cloner.
func NewClonePageHandler(cloner PageCloner, logger interfaces.Logger, opts ...commands.HandlerOption[ClonePageCommand]) *ClonePageHandler {
	exec := func(ctx context.Context, msg ClonePageCommand) error {
		_, err := cloner.Clone(ctx, pages.ClonePageRequest{
			SourceID:       msg.SourceID,
			TargetID:       msg.TargetID,
			Fields:         slices.Clone(msg.Fields),
			ReplaceContent: msg.ReplaceContent,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[ClonePageCommand]{
		commands.WithLogger[ClonePageCommand](logger),
		commands.WithOperation[ClonePageCommand]("pages.clone"),
		commands.WithMessageFields(func(msg ClonePageCommand) map[string]any {
			return map[string]any{
				"source_id":       msg.SourceID,
				"target_id":       msg.TargetID,
				"fields":          msg.Fields,
				"replace_content": msg.ReplaceContent,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ClonePageCommand](logger)),
	}
	return &ClonePageHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[ClonePageCommand].
func (h *ClonePageHandler) Execute(ctx context.Context, msg ClonePageCommand) error {
	return h.inner.Execute(ctx, msg)
}
