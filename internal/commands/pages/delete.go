package pagescmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/commands"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

const deletePageMessageType = "cms.pages.delete"

var _ command.Commander[DeletePageCommand] = (*DeletePageHandler)(nil)

// PageDeleter removes a page with its subtree.
type PageDeleter interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeletePageCommand removes PageID and every descendant.
type DeletePageCommand struct {
	PageID uuid.UUID `json:"page_id"`
}

// Type implements command.Message.
func (DeletePageCommand) Type() string { return deletePageMessageType }

func (m DeletePageCommand) Validate() error {
	if m.PageID == uuid.Nil {
		return validation.Errors{
			"page_id": validation.NewError("cms.pages.delete.page_id_required", "page_id is required"),
		}
	}
	return nil
}

// DeletePageHandler runs DeletePageCommand against the page service.
type DeletePageHandler struct {
	inner *commands.Handler[DeletePageCommand]
}

// NewDeletePageHandler constructs a handler wired to deleter.
func NewDeletePageHandler(deleter PageDeleter, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePageCommand]) *DeletePageHandler {
	exec := func(ctx context.Context, msg DeletePageCommand) error {
		return deleter.Delete(ctx, msg.PageID)
	}
	handlerOpts := []commands.HandlerOption[DeletePageCommand]{
		commands.WithLogger[DeletePageCommand](logger),
		commands.WithOperation[DeletePageCommand]("pages.delete"),
		commands.WithMessageFields(func(msg DeletePageCommand) map[string]any {
			return map[string]any{"page_id": msg.PageID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeletePageCommand](logger)),
	}
	return &DeletePageHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[DeletePageCommand].
func (h *DeletePageHandler) Execute(ctx context.Context, msg DeletePageCommand) error {
	return h.inner.Execute(ctx, msg)
}
