package pagescmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/commands"
	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

const movePageMessageType = "cms.pages.move"

var _ command.Commander[MovePageCommand] = (*MovePageHandler)(nil)

// PageMover moves pages inside the tree.
type PageMover interface {
	Move(ctx context.Context, req pages.MovePageRequest) (*pages.Page, error)
}

// MovePageCommand places PageID relative to TargetID.
type MovePageCommand struct {
	PageID   uuid.UUID `json:"page_id"`
	TargetID uuid.UUID `json:"target_id"`
	Position string    `json:"position"`
}

// Type implements command.Message.
func (MovePageCommand) Type() string { return movePageMessageType }

// Validate checks identifiers and the position before the handler runs.
func (m MovePageCommand) Validate() error {
	errs := validation.Errors{}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("cms.pages.move.page_id_required", "page_id is required")
	}
	if m.TargetID == uuid.Nil {
		errs["target_id"] = validation.NewError("cms.pages.move.target_id_required", "target_id is required")
	}
	if !pages.MovePosition(m.Position).Valid() {
		errs["position"] = validation.NewError("cms.pages.move.position_invalid", "position must be first-child, last-child, left or right")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MovePageHandler runs MovePageCommand against the page service.
type MovePageHandler struct {
	inner *commands.Handler[MovePageCommand]
}

// NewMovePageHandler constructs a handler wired to mover.
func NewMovePageHandler(mover PageMover, logger interfaces.Logger, opts ...commands.HandlerOption[MovePageCommand]) *MovePageHandler {
	exec := func(ctx context.Context, msg MovePageCommand) error {
		_, err := mover.Move(ctx, pages.MovePageRequest{
			PageID:   msg.PageID,
			TargetID: msg.TargetID,
			Position: pages.MovePosition(msg.Position),
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[MovePageCommand]{
		commands.WithLogger[MovePageCommand](logger),
		commands.WithOperation[MovePageCommand]("pages.move"),
		commands.WithMessageFields(func(msg MovePageCommand) map[string]any {
			return map[string]any{"page_id": msg.PageID, "target_id": msg.TargetID, "position": msg.Position}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[MovePageCommand](logger)),
	}
	return &MovePageHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[MovePageCommand].
func (h *MovePageHandler) Execute(ctx context.Context, msg MovePageCommand) error {
	return h.inner.Execute(ctx, msg)
}
