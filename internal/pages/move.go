package pages

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// MovePosition places a page relative to a target page.
type MovePosition string

const (
	MoveFirstChild MovePosition = "first-child"
	MoveLastChild  MovePosition = "last-child"
	MoveLeft       MovePosition = "left"
	MoveRight      MovePosition = "right"
)

// Valid reports whether the position is supported.
func (p MovePosition) Valid() bool {
	switch p {
	case MoveFirstChild, MoveLastChild, MoveLeft, MoveRight:
		return true
	}
	return false
}

// MovePageRequest moves PageID relative to TargetID.
type MovePageRequest struct {
	PageID   uuid.UUID
	TargetID uuid.UUID
	Position MovePosition
}

// Move reparents and reorders a page. Sibling positions in the destination
// are renumbered in steps of ten and the moved subtree is re-saved so paths
// and active flags follow the new parent.
func (s *service) Move(ctx context.Context, req MovePageRequest) (*Page, error) {
	if !req.Position.Valid() {
		return nil, ErrMovePositionInvalid
	}
	if req.PageID == req.TargetID {
		return nil, ErrMoveIntoSelf
	}
	page, err := s.repo.GetByID(ctx, req.PageID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.GetByID(ctx, req.TargetID)
	if err != nil {
		return nil, err
	}

	var newParent *uuid.UUID
	switch req.Position {
	case MoveFirstChild, MoveLastChild:
		id := target.ID
		newParent = &id
	default:
		newParent = cloneUUID(target.ParentID)
	}

	if newParent != nil {
		if *newParent == page.ID {
			return nil, ErrMoveIntoSelf
		}
		subtree, err := s.repo.Descendants(ctx, page.ID)
		if err != nil {
			return nil, err
		}
		if containsID(subtree, *newParent) {
			return nil, ErrMoveIntoSelf
		}
	}

	siblings, err := s.repo.ListChildren(ctx, newParent)
	if err != nil {
		return nil, err
	}
	siblings = slices.DeleteFunc(siblings, func(p *Page) bool { return p.ID == page.ID })

	index := len(siblings)
	switch req.Position {
	case MoveFirstChild:
		index = 0
	case MoveLeft, MoveRight:
		index = slices.IndexFunc(siblings, func(p *Page) bool { return p.ID == target.ID })
		if req.Position == MoveRight {
			index++
		}
	}

	ordered := slices.Insert(siblings, index, page)
	var renumbered []*Page
	for i, node := range ordered {
		position := (i + 1) * positionStep
		if node.ID == page.ID {
			page.Position = position
			continue
		}
		if node.Position != position {
			node.Position = position
			node.UpdatedAt = s.now()
			renumbered = append(renumbered, node)
		}
	}

	page.ParentID = newParent
	moved, err := s.save(ctx, page, renumbered)
	if err != nil {
		return nil, err
	}
	s.logger.Info("pages.move", "page_id", moved.ID, "target_id", target.ID, "position", string(req.Position), "path", moved.Path)
	return moved, nil
}
