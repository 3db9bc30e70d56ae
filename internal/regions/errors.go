package regions

import (
	"errors"
	"fmt"
)

var (
	ErrSectionNotRegistered = errors.New("regions: section not registered")
	ErrRendererRequired     = errors.New("regions: item renderer is required")
	ErrContentsRequired     = errors.New("regions: contents are required")
)

// SectionNotRegisteredError names a section tag without enter/exit hooks.
type SectionNotRegisteredError struct {
	Section string
}

func (e *SectionNotRegisteredError) Error() string {
	return fmt.Sprintf("regions: section %q is not registered", e.Section)
}

func (e *SectionNotRegisteredError) Unwrap() error {
	return ErrSectionNotRegistered
}
