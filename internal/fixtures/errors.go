package fixtures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoDocuments    = errors.New("fixtures: no markdown documents found")
	ErrDuplicateKey   = errors.New("fixtures: two documents map to the same page")
	ErrParentMissing  = errors.New("fixtures: parent document not found")
	ErrTitleRequired  = errors.New("fixtures: title is required")
	ErrPagesRequired  = errors.New("fixtures: page saver is required")
	ErrTranslationKey = errors.New("fixtures: translation_of document not found")
)

// DocumentError attaches the source file to an import failure.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("fixtures: %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// UnresolvedParentsError lists documents whose parent never got imported.
type UnresolvedParentsError struct {
	Keys []string
}

func (e *UnresolvedParentsError) Error() string {
	return "fixtures: unresolved parents for " + strings.Join(e.Keys, ", ")
}

func (e *UnresolvedParentsError) Unwrap() error {
	return ErrParentMissing
}
