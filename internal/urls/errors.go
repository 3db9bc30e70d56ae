package urls

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatch         = errors.New("urls: no route matches the path")
	ErrNoReverseMatch  = errors.New("urls: no route matches the view name")
	ErrTableIDRequired = errors.New("urls: table id is required")
	ErrRouteHandlerNil = errors.New("urls: route handler is nil")
	ErrPatternInvalid  = errors.New("urls: route pattern is invalid")
	ErrParamMissing    = errors.New("urls: reverse parameter is missing")
	ErrParamInvalid    = errors.New("urls: reverse parameter does not fit its segment")
	ErrErrorStatus     = errors.New("urls: error handlers exist for 400, 403, 404 and 500 only")
)

// NoReverseMatchError reports the view names that were tried.
type NoReverseMatchError struct {
	Names []string
}

func (e *NoReverseMatchError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("urls: reverse for %q not found", e.Names[0])
	}
	return fmt.Sprintf("urls: reverse not found, tried %q", e.Names)
}

func (e *NoReverseMatchError) Unwrap() error {
	return ErrNoReverseMatch
}

// NoMatchError reports the unresolved path.
type NoMatchError struct {
	Path string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("urls: no route for path %q", e.Path)
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}
