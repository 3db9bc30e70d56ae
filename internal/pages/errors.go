package pages

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrPageNotFound         = errors.New("pages: page not found")
	ErrPageRequired         = errors.New("pages: page is required")
	ErrMovePositionInvalid  = errors.New("pages: move position must be first-child, last-child, left or right")
	ErrMoveIntoSelf         = errors.New("pages: a page cannot be moved into its own subtree")
	ErrCloneSameTarget      = errors.New("pages: clone source and target must differ")
	ErrCloneFieldUnknown    = errors.New("pages: clone field is not cloneable")
	ErrContentClonerMissing = errors.New("pages: content cloner is not configured")
)

// NotFoundError reports a missing page lookup.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return ErrPageNotFound.Error()
	}
	return fmt.Sprintf("pages: page %q not found", e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrPageNotFound
}

// IsNotFound reports whether err signals a missing page.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPageNotFound)
}

const validationTextCode = "PAGE_VALIDATION_FAILED"

// ValidationFailure converts field errors into a go-errors validation error.
// Fields are emitted in sorted order.
func ValidationFailure(errs validation.Errors) error {
	if len(errs) == 0 {
		return nil
	}
	fields := make([]goerrors.FieldError, 0, len(errs))
	for _, key := range slices.Sorted(maps.Keys(errs)) {
		fields = append(fields, goerrors.FieldError{
			Field:   key,
			Message: errs[key].Error(),
		})
	}
	return goerrors.NewValidation("page validation failed", fields...).
		WithTextCode(validationTextCode)
}

// FieldErrors returns field to message pairs carried by a validation error.
func FieldErrors(err error) map[string]string {
	var gerr *goerrors.Error
	if !errors.As(err, &gerr) {
		return nil
	}
	out := make(map[string]string, len(gerr.ValidationErrors))
	for _, field := range gerr.ValidationErrors {
		out[field.Field] = field.Message
	}
	return out
}
