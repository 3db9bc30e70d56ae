package content

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrItemNotFound = errors.New("content: item not found")
	ErrItemRequired = errors.New("content: item is required")
)

// NotFoundError reports a missing content item.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("content: item %q not found", e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrItemNotFound
}

// IsNotFound reports whether err signals a missing item.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

func validationFailure(errs validation.Errors) error {
	if len(errs) == 0 {
		return nil
	}
	fields := make([]goerrors.FieldError, 0, len(errs))
	for _, key := range slices.Sorted(maps.Keys(errs)) {
		fields = append(fields, goerrors.FieldError{Field: key, Message: errs[key].Error()})
	}
	return goerrors.NewValidation("content item validation failed", fields...).
		WithTextCode("CONTENT_VALIDATION_FAILED")
}
