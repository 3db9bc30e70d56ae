package http

import (
	"encoding/json"
	"errors"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/content"
	"github.com/goliatone/go-feincms/internal/pages"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Code    string       `json:"code,omitempty"`
	Fields  []fieldError `json:"fields,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if pages.IsNotFound(err) || content.IsNotFound(err) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: err.Error(),
		}
	}

	if errors.Is(err, pages.ErrMoveIntoSelf) ||
		errors.Is(err, pages.ErrMovePositionInvalid) ||
		errors.Is(err, pages.ErrCloneSameTarget) ||
		errors.Is(err, pages.ErrCloneFieldUnknown) {
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		}
	}

	if goerrors.IsCategory(err, goerrors.CategoryValidation) {
		resp := errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Fields:  fieldErrors(err),
		}
		var gerr *goerrors.Error
		if errors.As(err, &gerr) {
			resp.Message = gerr.Message
			resp.Code = gerr.TextCode
		}
		return http.StatusUnprocessableEntity, resp
	}

	if errors.Is(err, pages.ErrContentClonerMissing) {
		return http.StatusServiceUnavailable, errorResponse{
			Error:   "service_unavailable",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

// fieldErrors collects field messages from go-errors validation errors and
// from ozzo field maps wrapped by the command layer.
func fieldErrors(err error) []fieldError {
	var out []fieldError
	var gerr *goerrors.Error
	if errors.As(err, &gerr) {
		for _, field := range gerr.ValidationErrors {
			out = append(out, fieldError{Field: field.Field, Message: field.Message})
		}
	}
	if len(out) > 0 {
		return out
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, key := range slices.Sorted(maps.Keys(errs)) {
			out = append(out, fieldError{Field: key, Message: errs[key].Error()})
		}
	}
	return out
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

// optionalUUID distinguishes an absent JSON key from an explicit null.
type optionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *optionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id == uuid.Nil {
		o.Value = nil
		return nil
	}
	o.Value = &id
	return nil
}

func (o optionalUUID) apply(target **uuid.UUID) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*target = nil
		return
	}
	id := *o.Value
	*target = &id
}
