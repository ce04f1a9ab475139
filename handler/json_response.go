package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/emailauth/pkg/binder"
	"github.com/dmitrymomot/emailauth/pkg/validator"
)

// JSONResponse is the standard JSON response structure
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta adds metadata to response
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON wraps v in the {"data": v} envelope with status 200.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK}
	r.body.Data = v
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders err in the {"error": {...}} envelope. err may be an
// *ErrorDetail or an error; HTTPError, validator.ValidationErrors and binder
// errors get their own status and code, anything else is a 500 whose
// message does not leak err.
func JSONError(err any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusInternalServerError}

	switch e := err.(type) {
	case *ErrorDetail:
		r.body.Error = e
	case error:
		r.body.Error = errorToDetail(e, &r.status)
	default:
		r.body.Error = &ErrorDetail{
			Code:    ErrInternalServerError.Key,
			Message: http.StatusText(http.StatusInternalServerError),
		}
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// errorToDetail converts err to ErrorDetail and sets the matching status.
func errorToDetail(err error, status *int) *ErrorDetail {
	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		*status = http.StatusBadRequest
		return &ErrorDetail{
			Code:    "validation_failed",
			Message: "Validation failed",
			Details: verrs.Map(),
		}
	}

	httpErr := classify(err)
	*status = httpErr.Code
	msg := httpErr.Message
	if msg == "" {
		msg = http.StatusText(httpErr.Code)
	}
	return &ErrorDetail{Code: httpErr.Key, Message: msg}
}

// classify maps err to an HTTPError. Unknown errors become 500.
func classify(err error) HTTPError {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, binder.ErrMissingContentType), errors.Is(err, binder.ErrUnsupportedMediaType):
		return ErrUnsupportedMediaType
	case errors.Is(err, binder.ErrRequestTooLarge):
		return ErrRequestEntityTooLarge
	case errors.Is(err, binder.ErrFailedToParseJSON):
		return HTTPError{Code: http.StatusBadRequest, Key: ErrBadRequest.Key, Message: "Malformed JSON body"}
	default:
		return ErrInternalServerError
	}
}
