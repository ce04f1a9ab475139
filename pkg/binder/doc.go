// Package binder decodes HTTP request bodies into Go values.
//
// JSON() checks the Content-Type, enforces a body size limit
// (DefaultMaxJSONSize unless WithMaxBodySize is given) and requires exactly
// one JSON value in the body. Unknown fields are accepted unless
// WithStrictFields is set, so request types can implement json.Unmarshaler to
// capture the whole object.
//
//	type LoginRequest struct {
//		Email    string `json:"email"`
//		Password string `json:"password"`
//	}
//
//	var req LoginRequest
//	if err := binder.JSON()(r, &req); err != nil {
//		// errors.Is(err, binder.ErrFailedToParseJSON) ...
//	}
//
// # Errors
//
//   - ErrMissingContentType: no Content-Type header
//   - ErrUnsupportedMediaType: Content-Type is not application/json
//   - ErrRequestTooLarge: body exceeds the limit
//   - ErrFailedToParseJSON: malformed, empty or trailing data
//
// The handler package maps these to 415, 413 and 400 responses.
package binder
