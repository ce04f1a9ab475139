package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxJSONSize is the default maximum size for JSON request bodies (1MB).
const DefaultMaxJSONSize int64 = 1 << 20

// Bind decodes the request into v.
type Bind = func(r *http.Request, v any) error

type jsonConfig struct {
	maxBytes int64
	strict   bool
}

// JSONOption configures the JSON binder.
type JSONOption func(*jsonConfig)

// WithMaxBodySize overrides DefaultMaxJSONSize.
func WithMaxBodySize(n int64) JSONOption {
	return func(c *jsonConfig) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithStrictFields rejects bodies with fields the target struct does not
// declare. Types implementing json.Unmarshaler receive the raw object either
// way.
func WithStrictFields() JSONOption {
	return func(c *jsonConfig) {
		c.strict = true
	}
}

// JSON returns a binder that decodes a single JSON value from the request
// body into v.
//
//	http.HandleFunc("/login", handler.Wrap(login,
//		handler.WithBinder[handler.Context, LoginRequest](binder.JSON()),
//	))
func JSON(opts ...JSONOption) Bind {
	cfg := jsonConfig{maxBytes: DefaultMaxJSONSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(r *http.Request, v any) error {
		if err := r.Context().Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, contentType)
		}
		if r.Body == nil {
			return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, cfg.maxBytes+1))
		if err != nil {
			return fmt.Errorf("%w: failed to read request body: %w", ErrFailedToParseJSON, err)
		}
		if int64(len(body)) > cfg.maxBytes {
			return fmt.Errorf("%w: max %d bytes", ErrRequestTooLarge, cfg.maxBytes)
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		if cfg.strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
			}
			return fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
		}

		var extra json.RawMessage
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON value", ErrFailedToParseJSON)
		}
		return nil
	}
}
