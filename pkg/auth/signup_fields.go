package auth

import (
	"context"
	"fmt"
)

// SignupFieldsExtractor derives additional user fields from the raw signup
// payload. The payload never contains the password.
// Returned validator.ValidationErrors are passed to the client as field details.
type SignupFieldsExtractor interface {
	ExtractSignupFields(ctx context.Context, data map[string]any) (map[string]any, error)
}

// SignupFieldsFunc adapts a plain function to SignupFieldsExtractor.
type SignupFieldsFunc func(ctx context.Context, data map[string]any) (map[string]any, error)

func (f SignupFieldsFunc) ExtractSignupFields(ctx context.Context, data map[string]any) (map[string]any, error) {
	return f(ctx, data)
}

// NoSignupFields is used when no extractor is configured. It adds nothing.
var NoSignupFields SignupFieldsExtractor = SignupFieldsFunc(func(context.Context, map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
})

func extractSignupFields(ctx context.Context, x SignupFieldsExtractor, data map[string]any) (map[string]any, error) {
	payload := make(map[string]any, len(data))
	for k, v := range data {
		if k == "password" {
			continue
		}
		payload[k] = v
	}

	fields, err := x.ExtractSignupFields(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
