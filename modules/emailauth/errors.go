package emailauth

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/emailauth/handler"
	"github.com/dmitrymomot/emailauth/pkg/auth"
	"github.com/dmitrymomot/emailauth/pkg/validator"
)

// HTTP errors returned by the provider. Key is the "code" in the JSON body.
var (
	ErrInvalidCredentials    = handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	ErrEmailNotVerified      = handler.NewHTTPError(http.StatusForbidden, "email_not_verified", "Email address is not verified")
	ErrEmailTaken            = handler.NewHTTPError(http.StatusConflict, "email_taken", "Email is already registered")
	ErrValidationFailed      = handler.NewHTTPError(http.StatusBadRequest, "validation_failed", "Validation failed")
	ErrWeakPassword          = handler.NewHTTPError(http.StatusBadRequest, "weak_password", "Password does not meet security requirements")
	ErrInvalidOrExpiredToken = handler.NewHTTPError(http.StatusBadRequest, "invalid_or_expired_token", "Invalid or expired token")
	ErrEmailDeliveryFailed   = handler.NewHTTPError(http.StatusInternalServerError, "email_delivery_failed", "Failed to send email")
)

// translate maps a service error to its HTTP error. The second result is
// false for errors the provider does not recognize.
func translate(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ErrInvalidCredentials, true
	case errors.Is(err, auth.ErrEmailNotVerified):
		return ErrEmailNotVerified, true
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return ErrEmailTaken, true
	case errors.Is(err, auth.ErrWeakPassword):
		return ErrWeakPassword, true
	case errors.Is(err, auth.ErrValidation):
		return ErrValidationFailed, true
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return ErrInvalidOrExpiredToken, true
	case errors.Is(err, auth.ErrEmailDelivery):
		return ErrEmailDeliveryFailed, true
	default:
		return handler.ErrInternalServerError, false
	}
}

// errorResponse renders err with the provider's codes. Field details from
// validator.ValidationErrors are kept; the internal cause never is.
func errorResponse(err error) handler.Response {
	httpErr, _ := translate(err)
	msg := httpErr.Message
	if msg == "" {
		msg = http.StatusText(httpErr.Code)
	}

	detail := &handler.ErrorDetail{Code: httpErr.Key, Message: msg}
	if httpErr.Code < http.StatusInternalServerError {
		if verrs := validator.ExtractValidationErrors(err); verrs != nil {
			detail.Details = verrs.Map()
		}
	}
	return handler.JSONError(detail, handler.WithJSONStatus(httpErr.Code))
}
