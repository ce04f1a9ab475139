// Package handler provides type-safe HTTP request handling for JSON APIs.
//
// A HandlerFunc receives a bound request value and returns a Response. Wrap
// turns it into an http.HandlerFunc, running the configured binders first and
// sending binding and rendering failures to an ErrorHandler:
//
//	type LoginRequest struct {
//		Email    string `json:"email"`
//		Password string `json:"password"`
//	}
//
//	func login(ctx handler.Context, req LoginRequest) handler.Response {
//		user, err := svc.Login(ctx, req.Email, req.Password)
//		if err != nil {
//			return handler.JSONError(handler.ErrUnauthorized)
//		}
//		return handler.JSON(user)
//	}
//
//	r.Post("/login", handler.Wrap(handler.HandlerFunc[handler.Context, LoginRequest](login),
//		handler.WithBinder[handler.Context, LoginRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, LoginRequest](handler.NewErrorHandler(log)),
//	))
//
// # Responses
//
// Every body uses one envelope:
//
//	{"data": ...}
//	{"error": {"code": "...", "message": "...", "details": {"field": ["..."]}}}
//
// JSONError derives status and code from the error: HTTPError carries both,
// validator.ValidationErrors becomes 400 "validation_failed" with per-field
// details, binder errors become 400, 413 or 415, and any other error is a
// 500 whose message is the generic status text.
//
// # Decorators
//
// Decorators wrap a HandlerFunc for cross-cutting concerns. The first one
// passed to WithDecorators runs outermost.
package handler
