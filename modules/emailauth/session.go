package emailauth

import (
	"github.com/dmitrymomot/emailauth/handler"
	"github.com/dmitrymomot/emailauth/pkg/auth"
)

// SessionHandler turns a successful login into a response. Implementations
// typically set a session cookie or issue an access token.
type SessionHandler interface {
	StartSession(ctx handler.Context, user *auth.User) handler.Response
}

// SessionHandlerFunc adapts a plain function to SessionHandler.
type SessionHandlerFunc func(ctx handler.Context, user *auth.User) handler.Response

func (f SessionHandlerFunc) StartSession(ctx handler.Context, user *auth.User) handler.Response {
	return f(ctx, user)
}

// LoginResponse is the default login body.
type LoginResponse struct {
	User *auth.User `json:"user"`
}

// UserSessionHandler answers 200 with the authenticated user and leaves
// session establishment to the client.
var UserSessionHandler SessionHandler = SessionHandlerFunc(func(_ handler.Context, user *auth.User) handler.Response {
	return handler.JSON(LoginResponse{User: user})
})
