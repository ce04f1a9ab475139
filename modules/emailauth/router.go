package emailauth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/emailauth/handler"
)

// Mountable is an auth provider that can be served under /auth/{ID}.
type Mountable interface {
	ID() string
	DisplayName() string
	Handle() http.Handler
}

// ProviderInfo describes a mounted provider.
type ProviderInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Router mounts each provider under /auth/{ID} and lists them at GET /auth/providers.
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//	r.Mount("/", emailauth.Router(emailauth.NewProvider(svc)))
func Router(providers ...Mountable) chi.Router {
	r := chi.NewRouter()

	infos := make([]ProviderInfo, 0, len(providers))
	r.Route("/auth", func(auth chi.Router) {
		for _, p := range providers {
			auth.Mount("/"+p.ID(), p.Handle())
			infos = append(infos, ProviderInfo{ID: p.ID(), DisplayName: p.DisplayName()})
		}

		auth.Get("/providers", func(w http.ResponseWriter, r *http.Request) {
			_ = handler.JSON(infos).Render(w, r)
		})
	})

	return r
}
