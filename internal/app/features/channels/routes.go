// internal/app/features/channels/routes.go
package channels

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Post("/select", h.HandleSelect)
	return r
}
