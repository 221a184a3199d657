// internal/app/features/state/routes.go
package state

import "github.com/go-chi/chi/v5"

// Routes serves the view state under /state.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeState)
	r.Get("/ws", h.ServeStream)
	return r
}
