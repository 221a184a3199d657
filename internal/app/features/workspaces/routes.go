// internal/app/features/workspaces/routes.go
package workspaces

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the workspace routes. The caller fences them behind a
// signed-in session. joinGuard wraps invite redemption only, where a
// caller could otherwise guess codes.
func Routes(h *Handler, joinGuard ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)
	r.Post("/select", h.HandleSelect)
	r.With(joinGuard...).Post("/join", h.HandleJoin)

	r.Post("/{id}/invites", h.HandleInvite)
	r.Get("/{id}/members", h.ServeMembers)

	return r
}
