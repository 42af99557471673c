// internal/app/features/feedback/routes.go
package feedback

import (
	"github.com/go-chi/chi/v5"
	"github.com/thrivewell/thrivehub/internal/app/system/authz"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/summary/{itemID}", h.ServeSummary)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
