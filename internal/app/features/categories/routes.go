// internal/app/features/categories/routes.go
package categories

import (
	"github.com/go-chi/chi/v5"
	"github.com/thrivewell/thrivehub/internal/app/system/authz"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
