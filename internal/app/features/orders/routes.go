// internal/app/features/orders/routes.go
package orders

import (
	"github.com/go-chi/chi/v5"
	"github.com/thrivewell/thrivehub/internal/app/system/authz"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeGet)
		pr.Put("/{id}/status", h.HandleSetStatus)
	})

	return r
}
