// internal/app/features/lending/routes.go
package lending

import (
	"github.com/go-chi/chi/v5"
	"github.com/thrivewell/thrivehub/internal/app/system/authz"
)

// ToyRoutes serves the toy catalog and unit management (mounted at /toys).
func ToyRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeToyList)
	r.Get("/{id}", h.ServeToyGet)
	r.Get("/{id}/units", h.ServeUnitList)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
		pr.Post("/", h.HandleToyCreate)
		pr.Put("/{id}", h.HandleToyUpdate)
		pr.Delete("/{id}", h.HandleToyDelete)
		pr.Post("/{id}/image", h.HandleToyUploadImage)
		pr.Post("/{id}/units", h.HandleUnitCreate)
		pr.Put("/units/{unitID}", h.HandleUnitUpdate)
		pr.Delete("/units/{unitID}", h.HandleUnitDelete)
	})

	return r
}

// BorrowingRoutes serves the loan lifecycle (mounted at /borrowings).
func BorrowingRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
		pr.Get("/", h.ServeBorrowingList)
		pr.Get("/search", h.ServeLendingSearch)
		pr.Get("/overdue", h.ServeOverdueList)
		pr.Post("/overdue/notify", h.HandleNotifyOverdue)
		pr.Get("/{id}", h.ServeBorrowingGet)
		pr.Post("/", h.HandleIssue)
		pr.Post("/{id}/return", h.HandleReturn)
		pr.Post("/bulk-return", h.HandleBulkReturn)
	})

	return r
}

// BorrowerRoutes serves borrower records (mounted at /borrowers).
func BorrowerRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
		pr.Get("/", h.ServeBorrowerList)
		pr.Get("/{id}", h.ServeBorrowerGet)
		pr.Get("/{id}/borrowings", h.ServeBorrowerHistory)
		pr.Post("/", h.HandleBorrowerCreate)
		pr.Put("/{id}", h.HandleBorrowerUpdate)
	})

	return r
}
