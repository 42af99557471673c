// internal/app/features/catalog/routes.go
package catalog

import (
	"github.com/go-chi/chi/v5"
	"github.com/thrivewell/thrivehub/internal/app/system/authz"
)

// publicRoutes mounts a resource with public reads and staff-only writes.
func publicRoutes[T any](res *resource[T]) chi.Router {
	r := chi.NewRouter()

	r.Get("/", res.serveList)
	r.Get("/{id}", res.serveGet)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
		pr.Post("/", res.handleCreate)
		pr.Put("/{id}", res.handleUpdate)
		pr.Delete("/{id}", res.handleDelete)
	})

	return r
}

// staffRoutes mounts a resource entirely behind the staff gate.
func staffRoutes[T any](res *resource[T]) chi.Router {
	r := chi.NewRouter()

	r.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
	r.Get("/", res.serveList)
	r.Get("/{id}", res.serveGet)
	r.Post("/", res.handleCreate)
	r.Put("/{id}", res.handleUpdate)
	r.Delete("/{id}", res.handleDelete)

	return r
}

func GalleryRoutes(h *Handler) chi.Router {
	r := publicRoutes(h.galleryResource())
	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
		pr.Post("/upload", h.handleUpload("gallery"))
	})
	return r
}

func ServiceRoutes(h *Handler) chi.Router { return publicRoutes(h.serviceResource()) }

func RecipeRoutes(h *Handler) chi.Router {
	r := publicRoutes(h.recipeResource())
	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff))
		pr.Post("/upload", h.handleUpload("recipes"))
	})
	return r
}

func WorkshopRoutes(h *Handler) chi.Router { return publicRoutes(h.workshopResource()) }

func DetoxPlanRoutes(h *Handler) chi.Router { return publicRoutes(h.detoxPlanResource()) }

func InventoryRoutes(h *Handler) chi.Router { return staffRoutes(h.inventoryResource()) }

func MeetingRoutes(h *Handler) chi.Router { return staffRoutes(h.meetingResource()) }
