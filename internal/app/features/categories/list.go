// internal/app/features/categories/list.go
package categories

import (
	"context"
	"errors"
	"net/http"

	categorystore "github.com/thrivewell/thrivehub/internal/app/store/categories"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

var listSpec = listquery.Spec{
	Collection:   "categories",
	FilterFields: []string{"name", "name_ci", "parent_id", "is_active", "created_at"},
	SearchFields: []string{"name_ci"},
	DefaultSort:  bson.D{{Key: "name_ci", Value: 1}},
}

// ServeList handles GET /categories.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.Parse(r.URL.Query(), listSpec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, h.Log, "categories.list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run[models.Category](ctx, h.Store.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, h.Log, "categories.list", err)
		return
	}
	httpapi.List(w, res.Items, len(res.Items), &res.Pagination)
}

// ServeGet handles GET /categories/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Category not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cat, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, categorystore.ErrCategoryNotFound) {
			httpapi.NotFound(w, "Category not found")
			return
		}
		httpapi.ServerError(w, h.Log, "categories.get", err)
		return
	}
	httpapi.OK(w, cat)
}
