// internal/app/features/products/list.go
package products

import (
	"context"
	"errors"
	"net/http"

	productstore "github.com/thrivewell/thrivehub/internal/app/store/products"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

var listSpec = listquery.Spec{
	Collection:   "products",
	FilterFields: []string{"name", "name_ci", "category_id", "price", "stock", "sku", "status", "is_active", "created_at"},
	SearchFields: []string{"name_ci", "description"},
	DefaultSort:  bson.D{{Key: "created_at", Value: -1}},
}

// ServeList handles GET /products. Supports the full query surface:
// field filters with price[gte]=… style comparisons, select, sort, search,
// page, and limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.Parse(r.URL.Query(), listSpec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, h.Log, "products.list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run[models.Product](ctx, h.Store.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, h.Log, "products.list", err)
		return
	}
	httpapi.List(w, res.Items, len(res.Items), &res.Pagination)
}

// ServeGet handles GET /products/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Product not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, productstore.ErrProductNotFound) {
			httpapi.NotFound(w, "Product not found")
			return
		}
		httpapi.ServerError(w, h.Log, "products.get", err)
		return
	}
	httpapi.OK(w, p)
}
