// internal/app/features/orders/orders.go
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	orderstore "github.com/thrivewell/thrivehub/internal/app/store/orders"
	productstore "github.com/thrivewell/thrivehub/internal/app/store/products"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var listSpec = listquery.Spec{
	Collection:   "orders",
	FilterFields: []string{"customer_email", "status", "total", "created_at"},
	SearchFields: []string{"customer_email"},
	DefaultSort:  bson.D{{Key: "created_at", Value: -1}},
}

// ServeList handles GET /orders.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.Parse(r.URL.Query(), listSpec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, h.Log, "orders.list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run[models.Order](ctx, h.Store.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, h.Log, "orders.list", err)
		return
	}
	httpapi.List(w, res.Items, len(res.Items), &res.Pagination)
}

// ServeGet handles GET /orders/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Order not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	o, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderstore.ErrOrderNotFound) {
			httpapi.NotFound(w, "Order not found")
			return
		}
		httpapi.ServerError(w, h.Log, "orders.get", err)
		return
	}
	httpapi.OK(w, o)
}

type orderItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type orderInput struct {
	CustomerEmail string           `json:"customer_email"`
	Items         []orderItemInput `json:"items"`
}

var createRules = []inputval.Rule{
	{Field: "customer_email", Kind: inputval.Email, Required: true},
}

// HandleCreate handles POST /orders. Each line is priced from the current
// product record; stock is decremented per line and the order total is
// computed server side.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, createRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in orderInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if len(in.Items) == 0 {
		httpapi.FailFields(w, []httpapi.FieldError{{Field: "items", Message: "items is required"}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		pid, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil || line.Quantity < 1 {
			httpapi.Fail(w, http.StatusBadRequest, "Invalid order line")
			return
		}
		p, err := h.Products.GetByID(ctx, pid)
		if err != nil {
			if errors.Is(err, productstore.ErrProductNotFound) {
				httpapi.Fail(w, http.StatusBadRequest, "Product not found")
				return
			}
			httpapi.ServerError(w, h.Log, "orders.create", err)
			return
		}
		if p.Status != models.ProductActive {
			httpapi.Fail(w, http.StatusBadRequest, "Product is not available")
			return
		}
		if _, err := h.Products.AdjustStock(ctx, pid, -line.Quantity); err != nil {
			if errors.Is(err, productstore.ErrProductNotFound) {
				httpapi.Fail(w, http.StatusBadRequest, "Insufficient stock")
				return
			}
			httpapi.ServerError(w, h.Log, "orders.create", err)
			return
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
		})
	}

	created, err := h.Store.Create(ctx, models.Order{
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		Items:         items,
	})
	if err != nil {
		httpapi.ServerError(w, h.Log, "orders.create", err)
		return
	}
	httpapi.Created(w, created)
}

type statusInput struct {
	Status string `json:"status"`
}

// HandleSetStatus handles PUT /orders/{id}/status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Order not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, []inputval.Rule{
		{Field: "status", Kind: inputval.Enum, Required: true, Allowed: models.OrderStatuses},
	}); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in statusInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.SetStatus(ctx, id, in.Status); err != nil {
		if errors.Is(err, orderstore.ErrOrderNotFound) {
			httpapi.NotFound(w, "Order not found")
			return
		}
		httpapi.ServerError(w, h.Log, "orders.status", err)
		return
	}
	o, err := h.Store.GetByID(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "orders.status", err)
		return
	}
	httpapi.OK(w, o)
}
