// internal/app/features/products/write.go
package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	categorystore "github.com/thrivewell/thrivehub/internal/app/store/categories"
	productstore "github.com/thrivewell/thrivehub/internal/app/store/products"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/sanitize"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type productInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CategoryID  string   `json:"category_id"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	SKU         string   `json:"sku"`
	IsActive    *bool    `json:"is_active"`
}

var createRules = []inputval.Rule{
	{Field: "name", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
	{Field: "description", Kind: inputval.String, MaxLen: 5000},
	{Field: "category_id", Kind: inputval.ObjectID, Required: true},
	{Field: "price", Kind: inputval.Number, Required: true, Min: inputval.Ptr(0)},
	{Field: "stock", Kind: inputval.Number, Min: inputval.Ptr(0)},
	{Field: "sku", Kind: inputval.String, MaxLen: 64},
	{Field: "is_active", Kind: inputval.Bool},
}

var updateRules = []inputval.Rule{
	{Field: "name", Kind: inputval.String, MinLen: 1, MaxLen: 200},
	{Field: "description", Kind: inputval.String, MaxLen: 5000},
	{Field: "category_id", Kind: inputval.ObjectID},
	{Field: "price", Kind: inputval.Number, Min: inputval.Ptr(0)},
	{Field: "stock", Kind: inputval.Number, Min: inputval.Ptr(0)},
	{Field: "sku", Kind: inputval.String, MaxLen: 64},
	{Field: "is_active", Kind: inputval.Bool},
}

// HandleCreate handles POST /products.
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
	var in productInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	categoryID, _ := primitive.ObjectIDFromHex(in.CategoryID)
	if _, err := h.Categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, categorystore.ErrCategoryNotFound) {
			httpapi.Fail(w, http.StatusBadRequest, "Category not found")
			return
		}
		httpapi.ServerError(w, h.Log, "products.create", err)
		return
	}

	p := models.Product{
		Name:        sanitize.PlainText(in.Name),
		Description: sanitize.PlainText(in.Description),
		CategoryID:  categoryID,
		Price:       *in.Price,
		SKU:         in.SKU,
		IsActive:    true,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	created, err := h.Store.Create(ctx, p)
	if err != nil {
		if errors.Is(err, productstore.ErrDuplicateSKU) {
			httpapi.Conflict(w, "")
			return
		}
		httpapi.ServerError(w, h.Log, "products.create", err)
		return
	}
	httpapi.Created(w, created)
}

// HandleUpdate handles PUT /products/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Product not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, updateRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in productInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	set := bson.M{}
	if in.Name != "" {
		set["name"] = sanitize.PlainText(in.Name)
	}
	if in.Description != "" {
		set["description"] = sanitize.PlainText(in.Description)
	}
	if in.CategoryID != "" {
		categoryID, _ := primitive.ObjectIDFromHex(in.CategoryID)
		if _, err := h.Categories.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, categorystore.ErrCategoryNotFound) {
				httpapi.Fail(w, http.StatusBadRequest, "Category not found")
				return
			}
			httpapi.ServerError(w, h.Log, "products.update", err)
			return
		}
		set["category_id"] = categoryID
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.Stock != nil {
		set["stock"] = *in.Stock
	}
	if in.SKU != "" {
		set["sku"] = in.SKU
	}
	if in.IsActive != nil {
		set["is_active"] = *in.IsActive
	}
	if len(set) == 0 {
		httpapi.Fail(w, http.StatusBadRequest, "No fields to update")
		return
	}

	updated, err := h.Store.Update(ctx, id, set)
	if err != nil {
		switch {
		case errors.Is(err, productstore.ErrProductNotFound):
			httpapi.NotFound(w, "Product not found")
		case errors.Is(err, productstore.ErrDuplicateSKU):
			httpapi.Conflict(w, "")
		default:
			httpapi.ServerError(w, h.Log, "products.update", err)
		}
		return
	}
	httpapi.OK(w, updated)
}

type stockInput struct {
	Delta int `json:"delta"`
}

var stockRules = []inputval.Rule{
	{Field: "delta", Kind: inputval.Number, Required: true},
}

// HandleAdjustStock handles POST /products/{id}/stock with a signed delta.
func (h *Handler) HandleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Product not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, stockRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in stockInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.AdjustStock(ctx, id, in.Delta)
	if err != nil {
		if errors.Is(err, productstore.ErrProductNotFound) {
			// Either the product does not exist or the decrement would go
			// below zero.
			httpapi.Fail(w, http.StatusBadRequest, "Product not found or insufficient stock")
			return
		}
		httpapi.ServerError(w, h.Log, "products.stock", err)
		return
	}
	httpapi.OK(w, p)
}

// HandleDelete handles DELETE /products/{id}. Products referenced by any
// order are discontinued instead of removed so order history stays
// resolvable.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Product not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	referenced, err := h.Store.ReferencedByOrders(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "products.delete", err)
		return
	}
	if referenced {
		p, err := h.Store.Discontinue(ctx, id)
		if err != nil {
			if errors.Is(err, productstore.ErrProductNotFound) {
				httpapi.NotFound(w, "Product not found")
				return
			}
			httpapi.ServerError(w, h.Log, "products.delete", err)
			return
		}
		httpapi.OK(w, p)
		return
	}

	deleted, err := h.Store.Delete(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "products.delete", err)
		return
	}
	if deleted == 0 {
		httpapi.NotFound(w, "Product not found")
		return
	}
	httpapi.OK(w, map[string]any{"deleted": true})
}
