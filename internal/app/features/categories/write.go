// internal/app/features/categories/write.go
package categories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	categorystore "github.com/thrivewell/thrivehub/internal/app/store/categories"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/sanitize"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type categoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
	IsActive    *bool  `json:"is_active"`
	ClearParent bool   `json:"clear_parent"`
}

var createRules = []inputval.Rule{
	{Field: "name", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 100},
	{Field: "description", Kind: inputval.String, MaxLen: 2000},
	{Field: "parent_id", Kind: inputval.ObjectID},
	{Field: "is_active", Kind: inputval.Bool},
}

var updateRules = []inputval.Rule{
	{Field: "name", Kind: inputval.String, MinLen: 1, MaxLen: 100},
	{Field: "description", Kind: inputval.String, MaxLen: 2000},
	{Field: "parent_id", Kind: inputval.ObjectID},
	{Field: "is_active", Kind: inputval.Bool},
	{Field: "clear_parent", Kind: inputval.Bool},
}

// HandleCreate handles POST /categories.
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
	var in categoryInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	cat := models.Category{
		Name:        sanitize.PlainText(in.Name),
		Description: sanitize.PlainText(in.Description),
		IsActive:    true,
	}
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}
	if in.ParentID != "" {
		pid, _ := primitive.ObjectIDFromHex(in.ParentID)
		cat.ParentID = &pid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, cat)
	if err != nil {
		switch {
		case errors.Is(err, categorystore.ErrDuplicateCategoryName):
			httpapi.Conflict(w, "")
		case errors.Is(err, categorystore.ErrParentNotFound):
			httpapi.Fail(w, http.StatusBadRequest, "Parent category not found")
		default:
			httpapi.ServerError(w, h.Log, "categories.create", err)
		}
		return
	}
	httpapi.Created(w, created)
}

// HandleUpdate handles PUT /categories/{id}. Re-parenting is validated
// against the full ancestor chain so no update can introduce a cycle.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Category not found")
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
	var in categoryInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	var parentID *primitive.ObjectID
	if in.ParentID != "" {
		pid, _ := primitive.ObjectIDFromHex(in.ParentID)
		parentID = &pid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Store.Update(ctx, id,
		sanitize.PlainText(in.Name), sanitize.PlainText(in.Description),
		parentID, in.IsActive, in.ClearParent)
	if err != nil {
		switch {
		case errors.Is(err, categorystore.ErrCategoryNotFound):
			httpapi.NotFound(w, "Category not found")
		case errors.Is(err, categorystore.ErrCategoryCycle):
			httpapi.Fail(w, http.StatusBadRequest, "Category parent would create a cycle")
		case errors.Is(err, categorystore.ErrParentNotFound):
			httpapi.Fail(w, http.StatusBadRequest, "Parent category not found")
		case errors.Is(err, categorystore.ErrDuplicateCategoryName):
			httpapi.Conflict(w, "")
		default:
			httpapi.ServerError(w, h.Log, "categories.update", err)
		}
		return
	}
	httpapi.OK(w, updated)
}

// HandleDelete handles DELETE /categories/{id}. A category with child
// categories or products cannot be deleted.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Category not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	children, err := h.Store.CountChildren(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "categories.delete", err)
		return
	}
	if children > 0 {
		httpapi.Fail(w, http.StatusBadRequest, "Category has child categories")
		return
	}
	products, err := h.Products.CountByCategory(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "categories.delete", err)
		return
	}
	if products > 0 {
		httpapi.Fail(w, http.StatusBadRequest, "Category has products")
		return
	}

	deleted, err := h.Store.Delete(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "categories.delete", err)
		return
	}
	if deleted == 0 {
		httpapi.NotFound(w, "Category not found")
		return
	}
	httpapi.OK(w, map[string]any{"deleted": true})
}
