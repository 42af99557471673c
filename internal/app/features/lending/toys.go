// internal/app/features/lending/toys.go
package lending

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	toystore "github.com/thrivewell/thrivehub/internal/app/store/toys"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"github.com/thrivewell/thrivehub/internal/app/system/media"
	"github.com/thrivewell/thrivehub/internal/app/system/sanitize"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

var toyListSpec = listquery.Spec{
	Collection:   "toys",
	FilterFields: []string{"name", "name_ci", "category", "category_ci", "age_range", "total_units", "available_units", "created_at"},
	SearchFields: []string{"name_ci", "category_ci", "description"},
	DefaultSort:  bson.D{{Key: "name_ci", Value: 1}},
}

// ServeToyList handles GET /toys. available_units[gte]=1 filters to toys
// with a free unit.
func (h *Handler) ServeToyList(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.Parse(r.URL.Query(), toyListSpec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, h.Log, "toys.list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run[models.Toy](ctx, h.Toys.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, h.Log, "toys.list", err)
		return
	}
	httpapi.List(w, res.Items, len(res.Items), &res.Pagination)
}

// ServeToyGet handles GET /toys/{id}.
func (h *Handler) ServeToyGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Toy not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	toy, err := h.Toys.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, toystore.ErrToyNotFound) {
			httpapi.NotFound(w, "Toy not found")
			return
		}
		httpapi.ServerError(w, h.Log, "toys.get", err)
		return
	}
	httpapi.OK(w, toy)
}

type toyInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AgeRange    string `json:"age_range"`
}

var toyCreateRules = []inputval.Rule{
	{Field: "name", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
	{Field: "category", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 100},
	{Field: "description", Kind: inputval.String, MaxLen: 5000},
	{Field: "age_range", Kind: inputval.String, MaxLen: 50},
}

var toyUpdateRules = []inputval.Rule{
	{Field: "name", Kind: inputval.String, MinLen: 1, MaxLen: 200},
	{Field: "category", Kind: inputval.String, MinLen: 1, MaxLen: 100},
	{Field: "description", Kind: inputval.String, MaxLen: 5000},
	{Field: "age_range", Kind: inputval.String, MaxLen: 50},
}

// HandleToyCreate handles POST /toys. A new toy starts with zero units;
// units are added separately so every physical copy is tracked.
func (h *Handler) HandleToyCreate(w http.ResponseWriter, r *http.Request) {
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, toyCreateRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in toyInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Toys.Create(ctx, models.Toy{
		Name:        sanitize.PlainText(in.Name),
		Category:    sanitize.PlainText(in.Category),
		Description: sanitize.PlainText(in.Description),
		AgeRange:    in.AgeRange,
	})
	if err != nil {
		if errors.Is(err, toystore.ErrDuplicateToyName) {
			httpapi.Conflict(w, "")
			return
		}
		httpapi.ServerError(w, h.Log, "toys.create", err)
		return
	}
	httpapi.Created(w, created)
}

// HandleToyUpdate handles PUT /toys/{id}.
func (h *Handler) HandleToyUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Toy not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, toyUpdateRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in toyInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	set := bson.M{}
	if in.Name != "" {
		set["name"] = sanitize.PlainText(in.Name)
	}
	if in.Category != "" {
		set["category"] = sanitize.PlainText(in.Category)
	}
	if in.Description != "" {
		set["description"] = sanitize.PlainText(in.Description)
	}
	if in.AgeRange != "" {
		set["age_range"] = in.AgeRange
	}
	if len(set) == 0 {
		httpapi.Fail(w, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Toys.Update(ctx, id, set)
	if err != nil {
		switch {
		case errors.Is(err, toystore.ErrToyNotFound):
			httpapi.NotFound(w, "Toy not found")
		case errors.Is(err, toystore.ErrDuplicateToyName):
			httpapi.Conflict(w, "")
		default:
			httpapi.ServerError(w, h.Log, "toys.update", err)
		}
		return
	}
	httpapi.OK(w, updated)
}

// HandleToyDelete handles DELETE /toys/{id}. Blocked while any unit is out.
func (h *Handler) HandleToyDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Toy not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	deleted, err := h.Toys.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, toystore.ErrToyHasActiveLoans) {
			httpapi.Fail(w, http.StatusBadRequest, "Toy has units on loan")
			return
		}
		httpapi.ServerError(w, h.Log, "toys.delete", err)
		return
	}
	if deleted == 0 {
		httpapi.NotFound(w, "Toy not found")
		return
	}
	httpapi.OK(w, map[string]any{"deleted": true})
}

// HandleToyUploadImage handles POST /toys/{id}/image (multipart form, field
// "image").
func (h *Handler) HandleToyUploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Toy not found")
		return
	}

	if err := r.ParseMultipartForm(limits.MaxUploadSize); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not parse upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !media.AllowedType(contentType) {
		httpapi.Fail(w, http.StatusBadRequest, "Unsupported image type")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Toys.GetByID(ctx, id); err != nil {
		httpapi.NotFound(w, "Toy not found")
		return
	}

	info, err := h.Media.UploadImage(ctx, "toys", header.Filename, file, header.Size, contentType)
	if err != nil {
		httpapi.ServerError(w, h.Log, "toys.upload", err)
		return
	}
	if err := h.Toys.SetImagePath(ctx, id, info.Path); err != nil {
		httpapi.ServerError(w, h.Log, "toys.upload", err)
		return
	}

	toy, err := h.Toys.GetByID(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "toys.upload", err)
		return
	}
	httpapi.OK(w, toy)
}
