// internal/app/features/lending/borrowers.go
package lending

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	borrowerstore "github.com/thrivewell/thrivehub/internal/app/store/borrowers"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"github.com/thrivewell/thrivehub/internal/app/system/sanitize"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

var borrowerListSpec = listquery.Spec{
	Collection:   "borrowers",
	FilterFields: []string{"email", "relationship", "created_at"},
	SearchFields: []string{"name_ci", "email"},
	DefaultSort:  bson.D{{Key: "name_ci", Value: 1}},
}

// ServeBorrowerList handles GET /borrowers.
func (h *Handler) ServeBorrowerList(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.Parse(r.URL.Query(), borrowerListSpec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, h.Log, "borrowers.list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run[models.Borrower](ctx, h.Borrowers.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, h.Log, "borrowers.list", err)
		return
	}
	httpapi.List(w, res.Items, len(res.Items), &res.Pagination)
}

// ServeBorrowerGet handles GET /borrowers/{id}.
func (h *Handler) ServeBorrowerGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Borrower not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Borrowers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, borrowerstore.ErrBorrowerNotFound) {
			httpapi.NotFound(w, "Borrower not found")
			return
		}
		httpapi.ServerError(w, h.Log, "borrowers.get", err)
		return
	}
	httpapi.OK(w, b)
}

// ServeBorrowerHistory handles GET /borrowers/{id}/borrowings. Loans come
// back newest first with their derived status.
func (h *Handler) ServeBorrowerHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Borrower not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Borrowers.GetByID(ctx, id); err != nil {
		if errors.Is(err, borrowerstore.ErrBorrowerNotFound) {
			httpapi.NotFound(w, "Borrower not found")
			return
		}
		httpapi.ServerError(w, h.Log, "borrowers.history", err)
		return
	}

	items, err := h.Borrowings.ListByBorrower(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "borrowers.history", err)
		return
	}
	now := time.Now().UTC()
	out := make([]borrowingView, len(items))
	for i, b := range items {
		out[i] = viewOf(b, now)
	}
	httpapi.List(w, out, len(out), nil)
}

type borrowerInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

var borrowerCreateRules = []inputval.Rule{
	{Field: "name", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
	{Field: "email", Kind: inputval.Email, Required: true},
	{Field: "phone", Kind: inputval.String, MaxLen: 50},
	{Field: "relationship", Kind: inputval.String, MaxLen: 50},
}

var borrowerUpdateRules = []inputval.Rule{
	{Field: "name", Kind: inputval.String, MinLen: 1, MaxLen: 200},
	{Field: "phone", Kind: inputval.String, MaxLen: 50},
	{Field: "relationship", Kind: inputval.String, MaxLen: 50},
}

// HandleBorrowerCreate handles POST /borrowers.
func (h *Handler) HandleBorrowerCreate(w http.ResponseWriter, r *http.Request) {
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, borrowerCreateRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in borrowerInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	b, err := h.Borrowers.Create(ctx, models.Borrower{
		Name:         sanitize.PlainText(in.Name),
		Email:        in.Email,
		Phone:        in.Phone,
		Relationship: in.Relationship,
	})
	if err != nil {
		if errors.Is(err, borrowerstore.ErrDuplicateEmail) {
			httpapi.Conflict(w, "A borrower with that email already exists")
			return
		}
		httpapi.ServerError(w, h.Log, "borrowers.create", err)
		return
	}
	httpapi.Created(w, b)
}

// HandleBorrowerUpdate handles PUT /borrowers/{id}. Email is identity and
// cannot change here.
func (h *Handler) HandleBorrowerUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Borrower not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, borrowerUpdateRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	var in borrowerInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	set := bson.M{}
	if _, ok := raw["name"]; ok {
		set["name"] = sanitize.PlainText(in.Name)
	}
	if _, ok := raw["phone"]; ok {
		set["phone"] = in.Phone
	}
	if _, ok := raw["relationship"]; ok {
		set["relationship"] = in.Relationship
	}
	if len(set) == 0 {
		httpapi.Fail(w, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	b, err := h.Borrowers.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, borrowerstore.ErrBorrowerNotFound) {
			httpapi.NotFound(w, "Borrower not found")
			return
		}
		httpapi.ServerError(w, h.Log, "borrowers.update", err)
		return
	}
	httpapi.OK(w, b)
}
