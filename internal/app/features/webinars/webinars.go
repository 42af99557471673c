// internal/app/features/webinars/webinars.go
package webinars

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	webinarstore "github.com/thrivewell/thrivehub/internal/app/store/webinars"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"github.com/thrivewell/thrivehub/internal/app/system/sanitize"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var listSpec = listquery.Spec{
	Collection:   "webinars",
	FilterFields: []string{"title", "title_ci", "presenter", "start_at", "price", "is_active", "created_at"},
	SearchFields: []string{"title_ci", "description", "presenter"},
	DefaultSort:  bson.D{{Key: "start_at", Value: 1}},
}

// webinarWithRating is the read shape: the webinar plus its aggregate
// rating, computed from the feedback collection at request time.
type webinarWithRating struct {
	models.Webinar
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

// ServeList handles GET /webinars. Each page of webinars gets its ratings
// attached by one batched aggregation.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.Parse(r.URL.Query(), listSpec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, h.Log, "webinars.list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run[models.Webinar](ctx, h.Store.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, h.Log, "webinars.list", err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(res.Items))
	for _, wb := range res.Items {
		ids = append(ids, wb.ID)
	}
	ratings, err := h.Feedback.RatingsFor(ctx, ids)
	if err != nil {
		httpapi.ServerError(w, h.Log, "webinars.list", err)
		return
	}

	out := make([]webinarWithRating, len(res.Items))
	for i, wb := range res.Items {
		out[i] = webinarWithRating{Webinar: wb}
		if sum, ok := ratings[wb.ID]; ok {
			out[i].Rating = sum.Average
			out[i].RatingCount = sum.Count
		}
	}
	httpapi.List(w, out, len(out), &res.Pagination)
}

// ServeGet handles GET /webinars/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Webinar not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	webinar, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, webinarstore.ErrWebinarNotFound) {
			httpapi.NotFound(w, "Webinar not found")
			return
		}
		httpapi.ServerError(w, h.Log, "webinars.get", err)
		return
	}
	sum, err := h.Feedback.RatingFor(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "webinars.get", err)
		return
	}
	httpapi.OK(w, webinarWithRating{Webinar: webinar, Rating: sum.Average, RatingCount: sum.Count})
}

type webinarInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Presenter        string   `json:"presenter"`
	StartAt          string   `json:"start_at"`
	DurationMin      *int     `json:"duration_minutes"`
	Price            *float64 `json:"price"`
	MaxRegistrations *int     `json:"max_registrations"`
	IsActive         *bool    `json:"is_active"`
}

var createRules = []inputval.Rule{
	{Field: "title", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
	{Field: "description", Kind: inputval.String, MaxLen: 10000},
	{Field: "presenter", Kind: inputval.String, MaxLen: 200},
	{Field: "start_at", Kind: inputval.Date, Required: true},
	{Field: "duration_minutes", Kind: inputval.Number, Min: inputval.Ptr(1)},
	{Field: "price", Kind: inputval.Number, Min: inputval.Ptr(0)},
	{Field: "max_registrations", Kind: inputval.Number, Required: true, Min: inputval.Ptr(1)},
	{Field: "is_active", Kind: inputval.Bool},
}

var updateRules = []inputval.Rule{
	{Field: "title", Kind: inputval.String, MinLen: 1, MaxLen: 200},
	{Field: "description", Kind: inputval.String, MaxLen: 10000},
	{Field: "presenter", Kind: inputval.String, MaxLen: 200},
	{Field: "start_at", Kind: inputval.Date},
	{Field: "duration_minutes", Kind: inputval.Number, Min: inputval.Ptr(1)},
	{Field: "price", Kind: inputval.Number, Min: inputval.Ptr(0)},
	{Field: "max_registrations", Kind: inputval.Number, Min: inputval.Ptr(1)},
	{Field: "is_active", Kind: inputval.Bool},
}

// HandleCreate handles POST /webinars.
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
	var in webinarInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	startAt, _ := time.Parse(time.RFC3339, in.StartAt)

	webinar := models.Webinar{
		Title:            sanitize.PlainText(in.Title),
		Description:      sanitize.RichText(in.Description),
		Presenter:        sanitize.PlainText(in.Presenter),
		StartAt:          startAt.UTC(),
		MaxRegistrations: *in.MaxRegistrations,
		IsActive:         true,
	}
	if in.DurationMin != nil {
		webinar.DurationMin = *in.DurationMin
	}
	if in.Price != nil {
		webinar.Price = *in.Price
	}
	if in.IsActive != nil {
		webinar.IsActive = *in.IsActive
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, webinar)
	if err != nil {
		httpapi.ServerError(w, h.Log, "webinars.create", err)
		return
	}
	httpapi.Created(w, created)
}

// HandleUpdate handles PUT /webinars/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Webinar not found")
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
	var in webinarInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	set := bson.M{}
	if in.Title != "" {
		set["title"] = sanitize.PlainText(in.Title)
	}
	if in.Description != "" {
		set["description"] = sanitize.RichText(in.Description)
	}
	if in.Presenter != "" {
		set["presenter"] = sanitize.PlainText(in.Presenter)
	}
	if in.StartAt != "" {
		startAt, _ := time.Parse(time.RFC3339, in.StartAt)
		set["start_at"] = startAt.UTC()
	}
	if in.DurationMin != nil {
		set["duration_minutes"] = *in.DurationMin
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.MaxRegistrations != nil {
		set["max_registrations"] = *in.MaxRegistrations
	}
	if in.IsActive != nil {
		set["is_active"] = *in.IsActive
	}
	if len(set) == 0 {
		httpapi.Fail(w, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Store.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, webinarstore.ErrWebinarNotFound) {
			httpapi.NotFound(w, "Webinar not found")
			return
		}
		httpapi.ServerError(w, h.Log, "webinars.update", err)
		return
	}
	httpapi.OK(w, updated)
}

// HandleDelete handles DELETE /webinars/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Webinar not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	deleted, err := h.Store.Delete(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "webinars.delete", err)
		return
	}
	if deleted == 0 {
		httpapi.NotFound(w, "Webinar not found")
		return
	}
	httpapi.OK(w, map[string]any{"deleted": true})
}
