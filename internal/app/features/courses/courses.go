// internal/app/features/courses/courses.go
package courses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	coursestore "github.com/thrivewell/thrivehub/internal/app/store/courses"
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
	Collection:   "courses",
	FilterFields: []string{"title", "title_ci", "price", "duration_weeks", "level", "is_active", "created_at"},
	SearchFields: []string{"title_ci", "description"},
	DefaultSort:  bson.D{{Key: "created_at", Value: -1}},
}

// courseWithRating is the read shape: the course plus its aggregate rating,
// computed from the feedback collection at request time.
type courseWithRating struct {
	models.Course
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

// ServeList handles GET /courses. Each page of courses gets its ratings
// attached by one batched aggregation.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.Parse(r.URL.Query(), listSpec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, h.Log, "courses.list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run[models.Course](ctx, h.Store.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, h.Log, "courses.list", err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(res.Items))
	for _, c := range res.Items {
		ids = append(ids, c.ID)
	}
	ratings, err := h.Feedback.RatingsFor(ctx, ids)
	if err != nil {
		httpapi.ServerError(w, h.Log, "courses.list", err)
		return
	}

	out := make([]courseWithRating, len(res.Items))
	for i, c := range res.Items {
		out[i] = courseWithRating{Course: c}
		if sum, ok := ratings[c.ID]; ok {
			out[i].Rating = sum.Average
			out[i].RatingCount = sum.Count
		}
	}
	httpapi.List(w, out, len(out), &res.Pagination)
}

// ServeGet handles GET /courses/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Course not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	course, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, coursestore.ErrCourseNotFound) {
			httpapi.NotFound(w, "Course not found")
			return
		}
		httpapi.ServerError(w, h.Log, "courses.get", err)
		return
	}
	sum, err := h.Feedback.RatingFor(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "courses.get", err)
		return
	}
	httpapi.OK(w, courseWithRating{Course: course, Rating: sum.Average, RatingCount: sum.Count})
}

type courseInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	DurationWks *int     `json:"duration_weeks"`
	Level       string   `json:"level"`
	IsActive    *bool    `json:"is_active"`
}

var courseLevels = []string{"beginner", "intermediate", "advanced"}

var createRules = []inputval.Rule{
	{Field: "title", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
	{Field: "description", Kind: inputval.String, MaxLen: 10000},
	{Field: "price", Kind: inputval.Number, Required: true, Min: inputval.Ptr(0)},
	{Field: "duration_weeks", Kind: inputval.Number, Min: inputval.Ptr(1)},
	{Field: "level", Kind: inputval.Enum, Allowed: courseLevels},
	{Field: "is_active", Kind: inputval.Bool},
}

var updateRules = []inputval.Rule{
	{Field: "title", Kind: inputval.String, MinLen: 1, MaxLen: 200},
	{Field: "description", Kind: inputval.String, MaxLen: 10000},
	{Field: "price", Kind: inputval.Number, Min: inputval.Ptr(0)},
	{Field: "duration_weeks", Kind: inputval.Number, Min: inputval.Ptr(1)},
	{Field: "level", Kind: inputval.Enum, Allowed: courseLevels},
	{Field: "is_active", Kind: inputval.Bool},
}

// HandleCreate handles POST /courses.
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
	var in courseInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	course := models.Course{
		Title:       sanitize.PlainText(in.Title),
		Description: sanitize.RichText(in.Description),
		Price:       *in.Price,
		Level:       in.Level,
		IsActive:    true,
	}
	if in.DurationWks != nil {
		course.DurationWks = *in.DurationWks
	}
	if in.IsActive != nil {
		course.IsActive = *in.IsActive
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, course)
	if err != nil {
		if errors.Is(err, coursestore.ErrDuplicateCourseTitle) {
			httpapi.Conflict(w, "")
			return
		}
		httpapi.ServerError(w, h.Log, "courses.create", err)
		return
	}
	httpapi.Created(w, created)
}

// HandleUpdate handles PUT /courses/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Course not found")
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
	var in courseInput
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
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.DurationWks != nil {
		set["duration_weeks"] = *in.DurationWks
	}
	if in.Level != "" {
		set["level"] = in.Level
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
		switch {
		case errors.Is(err, coursestore.ErrCourseNotFound):
			httpapi.NotFound(w, "Course not found")
		case errors.Is(err, coursestore.ErrDuplicateCourseTitle):
			httpapi.Conflict(w, "")
		default:
			httpapi.ServerError(w, h.Log, "courses.update", err)
		}
		return
	}
	httpapi.OK(w, updated)
}

// HandleDelete handles DELETE /courses/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Course not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	deleted, err := h.Store.Delete(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "courses.delete", err)
		return
	}
	if deleted == 0 {
		httpapi.NotFound(w, "Course not found")
		return
	}
	httpapi.OK(w, map[string]any{"deleted": true})
}
