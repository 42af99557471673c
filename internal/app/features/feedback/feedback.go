// internal/app/features/feedback/feedback.go
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	coursestore "github.com/thrivewell/thrivehub/internal/app/store/courses"
	feedbackstore "github.com/thrivewell/thrivehub/internal/app/store/feedback"
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
	Collection:   "feedback",
	FilterFields: []string{"user_email", "item_type", "item_id", "rating", "created_at"},
	SearchFields: []string{"comment"},
	DefaultSort:  bson.D{{Key: "created_at", Value: -1}},
}

// ServeList handles GET /feedback.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.Parse(r.URL.Query(), listSpec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, h.Log, "feedback.list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run[models.Feedback](ctx, h.Store.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, h.Log, "feedback.list", err)
		return
	}
	httpapi.List(w, res.Items, len(res.Items), &res.Pagination)
}

// ServeSummary handles GET /feedback/summary/{itemID}: the aggregate rating
// for one course or webinar.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httpapi.PathID(r, "itemID")
	if !ok {
		httpapi.NotFound(w, "Item not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sum, err := h.Store.RatingFor(ctx, itemID)
	if err != nil {
		httpapi.ServerError(w, h.Log, "feedback.summary", err)
		return
	}
	httpapi.OK(w, sum)
}

type feedbackInput struct {
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
	ItemType  string `json:"item_type"`
	ItemID    string `json:"item_id"`
	Rating    *int   `json:"rating"`
	Comment   string `json:"comment"`
}

var createRules = []inputval.Rule{
	{Field: "user_email", Kind: inputval.Email, Required: true},
	{Field: "user_name", Kind: inputval.String, MaxLen: 200},
	{Field: "item_type", Kind: inputval.Enum, Required: true, Allowed: models.FeedbackItemTypes},
	{Field: "item_id", Kind: inputval.ObjectID, Required: true},
	{Field: "rating", Kind: inputval.Number, Required: true, Min: inputval.Ptr(1), Max: inputval.Ptr(5)},
	{Field: "comment", Kind: inputval.String, MaxLen: 2000},
}

var updateRules = []inputval.Rule{
	{Field: "rating", Kind: inputval.Number, Required: true, Min: inputval.Ptr(1), Max: inputval.Ptr(5)},
	{Field: "comment", Kind: inputval.String, MaxLen: 2000},
}

// HandleCreate handles POST /feedback. One submission per (user, item); the
// unique index is the backstop for concurrent submissions.
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
	var in feedbackInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	itemID, _ := primitive.ObjectIDFromHex(in.ItemID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// The rated item must exist and match the declared type.
	switch in.ItemType {
	case models.FeedbackItemCourse:
		if _, err := h.Courses.GetByID(ctx, itemID); err != nil {
			if errors.Is(err, coursestore.ErrCourseNotFound) {
				httpapi.NotFound(w, "Course not found")
				return
			}
			httpapi.ServerError(w, h.Log, "feedback.create", err)
			return
		}
	case models.FeedbackItemWebinar:
		if _, err := h.Webinars.GetByID(ctx, itemID); err != nil {
			if errors.Is(err, webinarstore.ErrWebinarNotFound) {
				httpapi.NotFound(w, "Webinar not found")
				return
			}
			httpapi.ServerError(w, h.Log, "feedback.create", err)
			return
		}
	}

	created, err := h.Store.Create(ctx, models.Feedback{
		UserEmail: strings.ToLower(strings.TrimSpace(in.UserEmail)),
		UserName:  sanitize.PlainText(in.UserName),
		ItemType:  in.ItemType,
		ItemID:    itemID,
		Rating:    *in.Rating,
		Comment:   sanitize.PlainText(in.Comment),
	})
	if err != nil {
		if errors.Is(err, feedbackstore.ErrDuplicateFeedback) {
			httpapi.Conflict(w, "Feedback already submitted for this item")
			return
		}
		httpapi.ServerError(w, h.Log, "feedback.create", err)
		return
	}
	httpapi.Created(w, created)
}

// HandleUpdate handles PUT /feedback/{id}: a user revising their rating.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Feedback not found")
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
	var in feedbackInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Store.UpdateRating(ctx, id, *in.Rating, sanitize.PlainText(in.Comment))
	if err != nil {
		if errors.Is(err, feedbackstore.ErrFeedbackNotFound) {
			httpapi.NotFound(w, "Feedback not found")
			return
		}
		httpapi.ServerError(w, h.Log, "feedback.update", err)
		return
	}
	httpapi.OK(w, updated)
}

// HandleDelete handles DELETE /feedback/{id} (moderation).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Feedback not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	deleted, err := h.Store.Delete(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "feedback.delete", err)
		return
	}
	if deleted == 0 {
		httpapi.NotFound(w, "Feedback not found")
		return
	}
	httpapi.OK(w, map[string]any{"deleted": true})
}
