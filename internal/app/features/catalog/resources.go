// internal/app/features/catalog/resources.go
package catalog

import (
	"context"
	"errors"
	"net/http"

	productstore "github.com/thrivewell/thrivehub/internal/app/store/products"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"github.com/thrivewell/thrivehub/internal/app/system/sanitize"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var mediaTypes = []string{"image", "video"}

var meetingStatuses = []string{"scheduled", "completed", "cancelled"}

func (h *Handler) galleryResource() *resource[models.GalleryItem] {
	return &resource[models.GalleryItem]{
		label: "Gallery item",
		op:    "gallery",
		store: h.Gallery,
		spec: listquery.Spec{
			Collection:   "gallery_items",
			FilterFields: []string{"media_type", "created_at"},
			SearchFields: []string{"title_ci", "caption"},
			DefaultSort:  bson.D{{Key: "sort_order", Value: 1}, {Key: "created_at", Value: -1}},
		},
		createRules: []inputval.Rule{
			{Field: "title", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
			{Field: "media_type", Kind: inputval.Enum, Required: true, Allowed: mediaTypes},
			{Field: "media_path", Kind: inputval.String, Required: true, MaxLen: 500},
			{Field: "caption", Kind: inputval.String, MaxLen: 500},
			{Field: "sort_order", Kind: inputval.Number, Min: inputval.Ptr(0)},
		},
		updateRules: []inputval.Rule{
			{Field: "title", Kind: inputval.String, MinLen: 1, MaxLen: 200},
			{Field: "media_type", Kind: inputval.Enum, Allowed: mediaTypes},
			{Field: "media_path", Kind: inputval.String, MaxLen: 500},
			{Field: "caption", Kind: inputval.String, MaxLen: 500},
			{Field: "sort_order", Kind: inputval.Number, Min: inputval.Ptr(0)},
		},
		build: func(doc map[string]any, set bson.M) {
			setString(set, doc, "title", sanitize.PlainText)
			setString(set, doc, "media_type", nil)
			setString(set, doc, "media_path", nil)
			setString(set, doc, "caption", sanitize.PlainText)
			setInt(set, doc, "sort_order")
		},
		log: h.Log,
	}
}

func (h *Handler) serviceResource() *resource[models.Service] {
	return &resource[models.Service]{
		label: "Service",
		op:    "services",
		store: h.Services,
		spec: listquery.Spec{
			Collection:   "services",
			FilterFields: []string{"is_active", "price", "created_at"},
			SearchFields: []string{"name_ci", "description"},
			DefaultSort:  bson.D{{Key: "name_ci", Value: 1}},
		},
		createRules: []inputval.Rule{
			{Field: "name", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
			{Field: "description", Kind: inputval.String, MaxLen: 5000},
			{Field: "price", Kind: inputval.Number, Required: true, Min: inputval.Ptr(0)},
			{Field: "duration_minutes", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "is_active", Kind: inputval.Bool},
		},
		updateRules: []inputval.Rule{
			{Field: "name", Kind: inputval.String, MinLen: 1, MaxLen: 200},
			{Field: "description", Kind: inputval.String, MaxLen: 5000},
			{Field: "price", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "duration_minutes", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "is_active", Kind: inputval.Bool},
		},
		build: func(doc map[string]any, set bson.M) {
			setString(set, doc, "name", sanitize.PlainText)
			setString(set, doc, "description", sanitize.RichText)
			setFloat(set, doc, "price")
			setInt(set, doc, "duration_minutes")
			setBool(set, doc, "is_active")
		},
		defaults: bson.M{"is_active": true},
		dupMsg:   "A service with that name already exists",
		log:      h.Log,
	}
}

func (h *Handler) recipeResource() *resource[models.Recipe] {
	return &resource[models.Recipe]{
		label: "Recipe",
		op:    "recipes",
		store: h.Recipes,
		spec: listquery.Spec{
			Collection:   "recipes",
			FilterFields: []string{"tags", "created_at"},
			SearchFields: []string{"title_ci", "tags"},
			DefaultSort:  bson.D{{Key: "created_at", Value: -1}},
		},
		createRules: []inputval.Rule{
			{Field: "title", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
			{Field: "body", Kind: inputval.String, Required: true, MinLen: 1},
			{Field: "tags", Kind: inputval.StringList, MaxLen: 50},
			{Field: "prep_minutes", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "image_path", Kind: inputval.String, MaxLen: 500},
		},
		updateRules: []inputval.Rule{
			{Field: "title", Kind: inputval.String, MinLen: 1, MaxLen: 200},
			{Field: "body", Kind: inputval.String, MinLen: 1},
			{Field: "tags", Kind: inputval.StringList, MaxLen: 50},
			{Field: "prep_minutes", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "image_path", Kind: inputval.String, MaxLen: 500},
		},
		build: func(doc map[string]any, set bson.M) {
			setString(set, doc, "title", sanitize.PlainText)
			setString(set, doc, "body", sanitize.RichText)
			setStrings(set, doc, "tags")
			setInt(set, doc, "prep_minutes")
			setString(set, doc, "image_path", nil)
		},
		log: h.Log,
	}
}

func (h *Handler) workshopResource() *resource[models.Workshop] {
	return &resource[models.Workshop]{
		label: "Workshop",
		op:    "workshops",
		store: h.Workshops,
		spec: listquery.Spec{
			Collection:   "workshops",
			FilterFields: []string{"is_active", "start_at", "price", "created_at"},
			SearchFields: []string{"title_ci", "location"},
			DefaultSort:  bson.D{{Key: "start_at", Value: 1}},
		},
		createRules: []inputval.Rule{
			{Field: "title", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
			{Field: "description", Kind: inputval.String, MaxLen: 5000},
			{Field: "location", Kind: inputval.String, MaxLen: 300},
			{Field: "start_at", Kind: inputval.Date, Required: true},
			{Field: "price", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "capacity", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "is_active", Kind: inputval.Bool},
		},
		updateRules: []inputval.Rule{
			{Field: "title", Kind: inputval.String, MinLen: 1, MaxLen: 200},
			{Field: "description", Kind: inputval.String, MaxLen: 5000},
			{Field: "location", Kind: inputval.String, MaxLen: 300},
			{Field: "start_at", Kind: inputval.Date},
			{Field: "price", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "capacity", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "is_active", Kind: inputval.Bool},
		},
		build: func(doc map[string]any, set bson.M) {
			setString(set, doc, "title", sanitize.PlainText)
			setString(set, doc, "description", sanitize.RichText)
			setString(set, doc, "location", sanitize.PlainText)
			setTime(set, doc, "start_at")
			setFloat(set, doc, "price")
			setInt(set, doc, "capacity")
			setBool(set, doc, "is_active")
		},
		defaults: bson.M{"is_active": true},
		log:      h.Log,
	}
}

func (h *Handler) detoxPlanResource() *resource[models.DetoxPlan] {
	return &resource[models.DetoxPlan]{
		label: "Detox plan",
		op:    "detoxplans",
		store: h.DetoxPlans,
		spec: listquery.Spec{
			Collection:   "detox_plans",
			FilterFields: []string{"is_active", "weeks", "price", "created_at"},
			SearchFields: []string{"title_ci"},
			DefaultSort:  bson.D{{Key: "title_ci", Value: 1}},
		},
		createRules: []inputval.Rule{
			{Field: "title", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
			{Field: "body", Kind: inputval.String, Required: true, MinLen: 1},
			{Field: "weeks", Kind: inputval.Number, Min: inputval.Ptr(1)},
			{Field: "price", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "is_active", Kind: inputval.Bool},
		},
		updateRules: []inputval.Rule{
			{Field: "title", Kind: inputval.String, MinLen: 1, MaxLen: 200},
			{Field: "body", Kind: inputval.String, MinLen: 1},
			{Field: "weeks", Kind: inputval.Number, Min: inputval.Ptr(1)},
			{Field: "price", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "is_active", Kind: inputval.Bool},
		},
		build: func(doc map[string]any, set bson.M) {
			setString(set, doc, "title", sanitize.PlainText)
			setString(set, doc, "body", sanitize.RichText)
			setInt(set, doc, "weeks")
			setFloat(set, doc, "price")
			setBool(set, doc, "is_active")
		},
		defaults: bson.M{"is_active": true},
		log:      h.Log,
	}
}

func (h *Handler) inventoryResource() *resource[models.InventoryRecord] {
	return &resource[models.InventoryRecord]{
		label: "Inventory record",
		op:    "inventory",
		store: h.Inventory,
		spec: listquery.Spec{
			Collection:   "inventory",
			FilterFields: []string{"product_id", "location", "quantity", "created_at"},
			SearchFields: []string{"location", "notes"},
			DefaultSort:  bson.D{{Key: "updated_at", Value: -1}},
		},
		createRules: []inputval.Rule{
			{Field: "product_id", Kind: inputval.ObjectID, Required: true},
			{Field: "quantity", Kind: inputval.Number, Required: true, Min: inputval.Ptr(0)},
			{Field: "location", Kind: inputval.String, MaxLen: 200},
			{Field: "notes", Kind: inputval.String, MaxLen: 1000},
		},
		updateRules: []inputval.Rule{
			{Field: "quantity", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "location", Kind: inputval.String, MaxLen: 200},
			{Field: "notes", Kind: inputval.String, MaxLen: 1000},
		},
		build: func(doc map[string]any, set bson.M) {
			setObjectID(set, doc, "product_id")
			setInt(set, doc, "quantity")
			setString(set, doc, "location", sanitize.PlainText)
			setString(set, doc, "notes", sanitize.PlainText)
		},
		beforeWrite: func(ctx context.Context, set bson.M) error {
			id, ok := set["product_id"].(primitive.ObjectID)
			if !ok {
				return nil
			}
			if _, err := h.Products.GetByID(ctx, id); err != nil {
				if errors.Is(err, productstore.ErrProductNotFound) {
					return rejectWrite(http.StatusBadRequest, "Product not found")
				}
				return err
			}
			return nil
		},
		log: h.Log,
	}
}

func (h *Handler) meetingResource() *resource[models.Meeting] {
	return &resource[models.Meeting]{
		label: "Meeting",
		op:    "meetings",
		store: h.Meetings,
		spec: listquery.Spec{
			Collection:   "meetings",
			FilterFields: []string{"status", "client_email", "scheduled_at", "created_at"},
			SearchFields: []string{"client_name", "client_email", "topic"},
			DefaultSort:  bson.D{{Key: "scheduled_at", Value: 1}},
		},
		createRules: []inputval.Rule{
			{Field: "client_name", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
			{Field: "client_email", Kind: inputval.Email, Required: true},
			{Field: "topic", Kind: inputval.String, MaxLen: 500},
			{Field: "scheduled_at", Kind: inputval.Date, Required: true},
			{Field: "duration_minutes", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "meeting_url", Kind: inputval.String, MaxLen: 500},
			{Field: "status", Kind: inputval.Enum, Allowed: meetingStatuses},
		},
		updateRules: []inputval.Rule{
			{Field: "client_name", Kind: inputval.String, MinLen: 1, MaxLen: 200},
			{Field: "client_email", Kind: inputval.Email},
			{Field: "topic", Kind: inputval.String, MaxLen: 500},
			{Field: "scheduled_at", Kind: inputval.Date},
			{Field: "duration_minutes", Kind: inputval.Number, Min: inputval.Ptr(0)},
			{Field: "meeting_url", Kind: inputval.String, MaxLen: 500},
			{Field: "status", Kind: inputval.Enum, Allowed: meetingStatuses},
		},
		build: func(doc map[string]any, set bson.M) {
			setString(set, doc, "client_name", sanitize.PlainText)
			setString(set, doc, "client_email", nil)
			setString(set, doc, "topic", sanitize.PlainText)
			setTime(set, doc, "scheduled_at")
			setInt(set, doc, "duration_minutes")
			setString(set, doc, "meeting_url", nil)
			setString(set, doc, "status", nil)
		},
		defaults: bson.M{"status": "scheduled"},
		log:      h.Log,
	}
}
