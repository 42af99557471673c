// internal/domain/models/catalog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Independent aggregate roots served by the generic catalog controller.
// Each owns its collection; none of them reference each other except
// Inventory → Product.

// GalleryItem is a photo or video shown on the clinic site.
type GalleryItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	TitleCI   string             `bson:"title_ci" json:"title_ci"`
	MediaType string             `bson:"media_type" json:"media_type"` // "image" or "video"
	MediaPath string             `bson:"media_path" json:"media_path"`
	Caption   string             `bson:"caption,omitempty" json:"caption,omitempty"`
	SortOrder int                `bson:"sort_order,omitempty" json:"sort_order,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Service is a clinic service offering (assessment, therapy session type).
type Service struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	DurationMin int                `bson:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Recipe is a published diet recipe. Body is sanitized rich text.
type Recipe struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Body        string             `bson:"body" json:"body"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	PrepMinutes int                `bson:"prep_minutes,omitempty" json:"prep_minutes,omitempty"`
	ImagePath   string             `bson:"image_path,omitempty" json:"image_path,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Workshop is an on-site group event.
type Workshop struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	StartAt     time.Time          `bson:"start_at" json:"start_at"`
	Price       float64            `bson:"price" json:"price"`
	Capacity    int                `bson:"capacity,omitempty" json:"capacity,omitempty"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// DetoxPlan is a multi-week plan document. Body is sanitized rich text.
type DetoxPlan struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	TitleCI   string             `bson:"title_ci" json:"title_ci"`
	Body      string             `bson:"body" json:"body"`
	Weeks     int                `bson:"weeks,omitempty" json:"weeks,omitempty"`
	Price     float64            `bson:"price" json:"price"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// InventoryRecord tracks on-hand stock for a product at the clinic.
// It references Product by ID; the product store handle is injected where
// stock adjustments need product data (no global model registry).
type InventoryRecord struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Location  string             `bson:"location,omitempty" json:"location,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Meeting is a booked consultation slot.
type Meeting struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	ClientName   string             `bson:"client_name" json:"client_name"`
	ClientEmail  string             `bson:"client_email" json:"client_email"`
	Topic        string             `bson:"topic,omitempty" json:"topic,omitempty"`
	ScheduledAt  time.Time          `bson:"scheduled_at" json:"scheduled_at"`
	DurationMin  int                `bson:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`
	MeetingURL   string             `bson:"meeting_url,omitempty" json:"meeting_url,omitempty"`
	Status       string             `bson:"status" json:"status"` // "scheduled", "completed", "cancelled"
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
