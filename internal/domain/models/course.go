// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is a self-paced program (detox course, parenting course, etc.).
// Ratings are NOT embedded: the feedback collection is the single source of
// truth and the aggregate is computed by a pipeline at read time.
type Course struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"title_ci"`

	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64 `bson:"price" json:"price"`
	DurationWks int     `bson:"duration_weeks,omitempty" json:"duration_weeks,omitempty"`

	Level    string `bson:"level,omitempty" json:"level,omitempty"` // "beginner", "intermediate", "advanced"
	IsActive bool   `bson:"is_active" json:"is_active"`

	ImagePath string `bson:"image_path,omitempty" json:"image_path,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Webinar is a scheduled live session with bounded capacity.
type Webinar struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"title_ci"`

	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Presenter   string    `bson:"presenter,omitempty" json:"presenter,omitempty"`
	StartAt     time.Time `bson:"start_at" json:"start_at"`
	DurationMin int       `bson:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`
	Price       float64   `bson:"price" json:"price"`

	MaxRegistrations int           `bson:"max_registrations" json:"max_registrations"`
	Registrations    []Registrant  `bson:"registrations" json:"registrations"`

	IsActive bool `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Registrant is one registration on a webinar; at most one per user email.
type Registrant struct {
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	RegisteredAt time.Time `bson:"registered_at" json:"registered_at"`
}

// Registered reports whether email already holds a seat.
func (w Webinar) Registered(email string) bool {
	for _, reg := range w.Registrations {
		if reg.Email == email {
			return true
		}
	}
	return false
}

// Full reports whether the webinar is at capacity.
func (w Webinar) Full() bool {
	return w.MaxRegistrations > 0 && len(w.Registrations) >= w.MaxRegistrations
}
