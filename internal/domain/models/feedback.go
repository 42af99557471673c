// internal/domain/models/feedback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback item types: what a rating is attached to.
const (
	FeedbackItemCourse  = "course"
	FeedbackItemWebinar = "webinar"
)

// FeedbackItemTypes is the canonical item-type enum.
var FeedbackItemTypes = []string{FeedbackItemCourse, FeedbackItemWebinar}

// Feedback is one user's rating of a course or webinar. Exactly one document
// may exist per (user_email, item_id); the unique index is the backstop and
// the handler's pre-check only improves the error message. Aggregate ratings
// are computed from this collection, never stored on the rated item.
type Feedback struct {
	ID primitive.ObjectID `bson:"_id" json:"id"`

	UserEmail string             `bson:"user_email" json:"user_email"`
	UserName  string             `bson:"user_name,omitempty" json:"user_name,omitempty"`
	ItemType  string             `bson:"item_type" json:"item_type"`
	ItemID    primitive.ObjectID `bson:"item_id" json:"item_id"`

	Rating  int    `bson:"rating" json:"rating"` // 1..5
	Comment string `bson:"comment,omitempty" json:"comment,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RatingSummary is the aggregation result for one rated item.
type RatingSummary struct {
	ItemID  primitive.ObjectID `bson:"_id" json:"item_id"`
	Average float64            `bson:"average" json:"average"`
	Count   int                `bson:"count" json:"count"`
}
