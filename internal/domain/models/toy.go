// internal/domain/models/toy.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Toy is the catalog entry for a lendable toy. Individual physical copies
// are tracked as ToyUnit documents; AvailableUnits is recomputed from the
// units collection whenever a unit changes availability and is never written
// directly by clients.
type Toy struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"`

	Category   string `bson:"category" json:"category"`
	CategoryCI string `bson:"category_ci" json:"category_ci"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`
	AgeRange    string `bson:"age_range,omitempty" json:"age_range,omitempty"`

	TotalUnits     int `bson:"total_units" json:"total_units"`
	AvailableUnits int `bson:"available_units" json:"available_units"`

	ImagePath string `bson:"image_path,omitempty" json:"image_path,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
