// internal/domain/models/borrower.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Borrower is the identity record for a family borrowing toys. Email is
// globally unique (enforced by index) and doubles as the legacy search key;
// borrowings reference the borrower by ID.
type Borrower struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"`

	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	Relationship string `bson:"relationship,omitempty" json:"relationship,omitempty"` // e.g. "parent", "guardian", "therapist"

	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
