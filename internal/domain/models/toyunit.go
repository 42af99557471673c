// internal/domain/models/toyunit.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Unit condition values, ordered best to worst.
const (
	ConditionExcellent   = "excellent"
	ConditionGood        = "good"
	ConditionFair        = "fair"
	ConditionNeedsRepair = "needs_repair"
	ConditionDamaged     = "damaged"
)

// UnitConditions is the canonical condition enum used by validation and the
// collection schema.
var UnitConditions = []string{
	ConditionExcellent,
	ConditionGood,
	ConditionFair,
	ConditionNeedsRepair,
	ConditionDamaged,
}

// IsValidCondition reports whether s is one of the known condition values.
func IsValidCondition(s string) bool {
	for _, c := range UnitConditions {
		if c == s {
			return true
		}
	}
	return false
}

// ToyUnit is one physical, individually trackable copy of a Toy.
// UnitNumber is unique within its toy (enforced by a unique index).
// ActiveBorrowingID is a weak back-reference to the borrowing currently
// occupying the unit; it is cleared on return.
type ToyUnit struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	ToyID      primitive.ObjectID `bson:"toy_id" json:"toy_id"`
	UnitNumber int                `bson:"unit_number" json:"unit_number"`

	Condition   string `bson:"condition" json:"condition"`
	IsAvailable bool   `bson:"is_available" json:"is_available"`

	ActiveBorrowingID *primitive.ObjectID `bson:"active_borrowing_id,omitempty" json:"active_borrowing_id,omitempty"`

	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
