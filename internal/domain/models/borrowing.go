// internal/domain/models/borrowing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Borrowing status values. "overdue" can be stored as a cache but the
// authoritative signal is always due_date vs. now while return_date is unset;
// readers derive it with EffectiveStatus.
const (
	BorrowingBorrowed = "borrowed"
	BorrowingReturned = "returned"
	BorrowingOverdue  = "overdue"
	BorrowingLost     = "lost"
	BorrowingDamaged  = "damaged"
)

// BorrowingStatuses is the canonical status enum.
var BorrowingStatuses = []string{
	BorrowingBorrowed,
	BorrowingReturned,
	BorrowingOverdue,
	BorrowingLost,
	BorrowingDamaged,
}

// Borrowing is a single loan of a toy unit. The borrower is referenced by ID;
// the contact fields are denormalized from the borrower record at issue time
// so legacy free-text search keeps working even if the borrower is later
// renamed. Toy name/ID are denormalized from the unit's parent toy.
// Borrowings are never physically deleted; returning is a state update.
type Borrowing struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	ToyID  primitive.ObjectID `bson:"toy_id" json:"toy_id"`
	UnitID primitive.ObjectID `bson:"unit_id" json:"unit_id"`

	ToyName    string `bson:"toy_name" json:"toy_name"`
	UnitNumber int    `bson:"unit_number" json:"unit_number"`

	BorrowerID           primitive.ObjectID `bson:"borrower_id" json:"borrower_id"`
	BorrowerName         string             `bson:"borrower_name" json:"borrower_name"`
	BorrowerEmail        string             `bson:"borrower_email" json:"borrower_email"`
	BorrowerPhone        string             `bson:"borrower_phone,omitempty" json:"borrower_phone,omitempty"`
	BorrowerRelationship string             `bson:"borrower_relationship,omitempty" json:"borrower_relationship,omitempty"`

	IssueDate  time.Time  `bson:"issue_date" json:"issue_date"`
	DueDate    time.Time  `bson:"due_date" json:"due_date"`
	ReturnDate *time.Time `bson:"return_date,omitempty" json:"return_date,omitempty"`

	Status            string `bson:"status" json:"status"`
	ConditionOnIssue  string `bson:"condition_on_issue" json:"condition_on_issue"`
	ConditionOnReturn string `bson:"condition_on_return,omitempty" json:"condition_on_return,omitempty"`

	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`

	// OverdueNotifiedAt records when the overdue reminder went out, so a
	// repeat notify trigger sends at most one per loan.
	OverdueNotifiedAt *time.Time `bson:"overdue_notified_at,omitempty" json:"overdue_notified_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Active reports whether the loan is still out (no return recorded).
func (b Borrowing) Active() bool {
	return b.ReturnDate == nil && b.Status != BorrowingReturned
}

// EffectiveStatus derives the status at read time. A stored "overdue" is
// never trusted on its own: an active loan is overdue iff its due date has
// passed at the given instant.
func (b Borrowing) EffectiveStatus(now time.Time) string {
	if !b.Active() {
		return b.Status
	}
	if now.After(b.DueDate) {
		return BorrowingOverdue
	}
	return b.Status
}
