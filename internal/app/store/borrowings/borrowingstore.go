// internal/app/store/borrowings/borrowingstore.go

// Package borrowingstore owns the lending workflow. Issue and return span
// the borrowings, toy_units, and toys collections; the unit document is the
// lock: a guarded update that flips is_available is the only way a loan
// acquires or releases a unit, so two concurrent issues of the same unit
// cannot both succeed.
package borrowingstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/thrivewell/thrivehub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	borrowings *mongo.Collection
	units      *mongo.Collection
	toys       *mongo.Collection
}

var (
	ErrBorrowingNotFound = errors.New("borrowing not found")
	ErrUnitNotFound      = errors.New("toy unit not found")
	ErrUnitUnavailable   = errors.New("toy unit is not available")
	ErrAlreadyReturned   = errors.New("borrowing already returned")
)

func New(db *mongo.Database) *Store {
	return &Store{
		borrowings: db.Collection("borrowings"),
		units:      db.Collection("toy_units"),
		toys:       db.Collection("toys"),
	}
}

func (s *Store) Collection() *mongo.Collection { return s.borrowings }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Borrowing, error) {
	var b models.Borrowing
	if err := s.borrowings.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Borrowing{}, ErrBorrowingNotFound
		}
		return models.Borrowing{}, err
	}
	return b, nil
}

// IssueParams carries everything Issue needs beyond the claimed unit.
type IssueParams struct {
	UnitID   primitive.ObjectID
	Borrower models.Borrower
	DueDate  time.Time
	Notes    string
}

// Issue lends a unit to a borrower. The unit is claimed first with a guarded
// update; if the borrowing insert then fails the claim is rolled back.
func (s *Store) Issue(ctx context.Context, p IssueParams) (models.Borrowing, error) {
	borrowingID := primitive.NewObjectID()
	now := time.Now().UTC()

	res := s.units.FindOneAndUpdate(ctx,
		bson.M{"_id": p.UnitID, "is_available": true},
		bson.M{"$set": bson.M{
			"is_available":        false,
			"active_borrowing_id": borrowingID,
			"updated_at":          now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var unit models.ToyUnit
	if err := res.Decode(&unit); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if err := s.units.FindOne(ctx, bson.M{"_id": p.UnitID}).Err(); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return models.Borrowing{}, ErrUnitNotFound
				}
				return models.Borrowing{}, err
			}
			return models.Borrowing{}, ErrUnitUnavailable
		}
		return models.Borrowing{}, err
	}

	var toy models.Toy
	if err := s.toys.FindOne(ctx, bson.M{"_id": unit.ToyID}).Decode(&toy); err != nil {
		s.releaseUnit(ctx, unit.ID, unit.Condition)
		return models.Borrowing{}, err
	}

	b := models.Borrowing{
		ID:                   borrowingID,
		ToyID:                toy.ID,
		UnitID:               unit.ID,
		ToyName:              toy.Name,
		UnitNumber:           unit.UnitNumber,
		BorrowerID:           p.Borrower.ID,
		BorrowerName:         p.Borrower.Name,
		BorrowerEmail:        p.Borrower.Email,
		BorrowerPhone:        p.Borrower.Phone,
		BorrowerRelationship: p.Borrower.Relationship,
		IssueDate:            now,
		DueDate:              p.DueDate,
		Status:               models.BorrowingBorrowed,
		ConditionOnIssue:     unit.Condition,
		Notes:                p.Notes,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if _, err := s.borrowings.InsertOne(ctx, b); err != nil {
		s.releaseUnit(ctx, unit.ID, unit.Condition)
		return models.Borrowing{}, err
	}

	if _, err := s.toys.UpdateByID(ctx, toy.ID, bson.M{"$inc": bson.M{"available_units": -1}}); err != nil {
		return models.Borrowing{}, err
	}
	return b, nil
}

// ReturnParams carries the return-time inputs.
type ReturnParams struct {
	BorrowingID primitive.ObjectID
	Condition   string // unit condition observed at return
	Status      string // returned, lost, or damaged
	Notes       string
}

// Return closes a loan: the borrowing gets its return date and final status,
// the unit is released with its observed condition, and the toy's availability
// counter moves back up. Lost units stay unavailable.
func (s *Store) Return(ctx context.Context, p ReturnParams) (models.Borrowing, error) {
	if p.Status == "" {
		p.Status = models.BorrowingReturned
	}
	now := time.Now().UTC()

	set := bson.M{
		"return_date": now,
		"status":      p.Status,
		"updated_at":  now,
	}
	if p.Condition != "" {
		set["condition_on_return"] = p.Condition
	}
	if p.Notes != "" {
		set["notes"] = p.Notes
	}
	res := s.borrowings.FindOneAndUpdate(ctx,
		bson.M{"_id": p.BorrowingID, "return_date": bson.M{"$exists": false}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var b models.Borrowing
	if err := res.Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := s.GetByID(ctx, p.BorrowingID); getErr != nil {
				return models.Borrowing{}, getErr
			}
			return models.Borrowing{}, ErrAlreadyReturned
		}
		return models.Borrowing{}, err
	}

	if p.Status == models.BorrowingLost {
		// The physical unit is gone; keep it unavailable but drop the loan
		// back-reference.
		_, err := s.units.UpdateByID(ctx, b.UnitID, bson.M{
			"$set":   bson.M{"updated_at": now, "condition": models.ConditionDamaged},
			"$unset": bson.M{"active_borrowing_id": ""},
		})
		if err != nil {
			return models.Borrowing{}, err
		}
		return b, nil
	}

	condition := p.Condition
	if condition == "" {
		condition = b.ConditionOnIssue
	}
	if err := s.releaseUnit(ctx, b.UnitID, condition); err != nil {
		return models.Borrowing{}, err
	}
	if _, err := s.toys.UpdateByID(ctx, b.ToyID, bson.M{"$inc": bson.M{"available_units": 1}}); err != nil {
		return models.Borrowing{}, err
	}
	return b, nil
}

func (s *Store) releaseUnit(ctx context.Context, unitID primitive.ObjectID, condition string) error {
	_, err := s.units.UpdateByID(ctx, unitID, bson.M{
		"$set": bson.M{
			"is_available": true,
			"condition":    condition,
			"updated_at":   time.Now().UTC(),
		},
		"$unset": bson.M{"active_borrowing_id": ""},
	})
	return err
}

// BulkReturnResult is the per-item outcome of a bulk return.
type BulkReturnResult struct {
	BorrowingID primitive.ObjectID `json:"borrowing_id"`
	Returned    bool               `json:"returned"`
	Error       string             `json:"error,omitempty"`
}

// BulkReturn returns each listed borrowing independently. One failing item
// does not stop the rest; callers get a per-item result list.
func (s *Store) BulkReturn(ctx context.Context, ids []primitive.ObjectID, condition string) []BulkReturnResult {
	results := make([]BulkReturnResult, 0, len(ids))
	for _, id := range ids {
		_, err := s.Return(ctx, ReturnParams{BorrowingID: id, Condition: condition})
		r := BulkReturnResult{BorrowingID: id, Returned: err == nil}
		if err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}

// ListOverdue returns active loans whose due date has passed, oldest first.
// Overdue is derived from due_date at read time, never from the stored
// status.
func (s *Store) ListOverdue(ctx context.Context, now time.Time) ([]models.Borrowing, error) {
	cur, err := s.borrowings.Find(ctx,
		bson.M{
			"return_date": bson.M{"$exists": false},
			"due_date":    bson.M{"$lt": now},
			"status":      bson.M{"$in": bson.A{models.BorrowingBorrowed, models.BorrowingOverdue}},
		},
		options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Borrowing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOverdueUnnotified returns overdue loans whose reminder has not gone
// out yet. The notify operation consumes this and stamps each loan so a
// repeat trigger skips it.
func (s *Store) ListOverdueUnnotified(ctx context.Context, now time.Time) ([]models.Borrowing, error) {
	cur, err := s.borrowings.Find(ctx,
		bson.M{
			"return_date":         bson.M{"$exists": false},
			"due_date":            bson.M{"$lt": now},
			"status":              bson.M{"$in": bson.A{models.BorrowingBorrowed, models.BorrowingOverdue}},
			"overdue_notified_at": bson.M{"$exists": false},
		},
		options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Borrowing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkOverdueNotified stamps a loan after its overdue reminder was sent.
func (s *Store) MarkOverdueNotified(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.borrowings.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"overdue_notified_at": at,
		"status":              models.BorrowingOverdue,
		"updated_at":          at,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBorrowingNotFound
	}
	return nil
}

// ListByBorrower returns a borrower's loans, newest first.
func (s *Store) ListByBorrower(ctx context.Context, borrowerID primitive.ObjectID) ([]models.Borrowing, error) {
	cur, err := s.borrowings.Find(ctx, bson.M{"borrower_id": borrowerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Borrowing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListActiveByBorrowerIDs returns the open loans held by any of the given
// borrowers, oldest due date first.
func (s *Store) ListActiveByBorrowerIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Borrowing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.borrowings.Find(ctx,
		bson.M{
			"borrower_id": bson.M{"$in": ids},
			"return_date": bson.M{"$exists": false},
		},
		options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Borrowing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListActiveByToy returns the open loans across all units of a toy.
func (s *Store) ListActiveByToy(ctx context.Context, toyID primitive.ObjectID) ([]models.Borrowing, error) {
	cur, err := s.borrowings.Find(ctx,
		bson.M{
			"toy_id":      toyID,
			"return_date": bson.M{"$exists": false},
		},
		options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Borrowing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveForUnit returns the open loan occupying a unit, if any.
func (s *Store) ActiveForUnit(ctx context.Context, unitID primitive.ObjectID) (models.Borrowing, error) {
	var b models.Borrowing
	err := s.borrowings.FindOne(ctx, bson.M{
		"unit_id":     unitID,
		"return_date": bson.M{"$exists": false},
	}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Borrowing{}, ErrBorrowingNotFound
		}
		return models.Borrowing{}, err
	}
	return b, nil
}

// SearchFilter builds the filter for a free-text borrowing search. Borrower
// matches resolve through the borrowers collection first (so renamed
// borrowers are still found by their current name); the term is also matched
// against the denormalized toy and borrower fields on the loan itself.
func SearchFilter(term string, borrowerIDs []primitive.ObjectID) bson.M {
	quoted := regexp.QuoteMeta(term)
	or := bson.A{
		bson.M{"toy_name": bson.M{"$regex": quoted, "$options": "i"}},
		bson.M{"borrower_name": bson.M{"$regex": quoted, "$options": "i"}},
		bson.M{"borrower_email": bson.M{"$regex": quoted, "$options": "i"}},
	}
	if len(borrowerIDs) > 0 {
		or = append(or, bson.M{"borrower_id": bson.M{"$in": borrowerIDs}})
	}
	return bson.M{"$or": or}
}
