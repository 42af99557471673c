// internal/app/store/toyunits/toyunitstore.go
package toyunitstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/thrivewell/thrivehub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrUnitNotFound    = errors.New("toy unit not found")
	ErrUnitOnLoan      = errors.New("toy unit is out on loan")
	ErrNoAvailableUnit = errors.New("no available unit for this toy")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("toy_units")}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ToyUnit, error) {
	var u models.ToyUnit
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ToyUnit{}, ErrUnitNotFound
		}
		return models.ToyUnit{}, err
	}
	return u, nil
}

// Create adds a unit under a toy, assigning the next unit number. The unique
// (toy_id, unit_number) index turns a concurrent race into a retryable dup
// error, so insertion retries with the next number.
func (s *Store) Create(ctx context.Context, toyID primitive.ObjectID, condition, notes string) (models.ToyUnit, error) {
	const maxAttempts = 5
	for attempt := 0; attempt < maxAttempts; attempt++ {
		next, err := s.nextUnitNumber(ctx, toyID)
		if err != nil {
			return models.ToyUnit{}, err
		}
		now := time.Now().UTC()
		u := models.ToyUnit{
			ID:          primitive.NewObjectID(),
			ToyID:       toyID,
			UnitNumber:  next,
			Condition:   condition,
			IsAvailable: true,
			Notes:       notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = s.c.InsertOne(ctx, u)
		if err == nil {
			return u, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.ToyUnit{}, err
		}
	}
	return models.ToyUnit{}, errors.New("could not assign a unit number")
}

func (s *Store) nextUnitNumber(ctx context.Context, toyID primitive.ObjectID) (int, error) {
	var top models.ToyUnit
	err := s.c.FindOne(ctx, bson.M{"toy_id": toyID},
		options.FindOne().SetSort(bson.D{{Key: "unit_number", Value: -1}})).Decode(&top)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, err
	}
	return top.UnitNumber + 1, nil
}

// ListByToy returns all units for a toy in unit-number order.
func (s *Store) ListByToy(ctx context.Context, toyID primitive.ObjectID) ([]models.ToyUnit, error) {
	cur, err := s.c.Find(ctx, bson.M{"toy_id": toyID},
		options.Find().SetSort(bson.D{{Key: "unit_number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var units []models.ToyUnit
	if err := cur.All(ctx, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// FirstAvailable returns the lowest-numbered available unit of a toy.
func (s *Store) FirstAvailable(ctx context.Context, toyID primitive.ObjectID) (models.ToyUnit, error) {
	var u models.ToyUnit
	err := s.c.FindOne(ctx,
		bson.M{"toy_id": toyID, "is_available": true},
		options.FindOne().SetSort(bson.D{{Key: "unit_number", Value: 1}})).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ToyUnit{}, ErrNoAvailableUnit
		}
		return models.ToyUnit{}, err
	}
	return u, nil
}

// UpdateCondition sets a unit's condition and notes.
func (s *Store) UpdateCondition(ctx context.Context, id primitive.ObjectID, condition, notes string) (models.ToyUnit, error) {
	set := bson.M{
		"condition":  condition,
		"updated_at": time.Now().UTC(),
	}
	if notes != "" {
		set["notes"] = notes
	}
	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var u models.ToyUnit
	if err := res.Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ToyUnit{}, ErrUnitNotFound
		}
		return models.ToyUnit{}, err
	}
	return u, nil
}

// Delete removes a unit. Units on loan cannot be deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "is_available": true})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrUnitOnLoan
	}
	return nil
}
