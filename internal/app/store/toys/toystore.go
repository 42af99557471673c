// internal/app/store/toys/toystore.go
package toystore

import (
	"context"
	"errors"
	"regexp"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/thrivewell/thrivehub/internal/domain/models"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	toys  *mongo.Collection
	units *mongo.Collection
}

var (
	ErrDuplicateToyName  = errors.New("a toy with this name already exists")
	ErrToyNotFound       = errors.New("toy not found")
	ErrToyHasActiveLoans = errors.New("toy has units on loan")
)

func New(db *mongo.Database) *Store {
	return &Store{
		toys:  db.Collection("toys"),
		units: db.Collection("toy_units"),
	}
}

func (s *Store) Collection() *mongo.Collection { return s.toys }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Toy, error) {
	var toy models.Toy
	if err := s.toys.FindOne(ctx, bson.M{"_id": id}).Decode(&toy); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Toy{}, ErrToyNotFound
		}
		return models.Toy{}, err
	}
	return toy, nil
}

func (s *Store) Create(ctx context.Context, toy models.Toy) (models.Toy, error) {
	now := time.Now().UTC()
	toy.ID = primitive.NewObjectID()
	toy.NameCI = text.Fold(toy.Name)
	toy.CategoryCI = text.Fold(toy.Category)
	toy.TotalUnits = 0
	toy.AvailableUnits = 0
	toy.CreatedAt = now
	toy.UpdatedAt = now
	if _, err := s.toys.InsertOne(ctx, toy); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Toy{}, ErrDuplicateToyName
		}
		return models.Toy{}, err
	}
	return toy, nil
}

// Update applies a partial update. Unit counters are owned by the unit and
// lending stores; attempts to set them here are ignored.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Toy, error) {
	delete(set, "total_units")
	delete(set, "available_units")
	if name, ok := set["name"].(string); ok {
		set["name_ci"] = text.Fold(name)
	}
	if category, ok := set["category"].(string); ok {
		set["category_ci"] = text.Fold(category)
	}
	set["updated_at"] = time.Now().UTC()
	res := s.toys.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var toy models.Toy
	if err := res.Decode(&toy); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Toy{}, ErrToyNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.Toy{}, ErrDuplicateToyName
		}
		return models.Toy{}, err
	}
	return toy, nil
}

// FindBestMatch returns the first toy whose folded name or category contains
// the search term, name matches ranked ahead of category matches.
func (s *Store) FindBestMatch(ctx context.Context, term string) (models.Toy, error) {
	folded := regexp.QuoteMeta(text.Fold(term))
	for _, field := range []string{"name_ci", "category_ci"} {
		var toy models.Toy
		err := s.toys.FindOne(ctx,
			bson.M{field: bson.M{"$regex": folded, "$options": "i"}},
			options.FindOne().SetSort(bson.D{{Key: "name_ci", Value: 1}})).Decode(&toy)
		if err == nil {
			return toy, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return models.Toy{}, err
		}
	}
	return models.Toy{}, ErrToyNotFound
}

// SetImagePath records the stored image path for a toy.
func (s *Store) SetImagePath(ctx context.Context, id primitive.ObjectID, path string) error {
	res, err := s.toys.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"image_path": path,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrToyNotFound
	}
	return nil
}

// RecomputeUnitCounts rereads the unit collection and rewrites the toy's
// total and available counters. Called after any unit create/delete and as a
// repair step; incremental $inc updates elsewhere keep the common path cheap.
func (s *Store) RecomputeUnitCounts(ctx context.Context, id primitive.ObjectID) (models.Toy, error) {
	total, err := s.units.CountDocuments(ctx, bson.M{"toy_id": id})
	if err != nil {
		return models.Toy{}, err
	}
	available, err := s.units.CountDocuments(ctx, bson.M{"toy_id": id, "is_available": true})
	if err != nil {
		return models.Toy{}, err
	}
	res := s.toys.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"total_units":     total,
			"available_units": available,
			"updated_at":      time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var toy models.Toy
	if err := res.Decode(&toy); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Toy{}, ErrToyNotFound
		}
		return models.Toy{}, err
	}
	return toy, nil
}

// Delete removes a toy and its units. It refuses while any unit is out on
// loan.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	onLoan, err := s.units.CountDocuments(ctx, bson.M{"toy_id": id, "is_available": false})
	if err != nil {
		return 0, err
	}
	if onLoan > 0 {
		return 0, ErrToyHasActiveLoans
	}
	if _, err := s.units.DeleteMany(ctx, bson.M{"toy_id": id}); err != nil {
		return 0, err
	}
	res, err := s.toys.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
