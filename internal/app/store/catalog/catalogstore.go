// internal/app/store/catalog/catalogstore.go

// Package catalogstore is a generic document store for the simple aggregates
// (gallery, services, recipes, workshops, detox plans, inventory, meetings).
// These share the same lifecycle: timestamped CRUD with an optional folded
// search field and optional unique key. Anything with real workflow gets its
// own store package instead.
package catalogstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

// Descriptor names the collection and the field (if any) that gets a folded
// _ci shadow for case-insensitive search.
type Descriptor struct {
	Collection string
	FoldField  string
}

type Store[T any] struct {
	c    *mongo.Collection
	fold string
}

func New[T any](db *mongo.Database, d Descriptor) *Store[T] {
	return &Store[T]{c: db.Collection(d.Collection), fold: d.FoldField}
}

func (s *Store[T]) Collection() *mongo.Collection { return s.c }

func (s *Store[T]) GetByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	var doc T
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, ErrNotFound
		}
		return doc, err
	}
	return doc, nil
}

// Create inserts the given fields with a fresh ID and timestamps and returns
// the stored document.
func (s *Store[T]) Create(ctx context.Context, fields bson.M) (T, error) {
	var doc T
	now := time.Now().UTC()
	id := primitive.NewObjectID()
	fields["_id"] = id
	fields["created_at"] = now
	fields["updated_at"] = now
	s.applyFold(fields)

	if _, err := s.c.InsertOne(ctx, fields); err != nil {
		if wafflemongo.IsDup(err) {
			return doc, ErrDuplicate
		}
		return doc, err
	}
	return s.GetByID(ctx, id)
}

// Update applies a partial update and returns the updated document.
func (s *Store[T]) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (T, error) {
	var doc T
	s.applyFold(set)
	set["updated_at"] = time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return doc, ErrDuplicate
		}
		return doc, err
	}
	return doc, nil
}

// Delete removes a document by ID. Returns the number deleted (0 or 1).
func (s *Store[T]) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store[T]) applyFold(fields bson.M) {
	if s.fold == "" {
		return
	}
	if v, ok := fields[s.fold].(string); ok {
		fields[s.fold+"_ci"] = text.Fold(v)
	}
}
