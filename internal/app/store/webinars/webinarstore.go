// internal/app/store/webinars/webinarstore.go
package webinarstore

import (
	"context"
	"errors"
	"time"

	"github.com/thrivewell/thrivehub/internal/domain/models"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrWebinarNotFound   = errors.New("webinar not found")
	ErrWebinarInactive   = errors.New("webinar is not open for registration")
	ErrWebinarFull       = errors.New("webinar is full")
	ErrAlreadyRegistered = errors.New("already registered for this webinar")
	ErrNotRegistered     = errors.New("not registered for this webinar")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("webinars")}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Webinar, error) {
	var w models.Webinar
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Webinar{}, ErrWebinarNotFound
		}
		return models.Webinar{}, err
	}
	return w, nil
}

func (s *Store) Create(ctx context.Context, w models.Webinar) (models.Webinar, error) {
	now := time.Now().UTC()
	w.ID = primitive.NewObjectID()
	w.TitleCI = text.Fold(w.Title)
	if w.Registrations == nil {
		w.Registrations = []models.Registrant{}
	}
	w.CreatedAt = now
	w.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, w); err != nil {
		return models.Webinar{}, err
	}
	return w, nil
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Webinar, error) {
	if title, ok := set["title"].(string); ok {
		set["title_ci"] = text.Fold(title)
	}
	set["updated_at"] = time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var w models.Webinar
	if err := res.Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Webinar{}, ErrWebinarNotFound
		}
		return models.Webinar{}, err
	}
	return w, nil
}

// Register adds a registrant in one guarded update: the filter requires the
// webinar to be active, the email absent, and the registration list below
// capacity, so concurrent registrations cannot overfill it. On a miss the
// document is re-read to report which condition failed.
func (s *Store) Register(ctx context.Context, id primitive.ObjectID, reg models.Registrant) (models.Webinar, error) {
	reg.RegisteredAt = time.Now().UTC()
	filter := bson.M{
		"_id":                 id,
		"is_active":           true,
		"registrations.email": bson.M{"$ne": reg.Email},
		"$expr":               bson.M{"$lt": bson.A{bson.M{"$size": "$registrations"}, "$max_registrations"}},
	}
	res := s.c.FindOneAndUpdate(ctx, filter,
		bson.M{
			"$push": bson.M{"registrations": reg},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var w models.Webinar
	err := res.Decode(&w)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Webinar{}, err
	}

	current, getErr := s.GetByID(ctx, id)
	if getErr != nil {
		return models.Webinar{}, getErr
	}
	switch {
	case current.Registered(reg.Email):
		return models.Webinar{}, ErrAlreadyRegistered
	case !current.IsActive:
		return models.Webinar{}, ErrWebinarInactive
	case current.Full():
		return models.Webinar{}, ErrWebinarFull
	default:
		return models.Webinar{}, err
	}
}

// CancelRegistration removes a registrant by email.
func (s *Store) CancelRegistration(ctx context.Context, id primitive.ObjectID, email string) (models.Webinar, error) {
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "registrations.email": email},
		bson.M{
			"$pull": bson.M{"registrations": bson.M{"email": email}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var w models.Webinar
	err := res.Decode(&w)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Webinar{}, err
	}
	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return models.Webinar{}, getErr
	}
	return models.Webinar{}, ErrNotRegistered
}

// Delete removes a webinar by ID. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
