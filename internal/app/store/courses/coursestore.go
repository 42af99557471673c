// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"errors"
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
	c *mongo.Collection
}

var (
	ErrDuplicateCourseTitle = errors.New("a course with this title already exists")
	ErrCourseNotFound       = errors.New("course not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	var course models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func (s *Store) Create(ctx context.Context, course models.Course) (models.Course, error) {
	now := time.Now().UTC()
	course.ID = primitive.NewObjectID()
	course.TitleCI = text.Fold(course.Title)
	course.CreatedAt = now
	course.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, course); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Course{}, ErrDuplicateCourseTitle
		}
		return models.Course{}, err
	}
	return course, nil
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Course, error) {
	if title, ok := set["title"].(string); ok {
		set["title_ci"] = text.Fold(title)
	}
	set["updated_at"] = time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var course models.Course
	if err := res.Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Course{}, ErrCourseNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.Course{}, ErrDuplicateCourseTitle
		}
		return models.Course{}, err
	}
	return course, nil
}

// Delete removes a course by ID. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
