// internal/app/store/categories/categorystore.go
package categorystore

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
	ErrDuplicateCategoryName = errors.New("a category with this name already exists")
	ErrCategoryCycle         = errors.New("category parent would create a cycle")
	ErrParentNotFound        = errors.New("parent category not found")
	ErrCategoryNotFound      = errors.New("category not found")
)

// maxDepth bounds the ancestor walk so a corrupted parent chain cannot loop
// forever.
const maxDepth = 64

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("categories")}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	var cat models.Category
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Category{}, ErrCategoryNotFound
		}
		return models.Category{}, err
	}
	return cat, nil
}

func (s *Store) Create(ctx context.Context, cat models.Category) (models.Category, error) {
	now := time.Now().UTC()
	cat.ID = primitive.NewObjectID()
	cat.NameCI = text.Fold(cat.Name)
	cat.CreatedAt = now
	cat.UpdatedAt = now

	if cat.ParentID != nil {
		if _, err := s.GetByID(ctx, *cat.ParentID); err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return models.Category{}, ErrParentNotFound
			}
			return models.Category{}, err
		}
	}

	if _, err := s.c.InsertOne(ctx, cat); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Category{}, ErrDuplicateCategoryName
		}
		return models.Category{}, err
	}
	return cat, nil
}

// Update applies the given fields. Re-parenting walks the proposed parent's
// ancestor chain and rejects any chain that reaches the category itself.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description string, parentID *primitive.ObjectID, isActive *bool, clearParent bool) (models.Category, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if description != "" {
		set["description"] = description
	}
	if isActive != nil {
		set["is_active"] = *isActive
	}
	switch {
	case clearParent:
		unset["parent_id"] = ""
	case parentID != nil:
		if *parentID == id {
			return models.Category{}, ErrCategoryCycle
		}
		if _, err := s.GetByID(ctx, *parentID); err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return models.Category{}, ErrParentNotFound
			}
			return models.Category{}, err
		}
		reaches, err := s.chainReaches(ctx, *parentID, id)
		if err != nil {
			return models.Category{}, err
		}
		if reaches {
			return models.Category{}, ErrCategoryCycle
		}
		set["parent_id"] = *parentID
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var cat models.Category
	if err := res.Decode(&cat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Category{}, ErrCategoryNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.Category{}, ErrDuplicateCategoryName
		}
		return models.Category{}, err
	}
	return cat, nil
}

// chainReaches walks up from start's parent chain and reports whether it
// encounters target.
func (s *Store) chainReaches(ctx context.Context, start, target primitive.ObjectID) (bool, error) {
	current := start
	for i := 0; i < maxDepth; i++ {
		var cat models.Category
		err := s.c.FindOne(ctx, bson.M{"_id": current},
			options.FindOne().SetProjection(bson.M{"parent_id": 1})).Decode(&cat)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return false, nil
			}
			return false, err
		}
		if cat.ParentID == nil {
			return false, nil
		}
		if *cat.ParentID == target {
			return true, nil
		}
		current = *cat.ParentID
	}
	return true, nil
}

// CountChildren returns how many categories name id as their parent.
func (s *Store) CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"parent_id": id})
}

// Delete removes a category by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
