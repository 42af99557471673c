// internal/app/store/borrowers/borrowerstore.go
package borrowerstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
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
	ErrDuplicateEmail   = errors.New("a borrower with this email already exists")
	ErrBorrowerNotFound = errors.New("borrower not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("borrowers")}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Borrower, error) {
	var b models.Borrower
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Borrower{}, ErrBorrowerNotFound
		}
		return models.Borrower{}, err
	}
	return b, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.Borrower, error) {
	var b models.Borrower
	err := s.c.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Borrower{}, ErrBorrowerNotFound
		}
		return models.Borrower{}, err
	}
	return b, nil
}

func (s *Store) Create(ctx context.Context, b models.Borrower) (models.Borrower, error) {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.NameCI = text.Fold(b.Name)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Borrower{}, ErrDuplicateEmail
		}
		return models.Borrower{}, err
	}
	return b, nil
}

// GetOrCreate finds a borrower by email, creating the record on first
// contact. A concurrent create of the same email resolves through the unique
// index to a second lookup.
func (s *Store) GetOrCreate(ctx context.Context, b models.Borrower) (models.Borrower, error) {
	existing, err := s.GetByEmail(ctx, b.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrBorrowerNotFound) {
		return models.Borrower{}, err
	}
	created, err := s.Create(ctx, b)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, ErrDuplicateEmail) {
		return s.GetByEmail(ctx, b.Email)
	}
	return models.Borrower{}, err
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Borrower, error) {
	if name, ok := set["name"].(string); ok {
		set["name_ci"] = text.Fold(name)
	}
	if email, ok := set["email"].(string); ok {
		set["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	set["updated_at"] = time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var b models.Borrower
	if err := res.Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Borrower{}, ErrBorrowerNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.Borrower{}, ErrDuplicateEmail
		}
		return models.Borrower{}, err
	}
	return b, nil
}

// FindIDsMatching returns borrower IDs whose name, email, or phone matches
// the folded search term. Used as the first phase of borrowing search.
func (s *Store) FindIDsMatching(ctx context.Context, term string) ([]primitive.ObjectID, error) {
	folded := text.Fold(term)
	filter := bson.M{"$or": bson.A{
		bson.M{"name_ci": bson.M{"$regex": regexp.QuoteMeta(folded), "$options": "i"}},
		bson.M{"email": bson.M{"$regex": regexp.QuoteMeta(strings.ToLower(term)), "$options": "i"}},
		bson.M{"phone": bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}},
	}}
	cur, err := s.c.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}
