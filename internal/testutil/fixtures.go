// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data. Documents are
// inserted directly so store logic under test is not exercised by its own
// setup.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateCategory creates a category; parentID may be nil for a root.
func (f *Fixtures) CreateCategory(ctx context.Context, name string, parentID *primitive.ObjectID) models.Category {
	f.t.Helper()
	now := time.Now().UTC()
	cat := models.Category{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		ParentID:  parentID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "categories", cat)
	return cat
}

// CreateProduct creates an active product with the given stock.
func (f *Fixtures) CreateProduct(ctx context.Context, name string, categoryID primitive.ObjectID, price float64, stock int) models.Product {
	f.t.Helper()
	now := time.Now().UTC()
	status := models.ProductActive
	if stock <= 0 {
		status = models.ProductOutOfStock
	}
	p := models.Product{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		CategoryID: categoryID,
		Price:      price,
		Stock:      stock,
		SKU:        "SKU-" + primitive.NewObjectID().Hex()[:8],
		Status:     status,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "products", p)
	return p
}

// CreateCourse creates an active course.
func (f *Fixtures) CreateCourse(ctx context.Context, title string, price float64) models.Course {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.Course{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Price:     price,
		Level:     "beginner",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "courses", c)
	return c
}

// CreateWebinar creates an active future webinar with the given capacity.
func (f *Fixtures) CreateWebinar(ctx context.Context, title string, maxRegistrations int) models.Webinar {
	f.t.Helper()
	now := time.Now().UTC()
	w := models.Webinar{
		ID:               primitive.NewObjectID(),
		Title:            title,
		TitleCI:          text.Fold(title),
		StartAt:          now.Add(72 * time.Hour),
		MaxRegistrations: maxRegistrations,
		Registrations:    []models.Registrant{},
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.insert(ctx, "webinars", w)
	return w
}

// CreateFeedback creates one rating on an item.
func (f *Fixtures) CreateFeedback(ctx context.Context, email, itemType string, itemID primitive.ObjectID, rating int) models.Feedback {
	f.t.Helper()
	now := time.Now().UTC()
	fb := models.Feedback{
		ID:        primitive.NewObjectID(),
		UserEmail: strings.ToLower(email),
		ItemType:  itemType,
		ItemID:    itemID,
		Rating:    rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "feedback", fb)
	return fb
}

// CreateToy creates a toy catalog entry with zero units.
func (f *Fixtures) CreateToy(ctx context.Context, name, category string) models.Toy {
	f.t.Helper()
	now := time.Now().UTC()
	toy := models.Toy{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Category:   category,
		CategoryCI: text.Fold(category),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "toys", toy)
	return toy
}

// CreateToyUnit creates one available unit of a toy.
func (f *Fixtures) CreateToyUnit(ctx context.Context, toyID primitive.ObjectID, unitNumber int) models.ToyUnit {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.ToyUnit{
		ID:          primitive.NewObjectID(),
		ToyID:       toyID,
		UnitNumber:  unitNumber,
		Condition:   models.ConditionGood,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "toy_units", u)
	return u
}

// CreateBorrower creates a borrower with a unique email derived from name.
func (f *Fixtures) CreateBorrower(ctx context.Context, name string) models.Borrower {
	f.t.Helper()
	now := time.Now().UTC()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	b := models.Borrower{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		Relationship: "parent",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "borrowers", b)
	return b
}

// CreateBorrowing creates an open loan for a unit. The unit document is not
// touched; tests that need a consistent unit state should issue through the
// store instead.
func (f *Fixtures) CreateBorrowing(ctx context.Context, toy models.Toy, unit models.ToyUnit, borrower models.Borrower, dueDate time.Time) models.Borrowing {
	f.t.Helper()
	now := time.Now().UTC()
	b := models.Borrowing{
		ID:               primitive.NewObjectID(),
		ToyID:            toy.ID,
		ToyName:          toy.Name,
		UnitID:           unit.ID,
		UnitNumber:       unit.UnitNumber,
		BorrowerID:       borrower.ID,
		BorrowerName:     borrower.Name,
		BorrowerEmail:    borrower.Email,
		IssueDate:        now,
		DueDate:          dueDate,
		Status:           models.BorrowingBorrowed,
		ConditionOnIssue: unit.Condition,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.insert(ctx, "borrowings", b)
	return b
}
