// internal/app/store/categories/categorystore_test.go
package categorystore_test

import (
	"errors"
	"testing"

	categorystore "github.com/thrivewell/thrivehub/internal/app/store/categories"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupCategories(t *testing.T) (*categorystore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return categorystore.New(db), testutil.NewFixtures(t, db)
}

func TestCreate_RejectsUnknownParent(t *testing.T) {
	store, _ := setupCategories(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	missing := primitive.NewObjectID()
	_, err := store.Create(ctx, models.Category{Name: "Orphans", ParentID: &missing})
	if !errors.Is(err, categorystore.ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
}

func TestUpdate_RejectsSelfParent(t *testing.T) {
	store, fx := setupCategories(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := fx.CreateCategory(ctx, "Sensory", nil)
	_, err := store.Update(ctx, cat.ID, "", "", &cat.ID, nil, false)
	if !errors.Is(err, categorystore.ErrCategoryCycle) {
		t.Fatalf("expected ErrCategoryCycle, got %v", err)
	}
}

func TestUpdate_RejectsAncestorCycle(t *testing.T) {
	store, fx := setupCategories(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// root -> mid -> leaf, then try to re-parent root under leaf.
	root := fx.CreateCategory(ctx, "Root", nil)
	mid := fx.CreateCategory(ctx, "Mid", &root.ID)
	leaf := fx.CreateCategory(ctx, "Leaf", &mid.ID)

	_, err := store.Update(ctx, root.ID, "", "", &leaf.ID, nil, false)
	if !errors.Is(err, categorystore.ErrCategoryCycle) {
		t.Fatalf("expected ErrCategoryCycle, got %v", err)
	}
}

func TestUpdate_ReparentAndClear(t *testing.T) {
	store, fx := setupCategories(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateCategory(ctx, "A", nil)
	b := fx.CreateCategory(ctx, "B", nil)

	moved, err := store.Update(ctx, b.ID, "", "", &a.ID, nil, false)
	if err != nil {
		t.Fatalf("re-parent failed: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != a.ID {
		t.Fatalf("parent not set: %+v", moved.ParentID)
	}

	cleared, err := store.Update(ctx, b.ID, "", "", nil, nil, true)
	if err != nil {
		t.Fatalf("clear parent failed: %v", err)
	}
	if cleared.ParentID != nil {
		t.Fatalf("parent not cleared: %+v", cleared.ParentID)
	}
}

func TestCountChildren(t *testing.T) {
	store, fx := setupCategories(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	root := fx.CreateCategory(ctx, "Root", nil)
	fx.CreateCategory(ctx, "Child A", &root.ID)
	fx.CreateCategory(ctx, "Child B", &root.ID)

	n, err := store.CountChildren(ctx, root.ID)
	if err != nil {
		t.Fatalf("CountChildren failed: %v", err)
	}
	if n != 2 {
		t.Errorf("children: got %d, want 2", n)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	store, _ := setupCategories(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Update(ctx, primitive.NewObjectID(), "New Name", "", nil, nil, false)
	if !errors.Is(err, categorystore.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}
