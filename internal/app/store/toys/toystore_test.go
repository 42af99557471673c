// internal/app/store/toys/toystore_test.go
package toystore_test

import (
	"errors"
	"testing"
	"time"

	toystore "github.com/thrivewell/thrivehub/internal/app/store/toys"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func setupToys(t *testing.T) (*toystore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return toystore.New(db), testutil.NewFixtures(t, db)
}

func TestRecomputeUnitCounts(t *testing.T) {
	store, fx := setupToys(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Stacking Rings", "fine motor")
	fx.CreateToyUnit(ctx, toy.ID, 1)
	fx.CreateToyUnit(ctx, toy.ID, 2)
	u3 := fx.CreateToyUnit(ctx, toy.ID, 3)
	if _, err := fx.DB().Collection("toy_units").UpdateByID(ctx, u3.ID,
		bson.M{"$set": bson.M{"is_available": false}}); err != nil {
		t.Fatalf("mark on loan failed: %v", err)
	}

	got, err := store.RecomputeUnitCounts(ctx, toy.ID)
	if err != nil {
		t.Fatalf("RecomputeUnitCounts failed: %v", err)
	}
	if got.TotalUnits != 3 {
		t.Errorf("total_units: got %d, want 3", got.TotalUnits)
	}
	if got.AvailableUnits != 2 {
		t.Errorf("available_units: got %d, want 2", got.AvailableUnits)
	}
}

func TestDelete_RemovesUnits(t *testing.T) {
	store, fx := setupToys(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Stacking Rings", "fine motor")
	fx.CreateToyUnit(ctx, toy.ID, 1)
	fx.CreateToyUnit(ctx, toy.ID, 2)

	n, err := store.Delete(ctx, toy.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}
	left, err := fx.DB().Collection("toy_units").CountDocuments(ctx, bson.M{"toy_id": toy.ID})
	if err != nil {
		t.Fatalf("unit count failed: %v", err)
	}
	if left != 0 {
		t.Errorf("orphaned units left: %d", left)
	}
}

func TestDelete_WithActiveLoans(t *testing.T) {
	store, fx := setupToys(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Stacking Rings", "fine motor")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)
	borrower := fx.CreateBorrower(ctx, "Pat Doe")
	fx.CreateBorrowing(ctx, toy, unit, borrower, time.Now().UTC().Add(7*24*time.Hour))
	if _, err := fx.DB().Collection("toy_units").UpdateByID(ctx, unit.ID,
		bson.M{"$set": bson.M{"is_available": false}}); err != nil {
		t.Fatalf("mark on loan failed: %v", err)
	}

	if _, err := store.Delete(ctx, toy.ID); !errors.Is(err, toystore.ErrToyHasActiveLoans) {
		t.Fatalf("delete with active loan: got %v, want ErrToyHasActiveLoans", err)
	}
	if _, err := store.GetByID(ctx, toy.ID); err != nil {
		t.Errorf("toy removed by failed delete: %v", err)
	}
}
