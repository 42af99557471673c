// internal/app/store/toyunits/toyunitstore_test.go
package toyunitstore_test

import (
	"errors"
	"testing"

	toyunitstore "github.com/thrivewell/thrivehub/internal/app/store/toyunits"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func setupUnits(t *testing.T) (*toyunitstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return toyunitstore.New(db), testutil.NewFixtures(t, db)
}

func TestCreate_SequentialNumbering(t *testing.T) {
	store, fx := setupUnits(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	other := fx.CreateToy(ctx, "Balance Board", "gross motor")

	for want := 1; want <= 3; want++ {
		u, err := store.Create(ctx, toy.ID, models.ConditionGood, "")
		if err != nil {
			t.Fatalf("Create #%d failed: %v", want, err)
		}
		if u.UnitNumber != want {
			t.Errorf("unit number: got %d, want %d", u.UnitNumber, want)
		}
		if !u.IsAvailable {
			t.Errorf("new unit #%d not available", want)
		}
	}

	// Numbering is scoped per toy.
	u, err := store.Create(ctx, other.ID, models.ConditionExcellent, "boxed")
	if err != nil {
		t.Fatalf("Create on other toy failed: %v", err)
	}
	if u.UnitNumber != 1 {
		t.Errorf("other toy's first unit: got #%d, want #1", u.UnitNumber)
	}
}

func TestListByToy_Ordered(t *testing.T) {
	store, fx := setupUnits(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	fx.CreateToyUnit(ctx, toy.ID, 2)
	fx.CreateToyUnit(ctx, toy.ID, 1)
	fx.CreateToyUnit(ctx, toy.ID, 3)

	units, err := store.ListByToy(ctx, toy.ID)
	if err != nil {
		t.Fatalf("ListByToy failed: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("units: got %d, want 3", len(units))
	}
	for i, u := range units {
		if u.UnitNumber != i+1 {
			t.Errorf("position %d: got unit #%d", i, u.UnitNumber)
		}
	}
}

func TestUpdateCondition(t *testing.T) {
	store, fx := setupUnits(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	u := fx.CreateToyUnit(ctx, toy.ID, 1)

	got, err := store.UpdateCondition(ctx, u.ID, models.ConditionFair, "scuffed corners")
	if err != nil {
		t.Fatalf("UpdateCondition failed: %v", err)
	}
	if got.Condition != models.ConditionFair || got.Notes != "scuffed corners" {
		t.Errorf("updated unit: condition=%q notes=%q", got.Condition, got.Notes)
	}
}

func TestDelete(t *testing.T) {
	store, fx := setupUnits(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	u := fx.CreateToyUnit(ctx, toy.ID, 1)

	if err := store.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, u.ID); !errors.Is(err, toyunitstore.ErrUnitNotFound) {
		t.Fatalf("deleted unit still readable: %v", err)
	}
}

func TestDelete_OnLoan(t *testing.T) {
	store, fx := setupUnits(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	u := fx.CreateToyUnit(ctx, toy.ID, 1)
	if _, err := fx.DB().Collection("toy_units").UpdateByID(ctx, u.ID,
		bson.M{"$set": bson.M{"is_available": false}}); err != nil {
		t.Fatalf("mark on loan failed: %v", err)
	}

	if err := store.Delete(ctx, u.ID); !errors.Is(err, toyunitstore.ErrUnitOnLoan) {
		t.Fatalf("delete of loaned unit: got %v, want ErrUnitOnLoan", err)
	}
	if _, err := store.GetByID(ctx, u.ID); err != nil {
		t.Errorf("loaned unit removed by failed delete: %v", err)
	}
}
