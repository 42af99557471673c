// internal/app/store/borrowings/borrowingstore_test.go
package borrowingstore_test

import (
	"errors"
	"testing"
	"time"

	borrowingstore "github.com/thrivewell/thrivehub/internal/app/store/borrowings"
	toyunitstore "github.com/thrivewell/thrivehub/internal/app/store/toyunits"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupLending(t *testing.T) (*borrowingstore.Store, *toyunitstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return borrowingstore.New(db), toyunitstore.New(db), testutil.NewFixtures(t, db)
}

func TestIssue_ClaimsUnit(t *testing.T) {
	store, units, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wobble Board", "balance")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)
	borrower := fx.CreateBorrower(ctx, "Dana Ortiz")
	due := time.Now().UTC().Add(14 * 24 * time.Hour)

	b, err := store.Issue(ctx, borrowingstore.IssueParams{
		UnitID:   unit.ID,
		Borrower: borrower,
		DueDate:  due,
	})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if b.ToyName != "Wobble Board" || b.UnitNumber != 1 {
		t.Errorf("denormalized toy fields wrong: %+v", b)
	}
	if b.BorrowerEmail != borrower.Email {
		t.Errorf("borrower email: got %q", b.BorrowerEmail)
	}
	if b.Status != models.BorrowingBorrowed {
		t.Errorf("status: got %q", b.Status)
	}
	if b.ConditionOnIssue != unit.Condition {
		t.Errorf("condition on issue: got %q", b.ConditionOnIssue)
	}

	got, err := units.GetByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("unit read-back failed: %v", err)
	}
	if got.IsAvailable {
		t.Error("unit still available after issue")
	}
	if got.ActiveBorrowingID == nil || *got.ActiveBorrowingID != b.ID {
		t.Errorf("unit back-reference: got %v", got.ActiveBorrowingID)
	}
}

func TestIssue_UnavailableUnit(t *testing.T) {
	store, _, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Blocks", "construction")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)
	first := fx.CreateBorrower(ctx, "First Family")
	second := fx.CreateBorrower(ctx, "Second Family")
	due := time.Now().UTC().Add(7 * 24 * time.Hour)

	if _, err := store.Issue(ctx, borrowingstore.IssueParams{UnitID: unit.ID, Borrower: first, DueDate: due}); err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	_, err := store.Issue(ctx, borrowingstore.IssueParams{UnitID: unit.ID, Borrower: second, DueDate: due})
	if !errors.Is(err, borrowingstore.ErrUnitUnavailable) {
		t.Fatalf("expected ErrUnitUnavailable, got %v", err)
	}
}

func TestIssue_UnknownUnit(t *testing.T) {
	store, _, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	borrower := fx.CreateBorrower(ctx, "Dana Ortiz")
	_, err := store.Issue(ctx, borrowingstore.IssueParams{
		UnitID:   primitive.NewObjectID(),
		Borrower: borrower,
		DueDate:  time.Now().UTC().Add(24 * time.Hour),
	})
	if !errors.Is(err, borrowingstore.ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestReturn_ReleasesUnit(t *testing.T) {
	store, units, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Puzzle", "cognitive")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)
	borrower := fx.CreateBorrower(ctx, "Dana Ortiz")

	b, err := store.Issue(ctx, borrowingstore.IssueParams{
		UnitID: unit.ID, Borrower: borrower, DueDate: time.Now().UTC().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	returned, err := store.Return(ctx, borrowingstore.ReturnParams{
		BorrowingID: b.ID,
		Condition:   models.ConditionFair,
	})
	if err != nil {
		t.Fatalf("Return failed: %v", err)
	}
	if returned.Status != models.BorrowingReturned {
		t.Errorf("status: got %q", returned.Status)
	}
	if returned.ReturnDate == nil {
		t.Error("return date not set")
	}
	if returned.ConditionOnReturn != models.ConditionFair {
		t.Errorf("condition on return: got %q", returned.ConditionOnReturn)
	}

	got, err := units.GetByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("unit read-back failed: %v", err)
	}
	if !got.IsAvailable {
		t.Error("unit not released")
	}
	if got.Condition != models.ConditionFair {
		t.Errorf("unit condition not updated: got %q", got.Condition)
	}
	if got.ActiveBorrowingID != nil {
		t.Errorf("unit back-reference not cleared: %v", got.ActiveBorrowingID)
	}
}

func TestReturn_Twice(t *testing.T) {
	store, _, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Puzzle", "cognitive")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)
	borrower := fx.CreateBorrower(ctx, "Dana Ortiz")
	b, err := store.Issue(ctx, borrowingstore.IssueParams{
		UnitID: unit.ID, Borrower: borrower, DueDate: time.Now().UTC().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := store.Return(ctx, borrowingstore.ReturnParams{BorrowingID: b.ID}); err != nil {
		t.Fatalf("first Return failed: %v", err)
	}
	_, err = store.Return(ctx, borrowingstore.ReturnParams{BorrowingID: b.ID})
	if !errors.Is(err, borrowingstore.ErrAlreadyReturned) {
		t.Fatalf("expected ErrAlreadyReturned, got %v", err)
	}
}

func TestReturn_LostKeepsUnitUnavailable(t *testing.T) {
	store, units, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Swing", "gross_motor")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)
	borrower := fx.CreateBorrower(ctx, "Dana Ortiz")
	b, err := store.Issue(ctx, borrowingstore.IssueParams{
		UnitID: unit.ID, Borrower: borrower, DueDate: time.Now().UTC().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	returned, err := store.Return(ctx, borrowingstore.ReturnParams{
		BorrowingID: b.ID,
		Status:      models.BorrowingLost,
	})
	if err != nil {
		t.Fatalf("Return failed: %v", err)
	}
	if returned.Status != models.BorrowingLost {
		t.Errorf("status: got %q", returned.Status)
	}

	got, err := units.GetByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("unit read-back failed: %v", err)
	}
	if got.IsAvailable {
		t.Error("lost unit returned to circulation")
	}
}

func TestBulkReturn_PartialSuccess(t *testing.T) {
	store, _, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Blocks", "construction")
	unitA := fx.CreateToyUnit(ctx, toy.ID, 1)
	unitB := fx.CreateToyUnit(ctx, toy.ID, 2)
	borrower := fx.CreateBorrower(ctx, "Dana Ortiz")
	due := time.Now().UTC().Add(24 * time.Hour)

	a, err := store.Issue(ctx, borrowingstore.IssueParams{UnitID: unitA.ID, Borrower: borrower, DueDate: due})
	if err != nil {
		t.Fatalf("Issue a failed: %v", err)
	}
	b, err := store.Issue(ctx, borrowingstore.IssueParams{UnitID: unitB.ID, Borrower: borrower, DueDate: due})
	if err != nil {
		t.Fatalf("Issue b failed: %v", err)
	}
	// Close b up front so its bulk item fails.
	if _, err := store.Return(ctx, borrowingstore.ReturnParams{BorrowingID: b.ID}); err != nil {
		t.Fatalf("pre-return failed: %v", err)
	}

	results := store.BulkReturn(ctx, []primitive.ObjectID{a.ID, b.ID}, "")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Returned || results[0].Error != "" {
		t.Errorf("item a: %+v", results[0])
	}
	if results[1].Returned || results[1].Error == "" {
		t.Errorf("item b should have failed: %+v", results[1])
	}
}

func TestListOverdue(t *testing.T) {
	store, _, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Puzzle", "cognitive")
	unitA := fx.CreateToyUnit(ctx, toy.ID, 1)
	unitB := fx.CreateToyUnit(ctx, toy.ID, 2)
	borrower := fx.CreateBorrower(ctx, "Dana Ortiz")

	late, err := store.Issue(ctx, borrowingstore.IssueParams{
		UnitID: unitA.ID, Borrower: borrower, DueDate: time.Now().UTC().Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("Issue late failed: %v", err)
	}
	if _, err := store.Issue(ctx, borrowingstore.IssueParams{
		UnitID: unitB.ID, Borrower: borrower, DueDate: time.Now().UTC().Add(72 * time.Hour),
	}); err != nil {
		t.Fatalf("Issue on-time failed: %v", err)
	}

	items, err := store.ListOverdue(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("ListOverdue failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != late.ID {
		t.Fatalf("expected only the late loan, got %+v", items)
	}
	if items[0].EffectiveStatus(time.Now().UTC().Add(time.Hour)) != models.BorrowingOverdue {
		t.Errorf("effective status: got %q", items[0].EffectiveStatus(time.Now().UTC().Add(time.Hour)))
	}
}
