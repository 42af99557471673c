// internal/app/store/webinars/webinarstore_test.go
package webinarstore_test

import (
	"errors"
	"testing"

	webinarstore "github.com/thrivewell/thrivehub/internal/app/store/webinars"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func setupWebinars(t *testing.T) (*webinarstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return webinarstore.New(db), testutil.NewFixtures(t, db)
}

func TestRegister(t *testing.T) {
	store, fx := setupWebinars(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := fx.CreateWebinar(ctx, "Sensory Play at Home", 20)
	got, err := store.Register(ctx, w.ID, models.Registrant{
		Name:  "Pat Doe",
		Email: "pat@example.com",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(got.Registrations) != 1 {
		t.Fatalf("registrations: got %d, want 1", len(got.Registrations))
	}
	if got.Registrations[0].RegisteredAt.IsZero() {
		t.Error("registered_at not stamped")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	store, fx := setupWebinars(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := fx.CreateWebinar(ctx, "Sensory Play at Home", 20)
	reg := models.Registrant{Name: "Pat Doe", Email: "pat@example.com"}
	if _, err := store.Register(ctx, w.ID, reg); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := store.Register(ctx, w.ID, reg); !errors.Is(err, webinarstore.ErrAlreadyRegistered) {
		t.Fatalf("duplicate Register: got %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegister_Full(t *testing.T) {
	store, fx := setupWebinars(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := fx.CreateWebinar(ctx, "Feeding Therapy Basics", 1)
	if _, err := store.Register(ctx, w.ID, models.Registrant{Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := store.Register(ctx, w.ID, models.Registrant{Name: "B", Email: "b@example.com"}); !errors.Is(err, webinarstore.ErrWebinarFull) {
		t.Fatalf("over-capacity Register: got %v, want ErrWebinarFull", err)
	}
}

func TestRegister_Inactive(t *testing.T) {
	store, fx := setupWebinars(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := fx.CreateWebinar(ctx, "Feeding Therapy Basics", 20)
	if _, err := fx.DB().Collection("webinars").UpdateByID(ctx, w.ID,
		bson.M{"$set": bson.M{"is_active": false}}); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	_, err := store.Register(ctx, w.ID, models.Registrant{Name: "A", Email: "a@example.com"})
	if !errors.Is(err, webinarstore.ErrWebinarInactive) {
		t.Fatalf("inactive Register: got %v, want ErrWebinarInactive", err)
	}
}

func TestCancelRegistration(t *testing.T) {
	store, fx := setupWebinars(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := fx.CreateWebinar(ctx, "Sensory Play at Home", 20)
	if _, err := store.Register(ctx, w.ID, models.Registrant{Name: "Pat", Email: "pat@example.com"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := store.CancelRegistration(ctx, w.ID, "pat@example.com")
	if err != nil {
		t.Fatalf("CancelRegistration failed: %v", err)
	}
	if len(got.Registrations) != 0 {
		t.Errorf("registrations after cancel: got %d, want 0", len(got.Registrations))
	}

	// Freed seat can be taken again.
	if _, err := store.Register(ctx, w.ID, models.Registrant{Name: "Pat", Email: "pat@example.com"}); err != nil {
		t.Errorf("re-register after cancel failed: %v", err)
	}
}

func TestCancelRegistration_NotRegistered(t *testing.T) {
	store, fx := setupWebinars(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := fx.CreateWebinar(ctx, "Sensory Play at Home", 20)
	_, err := store.CancelRegistration(ctx, w.ID, "nobody@example.com")
	if !errors.Is(err, webinarstore.ErrNotRegistered) {
		t.Fatalf("cancel of unknown email: got %v, want ErrNotRegistered", err)
	}
}
