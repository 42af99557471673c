// internal/app/features/categories/handler_test.go
package categories_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thrivewell/thrivehub/internal/app/features/categories"
	"github.com/thrivewell/thrivehub/internal/app/system/indexes"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.uber.org/zap"
)

func setupHandler(t *testing.T) (*categories.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return categories.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestHandleCreate(t *testing.T) {
	h, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/categories", map[string]any{
		"name":        "Supplements",
		"description": "Vitamins and minerals",
	})
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	var cat models.Category
	testutil.DecodeData(t, rec, &cat)
	if cat.Name != "Supplements" || !cat.IsActive {
		t.Errorf("created category: name=%q active=%v", cat.Name, cat.IsActive)
	}
}

func TestHandleCreate_StripsMarkup(t *testing.T) {
	h, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/categories", map[string]any{
		"name": "<b>Supplements</b>",
	})
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var cat models.Category
	testutil.DecodeData(t, rec, &cat)
	if cat.Name != "Supplements" {
		t.Errorf("markup not stripped: %q", cat.Name)
	}
}

func TestHandleCreate_MissingName(t *testing.T) {
	h, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/categories", map[string]any{
		"description": "no name",
	})
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	env := testutil.DecodeEnvelope(t, rec)
	if len(env.Errors) == 0 || env.Errors[0].Field != "name" {
		t.Errorf("expected a field error on name, got %+v", env.Errors)
	}
}

func TestHandleCreate_DuplicateName(t *testing.T) {
	h, fx := setupHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateCategory(ctx, "Supplements", nil)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/categories", map[string]any{
		"name": "SUPPLEMENTS",
	})
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleUpdate_CycleRejected(t *testing.T) {
	h, fx := setupHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	root := fx.CreateCategory(ctx, "Root", nil)
	child := fx.CreateCategory(ctx, "Child", &root.ID)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPut, "/categories/"+root.ID.Hex(), map[string]any{
		"parent_id": child.ID.Hex(),
	})
	req = testutil.WithChiURLParam(req, "id", root.ID.Hex())
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleDelete_Guards(t *testing.T) {
	h, fx := setupHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	parent := fx.CreateCategory(ctx, "Parent", nil)
	fx.CreateCategory(ctx, "Child", &parent.ID)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/categories/"+parent.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", parent.ID.Hex())
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete with children: got %d, want 400", rec.Code)
	}

	shop := fx.CreateCategory(ctx, "Shop", nil)
	fx.CreateProduct(ctx, "Fish Oil", shop.ID, 24.50, 3)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/categories/"+shop.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", shop.ID.Hex())
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete with products: got %d, want 400", rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	h, fx := setupHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := fx.CreateCategory(ctx, "Empty", nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/categories/"+cat.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", cat.ID.Hex())
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/categories/"+cat.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", cat.ID.Hex())
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d, want 404", rec.Code)
	}
}
