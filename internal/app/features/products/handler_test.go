// internal/app/features/products/handler_test.go
package products_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	products "github.com/thrivewell/thrivehub/internal/app/features/products"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setupHandler(t *testing.T) (*products.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return products.NewHandler(db, nil, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestHandleDelete_ReferencedReturnsMutatedRecord(t *testing.T) {
	h, fx := setupHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := fx.CreateCategory(ctx, "Books", nil)
	p := fx.CreateProduct(ctx, "Parenting Guide", cat.ID, 30, 10)

	order := models.Order{
		ID:            primitive.NewObjectID(),
		CustomerEmail: "buyer@example.com",
		Items: []models.OrderItem{
			{ProductID: p.ID, Name: p.Name, Quantity: 1, UnitPrice: 30},
		},
		Total:     30,
		Status:    models.OrderPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := fx.DB().Collection("orders").InsertOne(ctx, order); err != nil {
		t.Fatalf("order insert failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/products/"+p.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", p.ID.Hex())
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d (%s)", rec.Code, rec.Body.String())
	}
	var got models.Product
	testutil.DecodeData(t, rec, &got)
	if got.ID != p.ID {
		t.Fatalf("response product id: %s, want %s", got.ID.Hex(), p.ID.Hex())
	}
	if got.Status != models.ProductDiscontinued || got.IsActive {
		t.Errorf("mutated record: status=%q active=%v", got.Status, got.IsActive)
	}
}
