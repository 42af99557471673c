// internal/app/store/products/productstore_test.go
package productstore_test

import (
	"errors"
	"testing"
	"time"

	productstore "github.com/thrivewell/thrivehub/internal/app/store/products"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupProducts(t *testing.T) (*productstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return productstore.New(db), testutil.NewFixtures(t, db)
}

func TestCreate_ZeroStockIsOutOfStock(t *testing.T) {
	store, fx := setupProducts(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := fx.CreateCategory(ctx, "Supplements", nil)
	p, err := store.Create(ctx, models.Product{
		Name:       "Magnesium Drops",
		CategoryID: cat.ID,
		Price:      19.90,
		Stock:      0,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Status != models.ProductOutOfStock {
		t.Errorf("status: got %q, want %q", p.Status, models.ProductOutOfStock)
	}
}

func TestAdjustStock(t *testing.T) {
	store, fx := setupProducts(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := fx.CreateCategory(ctx, "Supplements", nil)
	p := fx.CreateProduct(ctx, "Fish Oil", cat.ID, 24.50, 2)

	got, err := store.AdjustStock(ctx, p.ID, -2)
	if err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}
	if got.Stock != 0 {
		t.Errorf("stock: got %d, want 0", got.Stock)
	}
	if got.Status != models.ProductOutOfStock {
		t.Errorf("status after sell-out: got %q", got.Status)
	}

	got, err = store.AdjustStock(ctx, p.ID, 5)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if got.Stock != 5 || got.Status != models.ProductActive {
		t.Errorf("after restock: stock=%d status=%q", got.Stock, got.Status)
	}
}

func TestAdjustStock_Insufficient(t *testing.T) {
	store, fx := setupProducts(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := fx.CreateCategory(ctx, "Supplements", nil)
	p := fx.CreateProduct(ctx, "Fish Oil", cat.ID, 24.50, 1)

	_, err := store.AdjustStock(ctx, p.ID, -3)
	if !errors.Is(err, productstore.ErrProductNotFound) {
		t.Fatalf("expected guarded update to miss, got %v", err)
	}

	// The failed adjustment must not have touched the stock.
	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("read-back failed: %v", err)
	}
	if got.Stock != 1 {
		t.Errorf("stock changed by failed adjustment: %d", got.Stock)
	}
}

func TestReferencedByOrders(t *testing.T) {
	store, fx := setupProducts(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := fx.CreateCategory(ctx, "Books", nil)
	ordered := fx.CreateProduct(ctx, "Parenting Guide", cat.ID, 30, 10)
	unordered := fx.CreateProduct(ctx, "Workbook", cat.ID, 12, 10)

	order := models.Order{
		ID:            primitive.NewObjectID(),
		CustomerEmail: "buyer@example.com",
		Items: []models.OrderItem{
			{ProductID: ordered.ID, Name: ordered.Name, Quantity: 1, UnitPrice: 30},
		},
		Total:     30,
		Status:    models.OrderPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := fx.DB().Collection("orders").InsertOne(ctx, order); err != nil {
		t.Fatalf("order insert failed: %v", err)
	}

	yes, err := store.ReferencedByOrders(ctx, ordered.ID)
	if err != nil {
		t.Fatalf("ReferencedByOrders failed: %v", err)
	}
	if !yes {
		t.Error("ordered product not reported as referenced")
	}

	no, err := store.ReferencedByOrders(ctx, unordered.ID)
	if err != nil {
		t.Fatalf("ReferencedByOrders failed: %v", err)
	}
	if no {
		t.Error("unordered product reported as referenced")
	}
}

func TestDiscontinue(t *testing.T) {
	store, fx := setupProducts(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := fx.CreateCategory(ctx, "Books", nil)
	p := fx.CreateProduct(ctx, "Parenting Guide", cat.ID, 30, 10)

	mutated, err := store.Discontinue(ctx, p.ID)
	if err != nil {
		t.Fatalf("Discontinue failed: %v", err)
	}
	if mutated.Status != models.ProductDiscontinued || mutated.IsActive {
		t.Errorf("Discontinue returned: status=%q active=%v", mutated.Status, mutated.IsActive)
	}
	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("read-back failed: %v", err)
	}
	if got.Status != models.ProductDiscontinued || got.IsActive {
		t.Errorf("discontinued product: status=%q active=%v", got.Status, got.IsActive)
	}

	// A later restock must not resurrect a discontinued product's status.
	got, err = store.AdjustStock(ctx, p.ID, 5)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if got.Status != models.ProductDiscontinued {
		t.Errorf("restock changed discontinued status to %q", got.Status)
	}
}
