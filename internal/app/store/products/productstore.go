// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"errors"
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
	products *mongo.Collection
	orders   *mongo.Collection
}

var (
	ErrDuplicateSKU    = errors.New("a product with this SKU already exists")
	ErrProductNotFound = errors.New("product not found")
)

func New(db *mongo.Database) *Store {
	return &Store{
		products: db.Collection("products"),
		orders:   db.Collection("orders"),
	}
}

func (s *Store) Collection() *mongo.Collection { return s.products }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	if err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	if p.Status == "" {
		p.Status = models.ProductActive
	}
	if p.Stock == 0 {
		p.Status = models.ProductOutOfStock
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.products.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Product{}, ErrDuplicateSKU
		}
		return models.Product{}, err
	}
	return p, nil
}

// Update applies a partial update and returns the updated document. Stock
// changes keep the status in step: zero stock moves an active product to
// out_of_stock and restocking moves it back. Discontinued products stay
// discontinued.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Product, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	if name, ok := set["name"].(string); ok {
		set["name_ci"] = text.Fold(name)
	}
	if stock, ok := set["stock"]; ok && current.Status != models.ProductDiscontinued {
		n, isInt := stock.(int)
		if isInt {
			if n == 0 {
				set["status"] = models.ProductOutOfStock
			} else {
				set["status"] = models.ProductActive
			}
		}
	}
	set["updated_at"] = time.Now().UTC()

	res := s.products.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var p models.Product
	if err := res.Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, ErrProductNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.Product{}, ErrDuplicateSKU
		}
		return models.Product{}, err
	}
	return p, nil
}

// AdjustStock applies a signed delta to a product's stock and reconciles its
// status. The filter requires sufficient stock for negative deltas so the
// count can never go below zero.
func (s *Store) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) (models.Product, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}
	res := s.products.FindOneAndUpdate(ctx, filter,
		bson.M{
			"$inc": bson.M{"stock": delta},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var p models.Product
	if err := res.Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	// Reconcile status after the stock change.
	if p.Status != models.ProductDiscontinued {
		want := models.ProductActive
		if p.Stock == 0 {
			want = models.ProductOutOfStock
		}
		if p.Status != want {
			_, err := s.products.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": want}})
			if err != nil {
				return models.Product{}, err
			}
			p.Status = want
		}
	}
	return p, nil
}

// AddImagePath appends a stored image path and returns the updated product.
func (s *Store) AddImagePath(ctx context.Context, id primitive.ObjectID, path string) (models.Product, error) {
	res := s.products.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"image_paths": path},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var p models.Product
	if err := res.Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

// CountByCategory returns how many products sit in a category. Used by the
// category delete guard.
func (s *Store) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return s.products.CountDocuments(ctx, bson.M{"category_id": categoryID})
}

// ReferencedByOrders reports whether any order line names this product.
func (s *Store) ReferencedByOrders(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.orders.CountDocuments(ctx, bson.M{"items.product_id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Discontinue soft-deletes a product that order history still references.
func (s *Store) Discontinue(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	res := s.products.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":     models.ProductDiscontinued,
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var p models.Product
	if err := res.Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

// Delete removes a product by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
