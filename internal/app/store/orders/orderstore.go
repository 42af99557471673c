// internal/app/store/orders/orderstore.go
package orderstore

import (
	"context"
	"errors"
	"time"

	"github.com/thrivewell/thrivehub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrOrderNotFound = errors.New("order not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("orders")}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, err
	}
	return o, nil
}

func (s *Store) Create(ctx context.Context, o models.Order) (models.Order, error) {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	var total float64
	for _, item := range o.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	o.Total = total
	o.CreatedAt = now
	o.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, o); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}
