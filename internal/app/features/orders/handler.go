// internal/app/features/orders/handler.go
package orders

import (
	orderstore "github.com/thrivewell/thrivehub/internal/app/store/orders"
	productstore "github.com/thrivewell/thrivehub/internal/app/store/products"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the orders feature.
type Handler struct {
	Store    *orderstore.Store
	Products *productstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    orderstore.New(db),
		Products: productstore.New(db),
		Log:      logger,
	}
}
