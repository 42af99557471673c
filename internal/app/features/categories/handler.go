// internal/app/features/categories/handler.go
package categories

import (
	categorystore "github.com/thrivewell/thrivehub/internal/app/store/categories"
	productstore "github.com/thrivewell/thrivehub/internal/app/store/products"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the categories feature.
type Handler struct {
	Store    *categorystore.Store
	Products *productstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    categorystore.New(db),
		Products: productstore.New(db),
		Log:      logger,
	}
}
