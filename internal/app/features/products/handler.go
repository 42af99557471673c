// internal/app/features/products/handler.go
package products

import (
	categorystore "github.com/thrivewell/thrivehub/internal/app/store/categories"
	productstore "github.com/thrivewell/thrivehub/internal/app/store/products"
	"github.com/thrivewell/thrivehub/internal/app/system/media"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the products feature.
type Handler struct {
	Store      *productstore.Store
	Categories *categorystore.Store
	Media      *media.Uploader
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, uploader *media.Uploader, logger *zap.Logger) *Handler {
	return &Handler{
		Store:      productstore.New(db),
		Categories: categorystore.New(db),
		Media:      uploader,
		Log:        logger,
	}
}
