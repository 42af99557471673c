// internal/app/features/catalog/handler.go

// Package catalog serves the simple content aggregates (gallery, services,
// recipes, workshops, detox plans, inventory, meetings) through one generic
// resource controller. Aggregates with real workflow (products, orders,
// lending) have their own feature packages.
package catalog

import (
	catalogstore "github.com/thrivewell/thrivehub/internal/app/store/catalog"
	productstore "github.com/thrivewell/thrivehub/internal/app/store/products"
	"github.com/thrivewell/thrivehub/internal/app/system/media"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Gallery    *catalogstore.Store[models.GalleryItem]
	Services   *catalogstore.Store[models.Service]
	Recipes    *catalogstore.Store[models.Recipe]
	Workshops  *catalogstore.Store[models.Workshop]
	DetoxPlans *catalogstore.Store[models.DetoxPlan]
	Inventory  *catalogstore.Store[models.InventoryRecord]
	Meetings   *catalogstore.Store[models.Meeting]

	Products *productstore.Store
	Media    *media.Uploader
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, uploader *media.Uploader, logger *zap.Logger) *Handler {
	return &Handler{
		Gallery:    catalogstore.New[models.GalleryItem](db, catalogstore.Descriptor{Collection: "gallery_items", FoldField: "title"}),
		Services:   catalogstore.New[models.Service](db, catalogstore.Descriptor{Collection: "services", FoldField: "name"}),
		Recipes:    catalogstore.New[models.Recipe](db, catalogstore.Descriptor{Collection: "recipes", FoldField: "title"}),
		Workshops:  catalogstore.New[models.Workshop](db, catalogstore.Descriptor{Collection: "workshops", FoldField: "title"}),
		DetoxPlans: catalogstore.New[models.DetoxPlan](db, catalogstore.Descriptor{Collection: "detox_plans", FoldField: "title"}),
		Inventory:  catalogstore.New[models.InventoryRecord](db, catalogstore.Descriptor{Collection: "inventory"}),
		Meetings:   catalogstore.New[models.Meeting](db, catalogstore.Descriptor{Collection: "meetings"}),
		Products:   productstore.New(db),
		Media:      uploader,
		Log:        logger,
	}
}
