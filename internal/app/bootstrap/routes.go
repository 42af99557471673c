// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	catalogfeature "github.com/thrivewell/thrivehub/internal/app/features/catalog"
	categoriesfeature "github.com/thrivewell/thrivehub/internal/app/features/categories"
	coursesfeature "github.com/thrivewell/thrivehub/internal/app/features/courses"
	feedbackfeature "github.com/thrivewell/thrivehub/internal/app/features/feedback"
	healthfeature "github.com/thrivewell/thrivehub/internal/app/features/health"
	lendingfeature "github.com/thrivewell/thrivehub/internal/app/features/lending"
	ordersfeature "github.com/thrivewell/thrivehub/internal/app/features/orders"
	productsfeature "github.com/thrivewell/thrivehub/internal/app/features/products"
	webinarsfeature "github.com/thrivewell/thrivehub/internal/app/features/webinars"
	"github.com/thrivewell/thrivehub/internal/app/system/authz"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/media"
	"github.com/thrivewell/thrivehub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. ThriveHub builds the shared collaborators
// (token authenticator, mail sender, media uploader) and mounts one feature
// router per API area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	authn := authz.NewTokenAuthenticator(appCfg.AuthKey)

	mail := buildMailSender(appCfg, logger)

	fileStore, err := storage.NewLocal(storage.LocalConfig{BasePath: appCfg.StorageLocalPath, BaseURL: appCfg.StorageLocalURL})
	if err != nil {
		logger.Error("file storage init failed", zap.Error(err))
		return nil, err
	}
	uploader := media.NewUploader(fileStore)

	db := deps.MongoDatabase

	r := chi.NewRouter()

	r.Use(httpapi.Recoverer(logger))

	// Resolves the bearer token, if any, into a request principal. Routes
	// that need a role gate add authz.RequireRoles themselves.
	r.Use(authz.Load(authn))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Uploaded files (product, toy, gallery, and recipe images)
	r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))

	// Shop
	categoriesHandler := categoriesfeature.NewHandler(db, logger)
	r.Mount("/categories", categoriesfeature.Routes(categoriesHandler))

	productsHandler := productsfeature.NewHandler(db, uploader, logger)
	r.Mount("/products", productsfeature.Routes(productsHandler))

	// Anonymous submissions (orders, registrations, feedback) are rate
	// limited per client IP.
	submitLimit := ratelimit.New(30, time.Minute)

	ordersHandler := ordersfeature.NewHandler(db, logger)
	r.With(submitLimit.Middleware).Mount("/orders", ordersfeature.Routes(ordersHandler))

	// Learning
	coursesHandler := coursesfeature.NewHandler(db, logger)
	r.Mount("/courses", coursesfeature.Routes(coursesHandler))

	webinarsHandler := webinarsfeature.NewHandler(db, mail, appCfg.SiteName, logger)
	r.With(submitLimit.Middleware).Mount("/webinars", webinarsfeature.Routes(webinarsHandler))

	feedbackHandler := feedbackfeature.NewHandler(db, logger)
	r.With(submitLimit.Middleware).Mount("/feedback", feedbackfeature.Routes(feedbackHandler))

	// Toy lending
	lendingHandler := lendingfeature.NewHandler(db, mail, uploader, appCfg.SiteName, appCfg.StaffNotifyEmail, logger)
	r.Mount("/toys", lendingfeature.ToyRoutes(lendingHandler))
	r.Mount("/borrowings", lendingfeature.BorrowingRoutes(lendingHandler))
	r.Mount("/borrowers", lendingfeature.BorrowerRoutes(lendingHandler))

	// Content catalog
	catalogHandler := catalogfeature.NewHandler(db, uploader, logger)
	r.Mount("/gallery", catalogfeature.GalleryRoutes(catalogHandler))
	r.Mount("/services", catalogfeature.ServiceRoutes(catalogHandler))
	r.Mount("/recipes", catalogfeature.RecipeRoutes(catalogHandler))
	r.Mount("/workshops", catalogfeature.WorkshopRoutes(catalogHandler))
	r.Mount("/detox-plans", catalogfeature.DetoxPlanRoutes(catalogHandler))
	r.Mount("/inventory", catalogfeature.InventoryRoutes(catalogHandler))
	r.Mount("/meetings", catalogfeature.MeetingRoutes(catalogHandler))

	return r, nil
}
