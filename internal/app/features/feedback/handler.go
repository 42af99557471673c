// internal/app/features/feedback/handler.go
package feedback

import (
	coursestore "github.com/thrivewell/thrivehub/internal/app/store/courses"
	feedbackstore "github.com/thrivewell/thrivehub/internal/app/store/feedback"
	webinarstore "github.com/thrivewell/thrivehub/internal/app/store/webinars"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the feedback feature.
type Handler struct {
	Store    *feedbackstore.Store
	Courses  *coursestore.Store
	Webinars *webinarstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    feedbackstore.New(db),
		Courses:  coursestore.New(db),
		Webinars: webinarstore.New(db),
		Log:      logger,
	}
}
