// internal/app/features/courses/handler.go
package courses

import (
	coursestore "github.com/thrivewell/thrivehub/internal/app/store/courses"
	feedbackstore "github.com/thrivewell/thrivehub/internal/app/store/feedback"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the courses feature.
type Handler struct {
	Store    *coursestore.Store
	Feedback *feedbackstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    coursestore.New(db),
		Feedback: feedbackstore.New(db),
		Log:      logger,
	}
}
