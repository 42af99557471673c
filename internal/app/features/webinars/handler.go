// internal/app/features/webinars/handler.go
package webinars

import (
	feedbackstore "github.com/thrivewell/thrivehub/internal/app/store/feedback"
	webinarstore "github.com/thrivewell/thrivehub/internal/app/store/webinars"
	"github.com/thrivewell/thrivehub/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the webinars feature.
type Handler struct {
	Store    *webinarstore.Store
	Feedback *feedbackstore.Store
	Mail     mailer.Sender
	SiteName string
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, mail mailer.Sender, siteName string, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    webinarstore.New(db),
		Feedback: feedbackstore.New(db),
		Mail:     mail,
		SiteName: siteName,
		Log:      logger,
	}
}
