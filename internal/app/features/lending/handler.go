// internal/app/features/lending/handler.go

// Package lending is the toy-lending workflow: the toy catalog with its
// physical units, borrower records, and the issue/return lifecycle.
package lending

import (
	borrowerstore "github.com/thrivewell/thrivehub/internal/app/store/borrowers"
	borrowingstore "github.com/thrivewell/thrivehub/internal/app/store/borrowings"
	toystore "github.com/thrivewell/thrivehub/internal/app/store/toys"
	toyunitstore "github.com/thrivewell/thrivehub/internal/app/store/toyunits"
	"github.com/thrivewell/thrivehub/internal/app/system/mailer"
	"github.com/thrivewell/thrivehub/internal/app/system/media"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the lending feature.
type Handler struct {
	Toys       *toystore.Store
	Units      *toyunitstore.Store
	Borrowers  *borrowerstore.Store
	Borrowings *borrowingstore.Store
	Mail       mailer.Sender
	Media      *media.Uploader
	SiteName   string

	// StaffEmail receives damage alerts. Blank disables them.
	StaffEmail string

	Log *zap.Logger
}

func NewHandler(db *mongo.Database, mail mailer.Sender, uploader *media.Uploader, siteName, staffEmail string, logger *zap.Logger) *Handler {
	return &Handler{
		Toys:       toystore.New(db),
		Units:      toyunitstore.New(db),
		Borrowers:  borrowerstore.New(db),
		Borrowings: borrowingstore.New(db),
		Mail:       mail,
		Media:      uploader,
		SiteName:   siteName,
		StaffEmail: staffEmail,
		Log:        logger,
	}
}
