// internal/app/system/httpapi/params.go
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PathID parses a chi URL parameter as a Mongo ObjectID. A malformed ID in
// the path is indistinguishable from a missing document, so handlers
// typically answer 404.
func PathID(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
