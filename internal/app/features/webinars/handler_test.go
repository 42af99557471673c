// internal/app/features/webinars/handler_test.go
package webinars_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thrivewell/thrivehub/internal/app/features/webinars"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.uber.org/zap"
)

func TestServeGet_EmbedsRating(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := webinars.NewHandler(db, nil, "ThriveWell Clinic", zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wb := fx.CreateWebinar(ctx, "Sensory Play at Home", 50)
	fx.CreateFeedback(ctx, "pat@example.com", models.FeedbackItemWebinar, wb.ID, 5)
	fx.CreateFeedback(ctx, "sam@example.com", models.FeedbackItemWebinar, wb.ID, 4)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webinars/"+wb.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", wb.ID.Hex())
	h.ServeGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var out struct {
		models.Webinar
		Rating      float64 `json:"rating"`
		RatingCount int     `json:"rating_count"`
	}
	testutil.DecodeData(t, rec, &out)
	if out.ID != wb.ID {
		t.Fatalf("webinar id: got %s, want %s", out.ID.Hex(), wb.ID.Hex())
	}
	if out.Rating != 4.5 || out.RatingCount != 2 {
		t.Errorf("rating summary: got %.1f over %d", out.Rating, out.RatingCount)
	}
}
