// internal/app/features/lending/handler_test.go
package lending_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/thrivewell/thrivehub/internal/app/features/lending"
	"github.com/thrivewell/thrivehub/internal/app/system/indexes"
	"github.com/thrivewell/thrivehub/internal/app/system/mailer"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"github.com/thrivewell/thrivehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setupLending(t *testing.T) (*lending.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	h := lending.NewHandler(db, &mailer.NopSender{}, nil, "ThriveWell Clinic", "", zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func TestHandleIssue(t *testing.T) {
	h, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/borrowings", map[string]any{
		"unit_id":       unit.ID.Hex(),
		"borrower_name": "Pat Doe",
		"email":         "pat@example.com",
		"relationship":  "parent",
	})
	h.HandleIssue(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var b models.Borrowing
	testutil.DecodeData(t, rec, &b)
	if b.ToyName != "Wooden Blocks" || b.UnitNumber != 1 {
		t.Errorf("denormalized fields: toy=%q unit=%d", b.ToyName, b.UnitNumber)
	}
	if b.BorrowerEmail != "pat@example.com" {
		t.Errorf("borrower email: %q", b.BorrowerEmail)
	}
	wantDue := time.Now().UTC().Add(lending.DefaultLoanDays * 24 * time.Hour)
	if b.DueDate.Before(wantDue.Add(-time.Hour)) || b.DueDate.After(wantDue.Add(time.Hour)) {
		t.Errorf("default due date off: %v", b.DueDate)
	}
}

func TestHandleIssue_UnitTaken(t *testing.T) {
	h, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)

	body := map[string]any{
		"unit_id":       unit.ID.Hex(),
		"borrower_name": "Pat Doe",
		"email":         "pat@example.com",
	}
	rec := httptest.NewRecorder()
	h.HandleIssue(rec, testutil.JSONRequest(t, http.MethodPost, "/borrowings", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first issue: got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleIssue(rec, testutil.JSONRequest(t, http.MethodPost, "/borrowings", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second issue: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleIssue_PastDueDate(t *testing.T) {
	h, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/borrowings", map[string]any{
		"unit_id":       unit.ID.Hex(),
		"borrower_name": "Pat Doe",
		"email":         "pat@example.com",
		"due_date":      time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
	})
	h.HandleIssue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
	env := testutil.DecodeEnvelope(t, rec)
	if len(env.Errors) == 0 || env.Errors[0].Field != "due_date" {
		t.Errorf("expected a field error on due_date, got %+v", env.Errors)
	}
}

func TestHandleIssue_UnknownUnit(t *testing.T) {
	h, _ := setupLending(t)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/borrowings", map[string]any{
		"unit_id":       primitive.NewObjectID().Hex(),
		"borrower_name": "Pat Doe",
		"email":         "pat@example.com",
	})
	h.HandleIssue(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404 (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleReturn(t *testing.T) {
	h, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)

	rec := httptest.NewRecorder()
	h.HandleIssue(rec, testutil.JSONRequest(t, http.MethodPost, "/borrowings", map[string]any{
		"unit_id":       unit.ID.Hex(),
		"borrower_name": "Pat Doe",
		"email":         "pat@example.com",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("issue: got %d (%s)", rec.Code, rec.Body.String())
	}
	var issued models.Borrowing
	testutil.DecodeData(t, rec, &issued)

	rec = httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/borrowings/"+issued.ID.Hex()+"/return", map[string]any{
		"condition": models.ConditionFair,
	})
	req = testutil.WithChiURLParam(req, "id", issued.ID.Hex())
	h.HandleReturn(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("return: got %d (%s)", rec.Code, rec.Body.String())
	}
	var returned models.Borrowing
	testutil.DecodeData(t, rec, &returned)
	if returned.Status != models.BorrowingReturned || returned.ReturnDate == nil {
		t.Errorf("returned loan: status=%q return_date=%v", returned.Status, returned.ReturnDate)
	}

	// Second return of the same loan fails.
	rec = httptest.NewRecorder()
	req = testutil.JSONRequest(t, http.MethodPost, "/borrowings/"+issued.ID.Hex()+"/return", map[string]any{
		"condition": models.ConditionFair,
	})
	req = testutil.WithChiURLParam(req, "id", issued.ID.Hex())
	h.HandleReturn(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("double return: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
}

// captureSender records outbound mail for assertions.
type captureSender struct {
	sent []mailer.Email
}

func (c *captureSender) Send(_ context.Context, msg mailer.Email) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestHandleNotifyOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mail := &captureSender{}
	h := lending.NewHandler(db, mail, nil, "ThriveWell Clinic", "", zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)
	borrower := fx.CreateBorrower(ctx, "Pat Doe")
	fx.CreateBorrowing(ctx, toy, unit, borrower, time.Now().UTC().Add(-72*time.Hour))

	rec := httptest.NewRecorder()
	h.HandleNotifyOverdue(rec, httptest.NewRequest(http.MethodPost, "/borrowings/overdue/notify", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("notify: got %d (%s)", rec.Code, rec.Body.String())
	}
	var out struct {
		Notified int `json:"notified"`
		Failed   int `json:"failed"`
	}
	testutil.DecodeData(t, rec, &out)
	if out.Notified != 1 || out.Failed != 0 {
		t.Fatalf("result: %+v", out)
	}
	if len(mail.sent) != 1 || mail.sent[0].To != borrower.Email {
		t.Fatalf("mail: %+v", mail.sent)
	}

	// A second trigger skips already-notified loans.
	rec = httptest.NewRecorder()
	h.HandleNotifyOverdue(rec, httptest.NewRequest(http.MethodPost, "/borrowings/overdue/notify", nil))
	testutil.DecodeData(t, rec, &out)
	if out.Notified != 0 {
		t.Errorf("second trigger notified %d loans", out.Notified)
	}
	if len(mail.sent) != 1 {
		t.Errorf("second trigger sent mail: %d total", len(mail.sent))
	}
}

func TestHandleIssue_ByToy(t *testing.T) {
	h, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	fx.CreateToyUnit(ctx, toy.ID, 1)
	fx.CreateToyUnit(ctx, toy.ID, 2)

	body := map[string]any{
		"toy_id":        toy.ID.Hex(),
		"borrower_name": "Pat Doe",
		"email":         "pat@example.com",
	}

	rec := httptest.NewRecorder()
	h.HandleIssue(rec, testutil.JSONRequest(t, http.MethodPost, "/borrowings", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first issue: got %d (%s)", rec.Code, rec.Body.String())
	}
	var b models.Borrowing
	testutil.DecodeData(t, rec, &b)
	if b.UnitNumber != 1 {
		t.Errorf("first issue picked unit %d, want 1", b.UnitNumber)
	}

	rec = httptest.NewRecorder()
	h.HandleIssue(rec, testutil.JSONRequest(t, http.MethodPost, "/borrowings", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("second issue: got %d (%s)", rec.Code, rec.Body.String())
	}
	testutil.DecodeData(t, rec, &b)
	if b.UnitNumber != 2 {
		t.Errorf("second issue picked unit %d, want 2", b.UnitNumber)
	}

	rec = httptest.NewRecorder()
	h.HandleIssue(rec, testutil.JSONRequest(t, http.MethodPost, "/borrowings", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("third issue: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleIssue_NoUnitOrToy(t *testing.T) {
	h, _ := setupLending(t)

	rec := httptest.NewRecorder()
	h.HandleIssue(rec, testutil.JSONRequest(t, http.MethodPost, "/borrowings", map[string]any{
		"borrower_name": "Pat Doe",
		"email":         "pat@example.com",
	}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleReturn_DamagedNotifiesStaff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mail := &captureSender{}
	h := lending.NewHandler(db, mail, nil, "ThriveWell Clinic", "staff@example.com", zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)

	rec := httptest.NewRecorder()
	h.HandleIssue(rec, testutil.JSONRequest(t, http.MethodPost, "/borrowings", map[string]any{
		"unit_id":       unit.ID.Hex(),
		"borrower_name": "Pat Doe",
		"email":         "pat@example.com",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("issue: got %d (%s)", rec.Code, rec.Body.String())
	}
	var issued models.Borrowing
	testutil.DecodeData(t, rec, &issued)

	rec = httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/borrowings/"+issued.ID.Hex()+"/return", map[string]any{
		"condition": models.ConditionDamaged,
		"status":    models.BorrowingDamaged,
		"notes":     "wheel snapped off",
	})
	req = testutil.WithChiURLParam(req, "id", issued.ID.Hex())
	h.HandleReturn(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("return: got %d (%s)", rec.Code, rec.Body.String())
	}

	// The borrow receipt from the issue is first; the damage alert follows.
	if len(mail.sent) != 2 {
		t.Fatalf("mail sent: %d, want 2", len(mail.sent))
	}
	alert := mail.sent[1]
	if alert.To != "staff@example.com" {
		t.Errorf("alert recipient: %q", alert.To)
	}
	if !strings.Contains(alert.Subject, "damaged") {
		t.Errorf("alert subject: %q", alert.Subject)
	}
}

func TestServeLendingSearch(t *testing.T) {
	h, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	unit := fx.CreateToyUnit(ctx, toy.ID, 1)
	borrower := fx.CreateBorrower(ctx, "Pat Doe")
	fx.CreateBorrowing(ctx, toy, unit, borrower, time.Now().UTC().Add(7*24*time.Hour))
	fx.CreateToy(ctx, "Puzzle Cube", "problem solving")

	search := func(q string) (int, struct {
		MatchType  string             `json:"match_type"`
		Toy        *models.Toy        `json:"toy"`
		Borrowings []models.Borrowing `json:"borrowings"`
	}) {
		rec := httptest.NewRecorder()
		h.ServeLendingSearch(rec, httptest.NewRequest(http.MethodGet, "/borrowings/search?q="+url.QueryEscape(q), nil))
		var out struct {
			MatchType  string             `json:"match_type"`
			Toy        *models.Toy        `json:"toy"`
			Borrowings []models.Borrowing `json:"borrowings"`
		}
		if rec.Code == http.StatusOK {
			testutil.DecodeData(t, rec, &out)
		}
		return rec.Code, out
	}

	code, out := search("pat")
	if code != http.StatusOK || out.MatchType != "borrower" {
		t.Fatalf("borrower search: code=%d type=%q", code, out.MatchType)
	}
	if len(out.Borrowings) != 1 || out.Borrowings[0].BorrowerEmail != borrower.Email {
		t.Errorf("borrower loans: %+v", out.Borrowings)
	}

	code, out = search("wooden")
	if code != http.StatusOK || out.MatchType != "toy" {
		t.Fatalf("toy search: code=%d type=%q", code, out.MatchType)
	}
	if out.Toy == nil || out.Toy.Name != "Wooden Blocks" || len(out.Borrowings) != 1 {
		t.Errorf("toy search result: toy=%+v loans=%d", out.Toy, len(out.Borrowings))
	}

	// A toy with no open loans still comes back, with an empty loan list.
	code, out = search("puzzle")
	if code != http.StatusOK || out.MatchType != "toy" {
		t.Fatalf("idle toy search: code=%d type=%q", code, out.MatchType)
	}
	if out.Toy == nil || out.Toy.Name != "Puzzle Cube" || len(out.Borrowings) != 0 {
		t.Errorf("idle toy result: toy=%+v loans=%d", out.Toy, len(out.Borrowings))
	}

	code, out = search("zzz")
	if code != http.StatusOK || out.MatchType != "none" {
		t.Fatalf("no-match search: code=%d type=%q", code, out.MatchType)
	}

	rec := httptest.NewRecorder()
	h.ServeLendingSearch(rec, httptest.NewRequest(http.MethodGet, "/borrowings/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty term: got %d, want 400", rec.Code)
	}
}

func TestServeLendingSearch_TwoBorrowers(t *testing.T) {
	h, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	pat := fx.CreateBorrower(ctx, "Pat Doe")
	sam := fx.CreateBorrower(ctx, "Sam Doe")
	due := time.Now().UTC().Add(7 * 24 * time.Hour)
	fx.CreateBorrowing(ctx, toy, fx.CreateToyUnit(ctx, toy.ID, 1), pat, due)
	fx.CreateBorrowing(ctx, toy, fx.CreateToyUnit(ctx, toy.ID, 2), pat, due)
	fx.CreateBorrowing(ctx, toy, fx.CreateToyUnit(ctx, toy.ID, 3), sam, due)

	rec := httptest.NewRecorder()
	h.ServeLendingSearch(rec, httptest.NewRequest(http.MethodGet, "/borrowings/search?q=doe", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("search: got %d (%s)", rec.Code, rec.Body.String())
	}
	var out struct {
		MatchType  string             `json:"match_type"`
		Borrowings []models.Borrowing `json:"borrowings"`
	}
	testutil.DecodeData(t, rec, &out)
	if out.MatchType != "borrower" {
		t.Fatalf("match type: %q", out.MatchType)
	}
	// Both Does match the term, but only the borrower holding the most open
	// loans comes back.
	if len(out.Borrowings) != 2 {
		t.Fatalf("loans: got %d, want 2", len(out.Borrowings))
	}
	for _, b := range out.Borrowings {
		if b.BorrowerEmail != pat.Email {
			t.Errorf("loan for %q mixed into %q's result", b.BorrowerEmail, pat.Email)
		}
	}
}

func TestHandleBulkReturn_Empty(t *testing.T) {
	h, _ := setupLending(t)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/borrowings/bulk-return", map[string]any{
		"borrowing_ids": []string{},
	})
	h.HandleBulkReturn(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleBulkReturn_SuccessFlag(t *testing.T) {
	h, fx := setupLending(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	toy := fx.CreateToy(ctx, "Wooden Blocks", "fine motor")
	due := time.Now().UTC().Add(7 * 24 * time.Hour)
	borrower := fx.CreateBorrower(ctx, "Pat Doe")
	first := fx.CreateBorrowing(ctx, toy, fx.CreateToyUnit(ctx, toy.ID, 1), borrower, due)
	second := fx.CreateBorrowing(ctx, toy, fx.CreateToyUnit(ctx, toy.ID, 2), borrower, due)

	bulk := func(ids ...string) (*httptest.ResponseRecorder, struct {
		Returned int `json:"returned"`
		Failed   int `json:"failed"`
	}) {
		rec := httptest.NewRecorder()
		req := testutil.JSONRequest(t, http.MethodPost, "/borrowings/bulk-return", map[string]any{
			"borrowing_ids": ids,
			"condition":     models.ConditionGood,
		})
		h.HandleBulkReturn(rec, req)
		var out struct {
			Returned int `json:"returned"`
			Failed   int `json:"failed"`
		}
		if rec.Code == http.StatusOK {
			testutil.DecodeData(t, rec, &out)
		}
		return rec, out
	}

	rec, out := bulk(first.ID.Hex())
	if rec.Code != http.StatusOK || out.Returned != 1 {
		t.Fatalf("first pass: code=%d out=%+v (%s)", rec.Code, out, rec.Body.String())
	}
	if env := testutil.DecodeEnvelope(t, rec); !env.Success {
		t.Error("success flag false after a clean pass")
	}

	// One already returned, one still open.
	rec, out = bulk(first.ID.Hex(), second.ID.Hex())
	if rec.Code != http.StatusOK || out.Returned != 1 || out.Failed != 1 {
		t.Fatalf("mixed pass: code=%d out=%+v (%s)", rec.Code, out, rec.Body.String())
	}
	if env := testutil.DecodeEnvelope(t, rec); !env.Success {
		t.Error("success flag false on a partial pass")
	}

	// Everything already returned.
	rec, out = bulk(first.ID.Hex(), second.ID.Hex())
	if rec.Code != http.StatusOK || out.Returned != 0 || out.Failed != 2 {
		t.Fatalf("dead pass: code=%d out=%+v (%s)", rec.Code, out, rec.Body.String())
	}
	if env := testutil.DecodeEnvelope(t, rec); env.Success {
		t.Error("success flag true when no item was returned")
	}
}
