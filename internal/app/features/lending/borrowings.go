// internal/app/features/lending/borrowings.go
package lending

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	borrowingstore "github.com/thrivewell/thrivehub/internal/app/store/borrowings"
	toyunitstore "github.com/thrivewell/thrivehub/internal/app/store/toyunits"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"github.com/thrivewell/thrivehub/internal/app/system/mailer"
	"github.com/thrivewell/thrivehub/internal/app/system/sanitize"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultLoanDays is the loan period applied when no due date is given.
const DefaultLoanDays = 14

var borrowingListSpec = listquery.Spec{
	Collection:   "borrowings",
	FilterFields: []string{"toy_id", "unit_id", "borrower_id", "borrower_email", "status", "issue_date", "due_date", "created_at"},
	SearchFields: []string{"toy_name", "borrower_name", "borrower_email"},
	DefaultSort:  bson.D{{Key: "created_at", Value: -1}},
}

// borrowingView is the read shape: the loan plus its derived status.
type borrowingView struct {
	models.Borrowing
	EffectiveStatus string `json:"effective_status"`
}

func viewOf(b models.Borrowing, now time.Time) borrowingView {
	return borrowingView{Borrowing: b, EffectiveStatus: b.EffectiveStatus(now)}
}

// ServeBorrowingList handles GET /borrowings. A search term resolves through
// the borrowers collection first, then matches the loan's denormalized toy
// and borrower fields, so both current and issue-time names are searchable.
func (h *Handler) ServeBorrowingList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	term := strings.TrimSpace(params.Get("search"))
	params.Del("search")

	q, err := listquery.Parse(params, borrowingListSpec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, h.Log, "borrowings.list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if term != "" {
		borrowerIDs, err := h.Borrowers.FindIDsMatching(ctx, term)
		if err != nil {
			httpapi.ServerError(w, h.Log, "borrowings.list", err)
			return
		}
		search := borrowingstore.SearchFilter(term, borrowerIDs)
		if len(q.Filter) > 0 {
			q.Filter = bson.M{"$and": bson.A{q.Filter, search}}
		} else {
			q.Filter = search
		}
	}

	res, err := listquery.Run[models.Borrowing](ctx, h.Borrowings.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, h.Log, "borrowings.list", err)
		return
	}

	now := time.Now().UTC()
	out := make([]borrowingView, len(res.Items))
	for i, b := range res.Items {
		out[i] = viewOf(b, now)
	}
	httpapi.List(w, out, len(out), &res.Pagination)
}

// ServeBorrowingGet handles GET /borrowings/{id}.
func (h *Handler) ServeBorrowingGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Borrowing not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Borrowings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, borrowingstore.ErrBorrowingNotFound) {
			httpapi.NotFound(w, "Borrowing not found")
			return
		}
		httpapi.ServerError(w, h.Log, "borrowings.get", err)
		return
	}
	httpapi.OK(w, viewOf(b, time.Now().UTC()))
}

// ServeOverdueList handles GET /borrowings/overdue.
func (h *Handler) ServeOverdueList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	now := time.Now().UTC()
	items, err := h.Borrowings.ListOverdue(ctx, now)
	if err != nil {
		httpapi.ServerError(w, h.Log, "borrowings.overdue", err)
		return
	}
	out := make([]borrowingView, len(items))
	for i, b := range items {
		out[i] = viewOf(b, now)
	}
	httpapi.List(w, out, len(out), nil)
}

// HandleNotifyOverdue handles POST /borrowings/overdue/notify. Staff trigger
// it after reviewing the overdue list; each loan is reminded at most once.
func (h *Handler) HandleNotifyOverdue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	now := time.Now().UTC()
	overdue, err := h.Borrowings.ListOverdueUnnotified(ctx, now)
	if err != nil {
		httpapi.ServerError(w, h.Log, "borrowings.notify_overdue", err)
		return
	}

	notified := 0
	failed := 0
	for _, b := range overdue {
		msg := mailer.BuildOverdueNotice(mailer.OverdueNoticeData{
			SiteName:     h.SiteName,
			BorrowerName: b.BorrowerName,
			ToyName:      b.ToyName,
			UnitNumber:   b.UnitNumber,
			DueDate:      b.DueDate,
			DaysOverdue:  int(now.Sub(b.DueDate).Hours() / 24),
		})
		msg.To = b.BorrowerEmail
		if err := h.Mail.Send(ctx, msg); err != nil {
			failed++
			h.Log.Warn("overdue notice failed",
				zap.String("borrowing_id", b.ID.Hex()),
				zap.String("email", b.BorrowerEmail),
				zap.Error(err))
			continue
		}
		if err := h.Borrowings.MarkOverdueNotified(ctx, b.ID, now); err != nil {
			h.Log.Warn("overdue notice not recorded",
				zap.String("borrowing_id", b.ID.Hex()),
				zap.Error(err))
		}
		notified++
	}
	httpapi.OK(w, map[string]any{"notified": notified, "failed": failed})
}

type issueInput struct {
	UnitID       string `json:"unit_id"`
	ToyID        string `json:"toy_id"`
	BorrowerName string `json:"borrower_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	DueDate      string `json:"due_date"`
	Notes        string `json:"notes"`
}

var issueRules = []inputval.Rule{
	{Field: "unit_id", Kind: inputval.ObjectID},
	{Field: "toy_id", Kind: inputval.ObjectID},
	{Field: "borrower_name", Kind: inputval.String, Required: true, MinLen: 1, MaxLen: 200},
	{Field: "email", Kind: inputval.Email, Required: true},
	{Field: "phone", Kind: inputval.String, MaxLen: 50},
	{Field: "relationship", Kind: inputval.String, MaxLen: 50},
	{Field: "due_date", Kind: inputval.Date},
	{Field: "notes", Kind: inputval.String, MaxLen: 1000},
}

// HandleIssue handles POST /borrowings. The caller names either a specific
// unit or just a toy, in which case the lowest-numbered available unit is
// picked. The borrower record is found or created by email; the unit claim is
// atomic, so a unit can never be lent twice.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, issueRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in issueInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if in.UnitID == "" && in.ToyID == "" {
		httpapi.FailFields(w, []httpapi.FieldError{{Field: "unit_id", Message: "unit_id or toy_id is required"}})
		return
	}

	dueDate := time.Now().UTC().AddDate(0, 0, DefaultLoanDays)
	if in.DueDate != "" {
		parsed, _ := time.Parse(time.RFC3339, in.DueDate)
		dueDate = parsed.UTC()
	}
	if !dueDate.After(time.Now().UTC()) {
		httpapi.FailFields(w, []httpapi.FieldError{{Field: "due_date", Message: "due_date must be in the future"}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	unitID, _ := primitive.ObjectIDFromHex(in.UnitID)
	if in.UnitID == "" {
		toyID, _ := primitive.ObjectIDFromHex(in.ToyID)
		unit, err := h.Units.FirstAvailable(ctx, toyID)
		if err != nil {
			if errors.Is(err, toyunitstore.ErrNoAvailableUnit) {
				httpapi.Conflict(w, "No units of this toy are available")
				return
			}
			httpapi.ServerError(w, h.Log, "borrowings.issue", err)
			return
		}
		unitID = unit.ID
	}

	borrower, err := h.Borrowers.GetOrCreate(ctx, models.Borrower{
		Name:         sanitize.PlainText(in.BorrowerName),
		Email:        in.Email,
		Phone:        in.Phone,
		Relationship: in.Relationship,
	})
	if err != nil {
		httpapi.ServerError(w, h.Log, "borrowings.issue", err)
		return
	}

	b, err := h.Borrowings.Issue(ctx, borrowingstore.IssueParams{
		UnitID:   unitID,
		Borrower: borrower,
		DueDate:  dueDate,
		Notes:    sanitize.PlainText(in.Notes),
	})
	if err != nil {
		switch {
		case errors.Is(err, borrowingstore.ErrUnitNotFound):
			httpapi.NotFound(w, "Toy unit not found")
		case errors.Is(err, borrowingstore.ErrUnitUnavailable):
			httpapi.Conflict(w, "Toy unit is not available")
		default:
			httpapi.ServerError(w, h.Log, "borrowings.issue", err)
		}
		return
	}

	// Receipt email is best effort; the loan is already recorded.
	msg := mailer.BuildBorrowReceipt(mailer.BorrowReceiptData{
		SiteName:     h.SiteName,
		BorrowerName: b.BorrowerName,
		ToyName:      b.ToyName,
		UnitNumber:   b.UnitNumber,
		IssueDate:    b.IssueDate,
		DueDate:      b.DueDate,
	})
	msg.To = b.BorrowerEmail
	if err := h.Mail.Send(ctx, msg); err != nil {
		h.Log.Warn("borrow receipt email failed",
			zap.String("email", b.BorrowerEmail),
			zap.Error(err))
	}

	httpapi.Created(w, viewOf(b, time.Now().UTC()))
}

type returnInput struct {
	Condition string `json:"condition"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

var returnRules = []inputval.Rule{
	{Field: "condition", Kind: inputval.Enum, Allowed: models.UnitConditions},
	{Field: "status", Kind: inputval.Enum, Allowed: []string{models.BorrowingReturned, models.BorrowingLost, models.BorrowingDamaged}},
	{Field: "notes", Kind: inputval.String, MaxLen: 1000},
}

// HandleReturn handles POST /borrowings/{id}/return.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Borrowing not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, returnRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in returnInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	b, err := h.Borrowings.Return(ctx, borrowingstore.ReturnParams{
		BorrowingID: id,
		Condition:   in.Condition,
		Status:      in.Status,
		Notes:       sanitize.PlainText(in.Notes),
	})
	if err != nil {
		switch {
		case errors.Is(err, borrowingstore.ErrBorrowingNotFound):
			httpapi.NotFound(w, "Borrowing not found")
		case errors.Is(err, borrowingstore.ErrAlreadyReturned):
			httpapi.Fail(w, http.StatusBadRequest, "Borrowing already returned")
		default:
			httpapi.ServerError(w, h.Log, "borrowings.return", err)
		}
		return
	}

	h.notifyDamagedReturn(ctx, b)

	httpapi.OK(w, viewOf(b, time.Now().UTC()))
}

// notifyDamagedReturn alerts staff when a unit comes back damaged or needing
// repair. The return is already recorded; a failed send is only logged.
func (h *Handler) notifyDamagedReturn(ctx context.Context, b models.Borrowing) {
	if h.StaffEmail == "" {
		return
	}
	damaged := b.Status == models.BorrowingDamaged ||
		b.ConditionOnReturn == models.ConditionDamaged ||
		b.ConditionOnReturn == models.ConditionNeedsRepair
	if !damaged {
		return
	}
	returnedAt := time.Now().UTC()
	if b.ReturnDate != nil {
		returnedAt = *b.ReturnDate
	}
	msg := mailer.BuildDamageReport(mailer.DamageReportData{
		SiteName:     h.SiteName,
		ToyName:      b.ToyName,
		UnitNumber:   b.UnitNumber,
		BorrowerName: b.BorrowerName,
		Condition:    b.ConditionOnReturn,
		ReturnDate:   returnedAt,
		Notes:        b.Notes,
	})
	msg.To = h.StaffEmail
	if err := h.Mail.Send(ctx, msg); err != nil {
		h.Log.Warn("damage report email failed",
			zap.String("borrowing_id", b.ID.Hex()),
			zap.Error(err))
	}
}

type bulkReturnInput struct {
	BorrowingIDs []string `json:"borrowing_ids"`
	Condition    string   `json:"condition"`
}

var bulkReturnRules = []inputval.Rule{
	{Field: "borrowing_ids", Kind: inputval.ObjectIDList, Required: true},
	{Field: "condition", Kind: inputval.Enum, Allowed: models.UnitConditions},
}

// HandleBulkReturn handles POST /borrowings/bulk-return. Items succeed or
// fail independently; the response reports each outcome, and the envelope's
// success flag is true only when at least one item was returned.
func (h *Handler) HandleBulkReturn(w http.ResponseWriter, r *http.Request) {
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, bulkReturnRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in bulkReturnInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if len(in.BorrowingIDs) == 0 {
		httpapi.FailFields(w, []httpapi.FieldError{{Field: "borrowing_ids", Message: "borrowing_ids is required"}})
		return
	}
	if len(in.BorrowingIDs) > limits.MaxBulkReturnItems {
		httpapi.Fail(w, http.StatusBadRequest, "Too many items in one bulk return")
		return
	}

	ids := make([]primitive.ObjectID, len(in.BorrowingIDs))
	for i, raw := range in.BorrowingIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpapi.FailFields(w, []httpapi.FieldError{{Field: "borrowing_ids", Message: "invalid borrowing id"}})
			return
		}
		ids[i] = id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	results := h.Borrowings.BulkReturn(ctx, ids, in.Condition)
	returned := 0
	for _, res := range results {
		if res.Returned {
			returned++
		}
	}
	httpapi.Partial(w, returned > 0, map[string]any{
		"returned": returned,
		"failed":   len(results) - returned,
		"results":  results,
	})
}
