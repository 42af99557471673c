// internal/app/features/lending/search.go
package lending

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	toystore "github.com/thrivewell/thrivehub/internal/app/store/toys"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
)

// searchResult is the smart-search response. MatchType says which phase
// matched; the toy fields are only set for toy matches.
type searchResult struct {
	MatchType  string          `json:"match_type"`
	Toy        *models.Toy     `json:"toy,omitempty"`
	Borrowings []borrowingView `json:"borrowings"`
}

// ServeLendingSearch handles GET /borrowings/search. The term is tried
// against borrowers first (name, email, phone); a hit returns the open loans
// of the single richest-matching borrower. Otherwise it falls back to the toy
// catalog and returns the best matching toy with its open loans, which may be
// none.
func (h *Handler) ServeLendingSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		httpapi.FailFields(w, []httpapi.FieldError{{Field: "q", Message: "q is required"}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	now := time.Now().UTC()

	borrowerIDs, err := h.Borrowers.FindIDsMatching(ctx, term)
	if err != nil {
		httpapi.ServerError(w, h.Log, "borrowings.search", err)
		return
	}
	if len(borrowerIDs) > 0 {
		loans, err := h.Borrowings.ListActiveByBorrowerIDs(ctx, borrowerIDs)
		if err != nil {
			httpapi.ServerError(w, h.Log, "borrowings.search", err)
			return
		}
		if len(loans) > 0 {
			httpapi.OK(w, searchResult{MatchType: "borrower", Borrowings: views(richestBorrower(loans), now)})
			return
		}
	}

	toy, err := h.Toys.FindBestMatch(ctx, term)
	if err != nil {
		if errors.Is(err, toystore.ErrToyNotFound) {
			httpapi.OK(w, searchResult{MatchType: "none", Borrowings: []borrowingView{}})
			return
		}
		httpapi.ServerError(w, h.Log, "borrowings.search", err)
		return
	}
	loans, err := h.Borrowings.ListActiveByToy(ctx, toy.ID)
	if err != nil {
		httpapi.ServerError(w, h.Log, "borrowings.search", err)
		return
	}
	httpapi.OK(w, searchResult{MatchType: "toy", Toy: &toy, Borrowings: views(loans, now)})
}

// richestBorrower narrows a multi-borrower match (shared surnames and the
// like) down to one borrower's loans. Grouping is by borrower email; the
// borrower holding the most active loans wins, earliest due date breaking
// ties through the input order.
func richestBorrower(loans []models.Borrowing) []models.Borrowing {
	byEmail := make(map[string][]models.Borrowing)
	var order []string
	for _, b := range loans {
		if _, seen := byEmail[b.BorrowerEmail]; !seen {
			order = append(order, b.BorrowerEmail)
		}
		byEmail[b.BorrowerEmail] = append(byEmail[b.BorrowerEmail], b)
	}
	best := order[0]
	for _, email := range order[1:] {
		if len(byEmail[email]) > len(byEmail[best]) {
			best = email
		}
	}
	return byEmail[best]
}

func views(items []models.Borrowing, now time.Time) []borrowingView {
	out := make([]borrowingView, len(items))
	for i, b := range items {
		out[i] = viewOf(b, now)
	}
	return out
}
