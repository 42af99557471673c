// internal/app/features/lending/units.go
package lending

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	toystore "github.com/thrivewell/thrivehub/internal/app/store/toys"
	toyunitstore "github.com/thrivewell/thrivehub/internal/app/store/toyunits"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/sanitize"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
)

// ServeUnitList handles GET /toys/{id}/units.
func (h *Handler) ServeUnitList(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Toy not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Toys.GetByID(ctx, id); err != nil {
		if errors.Is(err, toystore.ErrToyNotFound) {
			httpapi.NotFound(w, "Toy not found")
			return
		}
		httpapi.ServerError(w, h.Log, "units.list", err)
		return
	}

	units, err := h.Units.ListByToy(ctx, id)
	if err != nil {
		httpapi.ServerError(w, h.Log, "units.list", err)
		return
	}
	httpapi.List(w, units, len(units), nil)
}

type unitInput struct {
	Condition string `json:"condition"`
	Notes     string `json:"notes"`
}

var unitCreateRules = []inputval.Rule{
	{Field: "condition", Kind: inputval.Enum, Required: true, Allowed: models.UnitConditions},
	{Field: "notes", Kind: inputval.String, MaxLen: 1000},
}

// HandleUnitCreate handles POST /toys/{id}/units: registering one more
// physical copy. The toy's counters are recomputed afterwards.
func (h *Handler) HandleUnitCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Toy not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, unitCreateRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in unitInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Toys.GetByID(ctx, id); err != nil {
		if errors.Is(err, toystore.ErrToyNotFound) {
			httpapi.NotFound(w, "Toy not found")
			return
		}
		httpapi.ServerError(w, h.Log, "units.create", err)
		return
	}

	unit, err := h.Units.Create(ctx, id, in.Condition, sanitize.PlainText(in.Notes))
	if err != nil {
		httpapi.ServerError(w, h.Log, "units.create", err)
		return
	}
	if _, err := h.Toys.RecomputeUnitCounts(ctx, id); err != nil {
		httpapi.ServerError(w, h.Log, "units.create", err)
		return
	}
	httpapi.Created(w, unit)
}

var unitUpdateRules = []inputval.Rule{
	{Field: "condition", Kind: inputval.Enum, Required: true, Allowed: models.UnitConditions},
	{Field: "notes", Kind: inputval.String, MaxLen: 1000},
}

// HandleUnitUpdate handles PUT /toys/units/{unitID}: condition and notes.
func (h *Handler) HandleUnitUpdate(w http.ResponseWriter, r *http.Request) {
	unitID, ok := httpapi.PathID(r, "unitID")
	if !ok {
		httpapi.NotFound(w, "Toy unit not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, unitUpdateRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in unitInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	unit, err := h.Units.UpdateCondition(ctx, unitID, in.Condition, sanitize.PlainText(in.Notes))
	if err != nil {
		if errors.Is(err, toyunitstore.ErrUnitNotFound) {
			httpapi.NotFound(w, "Toy unit not found")
			return
		}
		httpapi.ServerError(w, h.Log, "units.update", err)
		return
	}
	httpapi.OK(w, unit)
}

// HandleUnitDelete handles DELETE /toys/units/{unitID}. Units on loan cannot
// be deleted.
func (h *Handler) HandleUnitDelete(w http.ResponseWriter, r *http.Request) {
	unitID, ok := httpapi.PathID(r, "unitID")
	if !ok {
		httpapi.NotFound(w, "Toy unit not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	unit, err := h.Units.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, toyunitstore.ErrUnitNotFound) {
			httpapi.NotFound(w, "Toy unit not found")
			return
		}
		httpapi.ServerError(w, h.Log, "units.delete", err)
		return
	}

	if err := h.Units.Delete(ctx, unitID); err != nil {
		switch {
		case errors.Is(err, toyunitstore.ErrUnitNotFound):
			httpapi.NotFound(w, "Toy unit not found")
		case errors.Is(err, toyunitstore.ErrUnitOnLoan):
			httpapi.Fail(w, http.StatusBadRequest, "Toy unit is out on loan")
		default:
			httpapi.ServerError(w, h.Log, "units.delete", err)
		}
		return
	}
	if _, err := h.Toys.RecomputeUnitCounts(ctx, unit.ToyID); err != nil {
		httpapi.ServerError(w, h.Log, "units.delete", err)
		return
	}
	httpapi.OK(w, map[string]any{"deleted": true})
}
