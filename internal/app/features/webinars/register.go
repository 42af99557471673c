// internal/app/features/webinars/register.go
package webinars

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	webinarstore "github.com/thrivewell/thrivehub/internal/app/store/webinars"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/mailer"
	"github.com/thrivewell/thrivehub/internal/app/system/sanitize"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"github.com/thrivewell/thrivehub/internal/domain/models"
	"go.uber.org/zap"
)

type registerInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

var registerRules = []inputval.Rule{
	{Field: "email", Kind: inputval.Email, Required: true},
	{Field: "name", Kind: inputval.String, MaxLen: 200},
}

// HandleRegister handles POST /webinars/{id}/register. Capacity is enforced
// atomically in the store; a full webinar answers 400 and a repeat email 400
// with the duplicate message.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Webinar not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, registerRules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in registerInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	reg := models.Registrant{
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Name:  sanitize.PlainText(in.Name),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	webinar, err := h.Store.Register(ctx, id, reg)
	if err != nil {
		switch {
		case errors.Is(err, webinarstore.ErrWebinarNotFound):
			httpapi.NotFound(w, "Webinar not found")
		case errors.Is(err, webinarstore.ErrAlreadyRegistered):
			httpapi.Fail(w, http.StatusBadRequest, "Already registered for this webinar")
		case errors.Is(err, webinarstore.ErrWebinarFull):
			httpapi.Fail(w, http.StatusBadRequest, "Webinar is full")
		case errors.Is(err, webinarstore.ErrWebinarInactive):
			httpapi.Fail(w, http.StatusBadRequest, "Webinar is not open for registration")
		default:
			httpapi.ServerError(w, h.Log, "webinars.register", err)
		}
		return
	}

	// Confirmation email is best effort; registration already succeeded.
	msg := mailer.BuildWebinarConfirmation(mailer.WebinarConfirmationData{
		SiteName:     h.SiteName,
		AttendeeName: reg.Name,
		WebinarTitle: webinar.Title,
		StartAt:      webinar.StartAt,
	})
	msg.To = reg.Email
	if err := h.Mail.Send(ctx, msg); err != nil {
		h.Log.Warn("webinar confirmation email failed",
			zap.String("email", reg.Email),
			zap.Error(err))
	}

	httpapi.OK(w, webinar)
}

// HandleCancelRegistration handles POST /webinars/{id}/cancel.
func (h *Handler) HandleCancelRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Webinar not found")
		return
	}
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if errs := inputval.Validate(body, []inputval.Rule{
		{Field: "email", Kind: inputval.Email, Required: true},
	}); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return
	}
	var in registerInput
	if err := json.Unmarshal(body, &in); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	webinar, err := h.Store.CancelRegistration(ctx, id, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		switch {
		case errors.Is(err, webinarstore.ErrWebinarNotFound):
			httpapi.NotFound(w, "Webinar not found")
		case errors.Is(err, webinarstore.ErrNotRegistered):
			httpapi.Fail(w, http.StatusBadRequest, "Not registered for this webinar")
		default:
			httpapi.ServerError(w, h.Log, "webinars.cancel", err)
		}
		return
	}
	httpapi.OK(w, webinar)
}
