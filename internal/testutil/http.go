// internal/testutil/http.go
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/thrivewell/thrivehub/internal/app/system/authz"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call handlers directly, outside a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AdminPrincipal returns a principal with the admin role.
func AdminPrincipal() authz.Principal {
	return authz.Principal{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  authz.RoleAdmin,
	}
}

// StaffPrincipal returns a principal with the staff role.
func StaffPrincipal() authz.Principal {
	return authz.Principal{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Staff",
		Email: "staff@test.com",
		Role:  authz.RoleStaff,
	}
}

// SubscriberPrincipal returns a principal with the subscriber role.
func SubscriberPrincipal() authz.Principal {
	return authz.Principal{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Subscriber",
		Email: "subscriber@test.com",
		Role:  authz.RoleSubscriber,
	}
}

// WithPrincipal injects a principal into the request context, bypassing
// token resolution.
func WithPrincipal(r *http.Request, p authz.Principal) *http.Request {
	return authz.WithPrincipal(r, p)
}

// JSONRequest builds a request carrying a JSON-encoded body.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeEnvelope decodes the standard response envelope from a recorder.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httpapi.Envelope {
	t.Helper()
	var env httpapi.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return env
}

// DecodeData decodes the envelope's data field into out.
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response envelope: %v\nbody: %s", err, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("failed to decode response data: %v\nbody: %s", err, rec.Body.String())
	}
}
