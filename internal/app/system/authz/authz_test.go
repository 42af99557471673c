// internal/app/system/authz/authz_test.go
package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thrivewell/thrivehub/internal/app/system/authz"
)

func staff() authz.Principal {
	return authz.Principal{
		ID:    "u-1001",
		Name:  "Sam Staff",
		Email: "sam@thrivewell.clinic",
		Role:  authz.RoleStaff,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	authn := authz.NewTokenAuthenticator("test-signing-key")
	token, err := authn.Issue(staff())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	p, ok := authn.Authenticate(req)
	if !ok {
		t.Fatal("valid token rejected")
	}
	if p.ID != "u-1001" || p.Role != authz.RoleStaff {
		t.Errorf("principal mismatch: %+v", p)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	authn := authz.NewTokenAuthenticator("test-signing-key")
	token, err := authn.Issue(staff())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	cases := map[string]string{
		"no header":      "",
		"not bearer":     "Basic abc",
		"empty token":    "Bearer ",
		"garbage token":  "Bearer not-a-token",
		"tampered token": "Bearer " + token + "x",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if _, ok := authn.Authenticate(req); ok {
			t.Errorf("%s: token accepted", name)
		}
	}
}

func TestAuthenticate_WrongKey(t *testing.T) {
	issuer := authz.NewTokenAuthenticator("key-one")
	verifier := authz.NewTokenAuthenticator("key-two")

	token, err := issuer.Issue(staff())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, ok := verifier.Authenticate(req); ok {
		t.Error("token signed with a different key accepted")
	}
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guard := authz.RequireRoles(authz.RoleAdmin, authz.RoleStaff)(next)

	// No principal: 401.
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rec.Code)
	}

	// Wrong role: 403.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = authz.WithPrincipal(req, authz.Principal{ID: "u-1", Role: authz.RoleSubscriber})
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("subscriber: got %d, want 403", rec.Code)
	}

	// Allowed role passes through.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = authz.WithPrincipal(req, staff())
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("staff: got %d, want 204", rec.Code)
	}
}

func TestLoadMiddleware(t *testing.T) {
	authn := authz.NewTokenAuthenticator("test-signing-key")
	token, err := authn.Issue(staff())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var got authz.Principal
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = authz.CurrentPrincipal(r)
	})
	h := authz.Load(authn)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !found || got.Email != "sam@thrivewell.clinic" {
		t.Errorf("principal not loaded: found=%v %+v", found, got)
	}

	// Anonymous requests pass through without a principal.
	found = false
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if found {
		t.Error("principal present on anonymous request")
	}
}
