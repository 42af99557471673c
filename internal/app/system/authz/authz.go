// internal/app/system/authz/authz.go

// Package authz resolves the calling principal and enforces role checks.
// Authentication itself is an external collaborator: anything that can map a
// request onto a Principal satisfies Authenticator. The default
// implementation verifies a signed bearer token minted by the clinic's
// identity service.
package authz

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
)

// Roles understood by route guards.
const (
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleSubscriber = "subscriber"
	RoleUser       = "user"
)

// Principal is the authenticated caller.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Authenticator maps a request onto a Principal or reports that it cannot.
type Authenticator interface {
	Authenticate(r *http.Request) (Principal, bool)
}

type ctxKey struct{}

// WithPrincipal returns a request carrying p in its context. Exposed for
// tests and middleware.
func WithPrincipal(r *http.Request, p Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, p))
}

// CurrentPrincipal returns the principal stored by the middleware.
func CurrentPrincipal(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(ctxKey{}).(Principal)
	return p, ok
}

// IsAdmin reports whether the caller is an admin.
func IsAdmin(r *http.Request) bool {
	p, ok := CurrentPrincipal(r)
	return ok && p.Role == RoleAdmin
}

// Load resolves the principal (if any) into the request context. It never
// rejects; guards do that.
func Load(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := a.Authenticate(r); ok {
				r = WithPrincipal(r, p)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles rejects requests whose principal is missing (401) or whose
// role is not in the allowed set (403).
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := CurrentPrincipal(r)
			if !ok {
				httpapi.Unauthorized(w)
				return
			}
			if len(allowed) > 0 && !allowed[p.Role] {
				httpapi.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenAuthenticator verifies "Authorization: Bearer <token>" where the token
// is a securecookie-signed Principal issued by the identity collaborator.
type TokenAuthenticator struct {
	codec *securecookie.SecureCookie
}

// tokenName is the securecookie "name" the token is signed under; the issuer
// and this verifier must agree on it.
const tokenName = "thrivehub-token"

// NewTokenAuthenticator builds the default verifier from the shared signing
// key. The key must match the one the identity service signs with.
func NewTokenAuthenticator(signingKey string) *TokenAuthenticator {
	sc := securecookie.New([]byte(signingKey), nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &TokenAuthenticator{codec: sc}
}

// Authenticate implements Authenticator.
func (t *TokenAuthenticator) Authenticate(r *http.Request) (Principal, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return Principal{}, false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return Principal{}, false
	}
	var p Principal
	if err := t.codec.Decode(tokenName, raw, &p); err != nil {
		return Principal{}, false
	}
	if p.ID == "" || p.Role == "" {
		return Principal{}, false
	}
	p.Role = strings.ToLower(p.Role)
	return p, true
}

// Issue signs a principal into a bearer token. Used by tests and by the dev
// token tool; production tokens come from the identity collaborator.
func (t *TokenAuthenticator) Issue(p Principal) (string, error) {
	return t.codec.Encode(tokenName, p)
}
