// internal/app/system/ratelimit/ratelimit_test.go
package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thrivewell/thrivehub/internal/app/system/ratelimit"
)

func TestAllow(t *testing.T) {
	l := ratelimit.New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d denied inside limit", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("request over limit allowed")
	}
	// Other keys have their own window.
	if !l.Allow("10.0.0.2") {
		t.Error("unrelated key denied")
	}

	l.Reset("10.0.0.1")
	if !l.Allow("10.0.0.1") {
		t.Error("request denied after reset")
	}
}

func TestMiddleware(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/feedback", nil)
	req.RemoteAddr = "192.0.2.1:40000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:40000"
	if got := ratelimit.ClientIP(req); got != "192.0.2.1" {
		t.Errorf("remote addr: got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ratelimit.ClientIP(req); got != "203.0.113.9" {
		t.Errorf("forwarded for: got %q", got)
	}
}
