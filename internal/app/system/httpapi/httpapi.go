// internal/app/system/httpapi/httpapi.go
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Envelope is the uniform response shape for every endpoint:
// {success, data?, count?, pagination?, error?/errors?}.
type Envelope struct {
	Success    bool         `json:"success"`
	Data       any          `json:"data,omitempty"`
	Count      *int         `json:"count,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
	Error      string       `json:"error,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
}

// Pagination reports neighbouring pages. Next is set iff a further page
// exists; Prev iff page > 1. Total is the count under the same filter as the
// page query.
type Pagination struct {
	Total int       `json:"total"`
	Next  *PageRef  `json:"next,omitempty"`
	Prev  *PageRef  `json:"prev,omitempty"`
}

// PageRef identifies one page of results.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// FieldError is one validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Partial writes a 200 envelope for a bulk outcome. The success flag is true
// only when at least one item went through; per-item results ride in data.
func Partial(w http.ResponseWriter, anySucceeded bool, data any) {
	write(w, http.StatusOK, Envelope{Success: anySucceeded, Data: data})
}

// List writes a 200 envelope with count and pagination for a list result.
func List(w http.ResponseWriter, data any, count int, p *Pagination) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data, Count: &count, Pagination: p})
}

// Fail writes a failure envelope with a single error message.
func Fail(w http.ResponseWriter, status int, msg string) {
	write(w, status, Envelope{Success: false, Error: msg})
}

// FailFields writes a 400 envelope carrying the aggregated validation errors.
func FailFields(w http.ResponseWriter, errs []FieldError) {
	write(w, http.StatusBadRequest, Envelope{Success: false, Errors: errs})
}

// NotFound writes the standard 404 envelope.
func NotFound(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "Resource not found"
	}
	Fail(w, http.StatusNotFound, msg)
}

// Conflict writes the duplicate-key envelope. Store index names are never
// surfaced to the client; an empty msg falls back to the generic wording.
func Conflict(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "Duplicate field value entered"
	}
	Fail(w, http.StatusBadRequest, msg)
}

// Unauthorized writes the standard 401 envelope.
func Unauthorized(w http.ResponseWriter) {
	Fail(w, http.StatusUnauthorized, "Not authorized to access this route")
}

// Forbidden writes the standard 403 envelope.
func Forbidden(w http.ResponseWriter) {
	Fail(w, http.StatusForbidden, "Access denied for this role")
}

// ServerError writes the generic 500 envelope. The underlying error is
// logged, never sent to the client.
func ServerError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if log != nil {
		log.Error("server error", zap.String("op", op), zap.Error(err))
	}
	Fail(w, http.StatusInternalServerError, "Server error")
}

// Recoverer is the top-level panic handler: it normalizes panics into the
// standard 500 envelope so stack traces never leak to clients.
func Recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if log != nil {
						log.Error("panic in handler",
							zap.Any("panic", rec),
							zap.String("path", r.URL.Path))
					}
					Fail(w, http.StatusInternalServerError, "Server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ReadBody reads at most maxBytes of the request body. Handlers validate the
// raw bytes first (aggregated field errors) and then unmarshal into their
// typed input, so the body is read exactly once.
func ReadBody(r *http.Request, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
