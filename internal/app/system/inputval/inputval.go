// internal/app/system/inputval/inputval.go

// Package inputval evaluates a declarative per-field rule set against a JSON
// request body before any controller logic runs. Every failing rule is
// collected (no fail-fast) so the client sees the whole problem list at once.
// Rules are purely structural; existence checks on referenced IDs are
// controller steps, not validation rules.
package inputval

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/validate"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind selects the structural check a Rule applies.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	Enum
	ObjectID
	ObjectIDList
	Email
	Date // RFC3339
	StringList
)

// Rule is one field's constraint set.
type Rule struct {
	Field    string
	Kind     Kind
	Required bool

	// String bounds (runes). Zero means unbounded.
	MinLen, MaxLen int

	// Number bounds. Nil means unbounded.
	Min, Max *float64

	// Enum membership for Kind == Enum.
	Allowed []string
}

// Ptr is a convenience for numeric bounds.
func Ptr(f float64) *float64 { return &f }

// Validate unmarshals body and evaluates every rule, returning the ordered
// list of failures. A body that is not a JSON object fails wholesale.
func Validate(body []byte, rules []Rule) []httpapi.FieldError {
	var doc map[string]any
	if len(body) == 0 {
		doc = map[string]any{}
	} else if err := json.Unmarshal(body, &doc); err != nil {
		return []httpapi.FieldError{{Field: "body", Message: "request body must be a JSON object"}}
	}

	var errs []httpapi.FieldError
	add := func(field, msg string) {
		errs = append(errs, httpapi.FieldError{Field: field, Message: msg})
	}

	for _, r := range rules {
		raw, present := doc[r.Field]
		if !present || raw == nil {
			if r.Required {
				add(r.Field, "is required")
			}
			continue
		}

		switch r.Kind {
		case String:
			s, ok := raw.(string)
			if !ok {
				add(r.Field, "must be a string")
				continue
			}
			n := len([]rune(strings.TrimSpace(s)))
			if r.Required && n == 0 {
				add(r.Field, "is required")
				continue
			}
			if r.MinLen > 0 && n < r.MinLen {
				add(r.Field, fmt.Sprintf("must be at least %d characters", r.MinLen))
			}
			if r.MaxLen > 0 && n > r.MaxLen {
				add(r.Field, fmt.Sprintf("must be at most %d characters", r.MaxLen))
			}

		case Number:
			f, ok := asNumber(raw)
			if !ok {
				add(r.Field, "must be a number")
				continue
			}
			if r.Min != nil && f < *r.Min {
				add(r.Field, fmt.Sprintf("must be at least %s", trimFloat(*r.Min)))
			}
			if r.Max != nil && f > *r.Max {
				add(r.Field, fmt.Sprintf("must be at most %s", trimFloat(*r.Max)))
			}

		case Bool:
			if _, ok := raw.(bool); !ok {
				add(r.Field, "must be a boolean")
			}

		case Enum:
			s, ok := raw.(string)
			if !ok || !contains(r.Allowed, s) {
				add(r.Field, "must be one of: "+strings.Join(r.Allowed, ", "))
			}

		case ObjectID:
			s, ok := raw.(string)
			if !ok {
				add(r.Field, "must be an id string")
				continue
			}
			if _, err := primitive.ObjectIDFromHex(s); err != nil {
				add(r.Field, "is not a valid id")
			}

		case ObjectIDList:
			list, ok := raw.([]any)
			if !ok {
				add(r.Field, "must be a list of ids")
				continue
			}
			if r.Required && len(list) == 0 {
				add(r.Field, "must not be empty")
				continue
			}
			for i, item := range list {
				s, ok := item.(string)
				if !ok {
					add(r.Field, fmt.Sprintf("entry %d must be an id string", i))
					continue
				}
				if _, err := primitive.ObjectIDFromHex(s); err != nil {
					add(r.Field, fmt.Sprintf("entry %d is not a valid id", i))
				}
			}

		case StringList:
			list, ok := raw.([]any)
			if !ok {
				add(r.Field, "must be a list of strings")
				continue
			}
			if r.Required && len(list) == 0 {
				add(r.Field, "must not be empty")
				continue
			}
			for i, item := range list {
				s, ok := item.(string)
				if !ok {
					add(r.Field, fmt.Sprintf("entry %d must be a string", i))
					continue
				}
				n := len([]rune(strings.TrimSpace(s)))
				if r.MaxLen > 0 && n > r.MaxLen {
					add(r.Field, fmt.Sprintf("entry %d must be at most %d characters", i, r.MaxLen))
				}
			}

		case Email:
			s, ok := raw.(string)
			if !ok || !validate.SimpleEmailValid(s) {
				add(r.Field, "must be a valid email address")
			}

		case Date:
			s, ok := raw.(string)
			if !ok {
				add(r.Field, "must be an RFC3339 date string")
				continue
			}
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				add(r.Field, "must be an RFC3339 date string")
			}
		}
	}

	return errs
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func trimFloat(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
