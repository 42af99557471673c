// internal/app/features/catalog/resource.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	catalogstore "github.com/thrivewell/thrivehub/internal/app/store/catalog"
	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/inputval"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// resource binds one catalog aggregate to the shared HTTP plumbing. The
// per-aggregate pieces are the validation rules, the build function that
// maps present body fields into a $set document, and an optional beforeWrite
// hook for referential checks.
type resource[T any] struct {
	label       string // singular, for client messages
	op          string // log operation prefix, e.g. "services"
	store       *catalogstore.Store[T]
	spec        listquery.Spec
	createRules []inputval.Rule
	updateRules []inputval.Rule
	build       func(doc map[string]any, set bson.M)
	defaults    bson.M // applied on create for fields the body omitted
	beforeWrite func(ctx context.Context, set bson.M) error
	dupMsg      string // conflict message when a unique index trips
	log         *zap.Logger
}

// writeError carries a client-facing rejection out of a beforeWrite hook.
type writeError struct {
	status int
	msg    string
}

func (e *writeError) Error() string { return e.msg }

func rejectWrite(status int, msg string) error {
	return &writeError{status: status, msg: msg}
}

func (res *resource[T]) serveList(w http.ResponseWriter, r *http.Request) {
	q, err := listquery.Parse(r.URL.Query(), res.spec)
	if err != nil {
		var bad *listquery.BadRequestError
		if errors.As(err, &bad) {
			httpapi.Fail(w, http.StatusBadRequest, bad.Msg)
			return
		}
		httpapi.ServerError(w, res.log, res.op+".list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := listquery.Run[T](ctx, res.store.Collection(), q)
	if err != nil {
		httpapi.ServerError(w, res.log, res.op+".list", err)
		return
	}
	httpapi.List(w, out.Items, len(out.Items), &out.Pagination)
}

func (res *resource[T]) serveGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, res.label+" not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	doc, err := res.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogstore.ErrNotFound) {
			httpapi.NotFound(w, res.label+" not found")
			return
		}
		httpapi.ServerError(w, res.log, res.op+".get", err)
		return
	}
	httpapi.OK(w, doc)
}

func (res *resource[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	doc, ok := res.readValidated(w, r, res.createRules)
	if !ok {
		return
	}
	set := bson.M{}
	res.build(doc, set)
	for k, v := range res.defaults {
		if _, ok := set[k]; !ok {
			set[k] = v
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !res.runBeforeWrite(ctx, w, set) {
		return
	}

	created, err := res.store.Create(ctx, set)
	if err != nil {
		if errors.Is(err, catalogstore.ErrDuplicate) && res.dupMsg != "" {
			httpapi.Conflict(w, res.dupMsg)
			return
		}
		httpapi.ServerError(w, res.log, res.op+".create", err)
		return
	}
	httpapi.Created(w, created)
}

func (res *resource[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, res.label+" not found")
		return
	}
	doc, ok := res.readValidated(w, r, res.updateRules)
	if !ok {
		return
	}
	set := bson.M{}
	res.build(doc, set)
	if len(set) == 0 {
		httpapi.Fail(w, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !res.runBeforeWrite(ctx, w, set) {
		return
	}

	updated, err := res.store.Update(ctx, id, set)
	if err != nil {
		switch {
		case errors.Is(err, catalogstore.ErrNotFound):
			httpapi.NotFound(w, res.label+" not found")
		case errors.Is(err, catalogstore.ErrDuplicate) && res.dupMsg != "":
			httpapi.Conflict(w, res.dupMsg)
		default:
			httpapi.ServerError(w, res.log, res.op+".update", err)
		}
		return
	}
	httpapi.OK(w, updated)
}

func (res *resource[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, res.label+" not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := res.store.Delete(ctx, id)
	if err != nil {
		httpapi.ServerError(w, res.log, res.op+".delete", err)
		return
	}
	if n == 0 {
		httpapi.NotFound(w, res.label+" not found")
		return
	}
	httpapi.OK(w, map[string]any{"deleted": true})
}

func (res *resource[T]) readValidated(w http.ResponseWriter, r *http.Request, rules []inputval.Rule) (map[string]any, bool) {
	body, err := httpapi.ReadBody(r, limits.MaxJSONBody)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}
	if errs := inputval.Validate(body, rules); len(errs) > 0 {
		httpapi.FailFields(w, errs)
		return nil, false
	}
	var doc map[string]any
	if len(body) == 0 {
		doc = map[string]any{}
	} else if err := json.Unmarshal(body, &doc); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return nil, false
	}
	return doc, true
}

func (res *resource[T]) runBeforeWrite(ctx context.Context, w http.ResponseWriter, set bson.M) bool {
	if res.beforeWrite == nil {
		return true
	}
	if err := res.beforeWrite(ctx, set); err != nil {
		var we *writeError
		if errors.As(err, &we) {
			httpapi.Fail(w, we.status, we.msg)
		} else {
			httpapi.ServerError(w, res.log, res.op+".write", err)
		}
		return false
	}
	return true
}

// Field setters used by build functions. Each copies doc[key] into set only
// when the key is present; types are already checked by validation.

func setString(set bson.M, doc map[string]any, key string, clean func(string) string) {
	if v, ok := doc[key].(string); ok {
		if clean != nil {
			v = clean(v)
		}
		set[key] = strings.TrimSpace(v)
	}
}

func setFloat(set bson.M, doc map[string]any, key string) {
	if v, ok := doc[key].(float64); ok {
		set[key] = v
	}
}

func setInt(set bson.M, doc map[string]any, key string) {
	if v, ok := doc[key].(float64); ok {
		set[key] = int(math.Trunc(v))
	}
}

func setBool(set bson.M, doc map[string]any, key string) {
	if v, ok := doc[key].(bool); ok {
		set[key] = v
	}
}

func setTime(set bson.M, doc map[string]any, key string) {
	if v, ok := doc[key].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			set[key] = t.UTC()
		}
	}
}

func setObjectID(set bson.M, doc map[string]any, key string) {
	if v, ok := doc[key].(string); ok {
		if id, err := primitive.ObjectIDFromHex(v); err == nil {
			set[key] = id
		}
	}
}

func setStrings(set bson.M, doc map[string]any, key string) {
	list, ok := doc[key].([]any)
	if !ok {
		return
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	set[key] = out
}
