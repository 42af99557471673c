// internal/app/system/listquery/listquery.go

// Package listquery translates an HTTP query string into a filtered, sorted,
// field-selected, paginated read against one Mongo collection.
//
// Reserved keys (select, sort, page, limit, search) shape the read; every
// other key must be on the resource's filter allow-list and becomes either an
// equality match or, with a bracket suffix (price[gte]=5), a comparison.
// Unknown operators and unknown fields are rejected rather than passed
// through, so a query string can never smuggle arbitrary Mongo operators.
//
// The page query and the total count always run against the same filter;
// pagination never disagrees with the reported total.
package listquery

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Defaults and caps for page/limit.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var reservedKeys = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
	"search": true,
}

var comparisonOps = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
	"in":  "$in",
}

// bracketKey matches "field[op]".
var bracketKey = regexp.MustCompile(`^([A-Za-z0-9_.]+)\[([A-Za-z]+)\]$`)

// Spec declares how one resource may be queried.
type Spec struct {
	// Collection name, for error messages only.
	Collection string
	// FilterFields is the allow-list of filterable/sortable field names.
	FilterFields []string
	// SearchFields receive the case-insensitive search regex, ORed together.
	SearchFields []string
	// DefaultSort is applied when no sort param is given
	// (e.g. bson.D{{Key: "created_at", Value: -1}}).
	DefaultSort bson.D
}

// BadRequestError marks a malformed query string; handlers map it to 400.
type BadRequestError struct{ Msg string }

func (e *BadRequestError) Error() string { return e.Msg }

func badRequestf(format string, args ...any) error {
	return &BadRequestError{Msg: fmt.Sprintf(format, args...)}
}

// Query is a fully parsed list query, ready to run.
type Query struct {
	Filter     bson.M
	Projection bson.D
	Sort       bson.D
	Page       int
	Limit      int
}

// Skip returns the document offset for the current page.
func (q Query) Skip() int64 { return int64((q.Page - 1) * q.Limit) }

// Parse validates and translates raw query params (url.Values shape) against
// the resource's declared field allow-list. All errors are *BadRequestError.
func Parse(params map[string][]string, spec Spec) (Query, error) {
	q := Query{
		Filter: bson.M{},
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		Sort:   spec.DefaultSort,
	}

	allowed := make(map[string]bool, len(spec.FilterFields))
	for _, f := range spec.FilterFields {
		allowed[f] = true
	}

	first := func(key string) string {
		vs := params[key]
		if len(vs) == 0 {
			return ""
		}
		return strings.TrimSpace(vs[0])
	}

	if v := first("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Query{}, badRequestf("page must be a positive integer")
		}
		q.Page = n
	}
	if v := first("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Query{}, badRequestf("limit must be a positive integer")
		}
		if n > MaxLimit {
			n = MaxLimit
		}
		q.Limit = n
	}

	if v := first("select"); v != "" {
		proj := bson.D{}
		seen := map[string]bool{}
		for _, f := range strings.Split(v, ",") {
			f = strings.TrimSpace(f)
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			proj = append(proj, bson.E{Key: f, Value: 1})
		}
		// The identifier is always part of the projection.
		if !seen["_id"] {
			proj = append(proj, bson.E{Key: "_id", Value: 1})
		}
		q.Projection = proj
	}

	if v := first("sort"); v != "" {
		sort := bson.D{}
		for _, f := range strings.Split(v, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			dir := 1
			if strings.HasPrefix(f, "-") {
				dir = -1
				f = f[1:]
			}
			if !allowed[f] && f != "created_at" && f != "_id" {
				return Query{}, badRequestf("cannot sort by %q", f)
			}
			sort = append(sort, bson.E{Key: f, Value: dir})
		}
		if len(sort) > 0 {
			// Stable tiebreak so page boundaries never shuffle.
			sort = append(sort, bson.E{Key: "_id", Value: 1})
			q.Sort = sort
		}
	}

	for key, vals := range params {
		if reservedKeys[key] || len(vals) == 0 {
			continue
		}
		val := vals[0]

		if m := bracketKey.FindStringSubmatch(key); m != nil {
			field, op := m[1], m[2]
			mongoOp, ok := comparisonOps[op]
			if !ok {
				return Query{}, badRequestf("unknown query operator %q", op)
			}
			if !allowed[field] {
				return Query{}, badRequestf("cannot filter by %q", field)
			}
			if mongoOp == "$in" {
				parts := strings.Split(val, ",")
				list := make([]any, 0, len(parts))
				for _, p := range parts {
					list = append(list, coerce(strings.TrimSpace(p)))
				}
				mergeOp(q.Filter, field, mongoOp, list)
			} else {
				mergeOp(q.Filter, field, mongoOp, coerce(val))
			}
			continue
		}

		if strings.ContainsAny(key, "[]$") {
			return Query{}, badRequestf("malformed query key %q", key)
		}
		if !allowed[key] {
			return Query{}, badRequestf("cannot filter by %q", key)
		}
		q.Filter[key] = coerce(val)
	}

	if term := first("search"); term != "" {
		if len(spec.SearchFields) == 0 {
			return Query{}, badRequestf("search is not supported for %s", spec.Collection)
		}
		rx := bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
		or := make([]bson.M, 0, len(spec.SearchFields))
		for _, f := range spec.SearchFields {
			or = append(or, bson.M{f: rx})
		}
		// Search is ANDed with the field filters, never a replacement.
		and := []bson.M{{"$or": or}}
		for k, v := range q.Filter {
			and = append(and, bson.M{k: v})
		}
		q.Filter = bson.M{"$and": and}
	}

	return q, nil
}

// mergeOp collects multiple operators on one field into one document, so
// price[gte]=5&price[lte]=10 becomes {price: {$gte: 5, $lte: 10}}.
func mergeOp(filter bson.M, field, op string, val any) {
	if existing, ok := filter[field].(bson.M); ok {
		existing[op] = val
		return
	}
	filter[field] = bson.M{op: val}
}

// coerce maps a query-string literal onto the value type Mongo should compare
// against: int, float, bool, RFC3339 time, else string.
func coerce(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return s
}

// Result is one executed page plus the canonical total.
type Result[T any] struct {
	Items      []T
	Total      int
	Pagination httpapi.Pagination
}

// Run executes the page query and the count with the same filter and builds
// the pagination block.
func Run[T any](ctx context.Context, coll *mongo.Collection, q Query) (Result[T], error) {
	total, err := coll.CountDocuments(ctx, q.Filter)
	if err != nil {
		return Result[T]{}, err
	}

	opts := options.Find().
		SetSort(q.Sort).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))
	if q.Projection != nil {
		opts.SetProjection(q.Projection)
	}

	cur, err := coll.Find(ctx, q.Filter, opts)
	if err != nil {
		return Result[T]{}, err
	}
	defer cur.Close(ctx)

	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return Result[T]{}, err
	}

	res := Result[T]{
		Items:      items,
		Total:      int(total),
		Pagination: httpapi.Pagination{Total: int(total)},
	}
	if int64(q.Page*q.Limit) < total {
		res.Pagination.Next = &httpapi.PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Page > 1 {
		res.Pagination.Prev = &httpapi.PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	return res, nil
}
