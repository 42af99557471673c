// internal/app/system/listquery/listquery_test.go
package listquery_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/thrivewell/thrivehub/internal/app/system/listquery"
	"go.mongodb.org/mongo-driver/bson"
)

var testSpec = listquery.Spec{
	Collection:   "products",
	FilterFields: []string{"name", "price", "stock", "is_active", "created_at"},
	SearchFields: []string{"name_ci", "description"},
	DefaultSort:  bson.D{{Key: "name_ci", Value: 1}},
}

func mustParse(t *testing.T, raw string) listquery.Query {
	t.Helper()
	params, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("bad test query string %q: %v", raw, err)
	}
	q, err := listquery.Parse(params, testSpec)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", raw, err)
	}
	return q
}

func parseErr(t *testing.T, raw string) error {
	t.Helper()
	params, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("bad test query string %q: %v", raw, err)
	}
	_, err = listquery.Parse(params, testSpec)
	return err
}

func TestParse_Defaults(t *testing.T) {
	q := mustParse(t, "")
	if q.Page != listquery.DefaultPage || q.Limit != listquery.DefaultLimit {
		t.Errorf("defaults: page=%d limit=%d", q.Page, q.Limit)
	}
	if len(q.Filter) != 0 {
		t.Errorf("empty query produced filter %v", q.Filter)
	}
	if len(q.Sort) != 1 || q.Sort[0].Key != "name_ci" {
		t.Errorf("default sort not applied: %v", q.Sort)
	}
}

func TestParse_EqualityFilterCoercion(t *testing.T) {
	q := mustParse(t, "is_active=true&stock=3&name=puzzle")
	if q.Filter["is_active"] != true {
		t.Errorf("is_active: got %v (%T)", q.Filter["is_active"], q.Filter["is_active"])
	}
	if q.Filter["stock"] != 3 {
		t.Errorf("stock: got %v (%T)", q.Filter["stock"], q.Filter["stock"])
	}
	if q.Filter["name"] != "puzzle" {
		t.Errorf("name: got %v", q.Filter["name"])
	}
}

func TestParse_ComparisonOperatorsMerge(t *testing.T) {
	q := mustParse(t, "price[gte]=5&price[lte]=10.5")
	rng, ok := q.Filter["price"].(bson.M)
	if !ok {
		t.Fatalf("price filter: got %v", q.Filter["price"])
	}
	if rng["$gte"] != 5 {
		t.Errorf("$gte: got %v (%T)", rng["$gte"], rng["$gte"])
	}
	if rng["$lte"] != 10.5 {
		t.Errorf("$lte: got %v (%T)", rng["$lte"], rng["$lte"])
	}
}

func TestParse_InOperator(t *testing.T) {
	q := mustParse(t, "stock[in]=1,2,3")
	rng, ok := q.Filter["stock"].(bson.M)
	if !ok {
		t.Fatalf("stock filter: got %v", q.Filter["stock"])
	}
	list, ok := rng["$in"].([]any)
	if !ok || len(list) != 3 {
		t.Fatalf("$in list: got %v", rng["$in"])
	}
	if list[0] != 1 || list[2] != 3 {
		t.Errorf("$in values not coerced: %v", list)
	}
}

func TestParse_RejectsUnknownField(t *testing.T) {
	err := parseErr(t, "secret=1")
	var bad *listquery.BadRequestError
	if !errors.As(err, &bad) {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
}

func TestParse_RejectsUnknownOperator(t *testing.T) {
	err := parseErr(t, "price[regex]=x")
	var bad *listquery.BadRequestError
	if !errors.As(err, &bad) {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
}

func TestParse_RejectsDollarKeys(t *testing.T) {
	params := map[string][]string{"$where": {"1"}}
	if _, err := listquery.Parse(params, testSpec); err == nil {
		t.Fatal("query key with $ accepted")
	}
}

func TestParse_SortDirectionsAndAllowList(t *testing.T) {
	q := mustParse(t, "sort=-price,name")
	if len(q.Sort) != 3 {
		t.Fatalf("sort: got %v", q.Sort)
	}
	if q.Sort[0].Key != "price" || q.Sort[0].Value != -1 {
		t.Errorf("descending sort: got %v", q.Sort[0])
	}
	if q.Sort[2].Key != "_id" {
		t.Errorf("expected _id tiebreak, got %v", q.Sort[2])
	}

	if err := parseErr(t, "sort=password"); err == nil {
		t.Error("sort by unlisted field accepted")
	}
}

func TestParse_LimitCapped(t *testing.T) {
	q := mustParse(t, "limit=5000")
	if q.Limit != listquery.MaxLimit {
		t.Errorf("limit: got %d, want cap %d", q.Limit, listquery.MaxLimit)
	}
}

func TestParse_BadPage(t *testing.T) {
	if err := parseErr(t, "page=0"); err == nil {
		t.Error("page=0 accepted")
	}
	if err := parseErr(t, "page=x"); err == nil {
		t.Error("page=x accepted")
	}
}

func TestParse_SearchANDedWithFilters(t *testing.T) {
	q := mustParse(t, "search=sensory&is_active=true")
	and, ok := q.Filter["$and"].([]bson.M)
	if !ok {
		t.Fatalf("expected $and filter, got %v", q.Filter)
	}
	if len(and) != 2 {
		t.Fatalf("expected search plus one field filter, got %v", and)
	}
	or, ok := and[0]["$or"].([]bson.M)
	if !ok || len(or) != len(testSpec.SearchFields) {
		t.Errorf("search clause: got %v", and[0])
	}
}

func TestParse_SearchEscapesRegex(t *testing.T) {
	q := mustParse(t, "search=a.b%2Bc")
	and := q.Filter["$and"].([]bson.M)
	or := and[0]["$or"].([]bson.M)
	rx := or[0]["name_ci"].(bson.M)["$regex"].(string)
	if rx != `a\.b\+c` {
		t.Errorf("regex not escaped: %q", rx)
	}
}

func TestParse_SearchUnsupported(t *testing.T) {
	spec := listquery.Spec{Collection: "orders", FilterFields: []string{"status"}}
	_, err := listquery.Parse(map[string][]string{"search": {"x"}}, spec)
	if err == nil {
		t.Fatal("search accepted for spec without search fields")
	}
}

func TestParse_SelectAlwaysIncludesID(t *testing.T) {
	q := mustParse(t, "select=name,price")
	if len(q.Projection) != 3 {
		t.Fatalf("projection: got %v", q.Projection)
	}
	last := q.Projection[len(q.Projection)-1]
	if last.Key != "_id" {
		t.Errorf("projection missing _id: %v", q.Projection)
	}
}

func TestQuery_Skip(t *testing.T) {
	q := mustParse(t, "page=3&limit=20")
	if q.Skip() != 40 {
		t.Errorf("skip: got %d, want 40", q.Skip())
	}
}
