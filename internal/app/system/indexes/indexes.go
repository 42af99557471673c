// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so any problem is visible and startup can fail fast.

The unique indexes declared here are the real correctness backstop for the
read-then-write flows (feedback per user/item, unit numbers per toy, borrower
emails); application-level pre-checks only improve error messages.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(name string, fn func(context.Context, *mongo.Database) error) {
		if err := fn(ctx, db); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}

	ensure("toys", ensureToys)
	ensure("toy_units", ensureToyUnits)
	ensure("borrowings", ensureBorrowings)
	ensure("borrowers", ensureBorrowers)
	ensure("categories", ensureCategories)
	ensure("products", ensureProducts)
	ensure("orders", ensureOrders)
	ensure("feedback", ensureFeedback)
	ensure("courses", ensureCourses)
	ensure("webinars", ensureWebinars)
	ensure("services", ensureServices)
	ensure("inventory", ensureInventory)
	ensure("meetings", ensureMeetings)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------- reconcile one collection's desired index set ------------ */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // keySig -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			// Options mismatch (e.g. upgrading to unique): drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate detector (works across vendors).
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

/* ---------------------- collection-specific index sets -------------------- */

func ensureToys(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("toys")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_toys_nameci"),
		},
		{
			Keys:    bson.D{{Key: "category_ci", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_toys_categoryci_nameci"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_toys_created"),
		},
	})
}

func ensureToyUnits(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("toy_units")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One unit number per toy; the backstop for the issue workflow.
		{
			Keys:    bson.D{{Key: "toy_id", Value: 1}, {Key: "unit_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_units_toy_unitnumber"),
		},
		// Issue path: first available unit of a toy.
		{
			Keys:    bson.D{{Key: "toy_id", Value: 1}, {Key: "is_available", Value: 1}, {Key: "unit_number", Value: 1}},
			Options: options.Index().SetName("idx_units_toy_available_number"),
		},
	})
}

func ensureBorrowings(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("borrowings")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Overdue sweep and active lists.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}},
			Options: options.Index().SetName("idx_borrowings_status_due"),
		},
		// One active borrowing per unit is found through this path.
		{
			Keys:    bson.D{{Key: "unit_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_borrowings_unit_status"),
		},
		{
			Keys:    bson.D{{Key: "borrower_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_borrowings_borrower_created"),
		},
		// Legacy email search path.
		{
			Keys:    bson.D{{Key: "borrower_email", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_borrowings_email_status"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_borrowings_created"),
		},
	})
}

func ensureBorrowers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("borrowers")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_borrowers_email"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_borrowers_nameci"),
		},
	})
}

func ensureCategories(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("categories")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_categories_nameci"),
		},
		{
			Keys:    bson.D{{Key: "parent_id", Value: 1}},
			Options: options.Index().SetName("idx_categories_parent"),
		},
	})
}

func ensureProducts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("products")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_products_category_nameci"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_products_status_created"),
		},
	})
}

func ensureOrders(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("orders")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Product soft-delete guard: "is this product in any order".
		{
			Keys:    bson.D{{Key: "items.product_id", Value: 1}},
			Options: options.Index().SetName("idx_orders_item_product"),
		},
		{
			Keys:    bson.D{{Key: "customer_email", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_orders_email_created"),
		},
	})
}

func ensureFeedback(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("feedback")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One rating per (user, item); the backstop for the conflict rule.
		{
			Keys:    bson.D{{Key: "user_email", Value: 1}, {Key: "item_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_feedback_user_item"),
		},
		{
			Keys:    bson.D{{Key: "item_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_feedback_item_created"),
		},
	})
}

func ensureCourses(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("courses")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_courses_titleci"),
		},
	})
}

func ensureWebinars(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("webinars")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "start_at", Value: -1}},
			Options: options.Index().SetName("idx_webinars_start"),
		},
		{
			Keys:    bson.D{{Key: "registrations.email", Value: 1}},
			Options: options.Index().SetName("idx_webinars_registrant_email"),
		},
	})
}

func ensureServices(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("services")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_services_nameci"),
		},
	})
}

func ensureInventory(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("inventory")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_inventory_product"),
		},
	})
}

func ensureMeetings(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("meetings")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "scheduled_at", Value: -1}},
			Options: options.Index().SetName("idx_meetings_scheduled"),
		},
		{
			Keys:    bson.D{{Key: "client_email", Value: 1}, {Key: "scheduled_at", Value: -1}},
			Options: options.Index().SetName("idx_meetings_email_scheduled"),
		},
	})
}
