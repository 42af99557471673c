// internal/app/store/feedback/feedbackstore.go
package feedbackstore

import (
	"context"
	"errors"
	"math"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/thrivewell/thrivehub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateFeedback = errors.New("feedback already submitted for this item")
	ErrFeedbackNotFound  = errors.New("feedback not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("feedback")}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Feedback, error) {
	var f models.Feedback
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Feedback{}, ErrFeedbackNotFound
		}
		return models.Feedback{}, err
	}
	return f, nil
}

// Create inserts one feedback document. The unique (user_email, item_id)
// index enforces one submission per user per item.
func (s *Store) Create(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID()
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Feedback{}, ErrDuplicateFeedback
		}
		return models.Feedback{}, err
	}
	return f, nil
}

func (s *Store) UpdateRating(ctx context.Context, id primitive.ObjectID, rating int, comment string) (models.Feedback, error) {
	set := bson.M{
		"rating":     rating,
		"updated_at": time.Now().UTC(),
	}
	if comment != "" {
		set["comment"] = comment
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return models.Feedback{}, err
	}
	if res.MatchedCount == 0 {
		return models.Feedback{}, ErrFeedbackNotFound
	}
	return s.GetByID(ctx, id)
}

// RatingFor computes the average rating and count for one item. Ratings are
// never embedded on the item document; this aggregation is the single source
// of truth.
func (s *Store) RatingFor(ctx context.Context, itemID primitive.ObjectID) (models.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"item_id": itemID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$item_id",
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingSummary{}, err
	}
	defer cur.Close(ctx)

	var out []models.RatingSummary
	if err := cur.All(ctx, &out); err != nil {
		return models.RatingSummary{}, err
	}
	if len(out) == 0 {
		return models.RatingSummary{ItemID: itemID}, nil
	}
	sum := out[0]
	sum.Average = math.Round(sum.Average*10) / 10
	return sum, nil
}

// RatingsFor computes rating summaries for a batch of items in one pass,
// keyed by item ID. Items with no feedback are absent from the result.
func (s *Store) RatingsFor(ctx context.Context, itemIDs []primitive.ObjectID) (map[primitive.ObjectID]models.RatingSummary, error) {
	if len(itemIDs) == 0 {
		return map[primitive.ObjectID]models.RatingSummary{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"item_id": bson.M{"$in": itemIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$item_id",
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.RatingSummary
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.RatingSummary, len(rows))
	for _, row := range rows {
		row.Average = math.Round(row.Average*10) / 10
		out[row.ItemID] = row
	}
	return out, nil
}

// Delete removes a feedback entry by ID. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
