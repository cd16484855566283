package executor

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ludapartners/luda-mind/internal/core/pipeline"
	"github.com/ludapartners/luda-mind/internal/core/resolver"
)

// MongoExecutor runs aggregation pipelines against the operational database.
type MongoExecutor struct {
	db *mongo.Database
}

func NewMongoExecutor(db *mongo.Database) *MongoExecutor {
	return &MongoExecutor{db: db}
}

func (e *MongoExecutor) Execute(ctx context.Context, plan *pipeline.Plan) ([]map[string]interface{}, error) {
	if plan.Mongo == nil {
		return nil, fmt.Errorf("plan has no mongo pipeline")
	}

	cursor, err := e.db.Collection(plan.Mongo.Collection).Aggregate(ctx, plan.Mongo.Render())
	if err != nil {
		return nil, fmt.Errorf("aggregate on %s: %w", plan.Mongo.Collection, err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("cursor read on %s: %w", plan.Mongo.Collection, err)
	}

	rows := make([]map[string]interface{}, len(raw))
	for i, doc := range raw {
		rows[i] = doc
	}
	return rows, nil
}

// MongoBookingStore resolves order-derived partner adherence by scanning
// bookings. Implements resolver.BookingStore.
type MongoBookingStore struct {
	db *mongo.Database
}

func NewMongoBookingStore(db *mongo.Database) *MongoBookingStore {
	return &MongoBookingStore{db: db}
}

func (s *MongoBookingStore) DistinctPharmacies(ctx context.Context, partnerID string, tr *resolver.TimeRange) ([]string, error) {
	filter := bson.M{"partner": partnerID}
	if tr != nil {
		filter["createdDate"] = bson.M{"$gte": tr.Start, "$lte": tr.End}
	}

	values, err := s.db.Collection("bookings").Distinct(ctx, "pharmacyId", filter)
	if err != nil {
		return nil, fmt.Errorf("distinct pharmacies for %s: %w", partnerID, err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
