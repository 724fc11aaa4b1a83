package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Partial index: only pending bookings still waiting for a serviceman
	unassignedOpts := options.Index().SetPartialFilterExpression(bson.M{
		"status": "pending",
	})

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "requestedBy.id", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "organization", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "assignment.serviceman", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}, Options: unassignedOpts},
	}
	if _, err := r.bookingColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
