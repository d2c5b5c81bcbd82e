package mongodb

import (
	"context"
	"fmt"

	"crm-mirror/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the collection indexes the repositories rely on.
// Index creation is idempotent; safe to run at every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log logger.Logger) error {
	indexes := map[string][]mongo.IndexModel{
		locationsCollection: {
			{
				Keys:    bson.D{{Key: "locationId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		pipelinesCollection: {
			{
				Keys:    bson.D{{Key: "remoteId", Value: 1}, {Key: "locationId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "locationId", Value: 1}}},
		},
		opportunitiesCollection: {
			{
				Keys:    bson.D{{Key: "remoteId", Value: 1}, {Key: "locationId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "locationId", Value: 1}, {Key: "pipelineId", Value: 1}}},
			{Keys: bson.D{{Key: "locationId", Value: 1}, {Key: "pipelineStageId", Value: 1}}},
			{Keys: bson.D{{Key: "locationId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "locationId", Value: 1}, {Key: "remoteUpdatedAt", Value: -1}}},
		},
		customFieldsCollection: {
			{
				Keys:    bson.D{{Key: "remoteId", Value: 1}, {Key: "locationId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "locationId", Value: 1}, {Key: "fieldModel", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", collection, err)
		}
	}

	log.WithComponent("mongodb").Info("collection indexes ensured")
	return nil
}
