package mongodb

import (
	"context"
	"fmt"
	"time"

	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/repository"
	"crm-mirror/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const pipelinesCollection = "pipelines"

// PipelineRepository persists mirrored pipeline definitions.
type PipelineRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewPipelineRepository creates a Mongo-backed pipeline repository.
func NewPipelineRepository(db *mongo.Database, log logger.Logger) *PipelineRepository {
	return &PipelineRepository{
		collection: db.Collection(pipelinesCollection),
		logger:     log.WithComponent("mongodb.pipelines"),
	}
}

// List returns all mirrored pipelines of a location, sorted by name.
func (r *PipelineRepository) List(ctx context.Context, locationID string) ([]*model.Pipeline, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"locationId": locationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing pipelines for %s: %w", locationID, err)
	}
	defer cursor.Close(ctx)

	pipelines := make([]*model.Pipeline, 0)
	if err := cursor.All(ctx, &pipelines); err != nil {
		return nil, fmt.Errorf("decoding pipelines for %s: %w", locationID, err)
	}
	return pipelines, nil
}

// Upsert stores a pipeline definition keyed by (remoteId, locationId). The
// stage list is replaced wholesale so stage renames and reorders take effect.
func (r *PipelineRepository) Upsert(ctx context.Context, pipeline *model.Pipeline) error {
	now := time.Now()

	filter := bson.M{
		"remoteId":   pipeline.RemoteID,
		"locationId": pipeline.LocationID,
	}
	update := bson.M{
		"$set": bson.M{
			"name":      pipeline.Name,
			"stages":    pipeline.Stages,
			"syncedAt":  now,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"remoteId":   pipeline.RemoteID,
			"locationId": pipeline.LocationID,
			"createdAt":  now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upserting pipeline %s: %w", pipeline.RemoteID, err)
	}
	return nil
}

var _ repository.PipelineRepository = (*PipelineRepository)(nil)
