package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/repository"
	apperrors "crm-mirror/internal/shared/errors"
	"crm-mirror/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const locationsCollection = "locations"

// LocationRepository persists tenant records in the locations collection.
type LocationRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewLocationRepository creates a Mongo-backed location repository.
func NewLocationRepository(db *mongo.Database, log logger.Logger) *LocationRepository {
	return &LocationRepository{
		collection: db.Collection(locationsCollection),
		logger:     log.WithComponent("mongodb.locations"),
	}
}

// Get fetches one tenant record by its location ID.
func (r *LocationRepository) Get(ctx context.Context, locationID string) (*model.Location, error) {
	var location model.Location
	err := r.collection.FindOne(ctx, bson.M{"locationId": locationID}).Decode(&location)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching location %s: %w", locationID, err)
	}
	return &location, nil
}

// Create inserts a new tenant record. The unique index on locationId rejects
// duplicates.
func (r *LocationRepository) Create(ctx context.Context, location *model.Location) error {
	now := time.Now()
	location.CreatedAt = now
	location.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, location)
	if err != nil {
		return fmt.Errorf("creating location %s: %w", location.LocationID, err)
	}
	if oid, ok := result.InsertedID.(interface{ Hex() string }); ok {
		r.logger.WithFields(map[string]interface{}{
			"location_id": location.LocationID,
			"oid":         oid.Hex(),
		}).Info("location created")
	}
	return nil
}

// UpdateCredential stores the tenant's API key and returns the updated record.
func (r *LocationRepository) UpdateCredential(ctx context.Context, locationID, apiKey string) (*model.Location, error) {
	return r.findOneAndUpdate(ctx, locationID, bson.M{
		"apiKey":    apiKey,
		"updatedAt": time.Now(),
	})
}

// UpdateSettings applies a sparse settings patch. Keys absent from the patch
// keep their stored values.
func (r *LocationRepository) UpdateSettings(ctx context.Context, locationID string, patch map[string]interface{}) (*model.Location, error) {
	set := bson.M{"updatedAt": time.Now()}
	for key, value := range patch {
		set[key] = value
	}
	return r.findOneAndUpdate(ctx, locationID, set)
}

func (r *LocationRepository) findOneAndUpdate(ctx context.Context, locationID string, set bson.M) (*model.Location, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var location model.Location
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"locationId": locationID},
		bson.M{"$set": set},
		opts,
	).Decode(&location)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating location %s: %w", locationID, err)
	}
	return &location, nil
}

var _ repository.LocationRepository = (*LocationRepository)(nil)
