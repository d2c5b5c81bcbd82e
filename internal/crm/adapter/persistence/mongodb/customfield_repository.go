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

const customFieldsCollection = "custom_fields"

// CustomFieldRepository caches remote custom-field and folder definitions.
type CustomFieldRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewCustomFieldRepository creates a Mongo-backed custom-field cache.
func NewCustomFieldRepository(db *mongo.Database, log logger.Logger) *CustomFieldRepository {
	return &CustomFieldRepository{
		collection: db.Collection(customFieldsCollection),
		logger:     log.WithComponent("mongodb.custom_fields"),
	}
}

// ListByModel returns the cached definitions of one field model (fields and
// folders together), ordered by position.
func (r *CustomFieldRepository) ListByModel(ctx context.Context, locationID string, fieldModel model.FieldModel) ([]*model.CustomField, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "remoteId", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"locationId": locationID,
		"fieldModel": fieldModel,
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing %s custom fields for %s: %w", fieldModel, locationID, err)
	}
	defer cursor.Close(ctx)

	fields := make([]*model.CustomField, 0)
	if err := cursor.All(ctx, &fields); err != nil {
		return nil, fmt.Errorf("decoding custom fields for %s: %w", locationID, err)
	}
	return fields, nil
}

// BulkUpsert stores definitions keyed by (remoteId, locationId) with one
// unordered BulkWrite.
func (r *CustomFieldRepository) BulkUpsert(ctx context.Context, fields []*model.CustomField) error {
	if len(fields) == 0 {
		return nil
	}
	now := time.Now()

	writes := make([]mongo.WriteModel, 0, len(fields))
	for _, field := range fields {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"remoteId": field.RemoteID, "locationId": field.LocationID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"name":                 field.Name,
					"fieldKey":             field.FieldKey,
					"dataType":             field.DataType,
					"placeholder":          field.Placeholder,
					"position":             field.Position,
					"picklistOptions":      field.PicklistOptions,
					"picklistImageOptions": field.PicklistImageOptions,
					"allowCustomOption":    field.AllowCustomOption,
					"isMultiFileAllowed":   field.IsMultiFileAllowed,
					"maxFileLimit":         field.MaxFileLimit,
					"isRequired":           field.IsRequired,
					"fieldModel":           field.FieldModel,
					"parentId":             field.ParentID,
					"parentName":           field.ParentName,
					"isFolder":             field.IsFolder,
					"standard":             field.Standard,
					"syncedAt":             now,
					"updatedAt":            now,
				},
				"$setOnInsert": bson.M{
					"remoteId":   field.RemoteID,
					"locationId": field.LocationID,
					"createdAt":  now,
				},
			}).
			SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("bulk upserting %d custom fields: %w", len(writes), err)
	}
	return nil
}

// DeleteMissing removes cached entries of one field model whose remote ID is
// not in keep. This is the tombstone sweep after a fresh remote fetch; folder
// entries resolved in the same refresh must be included in keep or they are
// swept too.
func (r *CustomFieldRepository) DeleteMissing(ctx context.Context, locationID string, fieldModel model.FieldModel, keep []string) (int64, error) {
	if keep == nil {
		keep = []string{}
	}
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"locationId": locationID,
		"fieldModel": fieldModel,
		"remoteId":   bson.M{"$nin": keep},
	})
	if err != nil {
		return 0, fmt.Errorf("sweeping stale %s custom fields for %s: %w", fieldModel, locationID, err)
	}
	if result.DeletedCount > 0 {
		r.logger.WithFields(map[string]interface{}{
			"location_id": locationID,
			"field_model": fieldModel,
			"deleted":     result.DeletedCount,
		}).Info("swept stale custom field definitions")
	}
	return result.DeletedCount, nil
}

var _ repository.CustomFieldRepository = (*CustomFieldRepository)(nil)
