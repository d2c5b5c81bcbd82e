package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/repository"
	apperrors "crm-mirror/internal/shared/errors"
	"crm-mirror/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opportunitiesCollection = "opportunities"

// sortFieldAliases maps the UI sort names to stored document fields. Unknown
// names pass through unchanged.
var sortFieldAliases = map[string]string{
	"updatedOn":            "remoteUpdatedAt",
	"createdOn":            "createdAt",
	"lastStageChangeDate":  "lastStageChangeAt",
	"lastStatusChangeDate": "lastStatusChangeAt",
	"opportunityName":      "name",
	"stage":                "pipelineStageId",
	"status":               "status",
	"opportunitySource":    "source",
	"opportunityValue":     "monetaryValue",
}

// OpportunityRepository persists mirrored opportunities.
type OpportunityRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewOpportunityRepository creates a Mongo-backed opportunity repository.
func NewOpportunityRepository(db *mongo.Database, log logger.Logger) *OpportunityRepository {
	return &OpportunityRepository{
		collection: db.Collection(opportunitiesCollection),
		logger:     log.WithComponent("mongodb.opportunities"),
	}
}

// Get fetches one mirrored opportunity by its remote ID. The contact snapshot
// is normalized from legacy flat fields on the way out; the stored document is
// not rewritten.
func (r *OpportunityRepository) Get(ctx context.Context, locationID, remoteID string) (*model.Opportunity, error) {
	var opportunity model.Opportunity
	err := r.collection.FindOne(ctx, bson.M{
		"remoteId":   remoteID,
		"locationId": locationID,
	}).Decode(&opportunity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrOpportunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching opportunity %s: %w", remoteID, err)
	}
	opportunity.NormalizeContact()
	return &opportunity, nil
}

// listQuery builds the Mongo filter for a listing. The search term is quoted
// so free text with regex metacharacters still matches literally.
func listQuery(locationID string, filter repository.OpportunityFilter) bson.M {
	query := bson.M{"locationId": locationID}
	if filter.PipelineID != "" {
		query["pipelineId"] = filter.PipelineID
	}
	if filter.PipelineStageID != "" {
		query["pipelineStageId"] = filter.PipelineStageID
	}
	if filter.Status != "" && filter.Status != "all" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		regex := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"contact.name": regex},
			bson.M{"contact.email": regex},
			bson.M{"contactName": regex},
			bson.M{"contactEmail": regex},
		}
	}
	return query
}

// List pages through a location's mirrored opportunities. Search matches
// case-insensitively against the opportunity name and the contact name/email,
// including the legacy flat contact fields still present in old documents.
func (r *OpportunityRepository) List(ctx context.Context, locationID string, filter repository.OpportunityFilter) ([]*model.Opportunity, int64, error) {
	query := listQuery(locationID, filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("counting opportunities for %s: %w", locationID, err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	sortField := "remoteUpdatedAt"
	if filter.SortField != "" {
		if alias, ok := sortFieldAliases[filter.SortField]; ok {
			sortField = alias
		} else {
			sortField = filter.SortField
		}
	}
	sortDirection := -1
	if filter.SortOrder == "asc" {
		sortDirection = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortDirection}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listing opportunities for %s: %w", locationID, err)
	}
	defer cursor.Close(ctx)

	opportunities := make([]*model.Opportunity, 0, limit)
	if err := cursor.All(ctx, &opportunities); err != nil {
		return nil, 0, fmt.Errorf("decoding opportunities for %s: %w", locationID, err)
	}
	for _, opportunity := range opportunities {
		opportunity.NormalizeContact()
	}
	return opportunities, total, nil
}

// Upsert applies a sparse update document keyed by (remoteId, locationId) and
// returns the stored record. Fields absent from the update keep their values.
func (r *OpportunityRepository) Upsert(ctx context.Context, locationID, remoteID string, update map[string]interface{}) (*model.Opportunity, error) {
	now := time.Now()

	set := bson.M{"updatedAt": now}
	for key, value := range update {
		set[key] = value
	}
	delete(set, "remoteId")
	delete(set, "locationId")

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var opportunity model.Opportunity
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"remoteId": remoteID, "locationId": locationID},
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"remoteId":   remoteID,
				"locationId": locationID,
				"createdAt":  now,
			},
		},
		opts,
	).Decode(&opportunity)
	if err != nil {
		return nil, fmt.Errorf("upserting opportunity %s: %w", remoteID, err)
	}
	opportunity.NormalizeContact()
	return &opportunity, nil
}

// BulkUpsert writes one batch of sparse update documents with a single
// unordered BulkWrite, so one bad record does not sink its batch. Each update
// must carry its remoteId; entries without one are skipped. Returns the number
// of records written.
func (r *OpportunityRepository) BulkUpsert(ctx context.Context, locationID string, updates []map[string]interface{}) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	now := time.Now()

	writes := make([]mongo.WriteModel, 0, len(updates))
	for _, update := range updates {
		remoteID, _ := update["remoteId"].(string)
		if remoteID == "" {
			r.logger.Warn("skipping bulk upsert entry without remoteId")
			continue
		}

		set := bson.M{"updatedAt": now}
		for key, value := range update {
			set[key] = value
		}
		delete(set, "remoteId")
		delete(set, "locationId")

		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"remoteId": remoteID, "locationId": locationID}).
			SetUpdate(bson.M{
				"$set": set,
				"$setOnInsert": bson.M{
					"remoteId":   remoteID,
					"locationId": locationID,
					"createdAt":  now,
				},
			}).
			SetUpsert(true))
	}
	if len(writes) == 0 {
		return 0, nil
	}

	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) && result != nil {
			// Unordered write: some documents landed, the rest are reported
			// as write errors. Surface the partial count to the caller.
			written := int(result.UpsertedCount + result.ModifiedCount + result.MatchedCount)
			r.logger.WithFields(map[string]interface{}{
				"written": written,
				"errors":  len(bulkErr.WriteErrors),
			}).Warn("bulk upsert completed with write errors")
			return written, err
		}
		return 0, fmt.Errorf("bulk upserting %d opportunities: %w", len(writes), err)
	}
	return len(writes), nil
}

// SetStatus updates only the status of a mirrored opportunity.
func (r *OpportunityRepository) SetStatus(ctx context.Context, locationID, remoteID string, status model.Status) (*model.Opportunity, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var opportunity model.Opportunity
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"remoteId": remoteID, "locationId": locationID},
		bson.M{"$set": bson.M{
			"status":    status,
			"syncedAt":  time.Now(),
			"updatedAt": time.Now(),
		}},
		opts,
	).Decode(&opportunity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrOpportunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("setting status of opportunity %s: %w", remoteID, err)
	}
	opportunity.NormalizeContact()
	return &opportunity, nil
}

// Delete removes a mirrored opportunity. Deleting an absent record is not an
// error: the remote delete already succeeded and the mirror converges.
func (r *OpportunityRepository) Delete(ctx context.Context, locationID, remoteID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{
		"remoteId":   remoteID,
		"locationId": locationID,
	})
	if err != nil {
		return fmt.Errorf("deleting opportunity %s: %w", remoteID, err)
	}
	return nil
}

var _ repository.OpportunityRepository = (*OpportunityRepository)(nil)
