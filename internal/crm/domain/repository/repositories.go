package repository

import (
	"context"

	"crm-mirror/internal/crm/domain/model"
)

// OpportunityFilter narrows local opportunity listings. Zero values mean "no
// filter"; Status "all" is treated the same as empty.
type OpportunityFilter struct {
	PipelineID      string
	PipelineStageID string
	Status          string
	Search          string
	SortField       string
	SortOrder       string
	Page            int
	Limit           int
}

// LocationRepository persists tenant records (credential + settings).
type LocationRepository interface {
	Get(ctx context.Context, locationID string) (*model.Location, error)
	Create(ctx context.Context, location *model.Location) error
	UpdateCredential(ctx context.Context, locationID, apiKey string) (*model.Location, error)
	UpdateSettings(ctx context.Context, locationID string, patch map[string]interface{}) (*model.Location, error)
}

// PipelineRepository persists mirrored pipelines, unique per (remoteId, locationId).
type PipelineRepository interface {
	List(ctx context.Context, locationID string) ([]*model.Pipeline, error)
	Upsert(ctx context.Context, pipeline *model.Pipeline) error
}

// OpportunityRepository persists mirrored opportunities, unique per (remoteId, locationId).
// Upsert applies a sparse document: absent fields keep their stored values.
type OpportunityRepository interface {
	Get(ctx context.Context, locationID, remoteID string) (*model.Opportunity, error)
	List(ctx context.Context, locationID string, filter OpportunityFilter) ([]*model.Opportunity, int64, error)
	Upsert(ctx context.Context, locationID, remoteID string, update map[string]interface{}) (*model.Opportunity, error)
	BulkUpsert(ctx context.Context, locationID string, updates []map[string]interface{}) (int, error)
	SetStatus(ctx context.Context, locationID, remoteID string, status model.Status) (*model.Opportunity, error)
	Delete(ctx context.Context, locationID, remoteID string) error
}

// CustomFieldRepository caches remote custom-field and folder definitions,
// unique per (remoteId, locationId).
type CustomFieldRepository interface {
	ListByModel(ctx context.Context, locationID string, fieldModel model.FieldModel) ([]*model.CustomField, error)
	BulkUpsert(ctx context.Context, fields []*model.CustomField) error
	// DeleteMissing removes cached entries of the given model whose remote ID is
	// not in keep (the tombstone sweep after a fresh fetch).
	DeleteMissing(ctx context.Context, locationID string, fieldModel model.FieldModel, keep []string) (int64, error)
}
