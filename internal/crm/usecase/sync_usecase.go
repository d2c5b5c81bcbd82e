package usecase

import (
	"context"
	"time"

	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/service"
)

// syncBatchSize is the number of opportunity upserts per bulk write.
const syncBatchSize = 500

// SyncResult summarizes one full sync run. Failed counts records whose batch
// could not be written; the run itself still succeeds.
type SyncResult struct {
	Total  int `json:"total"`
	Synced int `json:"synced"`
	Failed int `json:"errors"`
}

// SyncPipelines mirrors the remote pipeline definitions, replacing each
// pipeline's stage list wholesale. Returns the refreshed local list.
func (e *Engine) SyncPipelines(ctx context.Context, locationID string) ([]*model.Pipeline, error) {
	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return nil, err
	}

	fetched, err := remote.GetPipelines(ctx)
	if err != nil {
		return nil, classifyRemoteError(err, "sync pipelines")
	}

	for _, rp := range fetched {
		pipeline := &model.Pipeline{
			RemoteID:   rp.ID,
			LocationID: locationID,
			Name:       rp.Name,
			Stages:     rp.Stages,
		}
		if err := e.pipelines.Upsert(ctx, pipeline); err != nil {
			return nil, err
		}
	}

	return e.pipelines.List(ctx, locationID)
}

// ListPipelines returns the mirrored pipelines without touching the remote.
func (e *Engine) ListPipelines(ctx context.Context, locationID string) ([]*model.Pipeline, error) {
	return e.pipelines.List(ctx, locationID)
}

// SyncOpportunities drains the remote opportunity search (optionally scoped to
// one pipeline) and upserts everything into the mirror in batches. Pipelines
// are refreshed first so stage references in the mirrored records resolve.
// Re-running is idempotent: records are keyed by (remoteId, locationId).
func (e *Engine) SyncOpportunities(ctx context.Context, locationID, pipelineID string) (*SyncResult, error) {
	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if _, err := e.SyncPipelines(ctx, locationID); err != nil {
		return nil, err
	}

	fetched, err := remote.FetchAllOpportunities(ctx, pipelineID)
	if err != nil {
		return nil, classifyRemoteError(err, "fetch opportunities")
	}

	now := time.Now()
	result := &SyncResult{Total: len(fetched)}

	for start := 0; start < len(fetched); start += syncBatchSize {
		end := start + syncBatchSize
		if end > len(fetched) {
			end = len(fetched)
		}
		batch := make([]map[string]interface{}, 0, end-start)
		for _, opp := range fetched[start:end] {
			batch = append(batch, service.BuildSyncRecord(opp, now))
		}

		written, err := e.opportunities.BulkUpsert(ctx, locationID, batch)
		if err != nil {
			e.logger.WithFields(map[string]interface{}{
				"location_id": locationID,
				"batch_start": start,
				"error":       err.Error(),
			}).Error("opportunity sync batch failed")
			result.Synced += written
			result.Failed += len(batch) - written
			continue
		}
		result.Synced += written
	}

	e.logger.WithFields(map[string]interface{}{
		"location_id": locationID,
		"total":       result.Total,
		"synced":      result.Synced,
		"failed":      result.Failed,
	}).Info("opportunity sync finished")
	return result, nil
}
