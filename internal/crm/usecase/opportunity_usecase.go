package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/repository"
	"crm-mirror/internal/crm/domain/service"
	apperrors "crm-mirror/internal/shared/errors"
)

// UpdateResult is the outcome of the single-record update protocol: the
// stored record plus warnings from best-effort sub-steps that failed.
type UpdateResult struct {
	Opportunity *model.Opportunity `json:"opportunity"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// StagePage is one stage's slice of a per-stage board listing.
type StagePage struct {
	Opportunities []*model.Opportunity `json:"opportunities"`
	Total         int64                `json:"total"`
}

// GetOpportunity reads one mirrored record. Local only; legacy flat contact
// fields are normalized on the way out.
func (e *Engine) GetOpportunity(ctx context.Context, locationID, opportunityID string) (*model.Opportunity, error) {
	return e.opportunities.Get(ctx, locationID, opportunityID)
}

// ListOpportunities pages through the mirror with the given filter. No remote
// calls; staleness is bounded by the last sync.
func (e *Engine) ListOpportunities(ctx context.Context, locationID string, filter repository.OpportunityFilter) ([]*model.Opportunity, int64, error) {
	return e.opportunities.List(ctx, locationID, filter)
}

// ListBoard produces a per-stage listing of one pipeline, one page per stage,
// with the stage queries issued concurrently. Page size falls back to the
// location's configured size.
func (e *Engine) ListBoard(ctx context.Context, locationID, pipelineID string, filter repository.OpportunityFilter) (map[string]*StagePage, error) {
	location, err := e.locations.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if filter.Limit < 1 {
		filter.Limit = location.PageSize
	}

	pipelines, err := e.pipelines.List(ctx, locationID)
	if err != nil {
		return nil, err
	}
	var stages []model.PipelineStage
	for _, pipeline := range pipelines {
		if pipeline.RemoteID == pipelineID {
			stages = pipeline.Stages
			break
		}
	}
	if stages == nil {
		return nil, apperrors.ErrPipelineNotFound
	}

	pages := make(map[string]*StagePage, len(stages))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	for _, stage := range stages {
		wg.Add(1)
		go func(stageID string) {
			defer wg.Done()
			stageFilter := filter
			stageFilter.PipelineID = pipelineID
			stageFilter.PipelineStageID = stageID

			opportunities, total, err := e.opportunities.List(ctx, locationID, stageFilter)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			pages[stageID] = &StagePage{Opportunities: opportunities, Total: total}
		}(stage.ID)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return pages, nil
}

// CreateOpportunity creates the record remotely, applies best-effort contact
// and follower follow-ups, and mirrors the result locally. The form's contact
// display fields and followers win over the remote echo.
func (e *Engine) CreateOpportunity(ctx context.Context, locationID string, form *model.OpportunityForm) (*UpdateResult, error) {
	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return nil, err
	}

	created, err := remote.CreateOpportunity(ctx, service.BuildCreatePayload(form))
	if err != nil {
		return nil, classifyRemoteError(err, "create opportunity")
	}

	var warnings []string

	contactID := created.ContactID
	if contactID == "" && form.ContactID != nil {
		contactID = *form.ContactID
	}
	if contactID != "" {
		if payload := service.BuildContactPayload(form); len(payload) > 0 {
			if err := remote.UpdateContact(ctx, contactID, payload); err != nil {
				warnings = append(warnings, fmt.Sprintf("contact update failed: %v", err))
				e.logger.WithFields(map[string]interface{}{
					"opportunity_id": created.ID,
					"contact_id":     contactID,
					"error":          err.Error(),
				}).Warn("contact update after create failed")
			}
		}
	}

	if len(form.Followers) > 0 {
		if err := remote.AddFollowers(ctx, created.ID, form.Followers); err != nil {
			warnings = append(warnings, fmt.Sprintf("adding followers failed: %v", err))
			e.logger.WithFields(map[string]interface{}{
				"opportunity_id": created.ID,
				"error":          err.Error(),
			}).Warn("adding followers after create failed")
		}
	}

	record := service.BuildCreateRecord(form, created, time.Now())
	stored, err := e.opportunities.Upsert(ctx, locationID, created.ID, record)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{Opportunity: stored, Warnings: warnings}, nil
}

// UpdateOpportunity runs the single-record update protocol:
//
//  1. best-effort pre-fetch of the remote record,
//  2. remote update built from the submitted fields, with pipeline/stage
//     falling back to the pre-fetch (never to the possibly stale mirror),
//  3. best-effort contact sub-update,
//  4. best-effort follower diff (exact adds and removes only),
//  5. re-fetch (falling back to the pre-fetch),
//  6. merge-table persistence into the mirror.
//
// Steps 3 and 4 surface as warnings; only the remote update itself is fatal.
func (e *Engine) UpdateOpportunity(ctx context.Context, locationID, opportunityID string, form *model.OpportunityForm) (*UpdateResult, error) {
	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return nil, err
	}

	prefetch, err := remote.GetOpportunity(ctx, opportunityID)
	if err != nil {
		e.logger.WithFields(map[string]interface{}{
			"opportunity_id": opportunityID,
			"error":          err.Error(),
		}).Warn("pre-fetch of remote opportunity failed")
		prefetch = nil
	}

	if _, err := remote.UpdateOpportunity(ctx, opportunityID, service.BuildRemoteUpdatePayload(form, prefetch)); err != nil {
		return nil, classifyRemoteError(err, "update opportunity")
	}

	var warnings []string

	contactID := ""
	if form.ContactID != nil {
		contactID = *form.ContactID
	} else if prefetch != nil {
		contactID = prefetch.ContactID
	}
	if contactID != "" {
		if payload := service.BuildContactPayload(form); len(payload) > 0 {
			if err := remote.UpdateContact(ctx, contactID, payload); err != nil {
				warnings = append(warnings, fmt.Sprintf("contact update failed: %v", err))
				e.logger.WithFields(map[string]interface{}{
					"opportunity_id": opportunityID,
					"contact_id":     contactID,
					"error":          err.Error(),
				}).Warn("contact sub-update failed")
			}
		}
	}

	if form.Followers != nil {
		var current []string
		if prefetch != nil {
			current = prefetch.Followers
		}
		toAdd, toRemove := service.DiffFollowers(current, form.Followers)
		if len(toRemove) > 0 {
			if err := remote.RemoveFollowers(ctx, opportunityID, toRemove, false); err != nil {
				warnings = append(warnings, fmt.Sprintf("removing followers failed: %v", err))
				e.logger.WithFields(map[string]interface{}{
					"opportunity_id": opportunityID,
					"error":          err.Error(),
				}).Warn("removing followers failed")
			}
		}
		if len(toAdd) > 0 {
			if err := remote.AddFollowers(ctx, opportunityID, toAdd); err != nil {
				warnings = append(warnings, fmt.Sprintf("adding followers failed: %v", err))
				e.logger.WithFields(map[string]interface{}{
					"opportunity_id": opportunityID,
					"error":          err.Error(),
				}).Warn("adding followers failed")
			}
		}
	}

	refetched, err := remote.GetOpportunity(ctx, opportunityID)
	if err != nil {
		e.logger.WithFields(map[string]interface{}{
			"opportunity_id": opportunityID,
			"error":          err.Error(),
		}).Warn("re-fetch failed, persisting from pre-fetch state")
		refetched = prefetch
	}

	update := service.MergeLocalUpdate(form, refetched, time.Now())
	stored, err := e.opportunities.Upsert(ctx, locationID, opportunityID, update)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{Opportunity: stored, Warnings: warnings}, nil
}

// DeleteOpportunity deletes remote-first. A failed remote delete aborts the
// operation and keeps the mirrored record, so the mirror never drops a record
// the remote still has.
func (e *Engine) DeleteOpportunity(ctx context.Context, locationID, opportunityID string) error {
	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return err
	}

	if err := remote.DeleteOpportunity(ctx, opportunityID); err != nil {
		return classifyRemoteError(err, "delete opportunity")
	}
	return e.opportunities.Delete(ctx, locationID, opportunityID)
}

// UpdateOpportunityStatus validates and applies a status change remote-first,
// then mirrors it locally.
func (e *Engine) UpdateOpportunityStatus(ctx context.Context, locationID, opportunityID, status string) (*model.Opportunity, error) {
	if !model.ValidStatus(status) {
		return nil, apperrors.NewValidationError("invalid opportunity status").
			WithCause(apperrors.ErrInvalidStatus).
			WithDetail("status", status)
	}

	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if err := remote.UpdateOpportunityStatus(ctx, opportunityID, status); err != nil {
		return nil, classifyRemoteError(err, "update status")
	}
	return e.opportunities.SetStatus(ctx, locationID, opportunityID, model.Status(status))
}
