package usecase_test

import (
	"context"
	"errors"
	"testing"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/repository"
	apperrors "crm-mirror/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUpdateOpportunity_PipelineFallsBackToPrefetch(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.getOpportunityFn = func(ctx context.Context, id string) (*client.RemoteOpportunity, error) {
		return &client.RemoteOpportunity{ID: id, PipelineID: "A", PipelineStageID: "A-1"}, nil
	}
	var sentPayload client.Payload
	d.remote.updateOpportunityFn = func(ctx context.Context, id string, payload client.Payload) (*client.RemoteOpportunity, error) {
		sentPayload = payload
		return &client.RemoteOpportunity{ID: id}, nil
	}

	_, err := engine.UpdateOpportunity(context.Background(), "loc_1", "opp_1",
		&model.OpportunityForm{Name: strPtr("renamed")})

	require.NoError(t, err)
	assert.Equal(t, "A", sentPayload["pipelineId"])
	assert.Equal(t, "A-1", sentPayload["pipelineStageId"])
}

func TestUpdateOpportunity_ExplicitPipelineOverrides(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.getOpportunityFn = func(ctx context.Context, id string) (*client.RemoteOpportunity, error) {
		return &client.RemoteOpportunity{ID: id, PipelineID: "A", PipelineStageID: "A-1"}, nil
	}
	var sentPayload client.Payload
	d.remote.updateOpportunityFn = func(ctx context.Context, id string, payload client.Payload) (*client.RemoteOpportunity, error) {
		sentPayload = payload
		return &client.RemoteOpportunity{ID: id}, nil
	}

	_, err := engine.UpdateOpportunity(context.Background(), "loc_1", "opp_1",
		&model.OpportunityForm{PipelineID: strPtr("C"), PipelineStageID: strPtr("C-2")})

	require.NoError(t, err)
	assert.Equal(t, "C", sentPayload["pipelineId"])
	assert.Equal(t, "C-2", sentPayload["pipelineStageId"])
}

func TestUpdateOpportunity_ContactFailureIsWarning(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.updateContactFn = func(ctx context.Context, contactID string, payload client.Payload) error {
		return errors.New("contact api down")
	}
	d.remote.getOpportunityFn = func(ctx context.Context, id string) (*client.RemoteOpportunity, error) {
		return &client.RemoteOpportunity{ID: id, ContactID: "con_1"}, nil
	}

	result, err := engine.UpdateOpportunity(context.Background(), "loc_1", "opp_1",
		&model.OpportunityForm{ContactName: strPtr("New Name")})

	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "contact update failed")
	assert.NotNil(t, result.Opportunity)
}

func TestUpdateOpportunity_FollowerDiff(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.getOpportunityFn = func(ctx context.Context, id string) (*client.RemoteOpportunity, error) {
		return &client.RemoteOpportunity{ID: id, Followers: []string{"A", "B", "C"}}, nil
	}
	var added, removed []string
	d.remote.addFollowersFn = func(ctx context.Context, id string, followers []string) error {
		added = followers
		return nil
	}
	d.remote.removeFollowersFn = func(ctx context.Context, id string, followers []string, removeAll bool) error {
		removed = followers
		return nil
	}

	_, err := engine.UpdateOpportunity(context.Background(), "loc_1", "opp_1",
		&model.OpportunityForm{Followers: []string{"B", "C", "D"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, added)
	assert.Equal(t, []string{"A"}, removed)
}

func TestUpdateOpportunity_NoFollowerCallsWhenOmitted(t *testing.T) {
	engine, d := newTestEngine()

	followerCalls := 0
	d.remote.addFollowersFn = func(ctx context.Context, id string, followers []string) error {
		followerCalls++
		return nil
	}
	d.remote.removeFollowersFn = func(ctx context.Context, id string, followers []string, removeAll bool) error {
		followerCalls++
		return nil
	}

	_, err := engine.UpdateOpportunity(context.Background(), "loc_1", "opp_1",
		&model.OpportunityForm{Name: strPtr("renamed")})

	require.NoError(t, err)
	assert.Zero(t, followerCalls)
}

func TestUpdateOpportunity_RemoteUpdateFailureIsFatal(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.updateOpportunityFn = func(ctx context.Context, id string, payload client.Payload) (*client.RemoteOpportunity, error) {
		return nil, &client.RemoteAPIError{StatusCode: 500, Body: "boom"}
	}
	upserts := 0
	d.opportunities.upsertFn = func(ctx context.Context, locationID, remoteID string, update map[string]interface{}) (*model.Opportunity, error) {
		upserts++
		return &model.Opportunity{}, nil
	}

	_, err := engine.UpdateOpportunity(context.Background(), "loc_1", "opp_1",
		&model.OpportunityForm{Name: strPtr("renamed")})

	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	assert.Zero(t, upserts)
}

func TestUpdateOpportunity_RefetchFailureFallsBackToPrefetch(t *testing.T) {
	engine, d := newTestEngine()

	fetches := 0
	d.remote.getOpportunityFn = func(ctx context.Context, id string) (*client.RemoteOpportunity, error) {
		fetches++
		if fetches == 1 {
			return &client.RemoteOpportunity{ID: id, Name: "prefetched name", Status: "won"}, nil
		}
		return nil, &client.RemoteAPIError{StatusCode: 502, Body: "unavailable"}
	}
	var persisted map[string]interface{}
	d.opportunities.upsertFn = func(ctx context.Context, locationID, remoteID string, update map[string]interface{}) (*model.Opportunity, error) {
		persisted = update
		return &model.Opportunity{RemoteID: remoteID}, nil
	}

	_, err := engine.UpdateOpportunity(context.Background(), "loc_1", "opp_1",
		&model.OpportunityForm{Name: strPtr("form name")})

	require.NoError(t, err)
	assert.Equal(t, "prefetched name", persisted["name"])
	assert.Equal(t, "won", persisted["status"])
}

func TestDeleteOpportunity_RemoteFailureKeepsLocal(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.deleteOpportunityFn = func(ctx context.Context, id string) error {
		return &client.RemoteAPIError{StatusCode: 502, Body: "gateway error"}
	}
	localDeletes := 0
	d.opportunities.deleteFn = func(ctx context.Context, locationID, remoteID string) error {
		localDeletes++
		return nil
	}

	err := engine.DeleteOpportunity(context.Background(), "loc_1", "opp_1")

	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	assert.Zero(t, localDeletes)
}

func TestDeleteOpportunity_RemoteSuccessDeletesLocal(t *testing.T) {
	engine, d := newTestEngine()

	localDeletes := 0
	d.opportunities.deleteFn = func(ctx context.Context, locationID, remoteID string) error {
		localDeletes++
		assert.Equal(t, "opp_1", remoteID)
		return nil
	}

	err := engine.DeleteOpportunity(context.Background(), "loc_1", "opp_1")

	require.NoError(t, err)
	assert.Equal(t, 1, localDeletes)
}

func TestUpdateOpportunityStatus_RejectsUnknownStatus(t *testing.T) {
	engine, d := newTestEngine()

	remoteCalls := 0
	d.remote.updateOpportunityStatusFn = func(ctx context.Context, id, status string) error {
		remoteCalls++
		return nil
	}

	_, err := engine.UpdateOpportunityStatus(context.Background(), "loc_1", "opp_1", "paused")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, remoteCalls)
}

func TestUpdateOpportunityStatus_RemoteFirst(t *testing.T) {
	engine, d := newTestEngine()

	var remoteStatus string
	d.remote.updateOpportunityStatusFn = func(ctx context.Context, id, status string) error {
		remoteStatus = status
		return nil
	}

	updated, err := engine.UpdateOpportunityStatus(context.Background(), "loc_1", "opp_1", "won")

	require.NoError(t, err)
	assert.Equal(t, "won", remoteStatus)
	assert.Equal(t, model.StatusWon, updated.Status)
}

func TestCreateOpportunity_BestEffortFollowUps(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.createOpportunityFn = func(ctx context.Context, payload client.Payload) (*client.RemoteOpportunity, error) {
		assert.Equal(t, "Big deal", payload["name"])
		return &client.RemoteOpportunity{ID: "opp_9", Name: "Big deal", ContactID: "con_1"}, nil
	}
	d.remote.updateContactFn = func(ctx context.Context, contactID string, payload client.Payload) error {
		return errors.New("contact api down")
	}
	var addedFollowers []string
	d.remote.addFollowersFn = func(ctx context.Context, id string, followers []string) error {
		addedFollowers = followers
		return nil
	}

	result, err := engine.CreateOpportunity(context.Background(), "loc_1", &model.OpportunityForm{
		Name:        strPtr("Big deal"),
		PipelineID:  strPtr("pipe_1"),
		ContactName: strPtr("Ada"),
		Followers:   []string{"u1", "u2"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, addedFollowers)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "contact update failed")
}

func TestCreateOpportunity_MissingCredential(t *testing.T) {
	engine, d := newTestEngine()

	d.locations.getFn = func(ctx context.Context, locationID string) (*model.Location, error) {
		return model.NewLocation(locationID), nil // no api key
	}

	_, err := engine.CreateOpportunity(context.Background(), "loc_1", &model.OpportunityForm{Name: strPtr("x")})

	require.Error(t, err)
	assert.True(t, apperrors.IsCredentialInvalid(err))
}

func TestListBoard_PerStageFanOut(t *testing.T) {
	engine, d := newTestEngine()

	d.pipelines.listFn = func(ctx context.Context, locationID string) ([]*model.Pipeline, error) {
		return []*model.Pipeline{{
			RemoteID:   "pipe_1",
			LocationID: locationID,
			Stages: []model.PipelineStage{
				{ID: "st_1", Name: "New"},
				{ID: "st_2", Name: "Qualified"},
			},
		}}, nil
	}
	d.opportunities.listFn = func(ctx context.Context, locationID string, filter repository.OpportunityFilter) ([]*model.Opportunity, int64, error) {
		assert.Equal(t, "pipe_1", filter.PipelineID)
		return []*model.Opportunity{{RemoteID: "opp_" + filter.PipelineStageID}}, 1, nil
	}

	pages, err := engine.ListBoard(context.Background(), "loc_1", "pipe_1", repository.OpportunityFilter{})

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "opp_st_1", pages["st_1"].Opportunities[0].RemoteID)
	assert.Equal(t, int64(1), pages["st_2"].Total)
}

func TestListBoard_UnknownPipeline(t *testing.T) {
	engine, d := newTestEngine()

	d.pipelines.listFn = func(ctx context.Context, locationID string) ([]*model.Pipeline, error) {
		return []*model.Pipeline{}, nil
	}

	_, err := engine.ListBoard(context.Background(), "loc_1", "missing", repository.OpportunityFilter{})

	assert.ErrorIs(t, err, apperrors.ErrPipelineNotFound)
}
