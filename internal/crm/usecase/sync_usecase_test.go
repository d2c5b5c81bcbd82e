package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/crm/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteOpportunities(n int) []client.RemoteOpportunity {
	opps := make([]client.RemoteOpportunity, 0, n)
	for i := 0; i < n; i++ {
		opps = append(opps, client.RemoteOpportunity{
			ID:     fmt.Sprintf("opp_%d", i),
			Name:   "deal",
			Status: "open",
		})
	}
	return opps
}

func TestSyncOpportunities_BatchesOfFiveHundred(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.fetchAllOpportunitiesFn = func(ctx context.Context, pipelineID string) ([]client.RemoteOpportunity, error) {
		return remoteOpportunities(1200), nil
	}
	var batchSizes []int
	d.opportunities.bulkUpsertFn = func(ctx context.Context, locationID string, updates []map[string]interface{}) (int, error) {
		batchSizes = append(batchSizes, len(updates))
		return len(updates), nil
	}

	result, err := engine.SyncOpportunities(context.Background(), "loc_1", "")

	require.NoError(t, err)
	assert.Equal(t, []int{500, 500, 200}, batchSizes)
	assert.Equal(t, 1200, result.Total)
	assert.Equal(t, 1200, result.Synced)
	assert.Zero(t, result.Failed)
}

func TestSyncOpportunities_FailedBatchCounted(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.fetchAllOpportunitiesFn = func(ctx context.Context, pipelineID string) ([]client.RemoteOpportunity, error) {
		return remoteOpportunities(700), nil
	}
	batch := 0
	d.opportunities.bulkUpsertFn = func(ctx context.Context, locationID string, updates []map[string]interface{}) (int, error) {
		batch++
		if batch == 2 {
			return 0, errors.New("write concern failure")
		}
		return len(updates), nil
	}

	result, err := engine.SyncOpportunities(context.Background(), "loc_1", "")

	// A failed batch degrades the counts, not the run.
	require.NoError(t, err)
	assert.Equal(t, 700, result.Total)
	assert.Equal(t, 500, result.Synced)
	assert.Equal(t, 200, result.Failed)
}

func TestSyncOpportunities_PipelinesRefreshedFirst(t *testing.T) {
	engine, d := newTestEngine()

	order := []string{}
	d.remote.getPipelinesFn = func(ctx context.Context) ([]client.RemotePipeline, error) {
		order = append(order, "pipelines")
		return []client.RemotePipeline{{ID: "pipe_1", Name: "Sales", Stages: []model.PipelineStage{{ID: "st_1"}}}}, nil
	}
	d.remote.fetchAllOpportunitiesFn = func(ctx context.Context, pipelineID string) ([]client.RemoteOpportunity, error) {
		order = append(order, "opportunities")
		return nil, nil
	}
	var upsertedPipeline *model.Pipeline
	d.pipelines.upsertFn = func(ctx context.Context, pipeline *model.Pipeline) error {
		upsertedPipeline = pipeline
		return nil
	}

	_, err := engine.SyncOpportunities(context.Background(), "loc_1", "")

	require.NoError(t, err)
	assert.Equal(t, []string{"pipelines", "opportunities"}, order)
	require.NotNil(t, upsertedPipeline)
	assert.Equal(t, "pipe_1", upsertedPipeline.RemoteID)
	assert.Equal(t, "loc_1", upsertedPipeline.LocationID)
}

func TestSyncOpportunities_RecordsNormalized(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.fetchAllOpportunitiesFn = func(ctx context.Context, pipelineID string) ([]client.RemoteOpportunity, error) {
		return []client.RemoteOpportunity{{
			ID:     "opp_1",
			Name:   "deal",
			Status: "",
			CustomFields: []model.RawFieldValue{
				{ID: "cf_1", FieldKey: "opportunity.region", ValueStr: "west", Type: "TEXT"},
			},
			Contact: &client.RemoteContact{ID: "con_1", Name: "Ada"},
		}}, nil
	}
	var record map[string]interface{}
	d.opportunities.bulkUpsertFn = func(ctx context.Context, locationID string, updates []map[string]interface{}) (int, error) {
		record = updates[0]
		return 1, nil
	}

	_, err := engine.SyncOpportunities(context.Background(), "loc_1", "")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "opp_1", record["remoteId"])
	assert.Equal(t, "open", record["status"])

	fields := record["customFields"].([]model.FieldValue)
	require.Len(t, fields, 1)
	assert.Equal(t, model.FieldValue{ID: "cf_1", Key: "opportunity.region", Value: "west"}, fields[0])

	contact := record["contact"].(model.ContactSnapshot)
	assert.Equal(t, "con_1", contact.ID)
	assert.Equal(t, "Ada", contact.Name)
}

func TestSyncOpportunities_WalkErrorAborts(t *testing.T) {
	engine, d := newTestEngine()

	d.remote.fetchAllOpportunitiesFn = func(ctx context.Context, pipelineID string) ([]client.RemoteOpportunity, error) {
		return nil, &client.RemoteAPIError{StatusCode: 502, Body: "bad gateway"}
	}
	bulkCalls := 0
	d.opportunities.bulkUpsertFn = func(ctx context.Context, locationID string, updates []map[string]interface{}) (int, error) {
		bulkCalls++
		return 0, nil
	}

	_, err := engine.SyncOpportunities(context.Background(), "loc_1", "")

	require.Error(t, err)
	assert.Zero(t, bulkCalls)
}
