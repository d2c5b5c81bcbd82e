package service_test

import (
	"testing"
	"time"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestBuildRemoteUpdatePayload_PipelineFallsBackToPrefetch(t *testing.T) {
	// Stored local record says pipeline B, the remote says A, the form omits
	// the pipeline: the payload must carry A, never the stale local B.
	form := &model.OpportunityForm{Name: strPtr("Renamed deal")}
	prefetch := &client.RemoteOpportunity{PipelineID: "A", PipelineStageID: "A-1"}

	payload := service.BuildRemoteUpdatePayload(form, prefetch)

	assert.Equal(t, "A", payload["pipelineId"])
	assert.Equal(t, "A-1", payload["pipelineStageId"])
	assert.Equal(t, "Renamed deal", payload["name"])
}

func TestBuildRemoteUpdatePayload_ExplicitPipelineWins(t *testing.T) {
	form := &model.OpportunityForm{PipelineID: strPtr("C"), PipelineStageID: strPtr("C-2")}
	prefetch := &client.RemoteOpportunity{PipelineID: "A", PipelineStageID: "A-1"}

	payload := service.BuildRemoteUpdatePayload(form, prefetch)

	assert.Equal(t, "C", payload["pipelineId"])
	assert.Equal(t, "C-2", payload["pipelineStageId"])
}

func TestBuildRemoteUpdatePayload_NoPrefetchOmitsPipeline(t *testing.T) {
	form := &model.OpportunityForm{Status: strPtr("won")}

	payload := service.BuildRemoteUpdatePayload(form, nil)

	_, hasPipeline := payload["pipelineId"]
	_, hasStage := payload["pipelineStageId"]
	assert.False(t, hasPipeline)
	assert.False(t, hasStage)
	assert.Equal(t, "won", payload["status"])
}

func TestBuildRemoteUpdatePayload_OnlySubmittedFields(t *testing.T) {
	form := &model.OpportunityForm{MonetaryValue: floatPtr(1200)}

	payload := service.BuildRemoteUpdatePayload(form, nil)

	assert.Equal(t, float64(1200), payload["monetaryValue"])
	assert.NotContains(t, payload, "name")
	assert.NotContains(t, payload, "assignedTo")
	assert.NotContains(t, payload, "customFields")
}

func TestBuildContactPayload_SplitsName(t *testing.T) {
	form := &model.OpportunityForm{ContactName: strPtr("Ada Mae Lovelace")}

	payload := service.BuildContactPayload(form)

	assert.Equal(t, "Ada", payload["firstName"])
	assert.Equal(t, "Mae Lovelace", payload["lastName"])
	assert.Equal(t, "Ada Mae Lovelace", payload["name"])
}

func TestBuildContactPayload_EmptyWhenNoContactEdits(t *testing.T) {
	form := &model.OpportunityForm{Name: strPtr("deal")}
	assert.Empty(t, service.BuildContactPayload(form))
}

func TestDiffFollowers(t *testing.T) {
	toAdd, toRemove := service.DiffFollowers(
		[]string{"A", "B", "C"},
		[]string{"B", "C", "D"},
	)

	assert.Equal(t, []string{"D"}, toAdd)
	assert.Equal(t, []string{"A"}, toRemove)
}

func TestDiffFollowers_NoChange(t *testing.T) {
	toAdd, toRemove := service.DiffFollowers([]string{"A", "B"}, []string{"B", "A"})
	assert.Empty(t, toAdd)
	assert.Empty(t, toRemove)
}

func TestMergeLocalUpdate_RemoteAuthoritativeForCore(t *testing.T) {
	form := &model.OpportunityForm{
		Name:   strPtr("form name"),
		Status: strPtr("open"),
	}
	remote := &client.RemoteOpportunity{
		Name:      "remote name",
		Status:    "won",
		UpdatedAt: "2026-08-30T10:00:00Z",
	}

	update := service.MergeLocalUpdate(form, remote, time.Now())

	assert.Equal(t, "remote name", update["name"])
	assert.Equal(t, "won", update["status"])
	assert.Equal(t, "2026-08-30T10:00:00Z", update["remoteUpdatedAt"])
}

func TestMergeLocalUpdate_FormWinsForCustomFields(t *testing.T) {
	submitted := []model.FieldValue{{ID: "cf_1", Key: "opportunity.region", Value: "west"}}
	form := &model.OpportunityForm{CustomFields: submitted}
	remote := &client.RemoteOpportunity{
		CustomFields: []model.RawFieldValue{{ID: "cf_1", ValueStr: "echoed", Type: "TEXT"}},
	}

	update := service.MergeLocalUpdate(form, remote, time.Now())

	assert.Equal(t, submitted, update["customFields"])
}

func TestMergeLocalUpdate_AbsentFieldsAreDropped(t *testing.T) {
	// Stage drag submits nothing but pipeline/stage; custom fields and
	// followers must not appear in the update document at all.
	form := &model.OpportunityForm{
		PipelineID:      strPtr("A"),
		PipelineStageID: strPtr("A-2"),
	}

	update := service.MergeLocalUpdate(form, nil, time.Now())

	assert.NotContains(t, update, "customFields")
	assert.NotContains(t, update, "followers")
	assert.NotContains(t, update, "additionalContacts")
	assert.Equal(t, "A", update["pipelineId"])
	assert.Equal(t, "A-2", update["pipelineStageId"])
	assert.Contains(t, update, "syncedAt")
}

func TestMergeLocalUpdate_FollowersFormThenRemote(t *testing.T) {
	remote := &client.RemoteOpportunity{Followers: []string{"u1"}}

	withForm := service.MergeLocalUpdate(&model.OpportunityForm{Followers: []string{"u2"}}, remote, time.Now())
	assert.Equal(t, []string{"u2"}, withForm["followers"])

	withoutForm := service.MergeLocalUpdate(&model.OpportunityForm{}, remote, time.Now())
	assert.Equal(t, []string{"u1"}, withoutForm["followers"])
}

func TestMergeContactSnapshot_FormOverridesRemote(t *testing.T) {
	form := &model.OpportunityForm{
		ContactEmail: strPtr("override@example.com"),
		ContactTags:  []string{"hot"},
	}
	remote := &client.RemoteOpportunity{
		ContactID: "con_9",
		Contact: &client.RemoteContact{
			Name:  "Remote Name",
			Email: "remote@example.com",
			Phone: "+15550123",
			Tags:  []string{"cold"},
		},
	}

	snapshot := service.MergeContactSnapshot(form, remote)

	assert.Equal(t, "con_9", snapshot.ID)
	assert.Equal(t, "Remote Name", snapshot.Name)
	assert.Equal(t, "override@example.com", snapshot.Email)
	assert.Equal(t, "+15550123", snapshot.Phone)
	assert.Equal(t, []string{"hot"}, snapshot.Tags)
}

func TestMergeContactSnapshot_NilRemote(t *testing.T) {
	form := &model.OpportunityForm{ContactID: strPtr("con_1"), ContactName: strPtr("X")}

	snapshot := service.MergeContactSnapshot(form, nil)

	require.Equal(t, "con_1", snapshot.ID)
	assert.Equal(t, "X", snapshot.Name)
	assert.NotNil(t, snapshot.Tags)
	assert.NotNil(t, snapshot.Followers)
}
