package usecase_test

import (
	"context"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/repository"
	"crm-mirror/internal/crm/usecase"
	apperrors "crm-mirror/internal/shared/errors"
	"crm-mirror/internal/shared/logger"
)

// Function-field mocks: tests set only the behaviors they exercise.

type locationRepoMock struct {
	getFn              func(ctx context.Context, locationID string) (*model.Location, error)
	createFn           func(ctx context.Context, location *model.Location) error
	updateCredentialFn func(ctx context.Context, locationID, apiKey string) (*model.Location, error)
	updateSettingsFn   func(ctx context.Context, locationID string, patch map[string]interface{}) (*model.Location, error)
}

func (m *locationRepoMock) Get(ctx context.Context, locationID string) (*model.Location, error) {
	if m.getFn != nil {
		return m.getFn(ctx, locationID)
	}
	location := model.NewLocation(locationID)
	location.APIKey = "stored-key"
	return location, nil
}

func (m *locationRepoMock) Create(ctx context.Context, location *model.Location) error {
	if m.createFn != nil {
		return m.createFn(ctx, location)
	}
	return nil
}

func (m *locationRepoMock) UpdateCredential(ctx context.Context, locationID, apiKey string) (*model.Location, error) {
	if m.updateCredentialFn != nil {
		return m.updateCredentialFn(ctx, locationID, apiKey)
	}
	location := model.NewLocation(locationID)
	location.APIKey = apiKey
	return location, nil
}

func (m *locationRepoMock) UpdateSettings(ctx context.Context, locationID string, patch map[string]interface{}) (*model.Location, error) {
	if m.updateSettingsFn != nil {
		return m.updateSettingsFn(ctx, locationID, patch)
	}
	return model.NewLocation(locationID), nil
}

type pipelineRepoMock struct {
	listFn   func(ctx context.Context, locationID string) ([]*model.Pipeline, error)
	upsertFn func(ctx context.Context, pipeline *model.Pipeline) error
}

func (m *pipelineRepoMock) List(ctx context.Context, locationID string) ([]*model.Pipeline, error) {
	if m.listFn != nil {
		return m.listFn(ctx, locationID)
	}
	return []*model.Pipeline{}, nil
}

func (m *pipelineRepoMock) Upsert(ctx context.Context, pipeline *model.Pipeline) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, pipeline)
	}
	return nil
}

type opportunityRepoMock struct {
	getFn        func(ctx context.Context, locationID, remoteID string) (*model.Opportunity, error)
	listFn       func(ctx context.Context, locationID string, filter repository.OpportunityFilter) ([]*model.Opportunity, int64, error)
	upsertFn     func(ctx context.Context, locationID, remoteID string, update map[string]interface{}) (*model.Opportunity, error)
	bulkUpsertFn func(ctx context.Context, locationID string, updates []map[string]interface{}) (int, error)
	setStatusFn  func(ctx context.Context, locationID, remoteID string, status model.Status) (*model.Opportunity, error)
	deleteFn     func(ctx context.Context, locationID, remoteID string) error
}

func (m *opportunityRepoMock) Get(ctx context.Context, locationID, remoteID string) (*model.Opportunity, error) {
	if m.getFn != nil {
		return m.getFn(ctx, locationID, remoteID)
	}
	return nil, apperrors.ErrOpportunityNotFound
}

func (m *opportunityRepoMock) List(ctx context.Context, locationID string, filter repository.OpportunityFilter) ([]*model.Opportunity, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, locationID, filter)
	}
	return []*model.Opportunity{}, 0, nil
}

func (m *opportunityRepoMock) Upsert(ctx context.Context, locationID, remoteID string, update map[string]interface{}) (*model.Opportunity, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, locationID, remoteID, update)
	}
	return &model.Opportunity{RemoteID: remoteID, LocationID: locationID}, nil
}

func (m *opportunityRepoMock) BulkUpsert(ctx context.Context, locationID string, updates []map[string]interface{}) (int, error) {
	if m.bulkUpsertFn != nil {
		return m.bulkUpsertFn(ctx, locationID, updates)
	}
	return len(updates), nil
}

func (m *opportunityRepoMock) SetStatus(ctx context.Context, locationID, remoteID string, status model.Status) (*model.Opportunity, error) {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, locationID, remoteID, status)
	}
	return &model.Opportunity{RemoteID: remoteID, LocationID: locationID, Status: status}, nil
}

func (m *opportunityRepoMock) Delete(ctx context.Context, locationID, remoteID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, locationID, remoteID)
	}
	return nil
}

type customFieldRepoMock struct {
	listByModelFn   func(ctx context.Context, locationID string, fieldModel model.FieldModel) ([]*model.CustomField, error)
	bulkUpsertFn    func(ctx context.Context, fields []*model.CustomField) error
	deleteMissingFn func(ctx context.Context, locationID string, fieldModel model.FieldModel, keep []string) (int64, error)
}

func (m *customFieldRepoMock) ListByModel(ctx context.Context, locationID string, fieldModel model.FieldModel) ([]*model.CustomField, error) {
	if m.listByModelFn != nil {
		return m.listByModelFn(ctx, locationID, fieldModel)
	}
	return []*model.CustomField{}, nil
}

func (m *customFieldRepoMock) BulkUpsert(ctx context.Context, fields []*model.CustomField) error {
	if m.bulkUpsertFn != nil {
		return m.bulkUpsertFn(ctx, fields)
	}
	return nil
}

func (m *customFieldRepoMock) DeleteMissing(ctx context.Context, locationID string, fieldModel model.FieldModel, keep []string) (int64, error) {
	if m.deleteMissingFn != nil {
		return m.deleteMissingFn(ctx, locationID, fieldModel, keep)
	}
	return 0, nil
}

type crmClientMock struct {
	getPipelinesFn            func(ctx context.Context) ([]client.RemotePipeline, error)
	searchOpportunitiesFn     func(ctx context.Context, params client.SearchParams) (*client.SearchPage, error)
	fetchAllOpportunitiesFn   func(ctx context.Context, pipelineID string) ([]client.RemoteOpportunity, error)
	getOpportunityFn          func(ctx context.Context, opportunityID string) (*client.RemoteOpportunity, error)
	createOpportunityFn       func(ctx context.Context, payload client.Payload) (*client.RemoteOpportunity, error)
	updateOpportunityFn       func(ctx context.Context, opportunityID string, payload client.Payload) (*client.RemoteOpportunity, error)
	deleteOpportunityFn       func(ctx context.Context, opportunityID string) error
	updateOpportunityStatusFn func(ctx context.Context, opportunityID, status string) error
	addFollowersFn            func(ctx context.Context, opportunityID string, followers []string) error
	removeFollowersFn         func(ctx context.Context, opportunityID string, followers []string, removeAll bool) error
	searchContactsFn          func(ctx context.Context, query string) ([]client.RemoteContact, int, error)
	updateContactFn           func(ctx context.Context, contactID string, payload client.Payload) error
	getUsersFn                func(ctx context.Context) ([]client.RemoteUser, error)
	getTagsFn                 func(ctx context.Context) ([]client.RemoteTag, error)
	getCustomFieldsFn         func(ctx context.Context, fieldModel string) ([]client.RemoteCustomField, error)
	getCustomFieldFn          func(ctx context.Context, fieldID string) (*client.RemoteCustomField, error)
}

func (m *crmClientMock) GetPipelines(ctx context.Context) ([]client.RemotePipeline, error) {
	if m.getPipelinesFn != nil {
		return m.getPipelinesFn(ctx)
	}
	return []client.RemotePipeline{}, nil
}

func (m *crmClientMock) SearchOpportunities(ctx context.Context, params client.SearchParams) (*client.SearchPage, error) {
	if m.searchOpportunitiesFn != nil {
		return m.searchOpportunitiesFn(ctx, params)
	}
	return &client.SearchPage{}, nil
}

func (m *crmClientMock) FetchAllOpportunities(ctx context.Context, pipelineID string) ([]client.RemoteOpportunity, error) {
	if m.fetchAllOpportunitiesFn != nil {
		return m.fetchAllOpportunitiesFn(ctx, pipelineID)
	}
	return []client.RemoteOpportunity{}, nil
}

func (m *crmClientMock) GetOpportunity(ctx context.Context, opportunityID string) (*client.RemoteOpportunity, error) {
	if m.getOpportunityFn != nil {
		return m.getOpportunityFn(ctx, opportunityID)
	}
	return &client.RemoteOpportunity{ID: opportunityID}, nil
}

func (m *crmClientMock) CreateOpportunity(ctx context.Context, payload client.Payload) (*client.RemoteOpportunity, error) {
	if m.createOpportunityFn != nil {
		return m.createOpportunityFn(ctx, payload)
	}
	return &client.RemoteOpportunity{ID: "opp_new"}, nil
}

func (m *crmClientMock) UpdateOpportunity(ctx context.Context, opportunityID string, payload client.Payload) (*client.RemoteOpportunity, error) {
	if m.updateOpportunityFn != nil {
		return m.updateOpportunityFn(ctx, opportunityID, payload)
	}
	return &client.RemoteOpportunity{ID: opportunityID}, nil
}

func (m *crmClientMock) DeleteOpportunity(ctx context.Context, opportunityID string) error {
	if m.deleteOpportunityFn != nil {
		return m.deleteOpportunityFn(ctx, opportunityID)
	}
	return nil
}

func (m *crmClientMock) UpdateOpportunityStatus(ctx context.Context, opportunityID, status string) error {
	if m.updateOpportunityStatusFn != nil {
		return m.updateOpportunityStatusFn(ctx, opportunityID, status)
	}
	return nil
}

func (m *crmClientMock) AddFollowers(ctx context.Context, opportunityID string, followers []string) error {
	if m.addFollowersFn != nil {
		return m.addFollowersFn(ctx, opportunityID, followers)
	}
	return nil
}

func (m *crmClientMock) RemoveFollowers(ctx context.Context, opportunityID string, followers []string, removeAll bool) error {
	if m.removeFollowersFn != nil {
		return m.removeFollowersFn(ctx, opportunityID, followers, removeAll)
	}
	return nil
}

func (m *crmClientMock) SearchContacts(ctx context.Context, query string) ([]client.RemoteContact, int, error) {
	if m.searchContactsFn != nil {
		return m.searchContactsFn(ctx, query)
	}
	return []client.RemoteContact{}, 0, nil
}

func (m *crmClientMock) UpdateContact(ctx context.Context, contactID string, payload client.Payload) error {
	if m.updateContactFn != nil {
		return m.updateContactFn(ctx, contactID, payload)
	}
	return nil
}

func (m *crmClientMock) GetUsers(ctx context.Context) ([]client.RemoteUser, error) {
	if m.getUsersFn != nil {
		return m.getUsersFn(ctx)
	}
	return []client.RemoteUser{}, nil
}

func (m *crmClientMock) GetTags(ctx context.Context) ([]client.RemoteTag, error) {
	if m.getTagsFn != nil {
		return m.getTagsFn(ctx)
	}
	return []client.RemoteTag{}, nil
}

func (m *crmClientMock) GetCustomFields(ctx context.Context, fieldModel string) ([]client.RemoteCustomField, error) {
	if m.getCustomFieldsFn != nil {
		return m.getCustomFieldsFn(ctx, fieldModel)
	}
	return []client.RemoteCustomField{}, nil
}

func (m *crmClientMock) GetCustomField(ctx context.Context, fieldID string) (*client.RemoteCustomField, error) {
	if m.getCustomFieldFn != nil {
		return m.getCustomFieldFn(ctx, fieldID)
	}
	return &client.RemoteCustomField{ID: fieldID}, nil
}

type factoryMock struct {
	client client.CRMClient
}

func (f *factoryMock) ClientFor(apiKey, locationID string) client.CRMClient {
	return f.client
}

// deps bundles the mocks of one engine under test.
type deps struct {
	locations     *locationRepoMock
	pipelines     *pipelineRepoMock
	opportunities *opportunityRepoMock
	customFields  *customFieldRepoMock
	remote        *crmClientMock
}

func newTestEngine() (*usecase.Engine, *deps) {
	d := &deps{
		locations:     &locationRepoMock{},
		pipelines:     &pipelineRepoMock{},
		opportunities: &opportunityRepoMock{},
		customFields:  &customFieldRepoMock{},
		remote:        &crmClientMock{},
	}
	engine := usecase.NewEngine(
		d.locations,
		d.pipelines,
		d.opportunities,
		d.customFields,
		&factoryMock{client: d.remote},
		nil,
		logger.NewLogger(),
	)
	return engine, d
}
