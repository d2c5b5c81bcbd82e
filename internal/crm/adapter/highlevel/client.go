package highlevel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/shared/logger"
)

const (
	// DefaultBaseURL is the HighLevel public API host.
	DefaultBaseURL = "https://services.leadconnectorhq.com"
	// DefaultAPIVersion is the pinned API version header value.
	DefaultAPIVersion = "2021-07-28"
)

// Client is the typed HTTP gateway to the remote CRM for one tenant. It does
// pure request/response mapping: no caching, no retries, no persistence.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	apiKey     string
	locationID string
	log        logger.Logger
}

// NewClient builds a tenant-scoped gateway client.
func NewClient(httpClient *http.Client, baseURL, version, apiKey, locationID string, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if version == "" {
		version = DefaultAPIVersion
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		version:    version,
		apiKey:     apiKey,
		locationID: locationID,
		log:        log.WithComponent("highlevel.client"),
	}
}

// LocationID returns the tenant this client is scoped to.
func (c *Client) LocationID() string {
	return c.locationID
}

// do executes one remote call. A non-2xx response becomes a *RemoteAPIError
// carrying the status and raw body so callers can classify credential
// failures; transport errors are returned as-is for the caller to map.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body for %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("building request %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response of %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &client.RemoteAPIError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			URL:        endpoint,
		}
		c.log.WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("remote CRM call failed")
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response of %s %s: %w", method, path, err)
		}
	}
	return nil
}

// GetPipelines lists the location's pipeline definitions.
func (c *Client) GetPipelines(ctx context.Context) ([]client.RemotePipeline, error) {
	query := url.Values{}
	query.Set("locationId", c.locationID)

	var resp struct {
		Pipelines []client.RemotePipeline `json:"pipelines"`
	}
	if err := c.do(ctx, http.MethodGet, "/opportunities/pipelines", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Pipelines, nil
}

// SearchOpportunities runs one page of the remote opportunity search.
func (c *Client) SearchOpportunities(ctx context.Context, params client.SearchParams) (*client.SearchPage, error) {
	query := url.Values{}
	query.Set("location_id", c.locationID)
	if params.PipelineID != "" {
		query.Set("pipeline_id", params.PipelineID)
	}
	if params.PipelineStageID != "" {
		query.Set("pipeline_stage_id", params.PipelineStageID)
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if params.Order != "" {
		query.Set("order", params.Order)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.StartAfter != "" {
		query.Set("startAfter", params.StartAfter)
	}
	if params.StartAfterID != "" {
		query.Set("startAfterId", params.StartAfterID)
	}

	var page client.SearchPage
	if err := c.do(ctx, http.MethodGet, "/opportunities/search", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetOpportunity fetches one opportunity by remote ID.
func (c *Client) GetOpportunity(ctx context.Context, opportunityID string) (*client.RemoteOpportunity, error) {
	var resp struct {
		Opportunity client.RemoteOpportunity `json:"opportunity"`
	}
	if err := c.do(ctx, http.MethodGet, "/opportunities/"+opportunityID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Opportunity, nil
}

// CreateOpportunity creates a remote opportunity. The tenant's locationId is
// always stamped onto the payload.
func (c *Client) CreateOpportunity(ctx context.Context, payload client.Payload) (*client.RemoteOpportunity, error) {
	body := client.Payload{}
	for k, v := range payload {
		body[k] = v
	}
	body["locationId"] = c.locationID

	var resp struct {
		Opportunity client.RemoteOpportunity `json:"opportunity"`
	}
	if err := c.do(ctx, http.MethodPost, "/opportunities/", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Opportunity, nil
}

// UpdateOpportunity applies a sparse update to a remote opportunity.
func (c *Client) UpdateOpportunity(ctx context.Context, opportunityID string, payload client.Payload) (*client.RemoteOpportunity, error) {
	var resp struct {
		Opportunity client.RemoteOpportunity `json:"opportunity"`
	}
	if err := c.do(ctx, http.MethodPut, "/opportunities/"+opportunityID, nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Opportunity, nil
}

// DeleteOpportunity removes a remote opportunity.
func (c *Client) DeleteOpportunity(ctx context.Context, opportunityID string) error {
	return c.do(ctx, http.MethodDelete, "/opportunities/"+opportunityID, nil, nil, nil)
}

// UpdateOpportunityStatus changes only the status of a remote opportunity.
func (c *Client) UpdateOpportunityStatus(ctx context.Context, opportunityID, status string) error {
	body := client.Payload{"status": status}
	return c.do(ctx, http.MethodPut, "/opportunities/"+opportunityID+"/status", nil, body, nil)
}

// AddFollowers adds followers to a remote opportunity.
func (c *Client) AddFollowers(ctx context.Context, opportunityID string, followers []string) error {
	body := client.Payload{"followers": followers}
	return c.do(ctx, http.MethodPost, "/opportunities/"+opportunityID+"/followers", nil, body, nil)
}

// RemoveFollowers removes the given followers, or all of them when removeAll
// is set. The list rides in the DELETE body.
func (c *Client) RemoveFollowers(ctx context.Context, opportunityID string, followers []string, removeAll bool) error {
	var query url.Values
	if removeAll {
		query = url.Values{}
		query.Set("isRemoveAllFollowers", "true")
	}
	body := client.Payload{"followers": followers}
	return c.do(ctx, http.MethodDelete, "/opportunities/"+opportunityID+"/followers", query, body, nil)
}

// SearchContacts searches the location's contacts by free-text query.
func (c *Client) SearchContacts(ctx context.Context, searchQuery string) ([]client.RemoteContact, int, error) {
	query := url.Values{}
	query.Set("locationId", c.locationID)
	query.Set("limit", "100")
	if searchQuery != "" {
		query.Set("query", searchQuery)
	}

	var resp struct {
		Contacts []struct {
			ID          string `json:"id"`
			ContactName string `json:"contactName"`
			FirstName   string `json:"firstName"`
			LastName    string `json:"lastName"`
			Email       string `json:"email"`
			Phone       string `json:"phone"`
		} `json:"contacts"`
		Total int `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/contacts/", query, nil, &resp); err != nil {
		return nil, 0, err
	}

	contacts := make([]client.RemoteContact, 0, len(resp.Contacts))
	for _, raw := range resp.Contacts {
		contact := client.RemoteContact{
			ID:        raw.ID,
			Name:      raw.ContactName,
			FirstName: raw.FirstName,
			LastName:  raw.LastName,
			Email:     raw.Email,
			Phone:     raw.Phone,
		}
		contact.Name = contact.DisplayName()
		contacts = append(contacts, contact)
	}

	total := resp.Total
	if total == 0 {
		total = len(contacts)
	}
	return contacts, total, nil
}

// UpdateContact applies a sparse update to a remote contact.
func (c *Client) UpdateContact(ctx context.Context, contactID string, payload client.Payload) error {
	return c.do(ctx, http.MethodPut, "/contacts/"+contactID, nil, payload, nil)
}

// GetUsers lists the location's users.
func (c *Client) GetUsers(ctx context.Context) ([]client.RemoteUser, error) {
	query := url.Values{}
	query.Set("locationId", c.locationID)

	var resp struct {
		Users []client.RemoteUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// GetTags lists the location's contact tags.
func (c *Client) GetTags(ctx context.Context) ([]client.RemoteTag, error) {
	var resp struct {
		Tags []client.RemoteTag `json:"tags"`
	}
	if err := c.do(ctx, http.MethodGet, "/locations/"+c.locationID+"/tags", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// GetCustomFields lists the custom-field definitions for a field model
// ("opportunity" or "contact"). The list endpoint returns leaf fields only;
// folder entries must be fetched per ID with GetCustomField.
func (c *Client) GetCustomFields(ctx context.Context, fieldModel string) ([]client.RemoteCustomField, error) {
	query := url.Values{}
	query.Set("model", fieldModel)

	var resp struct {
		CustomFields []client.RemoteCustomField `json:"customFields"`
	}
	if err := c.do(ctx, http.MethodGet, "/locations/"+c.locationID+"/customFields", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.CustomFields, nil
}

// GetCustomField fetches one custom-field or folder definition by ID.
func (c *Client) GetCustomField(ctx context.Context, fieldID string) (*client.RemoteCustomField, error) {
	var resp struct {
		CustomField client.RemoteCustomField `json:"customField"`
	}
	if err := c.do(ctx, http.MethodGet, "/locations/"+c.locationID+"/customFields/"+fieldID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.CustomField, nil
}

var _ client.CRMClient = (*Client)(nil)
