package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"crm-mirror/internal/crm/domain/model"
)

// Payload is a sparse request body for remote create/update calls. Only keys
// that were actually submitted are present, so a partial update never clears
// remote fields the caller did not touch.
type Payload map[string]interface{}

// RemoteContact is the contact object as the remote CRM returns it.
type RemoteContact struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	CompanyName string   `json:"companyName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Followers   []string `json:"followers,omitempty"`
}

// DisplayName resolves the best display name for a remote contact.
func (c RemoteContact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	full := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if full != "" {
		return full
	}
	return "Unnamed Contact"
}

// RemoteOpportunity is the opportunity record as the remote CRM returns it,
// including the echoed (non-canonical) custom-field value shapes.
type RemoteOpportunity struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	MonetaryValue      float64                `json:"monetaryValue"`
	PipelineID         string                 `json:"pipelineId"`
	PipelineStageID    string                 `json:"pipelineStageId"`
	AssignedTo         string                 `json:"assignedTo"`
	Status             string                 `json:"status"`
	Source             string                 `json:"source"`
	ContactID          string                 `json:"contactId"`
	LocationID         string                 `json:"locationId"`
	LastStatusChangeAt string                 `json:"lastStatusChangeAt"`
	LastStageChangeAt  string                 `json:"lastStageChangeAt"`
	LastActionDate     string                 `json:"lastActionDate"`
	IsAttribute        bool                   `json:"isAttribute"`
	InternalSource     map[string]interface{} `json:"internalSource"`
	LostReasonID       string                 `json:"lostReasonId"`
	CreatedAt          string                 `json:"createdAt"`
	UpdatedAt          string                 `json:"updatedAt"`
	Contact            *RemoteContact         `json:"contact,omitempty"`
	CustomFields       []model.RawFieldValue  `json:"customFields,omitempty"`
	Followers          []string               `json:"followers,omitempty"`
}

// SearchMeta is the pagination metadata of the remote search endpoint. The
// cursor pair may be absent on any page; an offset-style NextPage without the
// cursor pair is treated as end-of-walk, not as a strategy switch.
type SearchMeta struct {
	Total        int         `json:"total"`
	CurrentPage  int         `json:"currentPage"`
	NextPage     *int        `json:"nextPage"`
	StartAfter   json.Number `json:"startAfter,omitempty"`
	StartAfterID string      `json:"startAfterId,omitempty"`
}

// HasCursor reports whether the meta carries a usable cursor pair.
func (m SearchMeta) HasCursor() bool {
	return m.StartAfter.String() != "" && m.StartAfterID != ""
}

// SearchPage is one page of the remote opportunity search.
type SearchPage struct {
	Opportunities []RemoteOpportunity `json:"opportunities"`
	Meta          SearchMeta          `json:"meta"`
}

// SearchParams are the supported filters of the remote opportunity search.
type SearchParams struct {
	PipelineID      string
	PipelineStageID string
	Status          string
	Query           string
	Order           string
	Page            int
	Limit           int
	StartAfter      string
	StartAfterID    string
}

// RemotePipeline is a pipeline definition as the remote CRM returns it.
type RemotePipeline struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Stages       []model.PipelineStage `json:"stages"`
	LocationID   string                `json:"locationId"`
	ShowInFunnel bool                  `json:"showInFunnel,omitempty"`
}

// RemoteUser is a CRM user (assignee/follower candidate).
type RemoteUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
}

// RemoteTag is a location-level contact tag.
type RemoteTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RemoteCustomField is a custom-field or folder definition as returned by the
// remote schema endpoints. The list endpoint only returns leaf fields; folder
// entries come from per-ID lookups and carry DocumentType "folder".
type RemoteCustomField struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	FieldKey             string        `json:"fieldKey,omitempty"`
	DataType             string        `json:"dataType,omitempty"`
	Placeholder          string        `json:"placeholder,omitempty"`
	Position             int           `json:"position,omitempty"`
	PicklistOptions      []string      `json:"picklistOptions,omitempty"`
	PicklistImageOptions []interface{} `json:"picklistImageOptions,omitempty"`
	AllowCustomOption    bool          `json:"allowCustomOption,omitempty"`
	IsMultiFileAllowed   bool          `json:"isMultiFileAllowed,omitempty"`
	MaxFileLimit         int           `json:"maxFileLimit,omitempty"`
	IsRequired           bool          `json:"isRequired,omitempty"`
	Model                string        `json:"model,omitempty"`
	ParentID             string        `json:"parentId,omitempty"`
	DocumentType         string        `json:"documentType,omitempty"`
	Standard             bool          `json:"standard,omitempty"`
}

// IsFolder reports whether this definition is a folder container entry.
func (f RemoteCustomField) IsFolder() bool {
	return f.DocumentType == "folder"
}

// CRMClient is the typed gateway to the remote CRM REST API for one tenant.
// Pure request/response mapping; no caching, no retries.
type CRMClient interface {
	GetPipelines(ctx context.Context) ([]RemotePipeline, error)

	SearchOpportunities(ctx context.Context, params SearchParams) (*SearchPage, error)
	FetchAllOpportunities(ctx context.Context, pipelineID string) ([]RemoteOpportunity, error)
	GetOpportunity(ctx context.Context, opportunityID string) (*RemoteOpportunity, error)
	CreateOpportunity(ctx context.Context, payload Payload) (*RemoteOpportunity, error)
	UpdateOpportunity(ctx context.Context, opportunityID string, payload Payload) (*RemoteOpportunity, error)
	DeleteOpportunity(ctx context.Context, opportunityID string) error
	UpdateOpportunityStatus(ctx context.Context, opportunityID, status string) error

	AddFollowers(ctx context.Context, opportunityID string, followers []string) error
	RemoveFollowers(ctx context.Context, opportunityID string, followers []string, removeAll bool) error

	SearchContacts(ctx context.Context, query string) ([]RemoteContact, int, error)
	UpdateContact(ctx context.Context, contactID string, payload Payload) error
	GetUsers(ctx context.Context) ([]RemoteUser, error)
	GetTags(ctx context.Context) ([]RemoteTag, error)

	GetCustomFields(ctx context.Context, fieldModel string) ([]RemoteCustomField, error)
	GetCustomField(ctx context.Context, fieldID string) (*RemoteCustomField, error)
}

// Factory builds per-tenant clients. The credential and location are explicit
// parameters so no global mutable tenant state exists.
type Factory interface {
	ClientFor(apiKey, locationID string) CRMClient
}

// RemoteAPIError is a non-2xx response from the remote CRM. Callers match on
// status and body substrings to classify credential problems.
type RemoteAPIError struct {
	StatusCode int
	Body       string
	URL        string
}

// Error implements the error interface.
func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("remote api error: status=%d url=%s body=%s", e.StatusCode, e.URL, e.Body)
}

// IsInvalidCredential reports a rejected API key.
func (e *RemoteAPIError) IsInvalidCredential() bool {
	return e.StatusCode == 401 || strings.Contains(e.Body, "Invalid JWT")
}

// IsScopeDenied reports a key that is valid but lacks access to the location.
func (e *RemoteAPIError) IsScopeDenied() bool {
	return e.StatusCode == 403 || strings.Contains(e.Body, "does not have access")
}
