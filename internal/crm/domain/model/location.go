package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CardFieldSettings is the per-location card layout preference blob. Stored
// opaquely; only the UI interprets it.
type CardFieldSettings struct {
	Layout        string   `json:"layout" bson:"layout"`
	VisibleFields []string `json:"visibleFields" bson:"visibleFields"`
	FieldOrder    []string `json:"fieldOrder" bson:"fieldOrder"`
}

// QuickActionSettings is the per-location quick-action visibility blob.
type QuickActionSettings struct {
	VisibleActions []string `json:"visibleActions" bson:"visibleActions"`
	ActionOrder    []string `json:"actionOrder" bson:"actionOrder"`
}

// DefaultCardFields is the initial card layout for a fresh location.
var DefaultCardFields = []string{"smartTags", "opportunityName", "businessName", "contact", "pipeline", "stage", "status"}

// DefaultQuickActions is the initial quick-action set for a fresh location.
var DefaultQuickActions = []string{"call", "sms", "email", "appointment", "tasks", "notes", "tags"}

// Location is one remote tenant: its credential, display name and UI
// preferences. Created lazily on first visit with an empty credential; never
// deleted in normal operation.
type Location struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	LocationID string             `json:"locationId" bson:"locationId"`
	APIKey     string             `json:"-" bson:"apiKey"`
	Name       string             `json:"name" bson:"name"`

	PaginationEnabled  bool                `json:"paginationEnabled" bson:"paginationEnabled"`
	PageSize           int                 `json:"pageSize" bson:"pageSize"`
	PaginationPerStage bool                `json:"paginationPerStage" bson:"paginationPerStage"`
	SortField          string              `json:"sortField" bson:"sortField"`
	SortOrder          string              `json:"sortOrder" bson:"sortOrder"`
	CardFieldSettings  CardFieldSettings   `json:"cardFieldSettings" bson:"cardFieldSettings"`
	QuickActions       QuickActionSettings `json:"quickActions" bson:"quickActions"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewLocation builds a fresh location record with default UI preferences and
// no credential.
func NewLocation(locationID string) *Location {
	now := time.Now()
	return &Location{
		LocationID: locationID,
		PageSize:   100,
		SortOrder:  "desc",
		CardFieldSettings: CardFieldSettings{
			Layout:        "default",
			VisibleFields: append([]string{}, DefaultCardFields...),
			FieldOrder:    append([]string{}, DefaultCardFields...),
		},
		QuickActions: QuickActionSettings{
			VisibleActions: append([]string{}, DefaultQuickActions...),
			ActionOrder:    append([]string{}, DefaultQuickActions...),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SettingsPatch is a partial settings update. Nil fields were not submitted
// and keep their stored values.
type SettingsPatch struct {
	PaginationEnabled  *bool                `json:"paginationEnabled"`
	PageSize           *int                 `json:"pageSize"`
	PaginationPerStage *bool                `json:"paginationPerStage"`
	SortField          *string              `json:"sortField"`
	SortOrder          *string              `json:"sortOrder"`
	CardFieldSettings  *CardFieldSettings   `json:"cardFieldSettings"`
	QuickActions       *QuickActionSettings `json:"quickActions"`
}

// HasCredential reports whether the location has a stored API key.
func (l *Location) HasCredential() bool {
	return l != nil && l.APIKey != ""
}
