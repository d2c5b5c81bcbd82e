package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the opportunity lifecycle status mirrored from the remote CRM.
type Status string

const (
	StatusOpen      Status = "open"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusAbandoned Status = "abandoned"
)

// ValidStatus reports whether s is one of the four remote statuses.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusOpen, StatusWon, StatusLost, StatusAbandoned:
		return true
	}
	return false
}

// Opportunity mirrors one remote sales-pipeline record in the local store.
// (remoteId, locationId) is unique; every write path upserts on that pair.
type Opportunity struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	RemoteID   string             `json:"id" bson:"remoteId"`
	LocationID string             `json:"locationId" bson:"locationId"`

	Name            string  `json:"name" bson:"name"`
	MonetaryValue   float64 `json:"monetaryValue" bson:"monetaryValue"`
	PipelineID      string  `json:"pipelineId" bson:"pipelineId"`
	PipelineStageID string  `json:"pipelineStageId" bson:"pipelineStageId"`
	AssignedTo      string  `json:"assignedTo" bson:"assignedTo"`
	Status          Status  `json:"status" bson:"status"`
	Source          string  `json:"source" bson:"source"`

	ContactID          string          `json:"contactId" bson:"contactId"`
	Contact            ContactSnapshot `json:"contact" bson:"contact"`
	AdditionalContacts []string        `json:"additionalContacts" bson:"additionalContacts"`
	Followers          []string        `json:"followers" bson:"followers"`

	CustomFields []FieldValue `json:"customFields" bson:"customFields"`

	LastStatusChangeAt string                 `json:"lastStatusChangeAt" bson:"lastStatusChangeAt"`
	LastStageChangeAt  string                 `json:"lastStageChangeAt" bson:"lastStageChangeAt"`
	LastActionDate     string                 `json:"lastActionDate" bson:"lastActionDate"`
	IsAttribute        bool                   `json:"isAttribute" bson:"isAttribute"`
	InternalSource     map[string]interface{} `json:"internalSource" bson:"internalSource"`
	LostReasonID       string                 `json:"lostReasonId" bson:"lostReasonId"`

	// Timestamps mirrored from the remote system plus the local sync marker.
	RemoteCreatedAt string    `json:"remoteCreatedAt" bson:"remoteCreatedAt"`
	RemoteUpdatedAt string    `json:"remoteUpdatedAt" bson:"remoteUpdatedAt"`
	SyncedAt        time.Time `json:"syncedAt" bson:"syncedAt"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`

	// Legacy flat contact fields. Records written before the nested snapshot
	// existed carry these instead of Contact; read paths normalize on the fly
	// and the stored document is only rewritten on the next write.
	LegacyContactName        string   `json:"-" bson:"contactName,omitempty"`
	LegacyContactCompanyName string   `json:"-" bson:"contactCompanyName,omitempty"`
	LegacyContactEmail       string   `json:"-" bson:"contactEmail,omitempty"`
	LegacyContactPhone       string   `json:"-" bson:"contactPhone,omitempty"`
	LegacyContactTags        []string `json:"-" bson:"contactTags,omitempty"`
	LegacyContactFollowers   []string `json:"-" bson:"contactFollowers,omitempty"`
}

// NormalizeContact fills the nested snapshot from legacy flat fields when the
// stored snapshot is empty. It mutates only the in-memory record; callers must
// not write the result back unless performing a real update.
func (o *Opportunity) NormalizeContact() {
	if !o.Contact.IsEmpty() && o.Contact.Name != "" {
		return
	}

	snapshot := o.Contact
	if snapshot.ID == "" {
		snapshot.ID = o.ContactID
	}
	if snapshot.Name == "" {
		snapshot.Name = o.LegacyContactName
	}
	if snapshot.CompanyName == "" {
		snapshot.CompanyName = o.LegacyContactCompanyName
	}
	if snapshot.Email == "" {
		snapshot.Email = o.LegacyContactEmail
	}
	if snapshot.Phone == "" {
		snapshot.Phone = o.LegacyContactPhone
	}
	if len(snapshot.Tags) == 0 {
		snapshot.Tags = o.LegacyContactTags
	}
	if len(snapshot.Followers) == 0 {
		snapshot.Followers = o.LegacyContactFollowers
	}
	if snapshot.Tags == nil {
		snapshot.Tags = []string{}
	}
	if snapshot.Followers == nil {
		snapshot.Followers = []string{}
	}
	o.Contact = snapshot
}
