package service

import (
	"time"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/crm/domain/model"
)

// BuildSyncRecord maps one remote opportunity onto the sparse update document
// stored during a full sync. Custom-field values are normalized to the
// canonical {id, key, field_value} shape before they land in the mirror.
func BuildSyncRecord(remote client.RemoteOpportunity, now time.Time) map[string]interface{} {
	status := remote.Status
	if status == "" {
		status = string(model.StatusOpen)
	}
	internalSource := remote.InternalSource
	if internalSource == nil {
		internalSource = map[string]interface{}{}
	}

	return map[string]interface{}{
		"remoteId":           remote.ID,
		"name":               remote.Name,
		"monetaryValue":      remote.MonetaryValue,
		"pipelineId":         remote.PipelineID,
		"pipelineStageId":    remote.PipelineStageID,
		"assignedTo":         remote.AssignedTo,
		"status":             status,
		"source":             remote.Source,
		"contactId":          remote.ContactID,
		"contact":            snapshotFromRemote(remote),
		"lastStatusChangeAt": remote.LastStatusChangeAt,
		"lastStageChangeAt":  remote.LastStageChangeAt,
		"lastActionDate":     remote.LastActionDate,
		"isAttribute":        remote.IsAttribute,
		"internalSource":     internalSource,
		"followers":          followersOrEmpty(remote.Followers),
		"customFields":       model.NormalizeFieldValues(remote.CustomFields),
		"remoteCreatedAt":    remote.CreatedAt,
		"remoteUpdatedAt":    remote.UpdatedAt,
		"syncedAt":           now,
	}
}

// BuildCreateRecord maps a freshly created remote opportunity onto its local
// record. Contact display fields submitted on the form win over the remote
// echo because the create response may not reflect the follow-up contact
// update yet.
func BuildCreateRecord(form *model.OpportunityForm, created *client.RemoteOpportunity, now time.Time) map[string]interface{} {
	record := BuildSyncRecord(*created, now)

	snapshot := record["contact"].(model.ContactSnapshot)
	if snapshot.ID == "" && form.ContactID != nil {
		snapshot.ID = *form.ContactID
	}
	if form.ContactName != nil && *form.ContactName != "" {
		snapshot.Name = *form.ContactName
	}
	if form.ContactEmail != nil && *form.ContactEmail != "" {
		snapshot.Email = *form.ContactEmail
	}
	if form.ContactPhone != nil && *form.ContactPhone != "" {
		snapshot.Phone = *form.ContactPhone
	}
	if form.ContactTags != nil {
		snapshot.Tags = form.ContactTags
	}
	record["contact"] = snapshot

	if form.Followers != nil {
		record["followers"] = form.Followers
	}
	if len(form.CustomFields) > 0 {
		record["customFields"] = form.CustomFields
	}
	record["additionalContacts"] = additionalOrEmpty(form.AdditionalContacts)

	return record
}

// BuildCreatePayload assembles the remote create body from the form. Optional
// fields are omitted when empty so the remote applies its own defaults.
func BuildCreatePayload(form *model.OpportunityForm) client.Payload {
	payload := client.Payload{
		"status": string(model.StatusOpen),
	}
	if form.Name != nil {
		payload["name"] = *form.Name
	}
	if form.PipelineID != nil {
		payload["pipelineId"] = *form.PipelineID
	}
	if form.PipelineStageID != nil && *form.PipelineStageID != "" {
		payload["pipelineStageId"] = *form.PipelineStageID
	}
	if form.Status != nil && *form.Status != "" {
		payload["status"] = *form.Status
	}
	if form.ContactID != nil {
		payload["contactId"] = *form.ContactID
	}
	if form.MonetaryValue != nil {
		payload["monetaryValue"] = *form.MonetaryValue
	}
	if form.AssignedTo != nil && *form.AssignedTo != "" {
		payload["assignedTo"] = *form.AssignedTo
	}
	if form.Source != nil && *form.Source != "" {
		payload["source"] = *form.Source
	}
	if len(form.CustomFields) > 0 {
		payload["customFields"] = form.CustomFields
	}
	return payload
}

func snapshotFromRemote(remote client.RemoteOpportunity) model.ContactSnapshot {
	snapshot := model.ContactSnapshot{
		ID:        remote.ContactID,
		Tags:      []string{},
		Followers: []string{},
	}
	if remote.Contact != nil {
		if remote.Contact.ID != "" {
			snapshot.ID = remote.Contact.ID
		}
		snapshot.Name = remote.Contact.Name
		snapshot.CompanyName = remote.Contact.CompanyName
		snapshot.Email = remote.Contact.Email
		snapshot.Phone = remote.Contact.Phone
		if remote.Contact.Tags != nil {
			snapshot.Tags = remote.Contact.Tags
		}
		if remote.Contact.Followers != nil {
			snapshot.Followers = remote.Contact.Followers
		}
	}
	return snapshot
}

func followersOrEmpty(followers []string) []string {
	if followers == nil {
		return []string{}
	}
	return followers
}

func additionalOrEmpty(contacts []string) []string {
	if contacts == nil {
		return []string{}
	}
	return contacts
}
