package service

import (
	"strings"
	"time"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/crm/domain/model"
)

// Source names one origin of truth in the update protocol. The merge table
// below lists, per field, which sources are consulted and in what order, so
// the conflict policy stays auditable instead of living in condition chains.
type Source string

const (
	// SourceForm is the value the user just submitted.
	SourceForm Source = "form"
	// SourceRemote is the remote system's post-update state (or the pre-fetch
	// snapshot when the re-fetch failed).
	SourceRemote Source = "remote"
)

// mergeRule resolves one stored field. The first source in order that yields a
// value wins; if none does, the field is omitted from the update document so
// the stored value survives.
type mergeRule struct {
	field  string
	order  []Source
	form   func(*model.OpportunityForm) (interface{}, bool)
	remote func(*client.RemoteOpportunity) (interface{}, bool)
}

func fromStr(p *string) (interface{}, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func nonEmpty(s string) (interface{}, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

// opportunityMergeRules is the update-protocol conflict policy:
//   - remote is authoritative for core fields and status (server-computed),
//   - the form wins for custom fields (the remote echo shape cannot be
//     rendered), assignee, contact linkage, followers and additional contacts
//     (the remote does not reliably echo those).
var opportunityMergeRules = []mergeRule{
	{
		field: "name", order: []Source{SourceRemote, SourceForm},
		form:   func(f *model.OpportunityForm) (interface{}, bool) { return fromStr(f.Name) },
		remote: func(r *client.RemoteOpportunity) (interface{}, bool) { return nonEmpty(r.Name) },
	},
	{
		field: "monetaryValue", order: []Source{SourceRemote, SourceForm},
		form: func(f *model.OpportunityForm) (interface{}, bool) {
			if f.MonetaryValue == nil {
				return nil, false
			}
			return *f.MonetaryValue, true
		},
		remote: func(r *client.RemoteOpportunity) (interface{}, bool) { return r.MonetaryValue, true },
	},
	{
		field: "pipelineId", order: []Source{SourceRemote, SourceForm},
		form:   func(f *model.OpportunityForm) (interface{}, bool) { return fromStr(f.PipelineID) },
		remote: func(r *client.RemoteOpportunity) (interface{}, bool) { return nonEmpty(r.PipelineID) },
	},
	{
		field: "pipelineStageId", order: []Source{SourceRemote, SourceForm},
		form:   func(f *model.OpportunityForm) (interface{}, bool) { return fromStr(f.PipelineStageID) },
		remote: func(r *client.RemoteOpportunity) (interface{}, bool) { return nonEmpty(r.PipelineStageID) },
	},
	{
		field: "status", order: []Source{SourceRemote, SourceForm},
		form:   func(f *model.OpportunityForm) (interface{}, bool) { return fromStr(f.Status) },
		remote: func(r *client.RemoteOpportunity) (interface{}, bool) { return nonEmpty(r.Status) },
	},
	{
		field: "source", order: []Source{SourceRemote, SourceForm},
		form:   func(f *model.OpportunityForm) (interface{}, bool) { return fromStr(f.Source) },
		remote: func(r *client.RemoteOpportunity) (interface{}, bool) { return nonEmpty(r.Source) },
	},
	{
		field: "assignedTo", order: []Source{SourceForm, SourceRemote},
		form:   func(f *model.OpportunityForm) (interface{}, bool) { return fromStr(f.AssignedTo) },
		remote: func(r *client.RemoteOpportunity) (interface{}, bool) { return r.AssignedTo, true },
	},
	{
		field: "contactId", order: []Source{SourceForm, SourceRemote},
		form:   func(f *model.OpportunityForm) (interface{}, bool) { return fromStr(f.ContactID) },
		remote: func(r *client.RemoteOpportunity) (interface{}, bool) { return nonEmpty(r.ContactID) },
	},
	{
		field: "customFields", order: []Source{SourceForm},
		form: func(f *model.OpportunityForm) (interface{}, bool) {
			if len(f.CustomFields) == 0 {
				return nil, false
			}
			return f.CustomFields, true
		},
	},
	{
		field: "followers", order: []Source{SourceForm, SourceRemote},
		form: func(f *model.OpportunityForm) (interface{}, bool) {
			if f.Followers == nil {
				return nil, false
			}
			return f.Followers, true
		},
		remote: func(r *client.RemoteOpportunity) (interface{}, bool) {
			if r.Followers == nil {
				return nil, false
			}
			return r.Followers, true
		},
	},
	{
		field: "additionalContacts", order: []Source{SourceForm},
		form: func(f *model.OpportunityForm) (interface{}, bool) {
			if f.AdditionalContacts == nil {
				return nil, false
			}
			return f.AdditionalContacts, true
		},
	},
}

// MergeLocalUpdate builds the sparse local-store update document for the
// single-record update protocol. remote may be nil when both the pre-fetch and
// the re-fetch failed; the form then carries what it can and everything else
// is left untouched.
func MergeLocalUpdate(form *model.OpportunityForm, remote *client.RemoteOpportunity, now time.Time) map[string]interface{} {
	update := map[string]interface{}{
		"syncedAt": now,
	}

	for _, rule := range opportunityMergeRules {
		for _, src := range rule.order {
			var value interface{}
			var ok bool
			switch src {
			case SourceForm:
				if rule.form != nil {
					value, ok = rule.form(form)
				}
			case SourceRemote:
				if remote != nil && rule.remote != nil {
					value, ok = rule.remote(remote)
				}
			}
			if ok {
				update[rule.field] = value
				break
			}
		}
	}

	update["contact"] = MergeContactSnapshot(form, remote)

	// Server-computed fields come straight from the remote record.
	if remote != nil {
		update["lastStatusChangeAt"] = remote.LastStatusChangeAt
		update["lastStageChangeAt"] = remote.LastStageChangeAt
		update["lastActionDate"] = remote.LastActionDate
		update["isAttribute"] = remote.IsAttribute
		if remote.InternalSource != nil {
			update["internalSource"] = remote.InternalSource
		}
		update["remoteUpdatedAt"] = remote.UpdatedAt
	}

	return update
}

// MergeContactSnapshot builds the stored contact snapshot for an update.
// Explicit form overrides win over the remote contact object; the remote fills
// whatever the form left untouched.
func MergeContactSnapshot(form *model.OpportunityForm, remote *client.RemoteOpportunity) model.ContactSnapshot {
	var remoteContact client.RemoteContact
	remoteContactID := ""
	if remote != nil {
		remoteContactID = remote.ContactID
		if remote.Contact != nil {
			remoteContact = *remote.Contact
		}
	}

	snapshot := model.ContactSnapshot{
		ID:          remoteContactID,
		Name:        remoteContact.Name,
		CompanyName: remoteContact.CompanyName,
		Email:       remoteContact.Email,
		Phone:       remoteContact.Phone,
		Tags:        remoteContact.Tags,
		Followers:   remoteContact.Followers,
	}

	if form.ContactID != nil && *form.ContactID != "" {
		snapshot.ID = *form.ContactID
	}
	if form.ContactName != nil {
		snapshot.Name = *form.ContactName
	}
	if form.ContactEmail != nil {
		snapshot.Email = *form.ContactEmail
	}
	if form.ContactPhone != nil {
		snapshot.Phone = *form.ContactPhone
	}
	if form.ContactTags != nil {
		snapshot.Tags = form.ContactTags
	}

	if snapshot.Tags == nil {
		snapshot.Tags = []string{}
	}
	if snapshot.Followers == nil {
		snapshot.Followers = []string{}
	}
	return snapshot
}

// BuildRemoteUpdatePayload assembles the remote update body from the fields
// the form actually submitted. For pipelineId/pipelineStageId the pre-fetched
// remote values are the fallback (never a possibly-stale local cache), which
// avoids spurious "pipeline not found" rejections.
func BuildRemoteUpdatePayload(form *model.OpportunityForm, prefetch *client.RemoteOpportunity) client.Payload {
	payload := client.Payload{}

	if form.Name != nil {
		payload["name"] = *form.Name
	}
	if form.ContactID != nil {
		payload["contactId"] = *form.ContactID
	}
	if form.Status != nil {
		payload["status"] = *form.Status
	}
	if form.MonetaryValue != nil {
		payload["monetaryValue"] = *form.MonetaryValue
	}
	if form.AssignedTo != nil {
		payload["assignedTo"] = *form.AssignedTo
	}
	if form.CustomFields != nil {
		payload["customFields"] = form.CustomFields
	}

	switch {
	case form.PipelineID != nil:
		payload["pipelineId"] = *form.PipelineID
	case prefetch != nil && prefetch.PipelineID != "":
		payload["pipelineId"] = prefetch.PipelineID
	}

	switch {
	case form.PipelineStageID != nil:
		payload["pipelineStageId"] = *form.PipelineStageID
	case prefetch != nil && prefetch.PipelineStageID != "":
		payload["pipelineStageId"] = prefetch.PipelineStageID
	}

	return payload
}

// BuildContactPayload assembles the remote contact update body from the
// contact-editable form fields. The single display name is split into
// first/last on whitespace because the remote contact API stores name parts.
func BuildContactPayload(form *model.OpportunityForm) client.Payload {
	payload := client.Payload{}

	if form.ContactName != nil && *form.ContactName != "" {
		parts := strings.Fields(strings.TrimSpace(*form.ContactName))
		first, last := "", ""
		if len(parts) > 0 {
			first = parts[0]
			last = strings.Join(parts[1:], " ")
		}
		payload["firstName"] = first
		payload["lastName"] = last
		payload["name"] = *form.ContactName
	}
	if form.ContactEmail != nil {
		payload["email"] = *form.ContactEmail
	}
	if form.ContactPhone != nil {
		payload["phone"] = *form.ContactPhone
	}
	if form.ContactTags != nil {
		payload["tags"] = form.ContactTags
	}

	return payload
}

// DiffFollowers computes the exact follower delta between the remote's current
// list and the submitted list. Unchanged followers trigger no remote call.
func DiffFollowers(current, desired []string) (toAdd, toRemove []string) {
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}

	for _, id := range desired {
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range current {
		if _, ok := desiredSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}
