package model

// OpportunityForm is a form submission for creating or updating an
// opportunity. Pointer and nil-able slice fields distinguish "submitted empty"
// from "not submitted": only submitted fields participate in remote payloads
// and local merges.
type OpportunityForm struct {
	Name            *string  `json:"name,omitempty"`
	MonetaryValue   *float64 `json:"monetaryValue,omitempty"`
	PipelineID      *string  `json:"pipelineId,omitempty"`
	PipelineStageID *string  `json:"pipelineStageId,omitempty"`
	Status          *string  `json:"status,omitempty"`
	Source          *string  `json:"source,omitempty"`
	AssignedTo      *string  `json:"assignedTo,omitempty"`
	ContactID       *string  `json:"contactId,omitempty"`

	// Canonical custom-field values in UI display conventions. nil means the
	// form did not touch custom fields.
	CustomFields []FieldValue `json:"customFields,omitempty"`

	// Contact display overrides, forwarded to the remote contact record.
	ContactName  *string  `json:"contactName,omitempty"`
	ContactEmail *string  `json:"contactEmail,omitempty"`
	ContactPhone *string  `json:"contactPhone,omitempty"`
	ContactTags  []string `json:"contactTags,omitempty"`

	Followers          []string `json:"followers,omitempty"`
	AdditionalContacts []string `json:"additionalContacts,omitempty"`
}

// HasContactEdits reports whether the form touches any contact-editable field.
func (f *OpportunityForm) HasContactEdits() bool {
	return f.ContactName != nil || f.ContactEmail != nil || f.ContactPhone != nil || f.ContactTags != nil
}
