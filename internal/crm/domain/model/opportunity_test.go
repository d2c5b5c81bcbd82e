package model_test

import (
	"testing"

	"crm-mirror/internal/crm/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeContact_LegacyFlatFields(t *testing.T) {
	opp := model.Opportunity{
		RemoteID:           "opp_1",
		ContactID:          "con_1",
		LegacyContactName:  "X",
		LegacyContactEmail: "x@example.com",
		LegacyContactPhone: "+15550100",
		LegacyContactTags:  []string{"vip"},
	}

	opp.NormalizeContact()

	assert.Equal(t, "X", opp.Contact.Name)
	assert.Equal(t, "con_1", opp.Contact.ID)
	assert.Equal(t, "x@example.com", opp.Contact.Email)
	assert.Equal(t, "+15550100", opp.Contact.Phone)
	assert.Equal(t, []string{"vip"}, opp.Contact.Tags)
	// Flat fields stay untouched; the stored document is only rewritten on a
	// real update.
	assert.Equal(t, "X", opp.LegacyContactName)
}

func TestNormalizeContact_NestedSnapshotWins(t *testing.T) {
	opp := model.Opportunity{
		Contact: model.ContactSnapshot{
			ID:    "con_2",
			Name:  "Nested Name",
			Email: "nested@example.com",
		},
		LegacyContactName:  "Old Flat Name",
		LegacyContactEmail: "flat@example.com",
	}

	opp.NormalizeContact()

	assert.Equal(t, "Nested Name", opp.Contact.Name)
	assert.Equal(t, "nested@example.com", opp.Contact.Email)
}

func TestNormalizeContact_EmptySlicesNeverNil(t *testing.T) {
	opp := model.Opportunity{LegacyContactName: "Y"}
	opp.NormalizeContact()

	assert.NotNil(t, opp.Contact.Tags)
	assert.NotNil(t, opp.Contact.Followers)
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"open", "won", "lost", "abandoned"} {
		assert.True(t, model.ValidStatus(s), s)
	}
	assert.False(t, model.ValidStatus("archived"))
	assert.False(t, model.ValidStatus(""))
}
