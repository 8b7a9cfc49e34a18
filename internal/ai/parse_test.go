package ai

import (
	"testing"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrioritizedLeads(t *testing.T) {
	text := "```json\n" + `[
		{"id":"c1","name":"Shawn","phone":"555","status":"Hot","prioritizationReason":"urgent"},
		{"id":"c2","name":"","prioritizationReason":"no name"},
		{"id":7,"name":"Numeric","prioritizationReason":"id is a number"},
		"junk",
		{"id":"c3","name":"Alex"}
	]` + "\n```"

	leads, err := ParsePrioritizedLeads(text)
	require.NoError(t, err)
	assert.Equal(t, []domain.PrioritizedLead{
		{ID: "c1", Name: "Shawn", Phone: "555", Status: "Hot", PrioritizationReason: "urgent"},
		{ID: "7", Name: "Numeric", PrioritizationReason: "id is a number"},
	}, leads)
}

func TestParsePrioritizedLeadsCapsAtFive(t *testing.T) {
	text := `[` +
		`{"id":"1","name":"a","prioritizationReason":"r"},` +
		`{"id":"2","name":"b","prioritizationReason":"r"},` +
		`{"id":"3","name":"c","prioritizationReason":"r"},` +
		`{"id":"4","name":"d","prioritizationReason":"r"},` +
		`{"id":"5","name":"e","prioritizationReason":"r"},` +
		`{"id":"6","name":"f","prioritizationReason":"r"}]`

	leads, err := ParsePrioritizedLeads(text)
	require.NoError(t, err)
	assert.Len(t, leads, MaxPrioritizedLeads)
	assert.Equal(t, "5", leads[4].ID)
}

func TestParsePrioritizedLeadsShapes(t *testing.T) {
	leads, err := ParsePrioritizedLeads("[]")
	require.NoError(t, err)
	assert.Empty(t, leads)

	_, err = ParsePrioritizedLeads(FallbackJSON)
	assert.ErrorIs(t, err, ErrNotArray)

	_, err = ParsePrioritizedLeads("Sorry, an error occurred")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseContactDraft(t *testing.T) {
	d, err := ParseContactDraft(`{"name":" Jane ","phone":"555-0101","company":"Acme","extra":1}`)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactDraft{Name: "Jane", Phone: "555-0101", Company: "Acme"}, d)

	_, err = ParseContactDraft(FallbackJSON)
	assert.ErrorIs(t, err, ErrEmptyDraft)

	_, err = ParseContactDraft(`["a"]`)
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ParseContactDraft("not json")
	assert.ErrorIs(t, err, ErrMalformed)
}
