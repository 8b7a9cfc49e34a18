package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)

	require.Len(t, data.Contacts, 4)
	assert.Equal(t, "Shawn Milner", data.Contacts[0].Name)
	assert.Equal(t, domain.UrgencyUrgent, data.Contacts[0].Urgency)
	assert.Equal(t, 100*time.Second, data.Contacts[0].LastInteractionAgo)
	assert.True(t, data.Contacts[1].Resolved)
	assert.Equal(t, domain.UrgencyLow, data.Contacts[3].Urgency)

	require.Len(t, data.Settings.QuickRemarks, 4)
	assert.Equal(t, "Left Voicemail", data.Settings.QuickRemarks[0].Text)
	assert.Contains(t, data.Settings.ScriptTemplates, "\nFollow-up: ")
	assert.NotEmpty(t, data.Settings.CustomerFollowUpRule)
	assert.NotEmpty(t, data.Settings.ProspectFollowUpRule)
}

func TestMaterialize(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Contact{
		NewContact:         domain.NewContact{Name: "Jo", Urgency: domain.UrgencyNormal},
		ID:                 "c1",
		Resolved:           true,
		LastInteractionAgo: time.Minute,
	}

	got := c.Materialize(now)
	assert.Equal(t, "c1", got.ID)
	assert.True(t, got.IsResolved)
	assert.Equal(t, domain.CallBeforeNone, got.CallBefore)
	assert.Equal(t, now.Add(-time.Minute), got.LastInteraction)
	assert.NotNil(t, got.History)
}

func TestParseRejectsBadSeeds(t *testing.T) {
	cases := map[string]string{
		"missing id":      "contacts:\n  - name: A\n",
		"duplicate id":    "contacts:\n  - id: a\n  - id: a\n",
		"bad urgency":     "contacts:\n  - id: a\n    urgency: soon\n",
		"negative age":    "contacts:\n  - id: a\n    lastInteractionAgo: -1s\n",
		"remark no text":  "settings:\n  quickRemarks:\n    - id: q\n",
		"not yaml at all": "contacts: [",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := "contacts:\n  - id: x\n    name: Ana\nsettings:\n  scriptTemplates: hi\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	data, err := Load(path)
	require.NoError(t, err)
	require.Len(t, data.Contacts, 1)
	assert.Equal(t, domain.UrgencyNormal, data.Contacts[0].Urgency)
	assert.Equal(t, "hi", data.Settings.ScriptTemplates)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
