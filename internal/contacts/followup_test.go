package contacts

import (
	"testing"
	"time"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(ms int64) time.Time { return time.UnixMilli(ms) }

func ids(list []domain.Contact) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func TestFollowUpsFilterAndSort(t *testing.T) {
	list := []domain.Contact{
		{ID: "a", LastInteraction: at(100)},
		{ID: "b", LastInteraction: at(300)},
		{ID: "c", LastInteraction: at(200), IsResolved: true},
	}

	got := FollowUps(list, CategoryFollowUp)
	assert.Equal(t, []string{"b", "a"}, ids(got))
}

func TestFollowUpsCategories(t *testing.T) {
	noAnswer := []domain.HistoryEvent{{Type: domain.EventCallAttempt, Status: domain.AttemptNoAnswer}}
	list := []domain.Contact{
		{ID: "urgent", Urgency: domain.UrgencyUrgent, LastInteraction: at(1)},
		{ID: "urgent-resolved", Urgency: domain.UrgencyUrgent, IsResolved: true, LastInteraction: at(2)},
		{ID: "missed", Urgency: domain.UrgencyLow, History: noAnswer, LastInteraction: at(3)},
		{ID: "missed-resolved", Urgency: domain.UrgencyLow, History: noAnswer, IsResolved: true, LastInteraction: at(4)},
		{ID: "plain", Urgency: domain.UrgencyNormal, LastInteraction: at(5)},
	}

	assert.Equal(t, []string{"urgent"}, ids(FollowUps(list, CategoryUrgent)))
	assert.Equal(t, []string{"missed"}, ids(FollowUps(list, CategoryNoAnswer)))
	assert.Equal(t, []string{"plain", "missed", "urgent"}, ids(FollowUps(list, CategoryRecent)))
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryUrgent, ParseCategory("urgent"))
	assert.Equal(t, CategoryNoAnswer, ParseCategory("no_answer"))
	assert.Equal(t, CategoryRecent, ParseCategory(""))
	assert.Equal(t, CategoryRecent, ParseCategory("bogus"))
}

func TestNextContactNoOtherUnresolved(t *testing.T) {
	list := []domain.Contact{
		{ID: "a"},
		{ID: "b", IsResolved: true},
		{ID: "c", IsResolved: true},
	}
	_, ok := NextContact(list, "a")
	assert.False(t, ok)
}

func TestNextContactSingleOtherUnresolved(t *testing.T) {
	layouts := [][]domain.Contact{
		{{ID: "cur"}, {ID: "x", IsResolved: true}, {ID: "other"}, {ID: "y", IsResolved: true}},
		{{ID: "other"}, {ID: "x", IsResolved: true}, {ID: "cur"}},
		{{ID: "x", IsResolved: true}, {ID: "cur"}, {ID: "other"}},
		{{ID: "cur"}, {ID: "other"}},
	}
	for _, list := range layouts {
		next, ok := NextContact(list, "cur")
		require.True(t, ok)
		assert.Equal(t, "other", next.ID, "layout %v", ids(list))
	}
}

func TestNextContactScansForward(t *testing.T) {
	list := []domain.Contact{
		{ID: "a"},
		{ID: "b", IsResolved: true},
		{ID: "c"},
		{ID: "d"},
	}
	next, ok := NextContact(list, "a")
	require.True(t, ok)
	assert.Equal(t, "c", next.ID)

	next, ok = NextContact(list, "d")
	require.True(t, ok)
	assert.Equal(t, "a", next.ID)
}

func TestNextContactUnknownCurrentFallsBack(t *testing.T) {
	list := []domain.Contact{{ID: "a", IsResolved: true}, {ID: "b"}}
	next, ok := NextContact(list, "zzz")
	require.True(t, ok)
	assert.Equal(t, "b", next.ID)

	_, ok = NextContact(nil, "zzz")
	assert.False(t, ok)
}

func TestFirstUnresolvedExcludes(t *testing.T) {
	list := []domain.Contact{{ID: "a"}, {ID: "b", IsResolved: true}, {ID: "c"}}
	got, ok := FirstUnresolved(list, "a")
	require.True(t, ok)
	assert.Equal(t, "c", got.ID)

	assert.Equal(t, []string{"a", "c"}, ids(unresolved(list)))
}
