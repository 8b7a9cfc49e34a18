package navigation

import (
	"testing"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSubstitutesParams(t *testing.T) {
	tg, err := Build(RouteCall, map[string]string{ParamContactID: "contact_1"})
	require.NoError(t, err)
	assert.Equal(t, "/call/contact_1", tg.Path)
	assert.Equal(t, "contact_1", tg.ContactID())

	assert.Equal(t, "/post-call/a%2Fb", PostCall("a/b").Path)
	assert.Equal(t, "/", Home().Path)
	assert.Equal(t, "/follow-ups/42", FollowUpDetail("42").Path)
}

func TestBuildRejectsParamMismatch(t *testing.T) {
	_, err := Build(RouteCall, nil)
	assert.ErrorIs(t, err, ErrRouteParams)

	_, err = Build(RouteCall, map[string]string{ParamContactID: ""})
	assert.ErrorIs(t, err, ErrRouteParams)

	_, err = Build(RouteHome, map[string]string{ParamContactID: "1"})
	assert.ErrorIs(t, err, ErrRouteParams)

	_, err = Build(RouteCall, map[string]string{"id": "1"})
	assert.ErrorIs(t, err, ErrRouteParams)

	_, err = Build("nowhere", nil)
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestResolve(t *testing.T) {
	cases := map[string]Target{
		"/":                Home(),
		"":                 Home(),
		"/follow-ups":      FollowUps(),
		"/follow-ups/":     FollowUps(),
		"/follow-ups/c1":   FollowUpDetail("c1"),
		"/call/c1?x=1":     Call("c1"),
		"/post-call/a%2Fb": PostCall("a/b"),
		"/confirm-contact": ConfirmContact(),
		"/settings":        Settings(),
		"/login":           Login(),
		"/signup":          Signup(),
	}
	for path, want := range cases {
		got, err := Resolve(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := Resolve("/nope")
	assert.ErrorIs(t, err, ErrUnknownPath)
	_, err = Resolve("/call")
	assert.ErrorIs(t, err, ErrUnknownPath)
}

func TestIsPublicPath(t *testing.T) {
	assert.True(t, IsPublicPath("/login"))
	assert.True(t, IsPublicPath("/signup"))
	assert.False(t, IsPublicPath("/"))
	assert.False(t, IsPublicPath("/call/1"))
	assert.False(t, IsPublicPath("/bogus"))
}

func TestNavigateSelectsContactFromParams(t *testing.T) {
	n := NewNavigator()
	tr := n.NavigateTo(FollowUpDetail("c1"))
	assert.Equal(t, "c1", tr.SelectedContactID)
	assert.Equal(t, Home(), tr.From)
	assert.Equal(t, "c1", n.SelectedContactID())
}

func TestNavigateClearsSelectionOnNonContactScreens(t *testing.T) {
	n := NewNavigator()
	n.NavigateTo(Call("c1"))
	n.NavigateTo(FollowUps())
	assert.Empty(t, n.SelectedContactID())

	n.NavigateTo(Call("c2"))
	n.NavigateTo(Settings())
	assert.Empty(t, n.SelectedContactID())
}

func TestNavigateKeepsSelectionOnContactScopedWithoutParam(t *testing.T) {
	n := NewNavigator()
	n.NavigateTo(FollowUpDetail("c9"))
	// A contact-scoped target without a bound id keeps the current selection.
	n.NavigateTo(Target{Route: RoutePostCall, Path: "/post-call"})
	assert.Equal(t, "c9", n.SelectedContactID())
}

func TestNavigateClearsConfirmationExceptOnConfirmScreen(t *testing.T) {
	n := NewNavigator()
	n.Stage(ContactConfirmation{Extracted: domain.ContactDraft{Name: "Jo"}})

	n.NavigateTo(ConfirmContact())
	c, ok := n.Confirmation()
	require.True(t, ok)
	assert.Equal(t, "Jo", c.Extracted.Name)
	assert.True(t, n.State().HasConfirmation)

	n.NavigateTo(Home())
	_, ok = n.Confirmation()
	assert.False(t, ok)
	assert.Equal(t, Home(), n.Current())
}
