package navigation

import (
	"sync"

	"github.com/ashureev/callpilot/internal/domain"
)

// ContactConfirmation is an extracted contact waiting for the user to
// confirm or cancel it.
type ContactConfirmation struct {
	Image     string              `json:"image,omitempty"`
	Extracted domain.ContactDraft `json:"extractedData"`
}

// Transition describes one completed navigation.
type Transition struct {
	From              Target `json:"from"`
	To                Target `json:"to"`
	SelectedContactID string `json:"selectedContactId,omitempty"`
}

// State is a snapshot of the navigator.
type State struct {
	Current           Target `json:"current"`
	SelectedContactID string `json:"selectedContactId,omitempty"`
	HasConfirmation   bool   `json:"hasConfirmation"`
}

// Navigator owns the current screen, the selected contact and the staged
// contact confirmation. Back navigation is left to the view layer.
type Navigator struct {
	mu           sync.Mutex
	current      Target
	selected     string
	confirmation *ContactConfirmation
}

// NewNavigator starts on the home screen with nothing selected.
func NewNavigator() *Navigator {
	return &Navigator{current: Home()}
}

// NavigateTo moves to t and updates derived selection state:
// a contactId parameter selects that contact; a screen that is not
// contact-scoped clears the selection; any screen other than the
// confirmation screen drops the staged confirmation.
func (n *Navigator) NavigateTo(t Target) Transition {
	n.mu.Lock()
	defer n.mu.Unlock()

	if t.Route != RouteConfirmContact {
		n.confirmation = nil
	}
	if id := t.ContactID(); id != "" {
		n.selected = id
	} else if r, ok := byKey[t.Route]; !ok || !r.ContactScoped {
		n.selected = ""
	}

	tr := Transition{From: n.current, To: t, SelectedContactID: n.selected}
	n.current = t
	return tr
}

// Current returns the screen last navigated to.
func (n *Navigator) Current() Target {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// SelectedContactID returns the contact in focus, or "".
func (n *Navigator) SelectedContactID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.selected
}

// Stage stores an extracted contact for the confirmation screen.
func (n *Navigator) Stage(c ContactConfirmation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmation = &c
}

// Confirmation returns the staged contact, if any.
func (n *Navigator) Confirmation() (ContactConfirmation, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.confirmation == nil {
		return ContactConfirmation{}, false
	}
	return *n.confirmation, true
}

// ClearConfirmation drops the staged contact.
func (n *Navigator) ClearConfirmation() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmation = nil
}

// State returns a snapshot for clients.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return State{
		Current:           n.current,
		SelectedContactID: n.selected,
		HasConfirmation:   n.confirmation != nil,
	}
}
