package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/callpilot/internal/ai"
	"github.com/ashureev/callpilot/internal/contacts"
	"github.com/ashureev/callpilot/internal/domain"
	"github.com/ashureev/callpilot/internal/navigation"
)

const (
	confirmedStatus = "New Lead (from image)"
	msgNeedIdentity = "Please provide at least a name, phone, or email."
)

// Contacts lists contacts for a follow-up tab, most recent interaction first.
func (w *Workspace) Contacts(category string) []domain.Contact {
	return contacts.FollowUps(w.contacts.List(), contacts.ParseCategory(category))
}

// AllContacts returns every contact in store order.
func (w *Workspace) AllContacts() []domain.Contact {
	return w.contacts.List()
}

// Contact looks up one contact.
func (w *Workspace) Contact(id string) (domain.Contact, bool) {
	return w.contacts.Get(id)
}

// AddContact creates a contact entered by hand.
func (w *Workspace) AddContact(in domain.NewContact) (domain.Contact, error) {
	in = trimNewContact(in)
	if !in.HasIdentity() {
		return domain.Contact{}, &ValidationError{Message: msgNeedIdentity}
	}
	c, err := w.contacts.Add(in)
	if err != nil {
		return domain.Contact{}, err
	}
	w.logger().Info("Contact added", "contact_id", c.ID)
	w.publish(EventContactCreated, c)
	return c, nil
}

// UpdateContact applies a partial update.
func (w *Workspace) UpdateContact(id string, patch domain.ContactPatch) (domain.Contact, error) {
	c, err := w.contacts.Update(id, patch)
	if err != nil {
		return domain.Contact{}, err
	}
	w.publish(EventContactUpdated, c)
	return c, nil
}

func trimNewContact(in domain.NewContact) domain.NewContact {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Company = strings.TrimSpace(in.Company)
	return in
}

// ConfirmContact saves the staged extraction, as edited by the user, and
// returns to the home screen.
func (w *Workspace) ConfirmContact(form domain.ContactDraft) (Outcome, error) {
	if _, ok := w.nav.Confirmation(); !ok {
		return Outcome{}, ErrNothingToConfirm
	}

	in := trimNewContact(domain.NewContact{
		Name:    form.Name,
		Phone:   form.Phone,
		Email:   form.Email,
		Company: form.Company,
		Notes:   form.Notes,
	})
	if !in.HasIdentity() {
		return Outcome{}, &ValidationError{Message: msgNeedIdentity}
	}
	in.Status = confirmedStatus
	in.CallBefore = domain.CallBeforeNone
	in.Urgency = domain.UrgencyNormal
	in.PreCallScript = fmt.Sprintf("Hi %s, I'm following up on the information we received.", in.Name)

	c, err := w.contacts.Add(in)
	if err != nil {
		return Outcome{}, err
	}
	w.logger().Info("Extracted contact confirmed", "contact_id", c.ID)
	w.publish(EventContactCreated, c)

	w.nav.ClearConfirmation()
	return Outcome{Transition: w.navigate(navigation.Home()), Contact: &c}, nil
}

// CancelConfirmation drops the staged extraction and returns home.
func (w *Workspace) CancelConfirmation() Outcome {
	w.nav.ClearConfirmation()
	return Outcome{Transition: w.navigate(navigation.Home())}
}

// OpenContact shows a contact's detail screen.
func (w *Workspace) OpenContact(id string) Outcome {
	c, ok := w.contacts.Get(id)
	if !ok {
		return w.redirectNotFound(id)
	}
	return Outcome{Transition: w.navigate(navigation.FollowUpDetail(c.ID)), Contact: &c}
}

// NextContact moves to the next unresolved contact after currentID, or to
// the follow-up list when none is left.
func (w *Workspace) NextContact(currentID string) Outcome {
	list := w.contacts.List()
	if _, ok := w.contacts.Get(currentID); !ok {
		return w.redirectNotFound(currentID)
	}
	next, ok := contacts.NextContact(list, currentID)
	if !ok {
		return Outcome{
			Transition: w.navigate(navigation.FollowUps()),
			Notice:     "No more unresolved contacts.",
		}
	}
	return Outcome{Transition: w.navigate(navigation.FollowUpDetail(next.ID)), Contact: &next}
}

// SummarizeContext asks the model for a short summary of a contact's notes
// and stores it on the contact. A fallback answer is returned as a Notice
// and nothing is stored.
func (w *Workspace) SummarizeContext(ctx context.Context, id string) (Outcome, error) {
	return w.assistContact(ctx, id, "summarize_context",
		func(c domain.Contact) string { return fmt.Sprintf(summarizePrompt, c.Notes) },
		func(text string) domain.ContactPatch { return domain.ContactPatch{SummarizedContext: &text} },
	)
}

// SuggestScript asks the model for a pre-call script, guided by the
// workspace's script templates, and stores it on the contact.
func (w *Workspace) SuggestScript(ctx context.Context, id string) (Outcome, error) {
	templates := w.Settings().ScriptTemplates
	return w.assistContact(ctx, id, "suggest_script",
		func(c domain.Contact) string { return buildScriptPrompt(c, templates) },
		func(text string) domain.ContactPatch { return domain.ContactPatch{SuggestedScript: &text} },
	)
}

func (w *Workspace) assistContact(
	ctx context.Context,
	id, channel string,
	prompt func(domain.Contact) string,
	store func(string) domain.ContactPatch,
) (Outcome, error) {
	c, ok := w.contacts.Get(id)
	if !ok {
		return w.redirectNotFound(id), nil
	}

	release, err := w.beginAI()
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	text, ok := w.completeResult(ctx, channel, ai.Request{Prompt: prompt(c)})
	if !ok {
		w.logger().Warn("AI helper fell back, contact left unchanged", "channel", channel, "contact_id", c.ID)
		return Outcome{Contact: &c, Notice: text}, nil
	}
	updated, err := w.UpdateContact(c.ID, store(text))
	if errors.Is(err, contacts.ErrNotFound) {
		return w.redirectNotFound(id), nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("store %s result: %w", channel, err)
	}
	return Outcome{Contact: &updated, Text: text}, nil
}
