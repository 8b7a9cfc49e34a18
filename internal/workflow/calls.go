package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/callpilot/internal/ai"
	"github.com/ashureev/callpilot/internal/calls"
	"github.com/ashureev/callpilot/internal/contacts"
	"github.com/ashureev/callpilot/internal/domain"
	"github.com/ashureev/callpilot/internal/navigation"
)

// ErrInvalidOutcome is returned for call outcomes other than no_answer and completed.
var ErrInvalidOutcome = errors.New("invalid call outcome")

// StartCall begins a call with the given contact, or the selected contact
// when id is empty.
func (w *Workspace) StartCall(id string) Outcome {
	if id == "" {
		id = w.nav.SelectedContactID()
	}
	c, ok := w.contacts.Get(id)
	if !ok {
		return w.redirectNotFound(id)
	}

	if w.calls.Active() {
		if prev, ok := w.calls.Current(); ok {
			w.logger().Warn("Starting a call while another is active", "previous_contact_id", prev.ContactID)
		}
	}
	session := w.calls.Start(c)
	w.logger().Info("Call started", "contact_id", c.ID)
	w.publish(EventCallStarted, session)
	return Outcome{
		Transition: w.navigate(navigation.Call(c.ID)),
		Contact:    &c,
		Call:       &session,
	}
}

// EndCall finalizes the active call. An outcome of no_answer or completed
// is recorded as a call attempt on the contact. Either way the user lands on
// the post-call screen for the call's contact, falling back to the selected
// contact and then home.
func (w *Workspace) EndCall(durationSeconds int, outcome string) (Outcome, error) {
	switch outcome {
	case "", domain.AttemptNoAnswer, domain.AttemptCompleted:
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	session, endErr := w.calls.End(durationSeconds)
	if errors.Is(endErr, calls.ErrInvalidDuration) {
		return Outcome{}, endErr
	}

	contactID := session.ContactID
	if endErr != nil {
		if current, ok := w.calls.Current(); ok {
			contactID = current.ContactID
		}
	}
	if contactID == "" {
		contactID = w.nav.SelectedContactID()
	}

	var out Outcome
	if endErr == nil {
		w.logger().Info("Call ended", "contact_id", session.ContactID, "duration", session.Duration)
		w.publish(EventCallEnded, session)
		out.Call = &session

		if outcome != "" {
			c, err := w.contacts.RecordEvent(session.ContactID, domain.HistoryEvent{
				Type:    domain.EventCallAttempt,
				Content: session.Duration,
				Status:  outcome,
			})
			switch {
			case err == nil:
				w.publish(EventContactUpdated, c)
				out.Contact = &c
			case errors.Is(err, contacts.ErrNotFound):
				w.logger().Warn("Call contact vanished before the attempt was recorded", "contact_id", session.ContactID)
			default:
				return Outcome{}, fmt.Errorf("record call attempt: %w", err)
			}
		}
	}

	if _, ok := w.contacts.Get(contactID); ok {
		out.Transition = w.navigate(navigation.PostCall(contactID))
	} else {
		out.Transition = w.navigate(navigation.Home())
	}
	return out, endErr
}

// CurrentCall returns the active or most recently ended call.
func (w *Workspace) CurrentCall() (domain.CallSession, bool) {
	return w.calls.Current()
}

// SavePostCallNotes records the notes (and optionally resolves the contact),
// then moves to the first other unresolved contact or the follow-up list.
func (w *Workspace) SavePostCallNotes(id, notes string, resolve bool) (Outcome, error) {
	if _, ok := w.contacts.Get(id); !ok {
		return w.redirectNotFound(id), nil
	}

	c, err := w.contacts.AppendNote(id, notes)
	if err != nil {
		return Outcome{}, fmt.Errorf("save post-call notes: %w", err)
	}
	if resolve && !c.IsResolved {
		if c, err = w.contacts.Update(id, domain.ContactPatch{IsResolved: domain.Ptr(true)}); err != nil {
			return Outcome{}, fmt.Errorf("resolve contact: %w", err)
		}
	}
	w.logger().Info("Post-call notes saved", "contact_id", id, "resolved", c.IsResolved)
	w.publish(EventContactUpdated, c)

	out := Outcome{Contact: &c}
	if next, ok := contacts.FirstUnresolved(w.contacts.List(), id); ok {
		out.Transition = w.navigate(navigation.FollowUpDetail(next.ID))
	} else {
		out.Transition = w.navigate(navigation.FollowUps())
	}
	return out, nil
}

// AnalyzeNotes asks the model for key points and next actions from draft
// post-call notes. Nothing is stored.
func (w *Workspace) AnalyzeNotes(ctx context.Context, notes string) (Outcome, error) {
	if strings.TrimSpace(notes) == "" {
		return Outcome{}, &ValidationError{Message: "Notes are empty."}
	}
	release, err := w.beginAI()
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	text := w.complete(ctx, "analyze_notes", ai.Request{Prompt: fmt.Sprintf(analyzeNotesPrompt, notes)})
	return Outcome{Text: text}, nil
}

// AddQuickRemarkToNotes appends the remark's text to notes as a bullet.
func (w *Workspace) AddQuickRemarkToNotes(notes, remarkID string) (string, error) {
	for _, r := range w.Settings().QuickRemarks {
		if r.ID == remarkID {
			return AppendRemark(notes, r.Text), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownRemark, remarkID)
}
