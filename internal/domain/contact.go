package domain

import (
	"fmt"
	"time"
)

// Urgency ranks how soon a contact needs attention.
type Urgency string

const (
	UrgencyUrgent Urgency = "urgent"
	UrgencyNormal Urgency = "normal"
	UrgencyLow    Urgency = "low"
)

// Valid reports whether u is one of the known urgency levels.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyUrgent, UrgencyNormal, UrgencyLow:
		return true
	}
	return false
}

// ParseUrgency normalizes an urgency label. Empty input maps to normal.
func ParseUrgency(s string) (Urgency, error) {
	if s == "" {
		return UrgencyNormal, nil
	}
	u := Urgency(s)
	if !u.Valid() {
		return "", fmt.Errorf("unknown urgency %q", s)
	}
	return u, nil
}

// History event types.
const (
	EventNote        = "note"
	EventCall        = "call"
	EventCallAttempt = "call_attempt"
)

// Call attempt statuses.
const (
	AttemptNoAnswer  = "no_answer"
	AttemptCompleted = "completed"
)

// CallBeforeNone marks a contact with no callback deadline.
const CallBeforeNone = "N/A"

// HistoryEvent is one entry in a contact's append-only history.
type HistoryEvent struct {
	Type    string    `json:"type"`
	Content string    `json:"content,omitempty"`
	Date    time.Time `json:"date"`
	Status  string    `json:"status,omitempty"`
}

// Contact is a lead or customer record.
type Contact struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Phone             string         `json:"phone"`
	Email             string         `json:"email"`
	Company           string         `json:"company"`
	Status            string         `json:"status"`
	Urgency           Urgency        `json:"urgency"`
	CallBefore        string         `json:"callBefore"`
	Notes             string         `json:"notes"`
	PreCallScript     string         `json:"preCallScript,omitempty"`
	SuggestedScript   string         `json:"suggestedScript,omitempty"`
	SummarizedContext string         `json:"summarizedContext,omitempty"`
	PostCallNotes     string         `json:"postCallNotes,omitempty"`
	History           []HistoryEvent `json:"history"`
	IsResolved        bool           `json:"isResolved"`
	LastInteraction   time.Time      `json:"lastInteraction"`
}

// Clone returns a copy that shares no history backing array with c.
func (c Contact) Clone() Contact {
	out := c
	out.History = make([]HistoryEvent, len(c.History))
	copy(out.History, c.History)
	return out
}

// HasNoAnswerAttempt reports whether any recorded call attempt went unanswered.
func (c Contact) HasNoAnswerAttempt() bool {
	for _, h := range c.History {
		if h.Type == EventCallAttempt && h.Status == AttemptNoAnswer {
			return true
		}
	}
	return false
}

// NewContact carries the caller-supplied fields for a contact being created.
type NewContact struct {
	Name          string  `json:"name" yaml:"name"`
	Phone         string  `json:"phone" yaml:"phone"`
	Email         string  `json:"email" yaml:"email"`
	Company       string  `json:"company" yaml:"company"`
	Status        string  `json:"status" yaml:"status"`
	Urgency       Urgency `json:"urgency" yaml:"urgency"`
	CallBefore    string  `json:"callBefore" yaml:"callBefore"`
	Notes         string  `json:"notes" yaml:"notes"`
	PreCallScript string  `json:"preCallScript" yaml:"preCallScript"`
}

// HasIdentity reports whether at least one of name, phone or email is set.
func (n NewContact) HasIdentity() bool {
	return n.Name != "" || n.Phone != "" || n.Email != ""
}

// ContactDraft holds identity fields read off an image, awaiting confirmation.
// Missing fields are empty strings, never absent.
type ContactDraft struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

// ContactPatch is a partial update. Nil fields are left untouched.
type ContactPatch struct {
	Name              *string  `json:"name,omitempty"`
	Phone             *string  `json:"phone,omitempty"`
	Email             *string  `json:"email,omitempty"`
	Company           *string  `json:"company,omitempty"`
	Status            *string  `json:"status,omitempty"`
	Urgency           *Urgency `json:"urgency,omitempty"`
	CallBefore        *string  `json:"callBefore,omitempty"`
	Notes             *string  `json:"notes,omitempty"`
	PreCallScript     *string  `json:"preCallScript,omitempty"`
	SuggestedScript   *string  `json:"suggestedScript,omitempty"`
	SummarizedContext *string  `json:"summarizedContext,omitempty"`
	PostCallNotes     *string  `json:"postCallNotes,omitempty"`
	IsResolved        *bool    `json:"isResolved,omitempty"`
}

// Apply merges the non-nil fields of p into c.
func (p ContactPatch) Apply(c *Contact) {
	setString(&c.Name, p.Name)
	setString(&c.Phone, p.Phone)
	setString(&c.Email, p.Email)
	setString(&c.Company, p.Company)
	setString(&c.Status, p.Status)
	setString(&c.CallBefore, p.CallBefore)
	setString(&c.Notes, p.Notes)
	setString(&c.PreCallScript, p.PreCallScript)
	setString(&c.SuggestedScript, p.SuggestedScript)
	setString(&c.SummarizedContext, p.SummarizedContext)
	setString(&c.PostCallNotes, p.PostCallNotes)
	if p.Urgency != nil {
		c.Urgency = *p.Urgency
	}
	if p.IsResolved != nil {
		c.IsResolved = *p.IsResolved
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
