// Package contacts provides the in-memory contact store and follow-up views.
package contacts

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a contact id does not resolve.
	ErrNotFound = errors.New("contact not found")
	// ErrReopenNotSupported is returned when a patch tries to unresolve a contact.
	ErrReopenNotSupported = errors.New("resolved contacts cannot be reopened")
	// ErrInvalidUrgency is returned for urgency values outside urgent/normal/low.
	ErrInvalidUrgency = errors.New("invalid urgency")
)

// Store keeps contacts in memory, keyed by id, in display order.
// Newly added contacts go to the front.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Contact
	order []string
	now   func() time.Time
	last  time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		byID: make(map[string]*domain.Contact),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tick returns a timestamp strictly after every one handed out before.
// Must be called with mu held.
func (s *Store) tick() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Millisecond)
	}
	s.last = t
	return t
}

// Add creates a contact with a fresh id and returns it.
func (s *Store) Add(in domain.NewContact) (domain.Contact, error) {
	urgency, err := domain.ParseUrgency(string(in.Urgency))
	if err != nil {
		return domain.Contact{}, fmt.Errorf("%w: %v", ErrInvalidUrgency, err)
	}
	callBefore := in.CallBefore
	if callBefore == "" {
		callBefore = domain.CallBeforeNone
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := &domain.Contact{
		ID:            "contact_" + uuid.NewString(),
		Name:          in.Name,
		Phone:         in.Phone,
		Email:         in.Email,
		Company:       in.Company,
		Status:        in.Status,
		Urgency:       urgency,
		CallBefore:    callBefore,
		Notes:         in.Notes,
		PreCallScript: in.PreCallScript,
		History:       []domain.HistoryEvent{},
		IsResolved:    false,
	}
	c.LastInteraction = s.tick()

	s.byID[c.ID] = c
	s.order = append([]string{c.ID}, s.order...)
	return c.Clone(), nil
}

// Update merges patch into the contact and refreshes its last interaction.
func (s *Store) Update(id string, patch domain.ContactPatch) (domain.Contact, error) {
	if patch.Urgency != nil && !patch.Urgency.Valid() {
		return domain.Contact{}, fmt.Errorf("%w: %q", ErrInvalidUrgency, *patch.Urgency)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return domain.Contact{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	if patch.IsResolved != nil && !*patch.IsResolved && c.IsResolved {
		return domain.Contact{}, fmt.Errorf("update %s: %w", id, ErrReopenNotSupported)
	}

	patch.Apply(c)
	c.LastInteraction = s.tick()
	return c.Clone(), nil
}

// AppendNote stores text as the post-call notes and records it in history.
func (s *Store) AppendNote(id, text string) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return domain.Contact{}, fmt.Errorf("append note %s: %w", id, ErrNotFound)
	}
	now := s.tick()
	c.PostCallNotes = text
	c.History = append(c.History, domain.HistoryEvent{
		Type:    domain.EventNote,
		Content: text,
		Date:    now,
	})
	c.LastInteraction = now
	return c.Clone(), nil
}

// RecordEvent appends an entry to the contact's history.
// A zero event date is stamped with the current time.
func (s *Store) RecordEvent(id string, ev domain.HistoryEvent) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return domain.Contact{}, fmt.Errorf("record event %s: %w", id, ErrNotFound)
	}
	now := s.tick()
	if ev.Date.IsZero() {
		ev.Date = now
	}
	c.History = append(c.History, ev)
	c.LastInteraction = now
	return c.Clone(), nil
}

// Get returns a copy of the contact.
func (s *Store) Get(id string) (domain.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return domain.Contact{}, false
	}
	return c.Clone(), true
}

// List returns copies of every contact in store order.
func (s *Store) List() []domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Contact, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// Len returns the number of contacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Restore inserts a fully formed contact at the end of the store order.
// It is used for seeding and keeps the given id and timestamps.
func (s *Store) Restore(c domain.Contact) error {
	if c.ID == "" {
		return errors.New("restore: contact id is required")
	}
	if !c.Urgency.Valid() {
		return fmt.Errorf("restore %s: %w: %q", c.ID, ErrInvalidUrgency, c.Urgency)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[c.ID]; exists {
		return fmt.Errorf("restore %s: duplicate id", c.ID)
	}
	cp := c.Clone()
	switch now := s.now(); {
	case cp.LastInteraction.IsZero():
		cp.LastInteraction = s.tick()
	case cp.LastInteraction.After(now):
		cp.LastInteraction = now
	}
	if cp.LastInteraction.After(s.last) {
		s.last = cp.LastInteraction
	}
	s.byID[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	return nil
}
