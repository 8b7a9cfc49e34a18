// Package calls tracks the single active or just-finished call.
package calls

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ashureev/callpilot/internal/domain"
)

var (
	// ErrNoActiveSession is returned when ending a call that was never started
	// or has already been ended.
	ErrNoActiveSession = errors.New("no active call session")
	// ErrInvalidDuration is returned for negative call durations.
	ErrInvalidDuration = errors.New("call duration must not be negative")
)

// Tracker holds at most one call session. Starting a call discards the
// previous session; no older sessions are kept.
type Tracker struct {
	mu      sync.Mutex
	session *domain.CallSession
	now     func() time.Time
}

// NewTracker creates a tracker with no session.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// NewTrackerWithClock creates a tracker using the given time source.
func NewTrackerWithClock(now func() time.Time) *Tracker {
	return &Tracker{now: now}
}

// Start begins a call with c, replacing any existing session.
func (t *Tracker) Start(c domain.Contact) domain.CallSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.session = &domain.CallSession{
		ContactID:   c.ID,
		ContactName: c.Name,
		StartedAt:   t.now(),
	}
	return *t.session
}

// End finalizes the active session with the measured duration.
func (t *Tracker) End(durationSeconds int) (domain.CallSession, error) {
	if durationSeconds < 0 {
		return domain.CallSession{}, fmt.Errorf("%w: %d", ErrInvalidDuration, durationSeconds)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil || t.session.Ended() {
		return domain.CallSession{}, ErrNoActiveSession
	}
	ended := t.now()
	t.session.EndedAt = &ended
	t.session.DurationSeconds = durationSeconds
	t.session.Duration = domain.FormatDuration(durationSeconds)
	return *t.session, nil
}

// Current returns the latest session, active or finished.
func (t *Tracker) Current() (domain.CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return domain.CallSession{}, false
	}
	return *t.session, true
}

// Active reports whether a call is in progress.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session != nil && !t.session.Ended()
}

// FormatClock renders elapsed seconds as m:ss for the in-call timer.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
