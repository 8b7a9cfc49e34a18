package domain

import (
	"fmt"
	"time"
)

// CallSession is the record of the active or most recently finished call.
type CallSession struct {
	ContactID       string     `json:"contactId"`
	ContactName     string     `json:"contactName"`
	StartedAt       time.Time  `json:"callStartTime"`
	EndedAt         *time.Time `json:"callEndTime,omitempty"`
	Duration        string     `json:"callDuration,omitempty"`
	DurationSeconds int        `json:"durationSeconds,omitempty"`
}

// Ended reports whether the call has been finalized.
func (s CallSession) Ended() bool {
	return s.EndedAt != nil
}

// FormatDuration renders seconds as "<m> min <s> sec".
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d min %d sec", seconds/60, seconds%60)
}
