// Package domain contains core domain types for the callpilot service.
package domain

import (
	"strings"
	"time"
)

// User is a signed-up agent account.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Initials returns up to two upper-case initials for avatar fallbacks.
func (u *User) Initials() string {
	name := strings.TrimSpace(u.DisplayName)
	if name == "" {
		name = u.Email
	}
	var initials []rune
	for _, part := range strings.Fields(name) {
		if len(initials) == 2 {
			break
		}
		initials = append(initials, []rune(part)[0])
	}
	if len(initials) == 0 {
		return "?"
	}
	return strings.ToUpper(string(initials))
}

// FirstName is used in greetings.
func (u *User) FirstName() string {
	if fields := strings.Fields(u.DisplayName); len(fields) > 0 {
		return fields[0]
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return "there"
}
