// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/callpilot/internal/domain"
)

// ErrEmailTaken is returned when signing up with an e-mail already in use.
var ErrEmailTaken = errors.New("email already registered")

// Repository defines the interface for persisting user accounts.
type Repository interface {
	// CreateUser inserts a new account.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUser retrieves a user by their user ID. A missing user is (nil, nil).
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves a user by normalized e-mail. A missing user is (nil, nil).
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
