package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(id, email string) *domain.User {
	now := time.Unix(1_700_000_000, 0)
	return &domain.User{
		UserID:       id,
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: "hash",
		LastSeenAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "callpilot.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(ctx))

	u := newUser("user_1", "a@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUser(ctx, "user_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(u.CreatedAt))

	byEmail, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "user_1", byEmail.UserID)

	missing, err := s.GetUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = s.CreateUser(ctx, newUser("user_2", "a@example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)

	seen := time.Unix(1_800_000_000, 0)
	require.NoError(t, s.UpdateLastSeen(ctx, "user_1", seen))
	got, err = s.GetUser(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, got.LastSeenAt.Equal(seen))

	// Unknown users are not an error.
	require.NoError(t, s.UpdateLastSeen(ctx, "nobody", seen))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "callpilot.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(ctx, newUser("user_1", "a@example.com")))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
}
