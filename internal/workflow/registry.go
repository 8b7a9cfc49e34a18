package workflow

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ashureev/callpilot/internal/seed"
)

// Registry hands out one workspace per user, created on first use.
type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace

	gateway Completer
	pub     Publisher
	seed    seed.Data
}

// NewRegistry creates an empty registry. Every new workspace starts from data.
func NewRegistry(gateway Completer, pub Publisher, data seed.Data) *Registry {
	return &Registry{
		workspaces: make(map[string]*Workspace),
		gateway:    gateway,
		pub:        pub,
		seed:       data,
	}
}

// Get returns the user's workspace, creating it if needed.
func (r *Registry) Get(userID, displayName string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.workspaces[userID]; ok {
		return ws, nil
	}
	ws, err := New(Config{
		UserID:      userID,
		DisplayName: displayName,
		Gateway:     r.gateway,
		Publisher:   r.pub,
		Seed:        r.seed,
	})
	if err != nil {
		return nil, fmt.Errorf("create workspace for %s: %w", userID, err)
	}
	r.workspaces[userID] = ws
	slog.Info("Workspace created", "user_id", userID, "contacts", ws.contacts.Len())
	return ws, nil
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
