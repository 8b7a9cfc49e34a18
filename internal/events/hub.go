// Package events fans workspace changes out to connected clients.
package events

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 64

// Event is one change notification.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Hub keeps subscribers per user. Publishing never blocks: a subscriber
// whose queue is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub. buffer <= 0 selects DefaultBuffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscription is one client's event stream.
type Subscription struct {
	hub    *Hub
	userID string
	ch     chan Event
	once   sync.Once
}

// Subscribe registers a new stream for userID.
func (h *Hub) Subscribe(userID string) *Subscription {
	s := &Subscription{hub: h, userID: userID, ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[userID]; !ok {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][s] = struct{}{}
	slog.Info("Event subscriber registered", "user_id", userID, "subscribers", len(h.subs[userID]))
	return s
}

// Events returns the stream. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close removes the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[s.userID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, s.userID)
			}
		}
		close(s.ch)
		slog.Info("Event subscriber unregistered", "user_id", s.userID)
	})
}

// Publish delivers an event to every subscriber of userID.
func (h *Hub) Publish(userID, eventType string, payload any) {
	ev := Event{Type: eventType, Payload: payload, At: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[userID] {
		select {
		case s.ch <- ev:
		default:
			slog.Warn("Event subscriber too slow, dropping event", "user_id", userID, "type", eventType)
		}
	}
}

// Subscribers returns how many streams userID has open.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// CloseAll ends every subscription, for shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var all []*Subscription
	for _, set := range h.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range all {
		s.Close()
	}
}
