package workflow

import (
	"slices"

	"github.com/ashureev/callpilot/internal/domain"
)

// Transcript returns the chat history, oldest first.
func (w *Workspace) Transcript() []domain.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Message, len(w.transcript))
	copy(out, w.transcript)
	return out
}

func (w *Workspace) appendMessages(msgs ...domain.Message) {
	w.mu.Lock()
	w.transcript = append(w.transcript, msgs...)
	w.mu.Unlock()

	for _, m := range msgs {
		w.publish(EventChatMessage, m)
	}
}

func (w *Workspace) removeMessage(id string) {
	w.mu.Lock()
	w.transcript = slices.DeleteFunc(w.transcript, func(m domain.Message) bool {
		return m.Meta().ID == id
	})
	w.mu.Unlock()

	w.publish(EventChatRemoved, map[string]string{"id": id})
}
