package workflow

// Event types published on every state change.
const (
	EventContactCreated  = "contact.created"
	EventContactUpdated  = "contact.updated"
	EventCallStarted     = "call.started"
	EventCallEnded       = "call.ended"
	EventNavigation      = "navigation"
	EventChatMessage     = "chat.message"
	EventChatRemoved     = "chat.removed"
	EventSettingsUpdated = "settings.updated"
)

// Publisher receives workspace change notifications.
type Publisher interface {
	Publish(userID, eventType string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, any) {}

func (w *Workspace) publish(eventType string, payload any) {
	w.pub.Publish(w.userID, eventType, payload)
}
