// Package workflow ties the contact store, call tracker, navigator and AI
// gateway together into the per-user flows behind each screen.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/callpilot/internal/ai"
	"github.com/ashureev/callpilot/internal/calls"
	"github.com/ashureev/callpilot/internal/contacts"
	"github.com/ashureev/callpilot/internal/domain"
	"github.com/ashureev/callpilot/internal/navigation"
	"github.com/ashureev/callpilot/internal/seed"
	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when an AI request is already running for the workspace.
	ErrBusy = errors.New("another assistant request is in progress")
	// ErrNothingToConfirm is returned when no extracted contact is staged.
	ErrNothingToConfirm = errors.New("no extracted contact awaiting confirmation")
	// ErrEmptyPrompt is returned for a chat message with neither text nor image.
	ErrEmptyPrompt = errors.New("message text or image is required")
	// ErrInvalidImage wraps attachment decoding failures.
	ErrInvalidImage = errors.New("invalid image attachment")
	// ErrUnknownRemark is returned for quick remark ids not in settings.
	ErrUnknownRemark = errors.New("quick remark not found")
	// ErrUnknownFollowUpKind is returned for follow-up kinds other than customers and prospects.
	ErrUnknownFollowUpKind = errors.New("unknown follow-up kind")
)

// ValidationError carries a message meant to be shown inline on a form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Completer is the AI gateway as seen by the workflow. ok is false when
// text is a fallback rather than a model answer.
type Completer interface {
	CompleteResult(ctx context.Context, req ai.Request) (text string, ok bool)
}

// Outcome is what a flow did: where it navigated, what it wants shown, and
// the records it touched. Recoverable problems are reported as a Notice.
type Outcome struct {
	Transition *navigation.Transition   `json:"transition,omitempty"`
	Notice     string                   `json:"notice,omitempty"`
	Messages   []domain.Message         `json:"messages,omitempty"`
	Contact    *domain.Contact          `json:"contact,omitempty"`
	Call       *domain.CallSession      `json:"call,omitempty"`
	Text       string                   `json:"text,omitempty"`
	Leads      []domain.PrioritizedLead `json:"leads,omitempty"`
}

// Config wires a workspace.
type Config struct {
	UserID      string
	DisplayName string
	Gateway     Completer
	Publisher   Publisher
	Seed        seed.Data
	Clock       func() time.Time
}

// Workspace is one user's working state.
type Workspace struct {
	userID    string
	sessionID string
	name      string

	contacts *contacts.Store
	calls    *calls.Tracker
	nav      *navigation.Navigator
	gateway  Completer
	pub      Publisher
	now      func() time.Time

	// busy admits one AI request at a time.
	busy sync.Mutex

	mu         sync.Mutex
	settings   domain.Settings
	transcript []domain.Message
	attachment string
}

// New creates a workspace populated from cfg.Seed.
func New(cfg Config) (*Workspace, error) {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = nopPublisher{}
	}
	gateway := cfg.Gateway
	if gateway == nil {
		gateway = ai.NewGateway(nil, ai.Config{}, nil)
	}

	w := &Workspace{
		userID:    cfg.UserID,
		sessionID: "ws_" + uuid.NewString(),
		name:      cfg.DisplayName,
		contacts:  contacts.NewStore(contacts.WithClock(now)),
		calls:     calls.NewTrackerWithClock(now),
		nav:       navigation.NewNavigator(),
		gateway:   gateway,
		pub:       pub,
		now:       now,
		settings:  cfg.Seed.Settings.Clone(),
	}

	seededAt := now()
	for _, sc := range cfg.Seed.Contacts {
		if err := w.contacts.Restore(sc.Materialize(seededAt)); err != nil {
			return nil, fmt.Errorf("seed workspace: %w", err)
		}
	}

	w.transcript = []domain.Message{domain.AIMessage{
		MessageMeta: w.meta(),
		Text:        fmt.Sprintf("Hello, %s. What can I help you with today?", w.greetingName()),
	}}
	return w, nil
}

func (w *Workspace) greetingName() string {
	if w.name == "" {
		return "there"
	}
	return w.name
}

func (w *Workspace) meta() domain.MessageMeta {
	return domain.MessageMeta{ID: "msg_" + uuid.NewString(), Timestamp: w.now()}
}

func (w *Workspace) logger() *slog.Logger {
	return slog.With("user_id", w.userID)
}

// beginAI claims the AI slot for the workspace.
func (w *Workspace) beginAI() (release func(), err error) {
	if !w.busy.TryLock() {
		return nil, ErrBusy
	}
	return w.busy.Unlock, nil
}

// withLoader keeps a loader message in the transcript while fn runs.
func (w *Workspace) withLoader(fn func() string) string {
	loader := domain.LoaderMessage{MessageMeta: w.meta()}
	w.appendMessages(loader)
	defer w.removeMessage(loader.ID)
	return fn()
}

// Busy reports whether an AI request is in flight.
func (w *Workspace) Busy() bool {
	if w.busy.TryLock() {
		w.busy.Unlock()
		return false
	}
	return true
}

func (w *Workspace) complete(ctx context.Context, channel string, req ai.Request) string {
	text, _ := w.completeResult(ctx, channel, req)
	return text
}

func (w *Workspace) completeResult(ctx context.Context, channel string, req ai.Request) (string, bool) {
	req.UserID = w.userID
	req.SessionID = w.sessionID
	req.Channel = channel
	return w.gateway.CompleteResult(ctx, req)
}

// navigate moves the navigator and publishes the transition.
func (w *Workspace) navigate(t navigation.Target) *navigation.Transition {
	tr := w.nav.NavigateTo(t)
	w.publish(EventNavigation, tr)
	return &tr
}

// redirectNotFound sends the user back to the follow-up list.
func (w *Workspace) redirectNotFound(contactID string) Outcome {
	w.logger().Info("Contact not found, redirecting", "contact_id", contactID)
	return Outcome{
		Transition: w.navigate(navigation.FollowUps()),
		Notice:     "Contact not found.",
	}
}

// Navigate resolves a raw path and moves there. Contact-scoped paths that
// name an unknown contact are redirected to the follow-up list.
func (w *Workspace) Navigate(path string) (Outcome, error) {
	t, err := navigation.Resolve(path)
	if err != nil {
		return Outcome{}, err
	}
	// Sign-in screens make no sense from inside a workspace.
	if navigation.IsPublicPath(path) {
		return Outcome{Transition: w.navigate(navigation.Home())}, nil
	}
	if id := t.ContactID(); id != "" {
		if _, ok := w.contacts.Get(id); !ok {
			return w.redirectNotFound(id), nil
		}
	}
	if t.Route == navigation.RouteConfirmContact {
		if _, ok := w.nav.Confirmation(); !ok {
			return Outcome{
				Transition: w.navigate(navigation.Home()),
				Notice:     "Nothing to confirm. Extract a contact from an image first.",
			}, nil
		}
	}
	return Outcome{Transition: w.navigate(t)}, nil
}

// NavigationState returns the navigator snapshot.
func (w *Workspace) NavigationState() navigation.State {
	return w.nav.State()
}

// Confirmation returns the staged contact awaiting confirmation.
func (w *Workspace) Confirmation() (navigation.ContactConfirmation, bool) {
	return w.nav.Confirmation()
}

// SelectedContact resolves the navigator's selection.
func (w *Workspace) SelectedContact() (domain.Contact, bool) {
	id := w.nav.SelectedContactID()
	if id == "" {
		return domain.Contact{}, false
	}
	return w.contacts.Get(id)
}
