// Package api provides HTTP handlers for the callpilot API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/callpilot/internal/calls"
	"github.com/ashureev/callpilot/internal/contacts"
	"github.com/ashureev/callpilot/internal/identity"
	"github.com/ashureev/callpilot/internal/navigation"
	"github.com/ashureev/callpilot/internal/workflow"
	"github.com/go-chi/chi/v5"
)

// Handler serves the workspace endpoints.
type Handler struct {
	registry *workflow.Registry
	limiter  *RateLimiter
}

// NewHandler creates a new Handler. A nil limiter disables AI throttling.
func NewHandler(registry *workflow.Registry, limiter *RateLimiter) *Handler {
	return &Handler{registry: registry, limiter: limiter}
}

// RegisterRoutes registers the workspace routes. Callers mount them behind
// identity.RequireUser.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", h.ListContacts)
		r.Post("/", h.AddContact)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetContact)
			r.Patch("/", h.UpdateContact)
			r.Post("/notes", h.AppendRemark)
			r.Get("/next", h.NextContact)
			r.With(h.throttleAI).Post("/summarize", h.SummarizeContext)
			r.With(h.throttleAI).Post("/script", h.SuggestScript)
		})
	})

	r.Route("/calls", func(r chi.Router) {
		r.Post("/start", h.StartCall)
		r.Post("/end", h.EndCall)
		r.Get("/current", h.CurrentCall)
	})

	r.With(h.throttleAI).Post("/post-call/analyze", h.AnalyzeNotes)
	r.Post("/post-call/{id}", h.SavePostCallNotes)

	r.Post("/navigate", h.Navigate)
	r.Get("/navigation", h.NavigationState)

	r.Route("/chat", func(r chi.Router) {
		r.Get("/", h.Transcript)
		r.Post("/attach", h.AttachImage)
		r.With(h.throttleAI).Post("/ask", h.Ask)
		r.With(h.throttleAI).Post("/follow-ups", h.QuickFollowUps)
		r.With(h.throttleAI).Post("/extract-contact", h.ExtractContact)
	})

	r.Get("/confirm-contact", h.GetConfirmation)
	r.Post("/confirm-contact", h.ConfirmContact)
	r.Delete("/confirm-contact", h.CancelConfirmation)

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.GetSettings)
		r.Put("/", h.UpdateSettings)
		r.Post("/remarks", h.AddQuickRemark)
		r.Delete("/remarks/{id}", h.RemoveQuickRemark)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// workspace resolves the caller's workspace. It writes the error response
// itself and returns nil on failure.
func (h *Handler) workspace(w http.ResponseWriter, r *http.Request) *workflow.Workspace {
	user := identity.UserFromContext(r.Context())
	if user == nil {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}
	ws, err := h.registry.Get(user.UserID, user.FirstName())
	if err != nil {
		slog.Error("Failed to open workspace", "error", err, "user_id", user.UserID)
		Error(w, http.StatusInternalServerError, "failed to open workspace")
		return nil
	}
	return ws
}

// statusFor maps workflow and store errors to HTTP status codes.
func statusFor(err error) int {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrBusy),
		errors.Is(err, workflow.ErrNothingToConfirm),
		errors.Is(err, calls.ErrNoActiveSession),
		errors.Is(err, contacts.ErrReopenNotSupported):
		return http.StatusConflict
	case errors.Is(err, contacts.ErrNotFound),
		errors.Is(err, workflow.ErrUnknownRemark),
		errors.Is(err, navigation.ErrUnknownPath),
		errors.Is(err, navigation.ErrUnknownRoute):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidImage),
		errors.Is(err, workflow.ErrEmptyPrompt),
		errors.Is(err, workflow.ErrUnknownFollowUpKind),
		errors.Is(err, workflow.ErrInvalidOutcome),
		errors.Is(err, calls.ErrInvalidDuration),
		errors.Is(err, contacts.ErrInvalidUrgency),
		errors.Is(err, navigation.ErrRouteParams):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal errors are logged and
// not echoed to the client.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "path", r.URL.Path, "user_id", identity.UserIDFromContext(r.Context()))
		Error(w, status, "internal error")
		return
	}
	Error(w, status, err.Error())
}

// errorWithOutcome reports a failure that still carries a navigation result.
type errorWithOutcome struct {
	Error string `json:"error"`
	workflow.Outcome
}
