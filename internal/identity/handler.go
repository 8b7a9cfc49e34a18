package identity

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/ashureev/callpilot/internal/store"
	"github.com/google/uuid"
)

// Handler serves the /api/auth endpoints.
type Handler struct {
	repo   store.Repository
	issuer *Issuer
	isDev  bool
}

// NewHandler creates the auth handler.
func NewHandler(repo store.Repository, issuer *Issuer, isDev bool) *Handler {
	return &Handler{repo: repo, issuer: issuer, isDev: isDev}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type sessionResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// MeResponse is the auth state reported to clients.
type MeResponse struct {
	Loading  bool         `json:"loading"`
	User     *domain.User `json:"user"`
	Initials string       `json:"initials,omitempty"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account and signs it in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < MinPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	now := time.Now()
	user := &domain.User{
		UserID:       "user_" + uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(req.Name),
		PasswordHash: hash,
		LastSeenAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		slog.Error("Failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	slog.Info("User signed up", "user_id", user.UserID)
	h.startSession(w, http.StatusCreated, user)
}

// Login verifies credentials and issues a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.GetUserByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		slog.Error("Failed to look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	if user == nil || !CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	slog.Info("User signed in", "user_id", user.UserID)
	h.startSession(w, http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !h.isDev,
	})
	if id := UserIDFromContext(r.Context()); id != "" {
		slog.Info("User signed out", "user_id", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me reports the current user, or a null user when signed out.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	resp := MeResponse{User: UserFromContext(r.Context())}
	if resp.User != nil {
		resp.Initials = resp.User.Initials()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) startSession(w http.ResponseWriter, status int, user *domain.User) {
	token, expires, err := h.issuer.Sign(user)
	if err != nil {
		slog.Error("Failed to sign session token", "error", err, "user_id", user.UserID)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(h.issuer.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !h.isDev,
	})
	writeJSON(w, status, sessionResponse{User: user, Token: token, ExpiresAt: expires})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
