package identity

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/callpilot/internal/navigation"
	"github.com/ashureev/callpilot/internal/store"
)

// lastSeenInterval limits how often a user's last_seen_at is written.
const lastSeenInterval = time.Minute

// Authenticate resolves the session token, when present, into a user on the
// request context. Requests without a valid token pass through anonymous.
func Authenticate(repo store.Repository, issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := issuer.Parse(token)
			if err != nil {
				slog.Debug("Rejected session token", "error", err, "ip", IPFromRequest(r))
				next.ServeHTTP(w, r)
				return
			}

			user, err := repo.GetUser(r.Context(), claims.UserID)
			if err != nil {
				slog.Error("Failed to load user", "error", err, "user_id", claims.UserID)
				writeError(w, http.StatusInternalServerError, "failed to load user")
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			if now := time.Now(); now.Sub(user.LastSeenAt) > lastSeenInterval {
				userID := user.UserID
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := repo.UpdateLastSeen(ctx, userID, now); err != nil {
						slog.Warn("Failed to update last seen", "error", err, "user_id", userID)
					}
				}()
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireUser rejects anonymous requests and points the client at the
// sign-in screen.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized", "redirect": navigation.Login().Path})
			return
		}
		next.ServeHTTP(w, r)
	})
}
