package middleware

import (
	"net/http"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/google/uuid"
)

// SessionHeader lets API clients without cookies pick their session.
const SessionHeader = "X-Session-ID"

// Session attaches a table view session ID to every request. The ID comes
// from the X-Session-ID header, then the session cookie; a missing or
// malformed ID starts a new session and sets the cookie.
func Session(cfg config.SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := validSessionID(r.Header.Get(SessionHeader))
			if id == "" {
				if c, err := r.Cookie(cfg.CookieName); err == nil {
					id = validSessionID(c.Value)
				}
				if id == "" {
					id = uuid.NewString()
				}
				// Refreshed on every request so the cookie outlives activity.
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.SecureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := core.ContextWithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validSessionID returns the canonical form of a UUID session ID, or ""
// when s is not one.
func validSessionID(s string) string {
	if s == "" {
		return ""
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return ""
	}
	return id.String()
}
