package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "gocatalog_session"

// ErrUnauthenticated is returned by a SessionAuthenticator for unknown or expired tokens.
// Any other error is treated as a server failure.
var ErrUnauthenticated = errors.New("unauthenticated")

// SessionAuthenticator resolves a session token to its user.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// SessionToken returns the session token from the cookie or a Bearer
// Authorization header, cookie first.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireSession rejects requests without a valid session and stores the
// user ID in the request context. isUnauthorized classifies Authenticate
// errors that mean a bad token rather than a backend failure.
func RequireSession(auth SessionAuthenticator, isUnauthorized func(error) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrUnauthenticated) || (isUnauthorized != nil && isUnauthorized(err)) {
					writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
					return
				}
				slog.Error("session lookup failed",
					"request_id", GetRequestID(r.Context()),
					"error", err,
				)
				writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
				return
			}

			ctx := WithUserID(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
