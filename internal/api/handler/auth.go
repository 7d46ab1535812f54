package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/hszk-dev/gocatalog/internal/api/middleware"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
}

// AuthHandler handles login, logout and the current-user lookup.
type AuthHandler struct {
	auth         usecase.AuthService
	users        usecase.UserService
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the session
// cookie Secure and should be set when served over HTTPS.
func NewAuthHandler(auth usecase.AuthService, users usecase.UserService, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, secureCookie: secureCookie}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "invalid_request", "Username and password are required")
		return
	}

	out, err := h.auth.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    out.Token,
		Path:     "/",
		Expires:  out.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	JSON(w, http.StatusOK, LoginResponse{
		User:      toUserResponse(out.User),
		Token:     out.Token,
		ExpiresAt: formatTime(out.ExpiresAt),
	})
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		ServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toUserResponse(user))
}

// clientIP returns the request's remote host. chi's RealIP middleware
// rewrites RemoteAddr from proxy headers when enabled.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
