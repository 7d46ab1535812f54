package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/gocatalog/internal/api/middleware"
	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

func newAuthRouter(authSvc *mockAuthService, users *mockUserService) *chi.Mux {
	h := NewAuthHandler(authSvc, users, false)
	isUnauthorized := func(err error) bool { return errors.Is(err, usecase.ErrUnauthorized) }

	r := chi.NewRouter()
	r.Post("/v1/auth/login", h.Login)
	r.Post("/v1/auth/logout", h.Logout)
	r.With(middleware.RequireSession(authSvc, isUnauthorized)).Get("/v1/auth/me", h.Me)
	return r
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		loginErr       error
		wantStatusCode int
		wantCookie     bool
	}{
		{name: "success", body: `{"username":"admin","password":"admin123"}`, wantStatusCode: http.StatusOK, wantCookie: true},
		{name: "bad credentials", body: `{"username":"admin","password":"x"}`, loginErr: usecase.ErrInvalidCredentials, wantStatusCode: http.StatusUnauthorized},
		{name: "throttled", body: `{"username":"admin","password":"x"}`, loginErr: usecase.ErrTooManyAttempts, wantStatusCode: http.StatusTooManyRequests},
		{name: "missing fields", body: `{"username":"admin"}`, wantStatusCode: http.StatusBadRequest},
		{name: "invalid json", body: `{`, wantStatusCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIP string
			authSvc := &mockAuthService{
				loginFn: func(ctx context.Context, username, password, clientIP string) (*usecase.LoginOutput, error) {
					gotIP = clientIP
					if tt.loginErr != nil {
						return nil, tt.loginErr
					}
					return &usecase.LoginOutput{
						User:      &model.User{ID: 1, Username: username},
						Token:     "tok-1",
						ExpiresAt: time.Now().Add(time.Hour),
					}, nil
				},
			}
			r := newAuthRouter(authSvc, &mockUserService{})

			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBufferString(tt.body))
			req.RemoteAddr = "10.1.2.3:5555"
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Fatalf("expected status %d, got %d", tt.wantStatusCode, rec.Code)
			}
			if !tt.wantCookie {
				return
			}
			if gotIP != "10.1.2.3" {
				t.Errorf("expected client ip 10.1.2.3, got %s", gotIP)
			}

			cookies := rec.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Name != middleware.SessionCookieName || cookies[0].Value != "tok-1" {
				t.Fatalf("expected session cookie, got %+v", cookies)
			}
			if !cookies[0].HttpOnly {
				t.Error("expected HttpOnly session cookie")
			}

			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Token != "tok-1" || resp.User.Username != "admin" {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	authSvc := &mockAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			revoked = token
			return nil
		},
	}
	r := newAuthRouter(authSvc, &mockUserService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if revoked != "tok-1" {
		t.Errorf("expected tok-1 revoked, got %q", revoked)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected session cookie to be cleared, got %+v", cookies)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	authSvc := &mockAuthService{
		authenticateFn: func(ctx context.Context, token string) (*model.User, error) {
			if token == "tok-1" {
				return &model.User{ID: 1}, nil
			}
			return nil, usecase.ErrUnauthorized
		},
	}
	users := &mockUserService{
		getUserFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "admin"}, nil
		},
	}
	r := newAuthRouter(authSvc, users)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Username != "admin" {
		t.Errorf("expected admin, got %s", resp.Username)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without token, got %d", rec.Code)
	}
}
