package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hszk-dev/gocatalog/internal/auth"
	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func Error(w http.ResponseWriter, status int, err string, message string) {
	JSON(w, status, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{usecase.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", "Identifiers must be positive integers"},
	{usecase.ErrInvalidKind, http.StatusBadRequest, "invalid_kind", "Thumbnails are only available for video media"},
	{usecase.ErrUnsupportedFileType, http.StatusBadRequest, "unsupported_file_type", "File type is not allowed"},
	{usecase.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication required"},
	{usecase.ErrTooManyAttempts, http.StatusTooManyRequests, "too_many_attempts", "Too many login attempts, try again later"},
	{usecase.ErrThumbnailGenerationFailed, http.StatusInternalServerError, "thumbnail_generation_failed", "Failed to generate thumbnail"},
	{usecase.ErrStorage, http.StatusInternalServerError, "storage_error", "A storage error occurred"},

	{repository.ErrItemNotFound, http.StatusNotFound, "item_not_found", "Item not found"},
	{repository.ErrMediaNotFound, http.StatusNotFound, "media_not_found", "Media not found"},
	{repository.ErrUserNotFound, http.StatusNotFound, "user_not_found", "User not found"},
	{repository.ErrDuplicateUsername, http.StatusConflict, "duplicate_username", "Username already exists"},

	{model.ErrEmptyName, http.StatusBadRequest, "invalid_name", "Name is required"},
	{model.ErrNameTooLong, http.StatusBadRequest, "invalid_name", "Name exceeds maximum length"},
	{model.ErrEmptyDescription, http.StatusBadRequest, "invalid_description", "Description is required"},
	{model.ErrInvalidPrice, http.StatusBadRequest, "invalid_price", "Price must be between 0 and 9999999999.99"},
	{model.ErrInvalidMediaKind, http.StatusBadRequest, "invalid_file_type", "fileType must be 'image' or 'video'"},
	{model.ErrEmptyUsername, http.StatusBadRequest, "invalid_username", "Username is required"},
	{model.ErrUsernameTooLong, http.StatusBadRequest, "invalid_username", "Username exceeds maximum length"},
	{auth.ErrPasswordTooShort, http.StatusBadRequest, "invalid_password", auth.ErrPasswordTooShort.Error()},
	{auth.ErrPasswordTooLong, http.StatusBadRequest, "invalid_password", auth.ErrPasswordTooLong.Error()},
}

// ServiceError writes the response for an error returned by a usecase.
// Unknown errors become a logged 500.
func ServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				logServerError(r, err)
			}
			Error(w, m.status, m.code, m.message)
			return
		}
	}

	logServerError(r, err)
	Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}

func logServerError(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
}

// parseID parses a positive integer identifier from a path or query value.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
