package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type UserResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar,omitempty"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
}

// avatarMaxBytes caps avatar uploads.
const avatarMaxBytes = 10 << 20

// UserHandler handles admin account HTTP requests.
type UserHandler struct {
	svc usecase.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc usecase.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List handles GET /v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, lo.Map(users, func(u *model.User, _ int) UserResponse {
		return toUserResponse(u)
	}))
}

// Get handles GET /v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID")
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toUserResponse(user))
}

// Create handles POST /v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "invalid_request", "Username and password are required")
		return
	}

	user, err := h.svc.CreateUser(r.Context(), usecase.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, toUserResponse(user))
}

// Update handles PUT /v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	// An empty password in an edit form means "keep the current one".
	if req.Password != nil && *req.Password == "" {
		req.Password = nil
	}

	user, err := h.svc.UpdateUser(r.Context(), id, usecase.UpdateUserInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID")
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// UploadAvatar handles POST /v1/users/{id}/avatar
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, avatarMaxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "file_too_large", "Avatar exceeds the size limit")
			return
		}
		Error(w, http.StatusBadRequest, "invalid_request", "Expected a multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("avatar")
	if err != nil {
		Error(w, http.StatusBadRequest, "missing_file", "No avatar uploaded")
		return
	}
	defer file.Close()

	user, err := h.svc.UploadAvatar(r.Context(), id, file)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toUserResponse(user))
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Avatar:     u.Avatar,
		CreatedAt:  formatTime(u.CreatedAt),
		ModifiedAt: formatTime(u.ModifiedAt),
	}
}
