package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"glasstask/internal/db"
)

type UserHandler struct {
	users *db.UserRepository
}

func NewUserHandler(users *db.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// GET /api/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)
	if userID == "" {
		unauthorized(w, "User not found in context")
		return
	}

	user, err := h.users.FindByID(userID)
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "User not found")
		return
	}
	if err != nil {
		slog.Error("error finding user", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
}

// PATCH /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)
	if userID == "" {
		unauthorized(w, "User not found in context")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}

	var username *string
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if !usernameRegex.MatchString(trimmed) {
			badRequest(w, "Username must be 3-32 characters and contain only letters, numbers, underscores, and hyphens")
			return
		}
		username = &trimmed
	}

	if req.Avatar != nil && *req.Avatar != "" {
		if err := requestValidator.Var(*req.Avatar, "url,max=2048"); err != nil {
			badRequest(w, "invalid avatar URL")
			return
		}
	}

	if username != nil || req.Avatar != nil {
		err := h.users.UpdateProfile(userID, username, req.Avatar)
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "User not found")
			return
		}
		if err != nil {
			slog.Error("error updating profile", "error", err, "request_id", getRequestID(r))
			internalError(w)
			return
		}
	}

	user, err := h.users.FindByID(userID)
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "User not found")
		return
	}
	if err != nil {
		slog.Error("error finding user", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
