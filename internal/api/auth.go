package api

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"glasstask/internal/auth"
	"glasstask/internal/db"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)

type AuthHandler struct {
	users        *db.UserRepository
	sessions     *auth.SessionStore
	tokenService *auth.TokenService
	mailer       auth.CodeSender
}

func NewAuthHandler(
	users *db.UserRepository,
	sessions *auth.SessionStore,
	tokenService *auth.TokenService,
	mailer auth.CodeSender,
) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessions:     sessions,
		tokenService: tokenService,
		mailer:       mailer,
	}
}

// POST /api/auth/send-code
type SendCodeRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

type SendCodeResponse struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	ExpiresIn int    `json:"expiresIn"`
}

func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req SendCodeRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	req.Email = normalizeEmail(req.Email)
	if req.Email == "" {
		badRequest(w, "email is required")
		return
	}
	if err := requestValidator.Var(req.Email, "email,max=254"); err != nil {
		badRequest(w, "invalid email format")
		return
	}

	session, err := h.sessions.Begin(req.Email, h.mailer)
	if errors.Is(err, auth.ErrDeliveryFailed) {
		slog.Error("error delivering verification code", "error", err, "request_id", getRequestID(r))
		writeError(w, http.StatusInternalServerError, ErrCodeDeliveryFailed, "Failed to send verification email")
		return
	}
	if err != nil {
		slog.Error("error starting verification session", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	// The code is included in the response because the shipped front end
	// performs its own check against it. Known leakage, kept for
	// compatibility; see DESIGN.md.
	writeJSON(w, http.StatusOK, SendCodeResponse{
		Message:   "Verification code sent to email.",
		Code:      session.Code(),
		ExpiresIn: int(session.Remaining().Seconds()),
	})
}

// POST /api/auth/verify-code
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,max=254"`
	Code  string `json:"code" validate:"required,len=4,numeric"`
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	req.Email = normalizeEmail(req.Email)

	err := h.sessions.Verify(req.Email, req.Code)
	switch {
	case errors.Is(err, auth.ErrCodeExpired):
		writeError(w, http.StatusUnauthorized, ErrCodeCodeExpired, "Verification code has expired, request a new one")
		return
	case errors.Is(err, auth.ErrCodeMismatch):
		writeError(w, http.StatusUnauthorized, ErrCodeCodeMismatch, "Incorrect verification code")
		return
	case errors.Is(err, auth.ErrNoActiveCode):
		writeError(w, http.StatusUnauthorized, ErrCodeAuthFailed, "No active verification code for this email")
		return
	case err != nil:
		slog.Error("error verifying code", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Email verified."})
}

// POST /api/auth/register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Avatar   string `json:"avatar" validate:"omitempty,url,max=2048"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	req.Email = normalizeEmail(req.Email)
	if err := requestValidator.Var(req.Email, "email,max=254"); err != nil {
		badRequest(w, "invalid email format")
		return
	}

	username := strings.TrimSpace(req.Username)
	if !usernameRegex.MatchString(username) {
		badRequest(w, "Username must be 3-32 characters and contain only letters, numbers, underscores, and hyphens")
		return
	}

	if err := h.sessions.ConsumeVerified(req.Email); err != nil {
		writeError(w, http.StatusForbidden, ErrCodeEmailNotVerified, "Email must be verified before registering")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("error hashing password", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	var avatarURL *string
	if req.Avatar != "" {
		avatarURL = &req.Avatar
	}

	_, err = h.users.Create(username, req.Email, hash, avatarURL)
	if errors.Is(err, db.ErrDuplicate) {
		conflict(w, "This email is already registered. Please login or use a different email")
		return
	}
	if err != nil {
		slog.Error("error creating user", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "User registered"})
}

// POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	req.Email = normalizeEmail(req.Email)

	// Unknown email and wrong password fail identically so the endpoint
	// cannot be used to probe which addresses have accounts.
	user, err := h.users.FindByEmail(req.Email)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid credentials")
		return
	}
	if err != nil {
		slog.Error("error finding user", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid credentials")
		return
	}

	token, _, err := h.tokenService.Generate(user.ID)
	if err != nil {
		slog.Error("error issuing access token", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}
