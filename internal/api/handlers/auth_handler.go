package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	middleware "textgenai/internal/api/middlewares"
	"textgenai/internal/core"
	"textgenai/internal/services"
)

type AuthHandler struct {
	users     *services.UserService
	jwtSecret []byte
	logger    *slog.Logger
}

func NewAuthHandler(users *services.UserService, jwtSecret []byte, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	_, err := h.users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if errors.Is(err, core.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "This email is already registered.")
		return
	}
	if err != nil {
		h.logger.Error("signup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Server error, please try again.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please fill in both email and password.")
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, core.ErrInvalidCredentials) {
		// One message for unknown email and wrong password alike.
		writeError(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	if err != nil {
		h.logger.Error("login failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Server error, please try again.")
		return
	}

	if err := middleware.IssueSessionCookie(w, h.jwtSecret, user.Name, user.Email); err != nil {
		h.logger.Error("session issue failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Server error, please try again.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Me returns the signed-in user's display data, including the avatar
// initial derived from the first letter of the name.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not logged in or session expired.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"name":    id.Name,
		"initial": nameInitial(id.Name),
	})
}

func nameInitial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return string(unicode.ToUpper(r))
	}
	return ""
}
