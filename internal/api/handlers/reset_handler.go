package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"textgenai/internal/core"
	"textgenai/internal/services"
)

// ResetHandler drives the OTP password-reset flow:
// request -> verify -> complete, with expiry and single-use codes.
type ResetHandler struct {
	db     core.DbClient
	users  *services.UserService
	otp    *services.OTPService
	mailer core.Mailer
	logger *slog.Logger
}

func NewResetHandler(db core.DbClient, users *services.UserService, otp *services.OTPService, mailer core.Mailer, logger *slog.Logger) *ResetHandler {
	return &ResetHandler{db: db, users: users, otp: otp, mailer: mailer, logger: logger}
}

type resetRequestBody struct {
	Email string `json:"email"`
}

type resetVerifyBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resetCompleteBody struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Request issues a 6-digit code for a registered email and mails it.
// Unknown email and mail failure are both terminal, user-visible outcomes.
func (h *ResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req resetRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required.")
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), email)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Email not registered!")
		return
	}
	if err != nil {
		h.logger.Error("reset lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Server error, please try again.")
		return
	}

	code, err := h.otp.Issue(email)
	if err != nil {
		h.logger.Error("otp generation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Server error, please try again.")
		return
	}

	if err := h.mailer.SendOTP(email, user.Name, code); err != nil {
		h.logger.Error("otp mail failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "OTP sending failed. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP sent to your email."})
}

// Verify checks a submitted code against the outstanding one.
func (h *ResetHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req resetVerifyBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.otp.Verify(strings.TrimSpace(req.Email), strings.TrimSpace(req.Code)); err != nil {
		writeError(w, http.StatusUnauthorized, otpErrorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Complete sets the new password for a verified code and consumes it.
func (h *ResetHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req resetCompleteBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.NewPassword == "" || req.ConfirmPassword == "" {
		writeError(w, http.StatusBadRequest, "Please enter and confirm your new password.")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "New password and confirm password do not match.")
		return
	}

	email := strings.TrimSpace(req.Email)
	if err := h.otp.Consume(email, strings.TrimSpace(req.Code)); err != nil {
		writeError(w, http.StatusUnauthorized, otpErrorMessage(err))
		return
	}

	if err := h.users.UpdatePassword(r.Context(), email, req.NewPassword); err != nil {
		h.logger.Error("password update failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Server error, please try again.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password reset successfully."})
}

func otpErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrOTPExpired):
		return "OTP has expired. Please request a new one."
	case errors.Is(err, core.ErrOTPNotVerified):
		return "OTP not verified."
	default:
		return "Invalid OTP."
	}
}
