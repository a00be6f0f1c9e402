package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"textgenai/internal/core"
)

type ContactHandler struct {
	mailer core.Mailer
	logger *slog.Logger
}

func NewContactHandler(mailer core.Mailer, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{mailer: mailer, logger: logger}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Send validates the contact form and dispatches it to the admin inbox.
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "All fields are required."})
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "A valid email is required."})
		return
	}

	if err := h.mailer.SendContact(name, email, message); err != nil {
		h.logger.Error("contact mail failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "message": "Mailer Error: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Message sent successfully!"})
}
