package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"textgenai/internal/core"
	"textgenai/internal/models"
)

// ChatHandler relays prompts to a chat backend: the remote Gemini API
// (blocking or streamed) or the local model runner.
type ChatHandler struct {
	llm    core.TextGenerator
	runner core.ModelRunner
	logger *slog.Logger
}

func NewChatHandler(llm core.TextGenerator, runner core.ModelRunner, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{llm: llm, runner: runner, logger: logger}
}

type chatQueryRequest struct {
	Query   string            `json:"query"`
	Prompt  string            `json:"prompt"`
	History []models.ChatTurn `json:"history"`
}

type localChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

// Query forwards a prompt (with optional prior turns) to the remote
// backend and returns the full generated text. Accepts JSON or a
// urlencoded `query` field.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	prompt, history, ok := h.readQuery(w, r)
	if !ok {
		return
	}

	answer, err := h.llm.Generate(r.Context(), history, prompt)
	if err != nil {
		h.logger.Error("remote generation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if answer == "" {
		// Safety-filtered or empty-candidate response.
		answer = "No response generated."
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}

// Stream forwards the prompt to the remote backend and relays chunks
// as server-sent events. A dropped client cancels the upstream call;
// chunks already written stay written.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	prompt, history, ok := h.readQuery(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err := h.llm.GenerateStream(r.Context(), history, prompt, func(chunk string) error {
		payload, err := json.Marshal(map[string]string{"text": chunk})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// User-initiated stop; partial output already delivered.
			return
		}
		h.logger.Error("stream generation failed", slog.String("error", err.Error()))
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
		flusher.Flush()
		return
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// Local serves the local-runner backend: GET ?action=get_models lists
// installed models, POST {message, model} runs one.
func (h *ChatHandler) Local(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if r.URL.Query().Get("action") != "get_models" {
			writeError(w, http.StatusBadRequest, "unknown action")
			return
		}
		h.listLocalModels(w, r)
		return
	}
	h.runLocalModel(w, r)
}

func (h *ChatHandler) listLocalModels(w http.ResponseWriter, r *http.Request) {
	installed, err := h.runner.ListModels(r.Context())
	if err != nil {
		h.logger.Error("model listing failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "Could not list models. Is the model runner installed?")
		return
	}
	names := make([]string, 0, len(installed))
	for _, m := range installed {
		names = append(names, m.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"models":  names,
		"details": installed,
	})
}

func (h *ChatHandler) runLocalModel(w http.ResponseWriter, r *http.Request) {
	var req localChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "Message is required.")
		return
	}
	if strings.TrimSpace(req.Model) == "" {
		writeError(w, http.StatusBadRequest, "Model is required.")
		return
	}

	response, err := h.runner.Run(r.Context(), req.Model, message)
	if errors.Is(err, core.ErrInvalidModel) {
		writeError(w, http.StatusBadRequest, "Invalid model selected.")
		return
	}
	if err != nil {
		h.logger.Error("local generation failed",
			slog.String("model", req.Model), slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "response": response})
}

func (h *ChatHandler) readQuery(w http.ResponseWriter, r *http.Request) (string, []models.ChatTurn, bool) {
	var req chatQueryRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request."})
			return "", nil, false
		}
	} else {
		req.Query = r.FormValue("query")
		req.Prompt = r.FormValue("prompt")
	}

	prompt := strings.TrimSpace(req.Query)
	if prompt == "" {
		prompt = strings.TrimSpace(req.Prompt)
	}
	if prompt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request."})
		return "", nil, false
	}
	return prompt, req.History, true
}
