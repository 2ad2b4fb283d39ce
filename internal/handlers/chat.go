package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/focusplus/backend/internal/models"
)

type assistant interface {
	Ask(ctx context.Context, message string) (string, error)
}

type ChatHandler struct {
	assistant assistant
}

func NewChatHandler(assistant assistant) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	reply, err := h.assistant.Ask(r.Context(), req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}
