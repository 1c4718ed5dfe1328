// Package handler implements the chat JSON HTTP endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/smartspend/backend/internal/domain/chat"
)

// maxMessageBytes bounds a single utterance; the parser works on one line of
// chat input, not documents.
const maxMessageBytes = 4096

// ChatService is the chat orchestration consumed by the handler.
type ChatService interface {
	HandleMessage(ctx context.Context, userID uuid.UUID, content string) (*chat.Result, error)
	History(userID uuid.UUID) []chat.Message
}

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	svc    ChatService
	logger *slog.Logger
}

// NewChatHandler constructs a new handler.
func NewChatHandler(svc ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the chat endpoints on the mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/chat/message", h.handleMessage)
	mux.HandleFunc("GET /api/v1/chat/history", h.handleHistory)
}

type messageRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func (h *ChatHandler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	body := http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := h.svc.HandleMessage(r.Context(), userID, message)
	if err != nil {
		h.logger.Error("failed to handle chat message",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
		respondError(w, http.StatusInternalServerError, "failed to handle message")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *ChatHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"messages": h.svc.History(userID),
	})
}
