package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"trade_journal/internal/auth"
	"trade_journal/internal/notify"
	"trade_journal/internal/storage"
)

// Handler обрабатывает API запросы
type Handler struct {
	storage  *storage.Storage
	bridge   *auth.Bridge
	hub      *Hub
	notifier *notify.Notifier
	logger   *slog.Logger
}

func New(
	storage *storage.Storage,
	bridge *auth.Bridge,
	hub *Hub,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		storage:  storage,
		bridge:   bridge,
		hub:      hub,
		notifier: notifier,
		logger:   logger,
	}
}

// Helper функции для JSON ответов

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func (h *Handler) respondSuccess(w http.ResponseWriter, message string, data any) {
	h.respondJSON(w, http.StatusOK, SuccessResponse{
		Message: message,
		Data:    data,
	})
}
