package api

import (
	"net/http"

	"trade_journal/internal/api/middleware"
	"trade_journal/internal/stats"
)

// HandleStatistics возвращает статистику с фильтрацией.
// Query параметры: symbol, setup_type, outcome, date_from, date_to
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	filter := parseTradeFilter(r)

	trades, err := h.storage.GetTrades(userID, filter, 10000, 0)
	if err != nil {
		h.logger.Error("Failed to get trades for statistics", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to calculate statistics")

		return
	}

	h.respondSuccess(w, "", stats.Calculate(trades))
}
