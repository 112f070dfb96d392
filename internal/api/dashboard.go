package api

import (
	"net/http"
	"time"

	"trade_journal/internal/api/middleware"
	"trade_journal/internal/models"
	"trade_journal/internal/stats"
)

// HandleDashboard возвращает агрегированные данные для дашборда
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	recent, err := h.storage.GetTrades(userID, models.TradeFilter{}, 10, 0)
	if err != nil {
		h.logger.Error("Failed to get recent trades", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to load dashboard")

		return
	}

	// Статистика считается по всем сделкам
	all, err := h.storage.GetTrades(userID, models.TradeFilter{}, 10000, 0)
	if err != nil {
		h.logger.Error("Failed to get trades", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to load dashboard")

		return
	}

	summary := stats.Calculate(all)

	data := models.DashboardData{
		RecentTrades: recent,
		TotalTrades:  summary.TotalTrades,
		WinRate:      summary.WinRate,
		TotalPnL:     summary.TotalPnL,
	}

	// Сегодняшние сделки и P&L
	today := time.Now().Format("2006-01-02")
	for _, trade := range all {
		if trade.EntryTime.Format("2006-01-02") != today {
			continue
		}

		data.TodayTrades++
		if trade.ProfitLoss != nil {
			data.TodayPnL += *trade.ProfitLoss
		}
	}

	// План на сегодня может отсутствовать
	if plan, err := h.storage.GetPlanByDate(userID, today); err == nil {
		data.TodayPlan = plan
	}

	h.respondSuccess(w, "", data)
}
