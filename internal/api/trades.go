package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"trade_journal/internal/api/middleware"
	"trade_journal/internal/format"
	"trade_journal/internal/models"

	"github.com/gorilla/mux"
)

// TradeRequest - тело запроса создания/редактирования сделки.
// Времена принимаются и как Firestore timestamp объект, и как ISO строка
type TradeRequest struct {
	Symbol            string           `json:"symbol"`
	SetupType         string           `json:"setup_type"`
	EntryPrice        float64          `json:"entry_price"`
	ExitPrice         *float64         `json:"exit_price,omitempty"`
	PositionSize      float64          `json:"position_size"`
	EntryTime         format.FlexTime  `json:"entry_time"`
	ExitTime          *format.FlexTime `json:"exit_time,omitempty"`
	Outcome           string           `json:"outcome"`
	ProfitLoss        *float64         `json:"profit_loss,omitempty"`
	PlannedRiskReward float64          `json:"planned_risk_reward,omitempty"`
	ActualRiskReward  float64          `json:"actual_risk_reward,omitempty"`
	EmotionalState    string           `json:"emotional_state,omitempty"`
	PlanAdherence     int              `json:"plan_adherence,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	Tags              []string         `json:"tags,omitempty"`
	Screenshots       []string         `json:"screenshots,omitempty"`
}

func (req *TradeRequest) validate() string {
	if req.Symbol == "" {
		return "Symbol is required"
	}

	if req.EntryPrice <= 0 {
		return "Entry price must be positive"
	}

	if req.PositionSize <= 0 {
		return "Position size must be positive"
	}

	return ""
}

func (req *TradeRequest) toModel(userID string) *models.Trade {
	trade := &models.Trade{
		UserID:            userID,
		Symbol:            req.Symbol,
		SetupType:         req.SetupType,
		EntryPrice:        req.EntryPrice,
		ExitPrice:         req.ExitPrice,
		PositionSize:      req.PositionSize,
		EntryTime:         req.EntryTime.Time,
		Outcome:           req.Outcome,
		ProfitLoss:        req.ProfitLoss,
		PlannedRiskReward: req.PlannedRiskReward,
		ActualRiskReward:  req.ActualRiskReward,
		EmotionalState:    req.EmotionalState,
		PlanAdherence:     req.PlanAdherence,
		Notes:             req.Notes,
		Tags:              req.Tags,
		Screenshots:       req.Screenshots,
	}

	if req.ExitTime != nil && !req.ExitTime.IsZero() {
		t := req.ExitTime.Time
		trade.ExitTime = &t
	}

	if trade.EntryTime.IsZero() {
		trade.EntryTime = time.Now()
	}

	return trade
}

// HandleGetTrades возвращает сделки с фильтрацией и пагинацией
func (h *Handler) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	limit, offset := parsePagination(r, 50, 100)
	filter := parseTradeFilter(r)

	trades, err := h.storage.GetTrades(userID, filter, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get trades", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get trades")

		return
	}

	h.respondSuccess(w, "", trades)
}

// HandleGetTrade возвращает одну сделку
func (h *Handler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	tradeID := mux.Vars(r)["id"]

	trade, err := h.storage.GetTrade(userID, tradeID)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Trade not found")
		return
	}

	h.respondSuccess(w, "", trade)
}

// HandleCreateTrade создает новую сделку
func (h *Handler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	trade := req.toModel(userID)

	if err := h.storage.CreateTrade(trade); err != nil {
		h.logger.Error("Failed to create trade", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create trade")

		return
	}

	_ = h.storage.AddLog(models.ActivityLog{
		UserID:  &userID,
		Level:   "INFO",
		Action:  "trade_created",
		Message: "Trade created: " + trade.Symbol,
	})

	h.hub.Broadcast(userID, FeedEvent{Type: "trade_created", Payload: trade})

	// Уведомление только по закрытым сделкам
	if trade.ExitTime != nil {
		h.notifier.TradeClosed(trade)
	}

	h.respondSuccess(w, "Trade created", trade)
}

// HandleUpdateTrade обновляет сделку
func (h *Handler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	tradeID := mux.Vars(r)["id"]

	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := req.validate(); msg != "" {
		h.respondError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := h.storage.GetTrade(userID, tradeID)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Trade not found")
		return
	}

	trade := req.toModel(userID)
	trade.ID = tradeID
	trade.CreatedAt = existing.CreatedAt

	if err := h.storage.UpdateTrade(trade); err != nil {
		h.logger.Error("Failed to update trade", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to update trade")

		return
	}

	h.hub.Broadcast(userID, FeedEvent{Type: "trade_updated", Payload: trade})

	// Сделка закрылась этим обновлением
	if trade.ExitTime != nil && existing.ExitTime == nil {
		h.notifier.TradeClosed(trade)
	}

	h.respondSuccess(w, "Trade updated", trade)
}

// HandleDeleteTrade удаляет сделку
func (h *Handler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	tradeID := mux.Vars(r)["id"]

	if err := h.storage.DeleteTrade(userID, tradeID); err != nil {
		h.respondError(w, http.StatusNotFound, "Trade not found")
		return
	}

	_ = h.storage.AddLog(models.ActivityLog{
		UserID:  &userID,
		Level:   "INFO",
		Action:  "trade_deleted",
		Message: "Trade deleted: " + tradeID,
	})

	h.hub.Broadcast(userID, FeedEvent{Type: "trade_deleted", Payload: map[string]string{"id": tradeID}})

	h.respondSuccess(w, "Trade deleted", nil)
}

// HandleGetLogs возвращает логи активности
func (h *Handler) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	limit, offset := parsePagination(r, 100, 500)

	logs, err := h.storage.GetLogs(userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get logs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get logs")

		return
	}

	h.respondSuccess(w, "", logs)
}

// parsePagination парсит limit/offset из query параметров
func parsePagination(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= maxLimit {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}

// parseTradeFilter парсит параметры фильтрации сделок
func parseTradeFilter(r *http.Request) models.TradeFilter {
	q := r.URL.Query()

	filter := models.TradeFilter{
		Symbol:    q.Get("symbol"),
		SetupType: q.Get("setup_type"),
		Outcome:   q.Get("outcome"),
	}

	if from := q.Get("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = &t
		}
	}

	if to := q.Get("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// Включаем весь день
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.DateTo = &end
		}
	}

	return filter
}
