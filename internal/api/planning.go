package api

import (
	"encoding/json"
	"net/http"
	"time"

	"trade_journal/internal/api/middleware"
	"trade_journal/internal/models"

	"github.com/gorilla/mux"
)

// PlanRequest - тело запроса сохранения дневного плана
type PlanRequest struct {
	Date        string                     `json:"date"`
	MarketBias  string                     `json:"market_bias"`
	MentalState string                     `json:"mental_state,omitempty"`
	Notes       string                     `json:"notes,omitempty"`
	KeyLevels   map[string]models.KeyLevel `json:"key_levels,omitempty"`
	Goals       []string                   `json:"goals,omitempty"`
	RiskParams  models.RiskParameters      `json:"risk_parameters"`
}

// HandleGetPlans возвращает планы пользователя.
// ?date=YYYY-MM-DD возвращает план на конкретную дату
func (h *Handler) HandleGetPlans(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if date := r.URL.Query().Get("date"); date != "" {
		plan, err := h.storage.GetPlanByDate(userID, date)
		if err != nil {
			h.respondError(w, http.StatusNotFound, "Plan not found")
			return
		}

		h.respondSuccess(w, "", plan)

		return
	}

	limit, offset := parsePagination(r, 30, 100)

	plans, err := h.storage.GetPlans(userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get plans", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get plans")

		return
	}

	h.respondSuccess(w, "", plans)
}

// HandleGetPlan возвращает план по ID
func (h *Handler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	planID := mux.Vars(r)["id"]

	plan, err := h.storage.GetPlan(userID, planID)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Plan not found")
		return
	}

	h.respondSuccess(w, "", plan)
}

// HandleSavePlan создает или обновляет план (upsert по дате)
func (h *Handler) HandleSavePlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	if req.MarketBias == "" {
		h.respondError(w, http.StatusBadRequest, "Market bias is required")
		return
	}

	plan := &models.DailyPlan{
		ID:          mux.Vars(r)["id"], // пустой при POST
		UserID:      userID,
		Date:        req.Date,
		MarketBias:  req.MarketBias,
		MentalState: req.MentalState,
		Notes:       req.Notes,
		KeyLevels:   req.KeyLevels,
		Goals:       req.Goals,
		RiskParams:  req.RiskParams,
	}

	if err := h.storage.SavePlan(plan); err != nil {
		h.logger.Error("Failed to save plan", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to save plan")

		return
	}

	_ = h.storage.AddLog(models.ActivityLog{
		UserID:  &userID,
		Level:   "INFO",
		Action:  "plan_saved",
		Message: "Daily plan saved for " + plan.Date,
	})

	h.hub.Broadcast(userID, FeedEvent{Type: "plan_saved", Payload: plan})
	h.notifier.PlanSaved(plan)

	h.respondSuccess(w, "Plan saved", plan)
}

// HandleDeletePlan удаляет план
func (h *Handler) HandleDeletePlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	planID := mux.Vars(r)["id"]

	if err := h.storage.DeletePlan(userID, planID); err != nil {
		h.respondError(w, http.StatusNotFound, "Plan not found")
		return
	}

	h.hub.Broadcast(userID, FeedEvent{Type: "plan_deleted", Payload: map[string]string{"id": planID}})

	h.respondSuccess(w, "Plan deleted", nil)
}
