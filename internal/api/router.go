package api

import (
	"net/http"

	apimiddleware "trade_journal/internal/api/middleware"
	"trade_journal/internal/middleware"

	"github.com/gorilla/mux"
)

// SetupRouter настраивает роутинг для API
func (h *Handler) SetupRouter(webDir string) *mux.Router {
	r := mux.NewRouter()

	// Применяем CORS middleware ко всем маршрутам
	r.Use(middleware.CORS)

	// Публичные маршруты (не требуют аутентификации)
	r.HandleFunc("/auth/login", h.HandleLogin).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/register", h.HandleRegister).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/logout", h.HandleLogout).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/reset-password", h.HandleResetPassword).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/verify", h.HandleVerify).Methods("GET")
	r.HandleFunc("/auth/mode", h.HandleToggleAuthMode).Methods("POST", "OPTIONS")
	r.HandleFunc("/health", h.HandleHealth).Methods("GET")
	r.HandleFunc("/api/health", h.HandleHealth).Methods("GET")

	// Защищенные маршруты (требуют аутентификации)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(apimiddleware.AuthMiddleware(h.bridge))

	// Trades
	api.HandleFunc("/trades", h.HandleGetTrades).Methods("GET")
	api.HandleFunc("/trades", h.HandleCreateTrade).Methods("POST")
	api.HandleFunc("/trades/{id}", h.HandleGetTrade).Methods("GET")
	api.HandleFunc("/trades/{id}", h.HandleUpdateTrade).Methods("PUT")
	api.HandleFunc("/trades/{id}", h.HandleDeleteTrade).Methods("DELETE")

	// Daily Planning
	api.HandleFunc("/planning", h.HandleGetPlans).Methods("GET")
	api.HandleFunc("/planning", h.HandleSavePlan).Methods("POST")
	api.HandleFunc("/planning/{id}", h.HandleGetPlan).Methods("GET")
	api.HandleFunc("/planning/{id}", h.HandleSavePlan).Methods("PUT")
	api.HandleFunc("/planning/{id}", h.HandleDeletePlan).Methods("DELETE")

	// Dashboard & Statistics
	api.HandleFunc("/dashboard", h.HandleDashboard).Methods("GET")
	api.HandleFunc("/statistics", h.HandleStatistics).Methods("GET")

	// Settings
	api.HandleFunc("/settings", h.HandleGetSettings).Methods("GET")
	api.HandleFunc("/settings/data-source", h.HandleSetDataSource).Methods("PUT")

	// Activity Logs
	api.HandleFunc("/logs", h.HandleGetLogs).Methods("GET")

	// Live feed (токен в query, upgrade не пропускает заголовки)
	r.HandleFunc("/api/ws", h.HandleWS).Methods("GET")

	// Статические файлы (должны быть в конце)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(webDir)))

	return r
}

// HandleHealth возвращает статус здоровья сервиса
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondSuccess(w, "OK", map[string]string{
		"status": "healthy",
	})
}
