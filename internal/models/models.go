package models

import "time"

// User представляет пользователя журнала
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	PasswordHash  string    `json:"-"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Provider      string    `json:"provider"` // "api", "firebase"
	CreatedAt     time.Time `json:"created_at"`
}

// Trade представляет запись сделки в журнале
type Trade struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Symbol            string     `json:"symbol"`
	SetupType         string     `json:"setup_type"` // "FVG Fill", "OTE", etc.
	EntryPrice        float64    `json:"entry_price"`
	ExitPrice         *float64   `json:"exit_price,omitempty"`
	PositionSize      float64    `json:"position_size"`
	EntryTime         time.Time  `json:"entry_time"`
	ExitTime          *time.Time `json:"exit_time,omitempty"`
	Outcome           string     `json:"outcome"` // "win", "loss", "breakeven"
	ProfitLoss        *float64   `json:"profit_loss,omitempty"`
	PlannedRiskReward float64    `json:"planned_risk_reward,omitempty"`
	ActualRiskReward  float64    `json:"actual_risk_reward,omitempty"`
	EmotionalState    string     `json:"emotional_state,omitempty"`
	PlanAdherence     int        `json:"plan_adherence,omitempty"` // 1-10
	Notes             string     `json:"notes,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	Screenshots       []string   `json:"screenshots,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// KeyLevel представляет ценовой уровень в дневном плане
type KeyLevel struct {
	Type        string  `json:"type"` // "support", "resistance", "fvg", "order_block"
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// RiskParameters представляет лимиты риска на торговый день
type RiskParameters struct {
	MaxDailyLoss     float64 `json:"max_daily_loss,omitempty"`
	MaxTrades        int     `json:"max_trades,omitempty"`
	MaxRiskPerTrade  float64 `json:"max_risk_per_trade,omitempty"`
	TargetRiskReward float64 `json:"target_risk_reward,omitempty"`
}

// DailyPlan представляет план на торговый день
type DailyPlan struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	Date        string              `json:"date"`        // YYYY-MM-DD
	MarketBias  string              `json:"market_bias"` // "bullish", "bearish", "neutral"
	MentalState string              `json:"mental_state,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	KeyLevels   map[string]KeyLevel `json:"key_levels,omitempty"` // id уровня генерируется клиентом (timestamp)
	Goals       []string            `json:"goals,omitempty"`
	RiskParams  RiskParameters      `json:"risk_parameters"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TradeFilter параметры фильтрации сделок для статистики
type TradeFilter struct {
	Symbol    string
	SetupType string
	Outcome   string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// ActivityLog представляет запись в логе активности
type ActivityLog struct {
	ID        int       `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	Level     string    `json:"level"`  // "INFO", "WARN", "ERROR"
	Action    string    `json:"action"` // "login", "trade_created", "plan_saved", etc.
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"` // JSON с дополнительной информацией
	CreatedAt time.Time `json:"created_at"`
}

// DashboardData агрегированные данные для дашборда
type DashboardData struct {
	RecentTrades []Trade    `json:"recent_trades"`
	TodayPlan    *DailyPlan `json:"today_plan,omitempty"`
	TodayTrades  int        `json:"today_trades"`
	TodayPnL     float64    `json:"today_pnl"`
	TotalTrades  int        `json:"total_trades"`
	WinRate      float64    `json:"win_rate"`
	TotalPnL     float64    `json:"total_pnl"`
}
