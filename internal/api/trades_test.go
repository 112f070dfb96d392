package api

import (
	"net/http"
	"testing"
	"time"

	"trade_journal/internal/models"
	"trade_journal/internal/stats"
)

// Сырое тело запроса: entry_time в формате Firestore timestamp
func tradeBody(symbol string) map[string]any {
	return map[string]any{
		"symbol":        symbol,
		"setup_type":    "breakout",
		"entry_price":   50000.0,
		"position_size": 0.5,
		"entry_time":    map[string]any{"seconds": 1700000000, "nanoseconds": 0},
		"outcome":       "win",
		"profit_loss":   200.0,
	}
}

func TestTradeLifecycle(t *testing.T) {
	r, _ := testRouter(t)
	token := registerUser(t, r, "trader@example.com")

	// Create
	rec := doJSON(t, r, "POST", "/api/trades", token, tradeBody("BTCUSDT"))
	if rec.Code != http.StatusOK {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}

	var created models.Trade
	decodeData(t, rec, &created)

	if created.ID == "" {
		t.Fatal("expected trade ID assigned")
	}

	if !created.EntryTime.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("entry time not normalized: %v", created.EntryTime)
	}

	// List
	rec = doJSON(t, r, "GET", "/api/trades", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}

	var trades []models.Trade
	decodeData(t, rec, &trades)

	if len(trades) != 1 || trades[0].ID != created.ID {
		t.Fatalf("unexpected trades: %+v", trades)
	}

	// Update
	body := tradeBody("BTCUSDT")
	body["notes"] = "scaled out early"
	body["exit_price"] = 51000.0

	rec = doJSON(t, r, "PUT", "/api/trades/"+created.ID, token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", rec.Code, rec.Body.String())
	}

	// Get
	rec = doJSON(t, r, "GET", "/api/trades/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec.Code)
	}

	var got models.Trade
	decodeData(t, rec, &got)

	if got.Notes != "scaled out early" || got.ExitPrice == nil || *got.ExitPrice != 51000 {
		t.Fatalf("update not applied: %+v", got)
	}

	// Delete, затем повторный delete - 404
	rec = doJSON(t, r, "DELETE", "/api/trades/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}

	rec = doJSON(t, r, "DELETE", "/api/trades/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete returned %d, want 404", rec.Code)
	}

	rec = doJSON(t, r, "GET", "/api/trades/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete returned %d, want 404", rec.Code)
	}
}

func TestCreateTradeValidation(t *testing.T) {
	r, _ := testRouter(t)
	token := registerUser(t, r, "trader@example.com")

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing symbol", map[string]any{"entry_price": 100.0, "position_size": 1.0}},
		{"zero entry price", map[string]any{"symbol": "BTCUSDT", "entry_price": 0.0, "position_size": 1.0}},
		{"negative size", map[string]any{"symbol": "BTCUSDT", "entry_price": 100.0, "position_size": -1.0}},
	}

	for _, tc := range cases {
		rec := doJSON(t, r, "POST", "/api/trades", token, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: returned %d, want 400", tc.name, rec.Code)
		}
	}
}

func TestTradesUserIsolation(t *testing.T) {
	r, _ := testRouter(t)

	alice := registerUser(t, r, "alice@example.com")
	bob := registerUser(t, r, "bob@example.com")

	rec := doJSON(t, r, "POST", "/api/trades", alice, tradeBody("ETHUSDT"))
	if rec.Code != http.StatusOK {
		t.Fatalf("create returned %d", rec.Code)
	}

	var created models.Trade
	decodeData(t, rec, &created)

	// Чужая сделка невидима и неудаляема
	rec = doJSON(t, r, "GET", "/api/trades/"+created.ID, bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get returned %d, want 404", rec.Code)
	}

	rec = doJSON(t, r, "DELETE", "/api/trades/"+created.ID, bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete returned %d, want 404", rec.Code)
	}
}

func TestPlanningUpsertFlow(t *testing.T) {
	r, _ := testRouter(t)
	token := registerUser(t, r, "trader@example.com")

	plan := map[string]any{
		"date":        "2026-08-30",
		"market_bias": "bullish",
		"goals":       []string{"wait for retest"},
		"key_levels": map[string]any{
			"1700000001000": map[string]any{"price": 50000.0, "type": "support", "note": "weekly low"},
		},
	}

	rec := doJSON(t, r, "POST", "/api/planning", token, plan)
	if rec.Code != http.StatusOK {
		t.Fatalf("save plan returned %d: %s", rec.Code, rec.Body.String())
	}

	var saved models.DailyPlan
	decodeData(t, rec, &saved)

	if saved.ID == "" || saved.Date != "2026-08-30" {
		t.Fatalf("unexpected plan: %+v", saved)
	}

	// Повторный POST на ту же дату - upsert, не дубль
	plan["market_bias"] = "bearish"

	rec = doJSON(t, r, "POST", "/api/planning", token, plan)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert returned %d", rec.Code)
	}

	rec = doJSON(t, r, "GET", "/api/planning?date=2026-08-30", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get by date returned %d", rec.Code)
	}

	var got models.DailyPlan
	decodeData(t, rec, &got)

	if got.MarketBias != "bearish" {
		t.Fatalf("upsert not applied: %+v", got)
	}

	if len(got.KeyLevels) != 1 || got.KeyLevels["1700000001000"].Price != 50000 {
		t.Fatalf("key levels lost: %+v", got.KeyLevels)
	}

	rec = doJSON(t, r, "GET", "/api/planning", token, nil)

	var plans []models.DailyPlan
	decodeData(t, rec, &plans)

	if len(plans) != 1 {
		t.Fatalf("expected single plan after upsert, got %d", len(plans))
	}

	// Delete
	rec = doJSON(t, r, "DELETE", "/api/planning/"+got.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}

	rec = doJSON(t, r, "GET", "/api/planning?date=2026-08-30", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete returned %d, want 404", rec.Code)
	}
}

func TestPlanValidation(t *testing.T) {
	r, _ := testRouter(t)
	token := registerUser(t, r, "trader@example.com")

	rec := doJSON(t, r, "POST", "/api/planning", token, map[string]any{"date": "30-08-2026", "market_bias": "bullish"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date returned %d, want 400", rec.Code)
	}

	rec = doJSON(t, r, "POST", "/api/planning", token, map[string]any{"date": "2026-08-30"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing bias returned %d, want 400", rec.Code)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	r, _ := testRouter(t)
	token := registerUser(t, r, "trader@example.com")

	win := tradeBody("BTCUSDT")
	loss := tradeBody("ETHUSDT")
	loss["outcome"] = "loss"
	loss["profit_loss"] = -100.0

	for _, body := range []map[string]any{win, loss} {
		if rec := doJSON(t, r, "POST", "/api/trades", token, body); rec.Code != http.StatusOK {
			t.Fatalf("create returned %d", rec.Code)
		}
	}

	rec := doJSON(t, r, "GET", "/api/statistics", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statistics returned %d", rec.Code)
	}

	var summary stats.Summary
	decodeData(t, rec, &summary)

	if summary.TotalTrades != 2 || summary.Wins != 1 || summary.Losses != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if summary.WinRate != 50 || summary.TotalPnL != 100 {
		t.Fatalf("unexpected summary numbers: %+v", summary)
	}

	// Фильтр по символу
	rec = doJSON(t, r, "GET", "/api/statistics?symbol=BTCUSDT", token, nil)
	decodeData(t, rec, &summary)

	if summary.TotalTrades != 1 || summary.Wins != 1 {
		t.Fatalf("filter not applied: %+v", summary)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	r, _ := testRouter(t)
	token := registerUser(t, r, "trader@example.com")

	if rec := doJSON(t, r, "POST", "/api/trades", token, tradeBody("BTCUSDT")); rec.Code != http.StatusOK {
		t.Fatalf("create returned %d", rec.Code)
	}

	rec := doJSON(t, r, "GET", "/api/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard returned %d: %s", rec.Code, rec.Body.String())
	}

	var dash models.DashboardData
	decodeData(t, rec, &dash)

	if len(dash.RecentTrades) != 1 {
		t.Fatalf("expected recent trade, got %+v", dash.RecentTrades)
	}

	if dash.TotalTrades != 1 || dash.TotalPnL != 200 {
		t.Fatalf("unexpected totals: %+v", dash)
	}
}
