package stats

import (
	"time"

	"trade_journal/internal/format"
	"trade_journal/internal/models"

	"github.com/shopspring/decimal"
)

// SetupStats статистика по одному типу сетапа
type SetupStats struct {
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
	PnL     float64 `json:"pnl"`
}

// Summary агрегированная статистика по набору сделок
type Summary struct {
	TotalTrades      int                   `json:"total_trades"`
	Wins             int                   `json:"wins"`
	Losses           int                   `json:"losses"`
	Breakeven        int                   `json:"breakeven"`
	WinRate          float64               `json:"win_rate"` // процент, 0-100
	TotalPnL         float64               `json:"total_pnl"`
	ProfitFactor     float64               `json:"profit_factor"`
	AvgWin           float64               `json:"avg_win"`
	AvgLoss          float64               `json:"avg_loss"`
	BestTrade        float64               `json:"best_trade"`
	WorstTrade       float64               `json:"worst_trade"`
	AvgPlanAdherence float64               `json:"avg_plan_adherence"`
	AvgHoldTime      string                `json:"avg_hold_time,omitempty"`
	BySetup          map[string]SetupStats `json:"by_setup,omitempty"`
}

// Calculate считает статистику по сделкам.
// Суммы считаются в decimal, чтобы не накапливать float погрешность
func Calculate(trades []models.Trade) Summary {
	summary := Summary{
		TotalTrades: len(trades),
		BySetup:     make(map[string]SetupStats),
	}

	if len(trades) == 0 {
		return summary
	}

	totalPnL := decimal.Zero
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	best := decimal.Zero
	worst := decimal.Zero
	setupPnL := make(map[string]decimal.Decimal)

	var adherenceSum, adherenceCount int
	var holdSum time.Duration
	var holdCount int

	for _, trade := range trades {
		switch trade.Outcome {
		case "win":
			summary.Wins++
		case "loss":
			summary.Losses++
		case "breakeven":
			summary.Breakeven++
		}

		setup := summary.BySetup[trade.SetupType]
		setup.Trades++
		if trade.Outcome == "win" {
			setup.Wins++
		}

		if trade.ProfitLoss != nil {
			pnl := decimal.NewFromFloat(*trade.ProfitLoss)
			totalPnL = totalPnL.Add(pnl)
			setupPnL[trade.SetupType] = setupPnL[trade.SetupType].Add(pnl)

			if pnl.IsPositive() {
				grossProfit = grossProfit.Add(pnl)
			} else {
				grossLoss = grossLoss.Add(pnl.Abs())
			}

			if pnl.GreaterThan(best) {
				best = pnl
			}

			if pnl.LessThan(worst) {
				worst = pnl
			}
		}

		summary.BySetup[trade.SetupType] = setup

		if trade.PlanAdherence > 0 {
			adherenceSum += trade.PlanAdherence
			adherenceCount++
		}

		if trade.ExitTime != nil && !trade.EntryTime.IsZero() {
			holdSum += trade.ExitTime.Sub(trade.EntryTime)
			holdCount++
		}
	}

	closed := summary.Wins + summary.Losses + summary.Breakeven
	if closed > 0 {
		summary.WinRate, _ = decimal.NewFromInt(int64(summary.Wins)).
			Div(decimal.NewFromInt(int64(closed))).
			Mul(decimal.NewFromInt(100)).
			Round(2).Float64()
	}

	summary.TotalPnL, _ = totalPnL.Float64()
	summary.BestTrade, _ = best.Float64()
	summary.WorstTrade, _ = worst.Float64()

	if grossLoss.IsPositive() {
		summary.ProfitFactor, _ = grossProfit.Div(grossLoss).Round(2).Float64()
	} else if grossProfit.IsPositive() {
		summary.ProfitFactor = -1 // убытков нет, profit factor не определен
	}

	if summary.Wins > 0 {
		summary.AvgWin, _ = grossProfit.Div(decimal.NewFromInt(int64(summary.Wins))).Round(2).Float64()
	}

	if summary.Losses > 0 {
		summary.AvgLoss, _ = grossLoss.Div(decimal.NewFromInt(int64(summary.Losses))).Round(2).Float64()
	}

	if adherenceCount > 0 {
		summary.AvgPlanAdherence, _ = decimal.NewFromInt(int64(adherenceSum)).
			Div(decimal.NewFromInt(int64(adherenceCount))).
			Round(1).Float64()
	}

	if holdCount > 0 {
		summary.AvgHoldTime = format.Duration(holdSum / time.Duration(holdCount))
	}

	// Win rate и P&L по сетапам, в float только на выходе
	for name, setup := range summary.BySetup {
		setup.PnL, _ = setupPnL[name].Float64()

		if setup.Trades > 0 {
			setup.WinRate, _ = decimal.NewFromInt(int64(setup.Wins)).
				Div(decimal.NewFromInt(int64(setup.Trades))).
				Mul(decimal.NewFromInt(100)).
				Round(2).Float64()
		}

		summary.BySetup[name] = setup
	}

	return summary
}
