package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"trade_journal/internal/models"

	"github.com/google/uuid"
)

// CreateTrade создает новую запись сделки
func (s *Storage) CreateTrade(trade *models.Trade) error {
	if trade.ID == "" {
		trade.ID = uuid.New().String()
	}

	tagsJSON, _ := json.Marshal(trade.Tags)
	screenshotsJSON, _ := json.Marshal(trade.Screenshots)

	now := time.Now()
	trade.CreatedAt = now
	trade.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO trades (id, user_id, symbol, setup_type, entry_price, exit_price, position_size,
		                    entry_time, exit_time, outcome, profit_loss, planned_risk_reward, actual_risk_reward,
		                    emotional_state, plan_adherence, notes, tags, screenshots, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.UserID, trade.Symbol, trade.SetupType, trade.EntryPrice, trade.ExitPrice,
		trade.PositionSize, trade.EntryTime, trade.ExitTime, trade.Outcome, trade.ProfitLoss,
		trade.PlannedRiskReward, trade.ActualRiskReward, trade.EmotionalState, trade.PlanAdherence,
		trade.Notes, string(tagsJSON), string(screenshotsJSON), trade.CreatedAt, trade.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}

	s.logger.Info("✅ Trade created",
		slog.String("id", trade.ID),
		slog.String("symbol", trade.Symbol))

	return nil
}

// UpdateTrade обновляет существующую сделку
func (s *Storage) UpdateTrade(trade *models.Trade) error {
	tagsJSON, _ := json.Marshal(trade.Tags)
	screenshotsJSON, _ := json.Marshal(trade.Screenshots)

	trade.UpdatedAt = time.Now()

	result, err := s.db.Exec(`
		UPDATE trades
		SET symbol = ?, setup_type = ?, entry_price = ?, exit_price = ?, position_size = ?,
		    entry_time = ?, exit_time = ?, outcome = ?, profit_loss = ?, planned_risk_reward = ?,
		    actual_risk_reward = ?, emotional_state = ?, plan_adherence = ?, notes = ?,
		    tags = ?, screenshots = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, trade.Symbol, trade.SetupType, trade.EntryPrice, trade.ExitPrice, trade.PositionSize,
		trade.EntryTime, trade.ExitTime, trade.Outcome, trade.ProfitLoss, trade.PlannedRiskReward,
		trade.ActualRiskReward, trade.EmotionalState, trade.PlanAdherence, trade.Notes,
		string(tagsJSON), string(screenshotsJSON), trade.UpdatedAt, trade.ID, trade.UserID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("trade not found")
	}

	return nil
}

// GetTrade получает сделку по ID
func (s *Storage) GetTrade(userID, tradeID string) (*models.Trade, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, symbol, setup_type, entry_price, exit_price, position_size,
		       entry_time, exit_time, outcome, profit_loss, planned_risk_reward, actual_risk_reward,
		       coalesce(emotional_state, ''), coalesce(plan_adherence, 0), coalesce(notes, ''),
		       coalesce(tags, '[]'), coalesce(screenshots, '[]'), created_at, updated_at
		FROM trades
		WHERE id = ? AND user_id = ?
	`, tradeID, userID)

	trade, err := scanTrade(row)
	if err != nil {
		return nil, err
	}

	return trade, nil
}

// GetTrades получает сделки пользователя с фильтрацией и пагинацией
func (s *Storage) GetTrades(userID string, filter models.TradeFilter, limit, offset int) ([]models.Trade, error) {
	query := `
		SELECT id, user_id, symbol, setup_type, entry_price, exit_price, position_size,
		       entry_time, exit_time, outcome, profit_loss, planned_risk_reward, actual_risk_reward,
		       coalesce(emotional_state, ''), coalesce(plan_adherence, 0), coalesce(notes, ''),
		       coalesce(tags, '[]'), coalesce(screenshots, '[]'), created_at, updated_at
		FROM trades
		WHERE user_id = ?`

	args := []any{userID}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}

	if filter.SetupType != "" {
		query += " AND setup_type = ?"
		args = append(args, filter.SetupType)
	}

	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, filter.Outcome)
	}

	if filter.DateFrom != nil {
		query += " AND entry_time >= ?"
		args = append(args, *filter.DateFrom)
	}

	if filter.DateTo != nil {
		query += " AND entry_time <= ?"
		args = append(args, *filter.DateTo)
	}

	query += " ORDER BY entry_time DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			continue
		}

		trades = append(trades, *trade)
	}

	return trades, nil
}

// DeleteTrade удаляет сделку
func (s *Storage) DeleteTrade(userID, tradeID string) error {
	result, err := s.db.Exec(`DELETE FROM trades WHERE id = ? AND user_id = ?`, tradeID, userID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("trade not found")
	}

	s.logger.Info("✅ Trade deleted",
		slog.String("id", tradeID),
		slog.String("user_id", userID))

	return nil
}

// CountTrades возвращает общее число сделок пользователя
func (s *Storage) CountTrades(userID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT count(*) FROM trades WHERE user_id = ?`, userID).Scan(&count)

	return count, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTrade(row scannable) (*models.Trade, error) {
	var trade models.Trade
	var exitPrice, profitLoss sql.NullFloat64
	var exitTime sql.NullTime
	var tagsJSON, screenshotsJSON string

	err := row.Scan(
		&trade.ID, &trade.UserID, &trade.Symbol, &trade.SetupType, &trade.EntryPrice,
		&exitPrice, &trade.PositionSize, &trade.EntryTime, &exitTime, &trade.Outcome,
		&profitLoss, &trade.PlannedRiskReward, &trade.ActualRiskReward,
		&trade.EmotionalState, &trade.PlanAdherence, &trade.Notes,
		&tagsJSON, &screenshotsJSON, &trade.CreatedAt, &trade.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if exitPrice.Valid {
		trade.ExitPrice = &exitPrice.Float64
	}

	if profitLoss.Valid {
		trade.ProfitLoss = &profitLoss.Float64
	}

	if exitTime.Valid {
		trade.ExitTime = &exitTime.Time
	}

	json.Unmarshal([]byte(tagsJSON), &trade.Tags)
	json.Unmarshal([]byte(screenshotsJSON), &trade.Screenshots)

	return &trade, nil
}
