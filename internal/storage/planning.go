package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"trade_journal/internal/models"

	"github.com/google/uuid"
)

// SavePlan создает или обновляет план на день (по одному плану на дату)
func (s *Storage) SavePlan(plan *models.DailyPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}

	keyLevelsJSON, _ := json.Marshal(plan.KeyLevels)
	goalsJSON, _ := json.Marshal(plan.Goals)
	riskJSON, _ := json.Marshal(plan.RiskParams)

	now := time.Now()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO daily_plans (id, user_id, plan_date, market_bias, mental_state, notes,
		                         key_levels, goals, risk_parameters, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, plan_date) DO UPDATE SET
			market_bias = excluded.market_bias,
			mental_state = excluded.mental_state,
			notes = excluded.notes,
			key_levels = excluded.key_levels,
			goals = excluded.goals,
			risk_parameters = excluded.risk_parameters,
			updated_at = excluded.updated_at
	`, plan.ID, plan.UserID, plan.Date, plan.MarketBias, plan.MentalState, plan.Notes,
		string(keyLevelsJSON), string(goalsJSON), string(riskJSON), plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	s.logger.Info("✅ Daily plan saved",
		slog.String("date", plan.Date),
		slog.String("user_id", plan.UserID))

	return nil
}

// GetPlan получает план по ID
func (s *Storage) GetPlan(userID, planID string) (*models.DailyPlan, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, plan_date, market_bias, coalesce(mental_state, ''), coalesce(notes, ''),
		       coalesce(key_levels, '{}'), coalesce(goals, '[]'), coalesce(risk_parameters, '{}'),
		       created_at, updated_at
		FROM daily_plans
		WHERE id = ? AND user_id = ?
	`, planID, userID)

	return scanPlan(row)
}

// GetPlanByDate получает план на конкретную дату (YYYY-MM-DD)
func (s *Storage) GetPlanByDate(userID, date string) (*models.DailyPlan, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, plan_date, market_bias, coalesce(mental_state, ''), coalesce(notes, ''),
		       coalesce(key_levels, '{}'), coalesce(goals, '[]'), coalesce(risk_parameters, '{}'),
		       created_at, updated_at
		FROM daily_plans
		WHERE user_id = ? AND plan_date = ?
	`, userID, date)

	return scanPlan(row)
}

// GetPlans получает планы пользователя с пагинацией (новые первыми)
func (s *Storage) GetPlans(userID string, limit, offset int) ([]models.DailyPlan, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, plan_date, market_bias, coalesce(mental_state, ''), coalesce(notes, ''),
		       coalesce(key_levels, '{}'), coalesce(goals, '[]'), coalesce(risk_parameters, '{}'),
		       created_at, updated_at
		FROM daily_plans
		WHERE user_id = ?
		ORDER BY plan_date DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var plans []models.DailyPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			continue
		}

		plans = append(plans, *plan)
	}

	return plans, nil
}

// DeletePlan удаляет план
func (s *Storage) DeletePlan(userID, planID string) error {
	result, err := s.db.Exec(`DELETE FROM daily_plans WHERE id = ? AND user_id = ?`, planID, userID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("plan not found")
	}

	return nil
}

func scanPlan(row scannable) (*models.DailyPlan, error) {
	var plan models.DailyPlan
	var keyLevelsJSON, goalsJSON, riskJSON string

	err := row.Scan(
		&plan.ID, &plan.UserID, &plan.Date, &plan.MarketBias, &plan.MentalState, &plan.Notes,
		&keyLevelsJSON, &goalsJSON, &riskJSON, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(keyLevelsJSON), &plan.KeyLevels)
	json.Unmarshal([]byte(goalsJSON), &plan.Goals)
	json.Unmarshal([]byte(riskJSON), &plan.RiskParams)

	return &plan, nil
}
