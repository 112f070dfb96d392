package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"trade_journal/internal/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Storage управляет базой данных журнала
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// New создает новый экземпляр Storage
func New(dbPath string, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	storage := &Storage{
		db:     db,
		logger: logger,
	}

	if err := storage.init(); err != nil {
		return nil, err
	}

	return storage, nil
}

// init инициализирует таблицы БД
func (s *Storage) init() error {
	migrationSQL := `
-- Trading Journal Database Schema

-- Пользователи журнала
CREATE TABLE if NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    NAME TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL DEFAULT '',
    photo_url TEXT NOT NULL DEFAULT '',
    email_verified INTEGER DEFAULT 0,
    provider TEXT NOT NULL DEFAULT 'api',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Сделки
CREATE TABLE if NOT EXISTS trades (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    symbol TEXT NOT NULL,
    setup_type TEXT NOT NULL DEFAULT '',
    entry_price REAL NOT NULL,
    exit_price REAL,
    position_size REAL NOT NULL,
    entry_time DATETIME NOT NULL,
    exit_time DATETIME,
    outcome TEXT NOT NULL DEFAULT '',
    profit_loss REAL,
    planned_risk_reward REAL DEFAULT 0,
    actual_risk_reward REAL DEFAULT 0,
    emotional_state TEXT DEFAULT '',
    plan_adherence INTEGER DEFAULT 0,
    notes TEXT DEFAULT '',
    tags TEXT DEFAULT '[]',
    screenshots TEXT DEFAULT '[]',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX if NOT EXISTS idx_trades_user ON trades(user_id);
CREATE INDEX if NOT EXISTS idx_trades_entry ON trades(entry_time DESC);
CREATE INDEX if NOT EXISTS idx_trades_symbol ON trades(symbol);
CREATE INDEX if NOT EXISTS idx_trades_setup ON trades(setup_type);

-- Дневные планы
CREATE TABLE if NOT EXISTS daily_plans (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    plan_date TEXT NOT NULL,
    market_bias TEXT NOT NULL DEFAULT '',
    mental_state TEXT DEFAULT '',
    notes TEXT DEFAULT '',
    key_levels TEXT DEFAULT '{}',
    goals TEXT DEFAULT '[]',
    risk_parameters TEXT DEFAULT '{}',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(user_id, plan_date),
    FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX if NOT EXISTS idx_plans_user ON daily_plans(user_id);
CREATE INDEX if NOT EXISTS idx_plans_date ON daily_plans(plan_date DESC);

-- Настройки приложения (режимы, токены)
CREATE TABLE if NOT EXISTS settings (
    KEY TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Лог активности
CREATE TABLE if NOT EXISTS activity_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT,
    LEVEL TEXT NOT NULL,
    ACTION TEXT NOT NULL,
    message TEXT NOT NULL,
    details TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE SET NULL
);

CREATE INDEX if NOT EXISTS idx_activity_log_user ON activity_log(user_id);
CREATE INDEX if NOT EXISTS idx_activity_log_created ON activity_log(created_at DESC);
`

	_, err := s.db.Exec(migrationSQL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Demo/sample флаги сбрасываются при каждом старте
	_, _ = s.db.Exec(`DELETE FROM settings WHERE key IN ('sample_data_enabled', 'demo_mode', 'force_sample_data')`)

	s.logger.Info("✅ Journal database initialized")

	return nil
}

// === User Management ===

// CreateUser создает нового пользователя
func (s *Storage) CreateUser(email, name, passwordHash, provider string) (*models.User, error) {
	id := uuid.New().String()

	_, err := s.db.Exec(`
		INSERT INTO users (id, email, name, password_hash, provider)
		VALUES (?, ?, ?, ?, ?)
	`, id, email, name, passwordHash, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Provider:  provider,
		CreatedAt: time.Now(),
	}, nil
}

// GetUserByEmail получает пользователя по email
func (s *Storage) GetUserByEmail(email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, email, name, password_hash, photo_url, email_verified, provider, created_at
		FROM users
		WHERE email = ?
	`, email))
}

// GetUserByID получает пользователя по ID
func (s *Storage) GetUserByID(id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, email, name, password_hash, photo_url, email_verified, provider, created_at
		FROM users
		WHERE id = ?
	`, id))
}

func (s *Storage) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var verifiedInt int

	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.PhotoURL, &verifiedInt, &user.Provider, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	user.EmailVerified = verifiedInt == 1

	return &user, nil
}

// === Settings ===

// GetSetting возвращает значение настройки (пустая строка если нет)
func (s *Storage) GetSetting(key string) (string, error) {
	var value string

	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}

		return "", err
	}

	return value, nil
}

// SetSetting записывает значение настройки
func (s *Storage) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)

	return err
}

// DeleteSetting удаляет настройку
func (s *Storage) DeleteSetting(key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// === Activity Log ===

// AddLog добавляет запись в лог активности
func (s *Storage) AddLog(log models.ActivityLog) error {
	_, err := s.db.Exec(`
		INSERT INTO activity_log (user_id, level, action, message, details)
		VALUES (?, ?, ?, ?, ?)
	`, log.UserID, log.Level, log.Action, log.Message, log.Details)

	return err
}

// GetLogs получает логи с пагинацией
func (s *Storage) GetLogs(userID string, limit, offset int) ([]models.ActivityLog, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, level, ACTION, message, COALESCE(details, ''), created_at
		FROM activity_log
		WHERE user_id = ? OR user_id IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var log models.ActivityLog
		err := rows.Scan(
			&log.ID, &log.UserID, &log.Level, &log.Action, &log.Message, &log.Details, &log.CreatedAt,
		)
		if err != nil {
			continue
		}

		logs = append(logs, log)
	}

	return logs, nil
}

// Close закрывает соединение с БД
func (s *Storage) Close() error {
	return s.db.Close()
}
