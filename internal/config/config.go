package config

import (
	"log/slog"
	"os"
	"strconv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Address   string // Address для HTTP сервера (e.g., 0.0.0.0:8080)
	DBPath    string
	JWTSecret string
	WebDir    string // Директория собранного фронтенда

	// Firebase (режим firebase работает только с ключом)
	FirebaseAPIKey string

	// Telegram уведомления (опционально)
	TelegramToken  string
	TelegramChatID int64
}

// Load загружает конфигурацию из переменных окружения
func Load(logger *slog.Logger) *Config {
	address := os.Getenv("ADDRESS")
	if address == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}

		address = "0.0.0.0:" + port
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "default-secret-change-me-in-production" // В продакшене использовать настоящий секрет!

		logger.Warn("⚠️  JWT_SECRET not set, using default (insecure!)")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./journal.db"
	}

	webDir := os.Getenv("WEB_DIR")
	if webDir == "" {
		webDir = "./web/"
	}

	firebaseKey := os.Getenv("FIREBASE_API_KEY")
	if firebaseKey == "" {
		logger.Info("🔑 FIREBASE_API_KEY not set, firebase auth mode unavailable")
	}

	telegramToken := os.Getenv("TELEGRAM_BOT_TOKEN")

	var telegramChatID int64
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		id, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			logger.Warn("⚠️  Invalid TELEGRAM_CHAT_ID, notifications disabled")
		} else {
			telegramChatID = id
		}
	}

	return &Config{
		Address:        address,
		DBPath:         dbPath,
		JWTSecret:      jwtSecret,
		WebDir:         webDir,
		FirebaseAPIKey: firebaseKey,
		TelegramToken:  telegramToken,
		TelegramChatID: telegramChatID,
	}
}
