package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade_journal/internal/api"
	"trade_journal/internal/auth"
	"trade_journal/internal/config"
	"trade_journal/internal/notify"
	"trade_journal/internal/storage"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	// .env подхватывается если есть, иначе только окружение
	_ = godotenv.Load()

	// Конфигурация slog для вывода в файл и stdout
	logFile, err := os.OpenFile("journal.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.Fatal("Failed to open log file:", err)
	}
	defer logFile.Close()

	// Pretty handler для stdout с цветами
	prettyHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen, // "3:04PM"
		AddSource:  false,
		NoColor:    false,
	})

	// Обычный текстовый handler для файла
	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	// Мультиплексируем логи в оба handler'а
	logger := slog.New(&multiHandler{
		handlers: []slog.Handler{prettyHandler, fileHandler},
	})

	logger.Info("=== Trading Journal Web App ===")

	cfg := config.Load(logger)

	// Инициализация БД
	journalStorage, err := storage.New(cfg.DBPath, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer journalStorage.Close()

	// Инициализация auth: токены действительны 24 часа
	tokenService := auth.NewTokenService(cfg.JWTSecret, 24*time.Hour)
	localProvider := auth.NewLocalProvider(journalStorage, tokenService, logger)
	firebaseProvider := auth.NewFirebaseProvider(cfg.FirebaseAPIKey, logger)

	bridge := auth.NewBridge(localProvider, firebaseProvider, journalStorage, logger)
	defer bridge.Close()

	// Telegram уведомления (опционально)
	notifier := notify.New(cfg.TelegramToken, cfg.TelegramChatID, logger)

	// Live-лента для дашборда
	hub := api.NewHub(logger)

	// Инициализация API handler
	apiHandler := api.New(journalStorage, bridge, hub, notifier, logger)

	// Настройка роутинга
	router := apiHandler.SetupRouter(cfg.WebDir)

	// HTTP сервер
	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("🚀 Server starting...", slog.String("address", cfg.Address))
		logger.Info(fmt.Sprintf("📡 API available at http://%s/api", cfg.Address))
		logger.Info(fmt.Sprintf("🏥 Health check at http://%s/api/health", cfg.Address))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("✅ Server stopped")
}

// multiHandler отправляет логи в несколько handlers одновременно
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		if err := h.Handle(ctx, record); err != nil {
			return err
		}
	}

	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}

	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}

	return &multiHandler{handlers: handlers}
}
