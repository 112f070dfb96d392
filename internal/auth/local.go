package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"trade_journal/internal/models"
	"trade_journal/internal/storage"
)

// LocalProvider - аутентификация через собственный REST бэкенд (JWT + bcrypt)
type LocalProvider struct {
	storage *storage.Storage
	tokens  *TokenService
	logger  *slog.Logger
}

// NewLocalProvider создает провайдер локальной аутентификации
func NewLocalProvider(st *storage.Storage, tokens *TokenService, logger *slog.Logger) *LocalProvider {
	return &LocalProvider{
		storage: st,
		tokens:  tokens,
		logger:  logger,
	}
}

// Login проверяет пароль и выпускает JWT токен
func (p *LocalProvider) Login(_ context.Context, email, password string) (*models.User, string, error) {
	user, err := p.storage.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}

		return nil, "", err
	}

	if err := p.tokens.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := p.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Logout для локального режима - чисто серверная запись в лог.
// Токен stateless, отзыв не реализован
func (p *LocalProvider) Logout(_ context.Context, token string) error {
	claims, err := p.tokens.ValidateToken(token)
	if err != nil {
		// Выход с протухшим токеном не считается ошибкой
		return nil
	}

	userID := claims.UserID
	_ = p.storage.AddLog(models.ActivityLog{
		UserID:  &userID,
		Level:   "INFO",
		Action:  "logout",
		Message: "User logged out",
	})

	return nil
}

// Register создает нового пользователя и выпускает токен
func (p *LocalProvider) Register(_ context.Context, email, password, name string) (*models.User, string, error) {
	passwordHash, err := p.tokens.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user, err := p.storage.CreateUser(email, name, passwordHash, "api")
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, "", ErrUserExists
		}

		return nil, "", err
	}

	token, err := p.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// ResetPassword логирует запрос на сброс пароля.
// Отправка почты не подключена, пользователь с несуществующим email не раскрывается
func (p *LocalProvider) ResetPassword(_ context.Context, email string) error {
	user, err := p.storage.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}

		return err
	}

	_ = p.storage.AddLog(models.ActivityLog{
		UserID:  &user.ID,
		Level:   "INFO",
		Action:  "password_reset_requested",
		Message: "Password reset requested for " + email,
	})

	return nil
}

// Verify проверяет JWT токен и возвращает пользователя
func (p *LocalProvider) Verify(_ context.Context, token string) (*models.User, error) {
	claims, err := p.tokens.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := p.storage.GetUserByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return user, nil
}
