package auth

import (
	"context"

	"trade_journal/internal/models"
)

// Mode определяет какой бэкенд обслуживает аутентификацию
type Mode string

const (
	ModeAPI      Mode = "api"
	ModeFirebase Mode = "firebase"
)

// Ключи настроек в persistent storage
const (
	SettingAuthToken      = "api_auth_token"
	SettingDataSourceMode = "data_source_mode"
	SettingRealDataOnly   = "use_real_data_only"
)

// Session представляет состояние аутентификации
type Session struct {
	User      *models.User `json:"user"`
	AuthToken string       `json:"auth_token,omitempty"`
	AuthMode  Mode         `json:"auth_mode"`
	Loading   bool         `json:"loading"`
	Error     string       `json:"error,omitempty"`
}

// Authenticated сообщает, есть ли активная сессия
func (s Session) Authenticated() bool {
	return s.User != nil && s.AuthToken != ""
}

// Provider - единый контракт auth бэкенда.
// Две реализации: локальный JWT (api) и Firebase Identity Toolkit (firebase).
type Provider interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, email, password, name string) (*models.User, string, error)
	ResetPassword(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (*models.User, error)
}

// Event - событие изменения auth состояния.
// В firebase режиме подписка на эти события - единственный писатель сессии.
type Event struct {
	User  *models.User
	Token string
}
