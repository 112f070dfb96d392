package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"trade_journal/internal/models"
)

// SettingsStore - persistent key-value хранилище клиентских флагов.
// Бриджу принадлежат только ключи api_auth_token и data_source_mode
type SettingsStore interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// Bridge предоставляет единый auth контракт поверх двух провайдеров.
// Активный провайдер выбирается по сохраненному флагу data_source_mode
type Bridge struct {
	mu        sync.RWMutex
	session   Session
	providers map[Mode]Provider
	settings  SettingsStore
	logger    *slog.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

// NewBridge создает bridge и восстанавливает режим из настроек.
// Режим читается один раз при создании; смена - только через ToggleMode
func NewBridge(local, firebase Provider, settings SettingsStore, logger *slog.Logger) *Bridge {
	mode := ModeAPI
	if stored, err := settings.GetSetting(SettingDataSourceMode); err == nil && stored == string(ModeFirebase) {
		mode = ModeFirebase
	}

	b := &Bridge{
		providers: map[Mode]Provider{
			ModeAPI:      local,
			ModeFirebase: firebase,
		},
		settings: settings,
		logger:   logger,
		done:     make(chan struct{}),
		session: Session{
			AuthMode: mode,
			Loading:  true,
		},
	}

	// В firebase режиме подписка - единственный писатель user/auth_token.
	// Login/Register только триггерят провайдер
	if fb, ok := firebase.(*FirebaseProvider); ok && fb != nil {
		b.wg.Add(1)
		go b.watchAuthState(fb.Events())
	}

	logger.Info("🔐 Auth bridge initialized", slog.String("mode", string(mode)))

	return b
}

// watchAuthState применяет события firebase провайдера к сессии
func (b *Bridge) watchAuthState(events <-chan Event) {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case e := <-events:
			b.mu.Lock()
			if b.session.AuthMode == ModeFirebase {
				b.session.User = e.User
				b.session.AuthToken = e.Token
				b.session.Loading = false
			}
			b.mu.Unlock()
		}
	}
}

// Close останавливает подписку на auth события
func (b *Bridge) Close() {
	close(b.done)
	b.wg.Wait()
}

// Mode возвращает активный режим аутентификации
func (b *Bridge) Mode() Mode {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.session.AuthMode
}

func (b *Bridge) provider() Provider {
	return b.providers[b.Mode()]
}

// beginAttempt сбрасывает ошибку перед следующей попыткой login/register/reset
func (b *Bridge) beginAttempt() {
	b.mu.Lock()
	b.session.Error = ""
	b.session.Loading = true
	b.mu.Unlock()
}

// recordError записывает ошибку в сессию и возвращает её вызывающему
func (b *Bridge) recordError(err error) error {
	b.mu.Lock()
	b.session.Error = err.Error()
	b.session.Loading = false
	b.mu.Unlock()

	return err
}

// Login аутентифицирует пользователя через активный провайдер.
// В api режиме состояние выставляется сразу и токен сохраняется в настройках;
// в firebase режиме итоговое состояние приходит через подписку
func (b *Bridge) Login(ctx context.Context, email, password string) (Session, error) {
	b.beginAttempt()

	mode := b.Mode()

	user, token, err := b.provider().Login(ctx, email, password)
	if err != nil {
		return b.snapshot(), b.recordError(err)
	}

	if mode == ModeAPI {
		if err := b.settings.SetSetting(SettingAuthToken, token); err != nil {
			b.logger.Error("Failed to persist auth token", slog.Any("error", err))
		}

		b.mu.Lock()
		b.session.User = user
		b.session.AuthToken = token
		b.session.Loading = false
		b.mu.Unlock()
	}
	// firebase: сессию обновит watchAuthState

	b.logger.Info("✅ Login",
		slog.String("email", email),
		slog.String("mode", string(mode)))

	return b.snapshot(), nil
}

// Logout завершает сессию.
// Локальный токен чистится независимо от исхода сетевого вызова
func (b *Bridge) Logout(ctx context.Context) error {
	mode := b.Mode()

	b.mu.RLock()
	token := b.session.AuthToken
	b.mu.RUnlock()

	err := b.provider().Logout(ctx, token)

	if mode == ModeAPI {
		_ = b.settings.DeleteSetting(SettingAuthToken)

		b.mu.Lock()
		b.session.User = nil
		b.session.AuthToken = ""
		b.session.Loading = false
		b.mu.Unlock()
	}
	// firebase: watchAuthState получит sign-out событие

	return err
}

// Register создает нового пользователя, зеркалит структуру Login
func (b *Bridge) Register(ctx context.Context, email, password, name string) (Session, error) {
	b.beginAttempt()

	mode := b.Mode()

	user, token, err := b.provider().Register(ctx, email, password, name)
	if err != nil {
		return b.snapshot(), b.recordError(err)
	}

	if mode == ModeAPI {
		if err := b.settings.SetSetting(SettingAuthToken, token); err != nil {
			b.logger.Error("Failed to persist auth token", slog.Any("error", err))
		}

		b.mu.Lock()
		b.session.User = user
		b.session.AuthToken = token
		b.session.Loading = false
		b.mu.Unlock()
	}

	return b.snapshot(), nil
}

// ResetPassword запрашивает сброс пароля через активный провайдер
func (b *Bridge) ResetPassword(ctx context.Context, email string) error {
	b.beginAttempt()

	if err := b.provider().ResetPassword(ctx, email); err != nil {
		return b.recordError(err)
	}

	b.mu.Lock()
	b.session.Loading = false
	b.mu.Unlock()

	return nil
}

// Verify проверяет токен через активный провайдер (для auth middleware)
func (b *Bridge) Verify(ctx context.Context, token string) (*models.User, error) {
	return b.provider().Verify(ctx, token)
}

// VerifyStored проверяет сохраненный токен.
// Невалидный токен вычищается из настроек, user сбрасывается в nil
func (b *Bridge) VerifyStored(ctx context.Context) (*models.User, error) {
	token, err := b.settings.GetSetting(SettingAuthToken)
	if err != nil || token == "" {
		return nil, ErrInvalidToken
	}

	user, err := b.provider().Verify(ctx, token)
	if err != nil {
		_ = b.settings.DeleteSetting(SettingAuthToken)

		b.mu.Lock()
		b.session.User = nil
		b.session.AuthToken = ""
		b.session.Loading = false
		b.mu.Unlock()

		b.logger.Warn("⚠️  Stored token failed verification, purged")

		return nil, err
	}

	b.mu.Lock()
	b.session.User = user
	b.session.AuthToken = token
	b.session.Loading = false
	b.mu.Unlock()

	return user, nil
}

// ToggleMode переключает режим аутентификации и сбрасывает сессию.
// Безопасен в неаутентифицированном состоянии
func (b *Bridge) ToggleMode(mode Mode) error {
	if mode != ModeAPI && mode != ModeFirebase {
		return fmt.Errorf("unknown auth mode: %s", mode)
	}

	if err := b.settings.SetSetting(SettingDataSourceMode, string(mode)); err != nil {
		return err
	}

	_ = b.settings.DeleteSetting(SettingAuthToken)

	b.mu.Lock()
	b.session.AuthMode = mode
	b.session.User = nil
	b.session.AuthToken = ""
	b.session.Error = ""
	b.session.Loading = false
	b.mu.Unlock()

	b.logger.Info("🔄 Auth mode switched", slog.String("mode", string(mode)))

	return nil
}

// CurrentUser возвращает синхронный снимок пользователя.
// В firebase режиме может отставать от сервера до следующего события
func (b *Bridge) CurrentUser() *models.User {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.session.User
}

// Session возвращает снимок состояния сессии
func (b *Bridge) Session() Session {
	return b.snapshot()
}

func (b *Bridge) snapshot() Session {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.session
}
