package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"trade_journal/internal/httpclient"
	"trade_journal/internal/models"
)

const (
	firebaseBaseURL = "https://identitytoolkit.googleapis.com"

	// Identity Toolkit endpoints
	signInEndpoint  = "/v1/accounts:signInWithPassword"
	signUpEndpoint  = "/v1/accounts:signUp"
	sendOobEndpoint = "/v1/accounts:sendOobCode"
	lookupEndpoint  = "/v1/accounts:lookup"
)

// FirebaseProvider - аутентификация через Firebase (Identity Toolkit REST API)
type FirebaseProvider struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	events     chan Event
}

// NewFirebaseProvider создает Firebase провайдер
func NewFirebaseProvider(apiKey string, logger *slog.Logger) *FirebaseProvider {
	return &FirebaseProvider{
		apiKey:     apiKey,
		httpClient: httpclient.New(logger, 30*time.Second),
		logger:     logger,
		baseURL:    firebaseBaseURL,
		events:     make(chan Event, 8),
	}
}

// Events возвращает канал событий изменения auth состояния.
// Аналог onAuthStateChanged: подписчик - единственный писатель сессии
func (p *FirebaseProvider) Events() <-chan Event {
	return p.events
}

type firebaseAuthResponse struct {
	IDToken       string `json:"idToken"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	LocalID       string `json:"localId"`
	PhotoURL      string `json:"photoUrl"`
	EmailVerified bool   `json:"emailVerified"`
}

type firebaseErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Login выполняет signInWithPassword.
// Итоговое состояние сессии выставляет подписка на events, не возвращаемое значение
func (p *FirebaseProvider) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var resp firebaseAuthResponse
	err := p.post(ctx, signInEndpoint, map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, "", err
	}

	user := userFromFirebase(resp)

	p.logger.Info("✅ Firebase sign-in",
		slog.String("email", email))

	// Триггерим подписку - она обновит сессию
	p.emit(Event{User: user, Token: resp.IDToken})

	return user, resp.IDToken, nil
}

// Logout сбрасывает состояние через событие sign-out.
// У Identity Toolkit нет серверного logout, токен просто забывается
func (p *FirebaseProvider) Logout(_ context.Context, _ string) error {
	p.emit(Event{})
	return nil
}

// Register выполняет signUp и обновляет displayName
func (p *FirebaseProvider) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	var resp firebaseAuthResponse
	err := p.post(ctx, signUpEndpoint, map[string]any{
		"email":             email,
		"password":          password,
		"displayName":       name,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, "", err
	}

	if resp.DisplayName == "" {
		resp.DisplayName = name
	}

	user := userFromFirebase(resp)

	p.logger.Info("✅ Firebase sign-up",
		slog.String("email", email))

	p.emit(Event{User: user, Token: resp.IDToken})

	return user, resp.IDToken, nil
}

// ResetPassword отправляет письмо для сброса пароля
func (p *FirebaseProvider) ResetPassword(ctx context.Context, email string) error {
	return p.post(ctx, sendOobEndpoint, map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// Verify проверяет idToken через accounts:lookup
func (p *FirebaseProvider) Verify(ctx context.Context, token string) (*models.User, error) {
	var resp struct {
		Users []firebaseAuthResponse `json:"users"`
	}

	err := p.post(ctx, lookupEndpoint, map[string]any{
		"idToken": token,
	}, &resp)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if len(resp.Users) == 0 {
		return nil, ErrInvalidToken
	}

	user := userFromFirebase(resp.Users[0])

	return user, nil
}

func (p *FirebaseProvider) emit(e Event) {
	select {
	case p.events <- e:
	default:
		// Подписчик не успевает - событие теряется, состояние догонит следующее
		p.logger.Warn("⚠️  Auth event dropped, subscriber is slow")
	}
}

func (p *FirebaseProvider) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, _ := json.Marshal(payload)

	apiURL := fmt.Sprintf("%s%s?key=%s", p.baseURL, endpoint, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("Firebase request failed",
			slog.String("endpoint", endpoint),
			slog.Any("error", err))

		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var fbErr firebaseErrorResponse
		json.Unmarshal(respBody, &fbErr)

		if fbErr.Error.Message != "" {
			p.logger.Error("Firebase API error",
				slog.String("endpoint", endpoint),
				slog.String("message", fbErr.Error.Message))

			return fmt.Errorf("firebase: %s", fbErr.Error.Message)
		}

		return fmt.Errorf("firebase: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("firebase: bad response: %w", err)
		}
	}

	return nil
}

func userFromFirebase(resp firebaseAuthResponse) *models.User {
	return &models.User{
		ID:            resp.LocalID,
		Email:         resp.Email,
		Name:          resp.DisplayName,
		PhotoURL:      resp.PhotoURL,
		EmailVerified: resp.EmailVerified,
		Provider:      "firebase",
	}
}
