package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"trade_journal/internal/auth"
	"trade_journal/internal/models"
	"trade_journal/internal/notify"
	"trade_journal/internal/storage"

	"github.com/gorilla/mux"
)

func testRouter(t *testing.T) (*mux.Router, *storage.Storage) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := storage.New(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tokens := auth.NewTokenService("test-secret", time.Hour)
	local := auth.NewLocalProvider(st, tokens, logger)
	firebase := auth.NewFirebaseProvider("unused-key", logger)

	bridge := auth.NewBridge(local, firebase, st, logger)
	t.Cleanup(bridge.Close)

	h := New(st, bridge, NewHub(logger), notify.New("", 0, logger), logger)

	return h.SetupRouter(t.TempDir()), st
}

func doJSON(t *testing.T, r *mux.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var resp struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
}

// Регистрирует пользователя и возвращает его токен
func registerUser(t *testing.T, r *mux.Router, email string) string {
	t.Helper()

	rec := doJSON(t, r, "POST", "/auth/register", "", RegisterRequest{
		Email:    email,
		Password: "hunter22",
		Name:     "Trader",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var login LoginResponse
	decodeData(t, rec, &login)

	if login.Token == "" {
		t.Fatal("expected token in register response")
	}

	return login.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	r, _ := testRouter(t)

	registerUser(t, r, "trader@example.com")

	// Повторная регистрация - конфликт
	rec := doJSON(t, r, "POST", "/auth/register", "", RegisterRequest{
		Email:    "trader@example.com",
		Password: "hunter22",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register returned %d, want 409", rec.Code)
	}

	// Неверный пароль
	rec = doJSON(t, r, "POST", "/auth/login", "", LoginRequest{
		Email:    "trader@example.com",
		Password: "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login returned %d, want 401", rec.Code)
	}

	// Успешный вход
	rec = doJSON(t, r, "POST", "/auth/login", "", LoginRequest{
		Email:    "trader@example.com",
		Password: "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	var login LoginResponse
	decodeData(t, rec, &login)

	if login.Token == "" || login.User == nil || login.User.Email != "trader@example.com" {
		t.Fatalf("unexpected login response: %+v", login)
	}

	if login.Mode != "api" {
		t.Fatalf("auth_mode = %q, want api", login.Mode)
	}
}

func TestRegisterValidation(t *testing.T) {
	r, _ := testRouter(t)

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "hunter22"}},
		{"missing password", RegisterRequest{Email: "a@b.c"}},
		{"short password", RegisterRequest{Email: "a@b.c", Password: "12345"}},
	}

	for _, tc := range cases {
		rec := doJSON(t, r, "POST", "/auth/register", "", tc.req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: returned %d, want 400", tc.name, rec.Code)
		}
	}
}

func TestVerifyToken(t *testing.T) {
	r, _ := testRouter(t)

	token := registerUser(t, r, "trader@example.com")

	rec := doJSON(t, r, "GET", "/auth/verify", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify returned %d: %s", rec.Code, rec.Body.String())
	}

	var user models.User
	decodeData(t, rec, &user)

	if user.Email != "trader@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	rec = doJSON(t, r, "GET", "/auth/verify", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token returned %d, want 401", rec.Code)
	}
}

// Без заголовка verify откатывается на сохраненный токен;
// невалидный сохраненный токен вычищается
func TestVerifyStoredTokenPurge(t *testing.T) {
	r, st := testRouter(t)

	st.SetSetting(auth.SettingAuthToken, "stale-token")

	rec := doJSON(t, r, "GET", "/auth/verify", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("verify returned %d, want 401", rec.Code)
	}

	if stored, _ := st.GetSetting(auth.SettingAuthToken); stored != "" {
		t.Fatalf("stale token not purged: %q", stored)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r, _ := testRouter(t)

	for _, path := range []string{"/api/trades", "/api/dashboard", "/api/statistics", "/api/settings"} {
		rec := doJSON(t, r, "GET", path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token returned %d, want 401", path, rec.Code)
		}
	}

	rec := doJSON(t, r, "GET", "/api/trades", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token returned %d, want 401", rec.Code)
	}
}

func TestToggleAuthModeEndpoint(t *testing.T) {
	r, st := testRouter(t)

	// Переключение без аутентификации - допустимо
	rec := doJSON(t, r, "POST", "/auth/mode", "", ToggleModeRequest{Mode: "firebase"})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle returned %d: %s", rec.Code, rec.Body.String())
	}

	if stored, _ := st.GetSetting(auth.SettingDataSourceMode); stored != "firebase" {
		t.Fatalf("mode not persisted: %q", stored)
	}

	rec = doJSON(t, r, "POST", "/auth/mode", "", ToggleModeRequest{Mode: "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus mode returned %d, want 400", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := testRouter(t)

	for _, path := range []string{"/health", "/api/health"} {
		rec := doJSON(t, r, "GET", path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s returned %d, want 200", path, rec.Code)
		}
	}
}
