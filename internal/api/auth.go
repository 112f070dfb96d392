package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"trade_journal/internal/auth"
	"trade_journal/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
	Mode  string       `json:"auth_mode"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ToggleModeRequest struct {
	Mode string `json:"mode"`
}

// HandleLogin обрабатывает вход пользователя
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Валидация
	if req.Email == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := h.bridge.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		h.logger.Error("Login failed", "error", err)
		h.respondError(w, http.StatusUnauthorized, err.Error())

		return
	}

	if session.User != nil {
		userID := session.User.ID
		_ = h.storage.AddLog(models.ActivityLog{
			UserID:  &userID,
			Level:   "INFO",
			Action:  "login",
			Message: "User logged in",
		})
	}

	h.respondSuccess(w, "Login successful", LoginResponse{
		Token: session.AuthToken,
		User:  session.User,
		Mode:  string(session.AuthMode),
	})
}

// HandleRegister обрабатывает регистрацию нового пользователя
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Валидация
	if req.Email == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if len(req.Password) < 6 {
		h.respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	session, err := h.bridge.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) || strings.Contains(err.Error(), "EMAIL_EXISTS") {
			h.respondError(w, http.StatusConflict, "Email already registered")
			return
		}

		h.logger.Error("Registration failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Internal server error")

		return
	}

	h.respondSuccess(w, "Registration successful", LoginResponse{
		Token: session.AuthToken,
		User:  session.User,
		Mode:  string(session.AuthMode),
	})
}

// HandleLogout обрабатывает выход пользователя.
// Локальный токен чистится даже если сетевой вызов провалился
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.bridge.Logout(r.Context()); err != nil {
		h.logger.Warn("Logout completed with error", "error", err)
	}

	h.respondSuccess(w, "Logged out", nil)
}

// HandleResetPassword запрашивает сброс пароля
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" {
		h.respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.bridge.ResetPassword(r.Context(), req.Email); err != nil {
		h.logger.Error("Password reset failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to request password reset")

		return
	}

	h.respondSuccess(w, "Password reset requested", nil)
}

// HandleVerify проверяет токен: из заголовка или сохраненный.
// Невалидный сохраненный токен вычищается из настроек
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")

	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			h.respondError(w, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		user, err := h.bridge.Verify(r.Context(), parts[1])
		if err != nil {
			h.respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		h.respondSuccess(w, "", user)

		return
	}

	// Заголовка нет - проверяем сохраненный токен
	user, err := h.bridge.VerifyStored(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "No valid session")
		return
	}

	h.respondSuccess(w, "", user)
}

// HandleToggleAuthMode переключает режим аутентификации (api / firebase)
func (h *Handler) HandleToggleAuthMode(w http.ResponseWriter, r *http.Request) {
	var req ToggleModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.bridge.ToggleMode(auth.Mode(req.Mode)); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondSuccess(w, "Auth mode switched", map[string]string{
		"mode": req.Mode,
	})
}
