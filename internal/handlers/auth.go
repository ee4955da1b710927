package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"todoserver/internal/models"
	"todoserver/internal/services"
)

// AuthService определяет интерфейс для сервиса аутентификации.
// Это позволит нам легко подменять реализацию (например, для тестов).
type AuthService interface {
	Register(ctx context.Context, email, password, username string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	service AuthService // Зависимость от интерфейса, а не конкретной реализации
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	// Декодируем JSON из тела запроса
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса регистрации: %v", err)
		writeError(w, http.StatusUnprocessableEntity, "Неверный формат запроса")
		return
	}

	// Валидация входных данных (простая)
	if req.Email == "" || req.Password == "" || req.Username == "" {
		log.Printf("[AuthHandler] Неполные данные при регистрации")
		writeError(w, http.StatusUnprocessableEntity, "Email, пароль и имя пользователя не могут быть пустыми")
		return
	}

	log.Printf("[AuthHandler] Попытка регистрации пользователя: %s", req.Email)

	user, err := h.service.Register(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "Email уже используется")
			return
		}
		log.Printf("[AuthHandler] Внутренняя ошибка при регистрации '%s': %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Success:      true,
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		SessionToken: user.SessionToken,
		Message:      "Регистрация успешна",
	})
	log.Printf("[AuthHandler] Успешная регистрация для: %s", req.Email)
}

// Login обрабатывает запрос на вход пользователя.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	// Декодируем JSON из тела запроса
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса входа: %v", err)
		writeError(w, http.StatusUnprocessableEntity, "Неверный формат запроса")
		return
	}

	// Валидация входных данных (простая)
	if req.Email == "" || req.Password == "" {
		log.Printf("[AuthHandler] Пустой email или пароль при входе")
		writeError(w, http.StatusUnprocessableEntity, "Email и пароль не могут быть пустыми")
		return
	}

	log.Printf("[AuthHandler] Попытка входа пользователя: %s", req.Email)

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, "Пользователь не найден")
		case errors.Is(err, services.ErrInvalidPassword):
			writeError(w, http.StatusUnauthorized, "Неверный пароль")
		default:
			log.Printf("[AuthHandler] Внутренняя ошибка при входе '%s': %v", req.Email, err)
			writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Success:      true,
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		SessionToken: user.SessionToken,
		Message:      "Вход выполнен успешно",
	})
	log.Printf("[AuthHandler] Успешный вход для: %s", req.Email)
}
