package handlers

import (
	"context"
	"log"
	"net/http"

	"todoserver/internal/models"
)

// UserLister определяет зависимость диагностических эндпоинтов
// от репозитория пользователей.
type UserLister interface {
	ListUsers(ctx context.Context) (map[string]models.User, error)
}

// SystemHandler обрабатывает служебные эндпоинты: корень, health
// и диагностические дампы. Дампы не являются частью внешнего контракта.
type SystemHandler struct {
	storage string // Имя бэкенда хранилища: file или postgres
	ping    func(ctx context.Context) error
	users   UserLister
}

// NewSystemHandler создает новый экземпляр SystemHandler.
func NewSystemHandler(storage string, ping func(ctx context.Context) error, users UserLister) *SystemHandler {
	return &SystemHandler{storage: storage, ping: ping, users: users}
}

// Home обрабатывает GET / - краткая справка о сервисе.
func (h *SystemHandler) Home(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "running",
		"api":     "todo-auth",
		"storage": h.storage,
	})
}

// Health обрабатывает GET /health. Всегда отвечает 200: деградация
// отражается полем status, а не HTTP-кодом.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := h.ping(r.Context()); err != nil {
		log.Printf("[SystemHandler] Хранилище недоступно: %v", err)
		status = "unhealthy"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   status,
		"database": h.storage,
	})
}

// Users обрабатывает GET /api/users - сырой дамп пользователей.
// Только для диагностики.
func (h *SystemHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Printf("[SystemHandler] Ошибка получения списка пользователей: %v", err)
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	log.Printf("[SystemHandler] Запрос списка пользователей. Найдено: %d", len(users))
	writeJSON(w, http.StatusOK, users)
}

// Debug обрабатывает GET /api/debug - сводка о состоянии хранилища.
// Только для диагностики.
func (h *SystemHandler) Debug(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Printf("[SystemHandler] Ошибка получения списка пользователей: %v", err)
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	available := true
	if err = h.ping(r.Context()); err != nil {
		available = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_users":       len(users),
		"users":             users,
		"storage":           h.storage,
		"storage_available": available,
	})
}
