package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"todoserver/internal/middleware"
	"todoserver/internal/models"
	"todoserver/internal/services"
)

// TaskService определяет интерфейс для сервиса задач.
type TaskService interface {
	Create(ctx context.Context, ownerEmail string, req models.CreateTaskRequest) (*models.Task, error)
	List(ctx context.Context, ownerEmail string) ([]models.Task, error)
	Update(ctx context.Context, taskID, ownerEmail string, req models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, taskID, ownerEmail string) error
}

// TaskHandler обрабатывает HTTP-запросы, связанные с задачами.
// Владелец всегда берется из личности, разрешенной middleware,
// никогда - из тела запроса.
type TaskHandler struct {
	service TaskService
}

// NewTaskHandler создает новый экземпляр TaskHandler.
func NewTaskHandler(s TaskService) *TaskHandler {
	return &TaskHandler{service: s}
}

// List обрабатывает GET запрос на получение списка задач пользователя.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		log.Printf("[TaskHandler:List] Не удалось получить личность из контекста")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	tasks, err := h.service.List(r.Context(), identity.Email)
	if err != nil {
		log.Printf("[TaskHandler:List] Внутренняя ошибка при получении задач '%s': %v", identity.Email, err)
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	if tasks == nil {
		// Пустой список сериализуем как [], а не null
		tasks = []models.Task{}
	}

	writeJSON(w, http.StatusOK, models.TaskListResponse{
		Success: true,
		Tasks:   tasks,
		Count:   len(tasks),
	})
}

// Create обрабатывает POST запрос на создание задачи.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		log.Printf("[TaskHandler:Create] Не удалось получить личность из контекста")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[TaskHandler:Create] Ошибка декодирования запроса: %v", err)
		writeError(w, http.StatusUnprocessableEntity, "Неверный формат запроса")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "Название задачи не может быть пустым")
		return
	}

	task, err := h.service.Create(r.Context(), identity.Email, req)
	if err != nil {
		log.Printf("[TaskHandler:Create] Внутренняя ошибка при создании задачи для '%s': %v", identity.Email, err)
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, models.TaskResponse{
		Success: true,
		TaskID:  task.ID,
		Task:    task,
		Message: "Задача создана",
	})
}

// Update обрабатывает PUT запрос на частичное обновление задачи.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		log.Printf("[TaskHandler:Update] Не удалось получить личность из контекста")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	taskID := chi.URLParam(r, "taskID")

	var req models.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[TaskHandler:Update] Ошибка декодирования запроса: %v", err)
		writeError(w, http.StatusUnprocessableEntity, "Неверный формат запроса")
		return
	}

	task, err := h.service.Update(r.Context(), taskID, identity.Email, req)
	if err != nil {
		h.writeTaskError(w, taskID, identity.Email, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TaskResponse{
		Success: true,
		Task:    task,
		Message: "Задача обновлена",
	})
}

// Delete обрабатывает DELETE запрос на удаление задачи.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		log.Printf("[TaskHandler:Delete] Не удалось получить личность из контекста")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	taskID := chi.URLParam(r, "taskID")

	if err := h.service.Delete(r.Context(), taskID, identity.Email); err != nil {
		h.writeTaskError(w, taskID, identity.Email, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Задача удалена",
	})
}

// writeTaskError отображает ошибки сервиса задач на HTTP-статусы.
func (h *TaskHandler) writeTaskError(w http.ResponseWriter, taskID, ownerEmail string, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Задача не найдена")
	case errors.Is(err, services.ErrForbidden):
		log.Printf("[TaskHandler] Пользователь '%s' пытался обратиться к чужой задаче %s", ownerEmail, taskID)
		writeError(w, http.StatusForbidden, "Доступ запрещен")
	default:
		log.Printf("[TaskHandler] Внутренняя ошибка при работе с задачей %s: %v", taskID, err)
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
	}
}
