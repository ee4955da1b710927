package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"todoserver/internal/models"
	"todoserver/internal/repository"
)

// Формат меток времени: ISO-8601, UTC, фиксированная ширина.
// Микросекундная точность и неусекаемые нули делают строки
// лексикографически сортируемыми.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// TaskService определяет интерфейс для сервиса задач.
// Владелец (ownerEmail) всегда берется из разрешенной сессии запроса,
// а не из тела запроса клиента.
type TaskService interface {
	Create(ctx context.Context, ownerEmail string, req models.CreateTaskRequest) (*models.Task, error)
	List(ctx context.Context, ownerEmail string) ([]models.Task, error)
	Update(ctx context.Context, taskID, ownerEmail string, req models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, taskID, ownerEmail string) error
}

// Убедимся, что taskService удовлетворяет интерфейсу TaskService.
var _ TaskService = (*taskService)(nil)

type taskService struct {
	taskRepo repository.TaskRepository
	now      func() time.Time // Подменяется в тестах
}

// NewTaskService создает новый экземпляр сервиса задач.
func NewTaskService(taskRepo repository.TaskRepository) TaskService {
	return &taskService{taskRepo: taskRepo, now: time.Now}
}

// timestamp возвращает текущий момент в сортируемом текстовом виде.
func (s *taskService) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

// Create создает задачу владельца. Новая задача всегда незавершенная,
// обе метки времени совпадают, категория по умолчанию подставляется
// при пустом значении.
func (s *taskService) Create(ctx context.Context, ownerEmail string, req models.CreateTaskRequest) (*models.Task, error) {
	if req.Title == "" {
		return nil, ErrEmptyTitle
	}

	category := req.Category
	if category == "" {
		category = models.DefaultCategory
	}

	now := s.timestamp()
	task := &models.Task{
		ID:        uuid.NewString(),
		UserEmail: ownerEmail,
		Title:     req.Title,
		Category:  category,
		Date:      req.Date,
		Time:      req.Time,
		Notes:     req.Notes,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.taskRepo.CreateTask(ctx, task); err != nil {
		log.Printf("[TaskService] Ошибка создания задачи для '%s': %v", ownerEmail, err)
		return nil, err
	}

	log.Printf("[TaskService] Задача %s создана для '%s'", task.ID, ownerEmail)
	return task, nil
}

// List возвращает задачи владельца, самые свежие первыми.
func (s *taskService) List(ctx context.Context, ownerEmail string) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListTasksByOwner(ctx, ownerEmail)
	if err != nil {
		log.Printf("[TaskService] Ошибка получения задач '%s': %v", ownerEmail, err)
		return nil, err
	}
	return tasks, nil
}

// Update частично обновляет задачу владельца. Перезаписываются только
// переданные поля; не переданные остаются как были. Метка updated_at
// обновляется всегда, даже если не передано ни одного поля.
// Владелец, ID и created_at неизменяемы.
func (s *taskService) Update(ctx context.Context, taskID, ownerEmail string, req models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.getOwnedTask(ctx, taskID, ownerEmail)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Date != nil {
		task.Date = *req.Date
	}
	if req.Time != nil {
		task.Time = *req.Time
	}
	if req.Notes != nil {
		task.Notes = *req.Notes
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	task.UpdatedAt = s.timestamp()

	if err = s.taskRepo.UpdateTask(ctx, task); err != nil {
		log.Printf("[TaskService] Ошибка обновления задачи %s: %v", taskID, err)
		return nil, err
	}

	log.Printf("[TaskService] Задача %s пользователя '%s' обновлена", taskID, ownerEmail)
	return task, nil
}

// Delete удаляет задачу владельца.
func (s *taskService) Delete(ctx context.Context, taskID, ownerEmail string) error {
	if _, err := s.getOwnedTask(ctx, taskID, ownerEmail); err != nil {
		return err
	}

	if err := s.taskRepo.DeleteTask(ctx, taskID, ownerEmail); err != nil {
		log.Printf("[TaskService] Ошибка удаления задачи %s: %v", taskID, err)
		return err
	}

	log.Printf("[TaskService] Задача %s пользователя '%s' удалена", taskID, ownerEmail)
	return nil
}

// getOwnedTask находит задачу и проверяет владение.
// Несуществующая задача - ErrTaskNotFound, чужая - ErrForbidden.
func (s *taskService) getOwnedTask(ctx context.Context, taskID, ownerEmail string) (*models.Task, error) {
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		log.Printf("[TaskService] Ошибка поиска задачи %s: %v", taskID, err)
		return nil, err
	}
	if task.UserEmail != ownerEmail {
		log.Printf("[TaskService] Пользователь '%s' пытался обратиться к чужой задаче %s", ownerEmail, taskID)
		return nil, ErrForbidden
	}
	return task, nil
}

// Кастомные ошибки сервиса задач.
var (
	ErrEmptyTitle   = errors.New("название задачи не может быть пустым")
	ErrTaskNotFound = errors.New("задача не найдена")
	ErrForbidden    = errors.New("доступ к задаче запрещен")
)
