package repository

import (
	"context"
	"log"
	"sort"

	"todoserver/internal/models"
)

// fileTaskRepository реализует TaskRepository поверх tasks.json.
type fileTaskRepository struct {
	store *FileStore
}

// NewFileTaskRepository создает репозиторий задач для файлового бэкенда.
func NewFileTaskRepository(store *FileStore) TaskRepository {
	return &fileTaskRepository{store: store}
}

// CreateTask добавляет задачу в tasks.json. Денормализованного списка
// задач у файлового бэкенда нет, запись одна.
func (r *fileTaskRepository) CreateTask(_ context.Context, task *models.Task) error {
	tasks, err := r.store.loadTasks()
	if err != nil {
		return err
	}

	tasks[task.ID] = *task
	if err = r.store.saveTasks(tasks); err != nil {
		return err
	}

	log.Printf("[FileTaskRepo] Задача %s пользователя '%s' успешно создана", task.ID, task.UserEmail)
	return nil
}

// GetTaskByID находит задачу по ID.
func (r *fileTaskRepository) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	tasks, err := r.store.loadTasks()
	if err != nil {
		return nil, err
	}

	task, ok := tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}

// ListTasksByOwner возвращает задачи владельца, самые свежие первыми.
// При равных created_at порядок детерминирован за счет сравнения ID.
func (r *fileTaskRepository) ListTasksByOwner(_ context.Context, ownerEmail string) ([]models.Task, error) {
	tasks, err := r.store.loadTasks()
	if err != nil {
		return nil, err
	}

	owned := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.UserEmail == ownerEmail {
			owned = append(owned, t)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt != owned[j].CreatedAt {
			return owned[i].CreatedAt > owned[j].CreatedAt
		}
		return owned[i].ID > owned[j].ID
	})

	return owned, nil
}

// UpdateTask перезаписывает запись задачи целиком.
func (r *fileTaskRepository) UpdateTask(_ context.Context, task *models.Task) error {
	tasks, err := r.store.loadTasks()
	if err != nil {
		return err
	}

	if _, ok := tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	tasks[task.ID] = *task

	if err = r.store.saveTasks(tasks); err != nil {
		return err
	}

	log.Printf("[FileTaskRepo] Задача %s успешно обновлена", task.ID)
	return nil
}

// DeleteTask удаляет запись задачи.
func (r *fileTaskRepository) DeleteTask(_ context.Context, id, ownerEmail string) error {
	tasks, err := r.store.loadTasks()
	if err != nil {
		return err
	}

	if _, ok := tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(tasks, id)

	if err = r.store.saveTasks(tasks); err != nil {
		return err
	}

	log.Printf("[FileTaskRepo] Задача %s пользователя '%s' успешно удалена", id, ownerEmail)
	return nil
}
