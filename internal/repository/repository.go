package repository

import (
	"context"
	"errors"

	"todoserver/internal/models"
)

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	// CreateUser создает пользователя и назначает ему ID по политике бэкенда
	// (последовательный номер для файла, user_<email> для документной БД).
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByToken находит пользователя по сохраненному токену сессии.
	// Пустые токены никогда не совпадают.
	GetUserByToken(ctx context.Context, token string) (*models.User, error)
	// UpdateSessionToken перезаписывает токен сессии пользователя.
	UpdateSessionToken(ctx context.Context, userID, token string) error
	// ListUsers возвращает всех пользователей, ключ - ID. Только для диагностики.
	ListUsers(ctx context.Context) (map[string]models.User, error)
}

// TaskRepository определяет методы для работы с задачами в хранилище.
type TaskRepository interface {
	// CreateTask сохраняет новую задачу. Документный бэкенд дополнительно
	// добавляет ID задачи в денормализованный список владельца.
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	// ListTasksByOwner возвращает задачи владельца, отсортированные по
	// created_at по убыванию; при равных метках - по ID по убыванию.
	ListTasksByOwner(ctx context.Context, ownerEmail string) ([]models.Task, error)
	// UpdateTask перезаписывает запись задачи целиком.
	UpdateTask(ctx context.Context, task *models.Task) error
	// DeleteTask удаляет задачу и, если у владельца есть денормализованный
	// список, убирает ID и оттуда.
	DeleteTask(ctx context.Context, id, ownerEmail string) error
}

// Кастомные ошибки репозитория.
var (
	ErrEmailTaken   = errors.New("email уже используется")
	ErrUserNotFound = errors.New("пользователь не найден")
	ErrTaskNotFound = errors.New("задача не найдена")
)
