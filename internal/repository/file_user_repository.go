package repository

import (
	"context"
	"log"
	"strconv"

	"todoserver/internal/models"
)

// fileUserRepository реализует UserRepository поверх users.json.
type fileUserRepository struct {
	store *FileStore
}

// NewFileUserRepository создает репозиторий пользователей для файлового бэкенда.
func NewFileUserRepository(store *FileStore) UserRepository {
	return &fileUserRepository{store: store}
}

// CreateUser добавляет пользователя в users.json.
// ID - последовательный номер: количество записей плюс один.
// Пользователи никогда не удаляются, поэтому номера не переиспользуются.
func (r *fileUserRepository) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	users, err := r.store.loadUsers()
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Email == user.Email {
			log.Printf("[FileUserRepo] Ошибка создания пользователя: email '%s' уже используется", user.Email)
			return nil, ErrEmailTaken
		}
	}

	created := *user
	created.ID = strconv.Itoa(len(users) + 1)
	// Денормализованный список задач ведет только документный бэкенд.
	created.TaskIDs = nil
	users[created.ID] = created

	if err = r.store.saveUsers(users); err != nil {
		return nil, err
	}

	log.Printf("[FileUserRepo] Пользователь '%s' успешно создан с ID %s", created.Email, created.ID)
	return &created, nil
}

// GetUserByEmail находит пользователя по email линейным проходом по файлу.
func (r *fileUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	users, err := r.store.loadUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetUserByToken находит пользователя по сохраненному токену сессии.
// Пустые токены не совпадают: токен никогда не интерпретируется как email.
func (r *fileUserRepository) GetUserByToken(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	users, err := r.store.loadUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.SessionToken != "" && u.SessionToken == token {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// UpdateSessionToken перезаписывает токен сессии пользователя.
func (r *fileUserRepository) UpdateSessionToken(_ context.Context, userID, token string) error {
	users, err := r.store.loadUsers()
	if err != nil {
		return err
	}

	user, ok := users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.SessionToken = token
	users[userID] = user

	if err = r.store.saveUsers(users); err != nil {
		return err
	}

	log.Printf("[FileUserRepo] Токен сессии пользователя %s обновлен", userID)
	return nil
}

// ListUsers возвращает содержимое users.json как есть.
func (r *fileUserRepository) ListUsers(_ context.Context) (map[string]models.User, error) {
	return r.store.loadUsers()
}
