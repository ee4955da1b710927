package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"todoserver/internal/models"
)

const (
	usersFileName = "users.json"
	tasksFileName = "tasks.json"

	dataFileMode = 0o644
	dataDirMode  = 0o755
)

// FileStore - файловый бэкенд хранилища: два плоских JSON-документа,
// users.json (объект, ключ - ID пользователя) и tasks.json (объект,
// ключ - ID задачи). Каждая операция читает файл целиком, правит
// структуру в памяти и перезаписывает файл.
//
// Цикл чтение-правка-запись не защищен блокировкой: параллельные записи
// могут потерять обновления друг друга. Это известное ограничение
// файлового бэкенда, оно сохранено намеренно.
type FileStore struct {
	usersPath string
	tasksPath string
}

// NewFileStore открывает файловое хранилище в каталоге dir,
// создавая каталог и пустые файлы данных, если их еще нет.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, dataDirMode); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога данных %s: %w", dir, err)
	}

	s := &FileStore{
		usersPath: filepath.Join(dir, usersFileName),
		tasksPath: filepath.Join(dir, tasksFileName),
	}

	for _, path := range []string{s.usersPath, s.tasksPath} {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if writeErr := os.WriteFile(path, []byte("{}"), dataFileMode); writeErr != nil {
				return nil, fmt.Errorf("ошибка создания файла данных %s: %w", path, writeErr)
			}
			log.Printf("[FileStore] Создан файл %s", path)
		} else if err != nil {
			return nil, fmt.Errorf("ошибка проверки файла данных %s: %w", path, err)
		} else {
			log.Printf("[FileStore] Используем существующий файл %s", path)
		}
	}

	return s, nil
}

// Ping проверяет доступность файлов данных. Используется эндпоинтом /health.
func (s *FileStore) Ping(_ context.Context) error {
	for _, path := range []string{s.usersPath, s.tasksPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("файл данных %s недоступен: %w", path, err)
		}
	}
	return nil
}

// UsersFileExists сообщает, существует ли users.json. Для эндпоинта /api/debug.
func (s *FileStore) UsersFileExists() bool {
	_, err := os.Stat(s.usersPath)
	return err == nil
}

// loadUsers читает и разбирает users.json. Отсутствующий или пустой файл
// трактуется как пустое хранилище.
func (s *FileStore) loadUsers() (map[string]models.User, error) {
	users := make(map[string]models.User)
	if err := s.loadFile(s.usersPath, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// saveUsers перезаписывает users.json целиком.
func (s *FileStore) saveUsers(users map[string]models.User) error {
	return s.saveFile(s.usersPath, users)
}

// loadTasks читает и разбирает tasks.json.
func (s *FileStore) loadTasks() (map[string]models.Task, error) {
	tasks := make(map[string]models.Task)
	if err := s.loadFile(s.tasksPath, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// saveTasks перезаписывает tasks.json целиком.
func (s *FileStore) saveTasks(tasks map[string]models.Task) error {
	return s.saveFile(s.tasksPath, tasks)
}

func (s *FileStore) loadFile(path string, target any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}
	if len(content) == 0 {
		return nil
	}
	if err = json.Unmarshal(content, target); err != nil {
		return fmt.Errorf("ошибка разбора файла %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) saveFile(path string, data any) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации данных для %s: %w", path, err)
	}
	if err = os.WriteFile(path, content, dataFileMode); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}
	return nil
}
