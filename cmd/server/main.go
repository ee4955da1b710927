package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"todoserver/internal/config"
	"todoserver/internal/handlers"
	appmiddleware "todoserver/internal/middleware"
	"todoserver/internal/repository"
	"todoserver/internal/services"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 30 * time.Second
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db            *sqlx.DB // nil для файлового бэкенда
	authService   services.AuthService
	authHandler   *handlers.AuthHandler
	taskHandler   *handlers.TaskHandler
	systemHandler *handlers.SystemHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск todo-сервера...")

	opts := parseFlags()
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	opts.applyOverrides(cfg)
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	// Инициализация зависимостей
	deps, err := setupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	// Отложенное закрытие соединения с БД
	defer func() {
		if deps.db != nil {
			if closeErr := deps.db.Close(); closeErr != nil {
				log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
			}
		}
	}()

	// Настройка роутера
	r := setupRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	log.Printf("Запуск HTTP-сервера на порту %s (хранилище: %s)...", cfg.Server.Port, cfg.Storage.Backend)

	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска HTTP-сервера: %w", err)
	}
	return nil
}

// setupDependencies инициализирует выбранный бэкенд хранилища
// и собирает все зависимости сервера.
func setupDependencies(cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}

	var (
		userRepo repository.UserRepository
		taskRepo repository.TaskRepository
		ping     func(ctx context.Context) error
	)

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := repository.NewPostgresDB(cfg.Storage.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
		}
		deps.db = db
		userRepo = repository.NewPostgresUserRepository(db)
		taskRepo = repository.NewPostgresTaskRepository(db)
		ping = db.PingContext
	case config.BackendFile:
		store, err := repository.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации файлового хранилища: %w", err)
		}
		userRepo = repository.NewFileUserRepository(store)
		taskRepo = repository.NewFileTaskRepository(store)
		ping = store.Ping
	default:
		// Validate уже отсек неизвестные бэкенды
		return nil, fmt.Errorf("неизвестный бэкенд хранилища: %q", cfg.Storage.Backend)
	}

	deps.authService = services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo)

	deps.authHandler = handlers.NewAuthHandler(deps.authService)
	deps.taskHandler = handlers.NewTaskHandler(taskService)
	deps.systemHandler = handlers.NewSystemHandler(cfg.Storage.Backend, ping, userRepo)

	return deps, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Маршруты --- //
	r.Get("/", deps.systemHandler.Home)
	r.Get("/health", deps.systemHandler.Health)

	r.Route("/api", func(r chi.Router) {
		// Публичные маршруты (регистрация, вход)
		r.Post("/register", deps.authHandler.Register)
		r.Post("/login", deps.authHandler.Login)

		// Диагностические маршруты
		r.Get("/users", deps.systemHandler.Users)
		r.Get("/debug", deps.systemHandler.Debug)

		// Приватные маршруты (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Authenticator(deps.authService))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", deps.taskHandler.List)
				r.Post("/", deps.taskHandler.Create)
				r.Put("/{taskID}", deps.taskHandler.Update)
				r.Delete("/{taskID}", deps.taskHandler.Delete)
			})
		})
	})
	return r
}
