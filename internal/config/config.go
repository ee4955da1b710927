package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Имена бэкендов хранилища.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Значения по умолчанию.
const (
	defaultPort    = "8000"
	defaultBackend = BackendFile
	defaultDataDir = "data"
)

// Переменные окружения.
const (
	envServerPort  = "SERVER_PORT"
	envStorage     = "STORAGE_BACKEND"
	envDataDir     = "DATA_DIR"
	envDatabaseDSN = "DATABASE_DSN"
)

// Config хранит конфигурацию сервера.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Storage struct {
		// Backend выбирает бэкенд хранилища: file или postgres.
		Backend string `yaml:"backend"`
		// DataDir - каталог с users.json/tasks.json файлового бэкенда.
		DataDir string `yaml:"data_dir"`
		// DatabaseDSN - строка подключения документного бэкенда.
		DatabaseDSN string `yaml:"database_dsn"`
	} `yaml:"storage"`
}

// Load собирает конфигурацию: .env (если есть) -> yaml-файл (если указан
// и существует) -> переменные окружения -> значения по умолчанию.
// Плейсхолдеры вида ${VAR} в yaml-файле заменяются значениями окружения.
func Load(path string) (*Config, error) {
	// .env подхватываем по возможности, его отсутствие - не ошибка
	_ = godotenv.Load()

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Файл конфигурации необязателен
		case err != nil:
			return nil, fmt.Errorf("ошибка чтения файла конфигурации %s: %w", path, err)
		default:
			content := substituteEnv(string(data))
			if err = yaml.Unmarshal([]byte(content), cfg); err != nil {
				return nil, fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
			}
		}
	}

	// Переменные окружения имеют приоритет над yaml
	if v := os.Getenv(envServerPort); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv(envStorage); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv(envDataDir); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv(envDatabaseDSN); v != "" {
		cfg.Storage.DatabaseDSN = v
	}

	// Значения по умолчанию
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaultBackend
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defaultDataDir
	}

	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		// Каталог данных создается при старте, проверять нечего
	case BackendPostgres:
		if c.Storage.DatabaseDSN == "" {
			return errors.New("для бэкенда postgres не указана строка подключения " +
				"(storage.database_dsn, --database-dsn или " + envDatabaseDSN + ")")
		}
	default:
		return fmt.Errorf("неизвестный бэкенд хранилища: %q (ожидается %s или %s)",
			c.Storage.Backend, BackendFile, BackendPostgres)
	}
	return nil
}

// substituteEnv заменяет плейсхолдеры ${VAR} значениями переменных окружения.
func substituteEnv(content string) string {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}
	return content
}
