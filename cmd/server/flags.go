package main

import (
	"flag"

	"todoserver/internal/config"
)

// options хранит значения флагов командной строки.
// Непустой флаг имеет приоритет над yaml-файлом и переменными окружения.
type options struct {
	ConfigPath  string
	Port        string
	Storage     string
	DataDir     string
	DatabaseDSN string
}

// parseFlags разбирает флаги командной строки.
func parseFlags() *options {
	opts := &options{}

	flag.StringVar(&opts.ConfigPath, "config", "config.yaml",
		"Путь к yaml-файлу конфигурации (необязателен)")
	flag.StringVar(&opts.Port, "port", "",
		"Порт HTTP-сервера (env: SERVER_PORT, default: 8000)")
	flag.StringVar(&opts.Storage, "storage", "",
		"Бэкенд хранилища: file или postgres (env: STORAGE_BACKEND, default: file)")
	flag.StringVar(&opts.DataDir, "data-dir", "",
		"Каталог данных файлового бэкенда (env: DATA_DIR, default: data)")
	flag.StringVar(&opts.DatabaseDSN, "database-dsn", "",
		"Строка подключения к PostgreSQL (env: DATABASE_DSN)")

	flag.Parse()
	return opts
}

// applyOverrides накладывает непустые значения флагов на конфигурацию.
func (o *options) applyOverrides(cfg *config.Config) {
	if o.Port != "" {
		cfg.Server.Port = o.Port
	}
	if o.Storage != "" {
		cfg.Storage.Backend = o.Storage
	}
	if o.DataDir != "" {
		cfg.Storage.DataDir = o.DataDir
	}
	if o.DatabaseDSN != "" {
		cfg.Storage.DatabaseDSN = o.DatabaseDSN
	}
}
