package repository

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL, импортируем для регистрации
)

const (
	maxOpenConns    = 25              // Максимальное количество открытых соединений
	maxIdleConns    = 25              // Максимальное количество простаивающих соединений
	connMaxLifetime = 5 * time.Minute // Максимальное время жизни соединения
	connMaxIdleTime = 5 * time.Minute // Максимальное время простоя соединения
)

// Схема документного хранилища: одна таблица, один JSONB-документ на сущность,
// дискриминатор type различает пользователей и задачи. Индексы-выражения
// покрывают точечные запросы по email, токену сессии и владельцу задачи.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id   TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		data JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_email ON documents (type, (data->>'email'))`,
	`CREATE INDEX IF NOT EXISTS idx_documents_session_token ON documents (type, (data->>'session_token'))`,
	`CREATE INDEX IF NOT EXISTS idx_documents_user_email ON documents (type, (data->>'user_email'))`,
}

// NewPostgresDB создает и возвращает новое подключение к PostgreSQL,
// создавая при необходимости таблицу документов.
func NewPostgresDB(dsn string) (*sqlx.DB, error) {
	log.Printf("Подключение к PostgreSQL...")

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Проверка соединения
	if err = db.Ping(); err != nil {
		// Закрываем соединение в случае ошибки пинга
		closeErr := db.Close()
		if closeErr != nil {
			log.Printf("Ошибка закрытия соединения с БД после неудачного пинга: %v", closeErr)
		}
		return nil, fmt.Errorf("ошибка проверки соединения с БД (ping): %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	// Инициализация схемы документов
	for _, stmt := range schemaStatements {
		if _, err = db.Exec(stmt); err != nil {
			closeErr := db.Close()
			if closeErr != nil {
				log.Printf("Ошибка закрытия соединения с БД после неудачной инициализации схемы: %v", closeErr)
			}
			return nil, fmt.Errorf("ошибка инициализации схемы документов: %w", err)
		}
	}

	log.Println("Подключение к PostgreSQL успешно установлено.")
	return db, nil
}
