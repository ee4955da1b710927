package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"todoserver/internal/models"
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode = "23505"
)

// postgresUserRepository реализует UserRepository поверх таблицы documents.
type postgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository создает новый экземпляр репозитория пользователей
// для документного бэкенда на PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

// userDocumentID детерминированно выводит ID документа пользователя из email.
// Email уникален, поэтому уникальность ID обеспечивается первичным ключом.
func userDocumentID(email string) string {
	return "user_" + email
}

// CreateUser создает документ нового пользователя.
// Возвращает ErrEmailTaken, если пользователь с таким email уже есть.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	created := *user
	created.ID = userDocumentID(user.Email)

	data, err := encodeUser(&created)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO documents (id, type, data) VALUES ($1, $2, $3)`
	if _, err = r.db.ExecContext(ctx, query, created.ID, docTypeUser, data); err != nil {
		// Проверяем на ошибку нарушения уникальности (duplicate key)
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Printf("[UserRepo] Ошибка создания пользователя: email '%s' уже используется", user.Email)
			return nil, ErrEmailTaken
		}
		log.Printf("[UserRepo] Непредвиденная ошибка при создании пользователя '%s': %v", user.Email, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	log.Printf("[UserRepo] Пользователь '%s' успешно создан с ID %s", created.Email, created.ID)
	return &created, nil
}

// GetUserByEmail находит пользователя по email.
func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, type, data FROM documents WHERE type=$1 AND data->>'email'=$2 LIMIT 1`
	return r.getUser(ctx, query, docTypeUser, email)
}

// GetUserByToken находит пользователя, чей сохраненный токен сессии
// совпадает с предъявленным. Пустой токен не совпадает ни с кем.
func (r *postgresUserRepository) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	query := `SELECT id, type, data FROM documents WHERE type=$1 AND data->>'session_token'=$2 LIMIT 1`
	return r.getUser(ctx, query, docTypeUser, token)
}

// getUser выполняет точечный запрос и декодирует документ пользователя.
func (r *postgresUserRepository) getUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	var doc document
	if err := r.db.GetContext(ctx, &doc, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		log.Printf("[UserRepo] Ошибка при поиске пользователя: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}
	return doc.decodeUser()
}

// UpdateSessionToken перезаписывает токен сессии в документе пользователя.
func (r *postgresUserRepository) UpdateSessionToken(ctx context.Context, userID, token string) error {
	query := `UPDATE documents
	          SET data = jsonb_set(data, '{session_token}', to_jsonb($2::text))
	          WHERE id=$1 AND type=$3`
	res, err := r.db.ExecContext(ctx, query, userID, token, docTypeUser)
	if err != nil {
		log.Printf("[UserRepo] Ошибка обновления токена сессии пользователя %s: %v", userID, err)
		return fmt.Errorf("ошибка выполнения запроса на обновление токена: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа обновленных строк: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	log.Printf("[UserRepo] Токен сессии пользователя %s обновлен", userID)
	return nil
}

// ListUsers возвращает всех пользователей, ключ - ID документа.
// Используется только диагностическими эндпоинтами.
func (r *postgresUserRepository) ListUsers(ctx context.Context) (map[string]models.User, error) {
	query := `SELECT id, type, data FROM documents WHERE type=$1`
	var docs []document
	if err := r.db.SelectContext(ctx, &docs, query, docTypeUser); err != nil {
		log.Printf("[UserRepo] Ошибка при получении списка пользователей: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователей: %w", err)
	}

	users := make(map[string]models.User, len(docs))
	for i := range docs {
		user, err := docs[i].decodeUser()
		if err != nil {
			return nil, err
		}
		users[user.ID] = *user
	}
	return users, nil
}
