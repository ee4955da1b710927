package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"todoserver/internal/models"
)

// postgresTaskRepository реализует TaskRepository поверх таблицы documents.
type postgresTaskRepository struct {
	db *sqlx.DB
}

// NewPostgresTaskRepository создает новый экземпляр репозитория задач
// для документного бэкенда на PostgreSQL.
func NewPostgresTaskRepository(db *sqlx.DB) TaskRepository {
	return &postgresTaskRepository{db: db}
}

// CreateTask сохраняет документ задачи и дописывает ее ID в денормализованный
// список задач владельца. Операции не связаны транзакцией: падение между ними
// оставит список неполным, источником истины остается поле user_email задачи.
func (r *postgresTaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	data, err := encodeTask(task)
	if err != nil {
		return err
	}

	query := `INSERT INTO documents (id, type, data) VALUES ($1, $2, $3)`
	if _, err = r.db.ExecContext(ctx, query, task.ID, docTypeTask, data); err != nil {
		log.Printf("[TaskRepo] Ошибка создания задачи %s: %v", task.ID, err)
		return fmt.Errorf("ошибка выполнения запроса на создание задачи: %w", err)
	}

	refQuery := `UPDATE documents
	             SET data = jsonb_set(data, '{tasks}', coalesce(data->'tasks', '[]'::jsonb) || to_jsonb($2::text))
	             WHERE id=$1 AND type=$3`
	if _, err = r.db.ExecContext(ctx, refQuery, userDocumentID(task.UserEmail), task.ID, docTypeUser); err != nil {
		log.Printf("[TaskRepo] Ошибка добавления задачи %s в список пользователя '%s': %v",
			task.ID, task.UserEmail, err)
		return fmt.Errorf("ошибка обновления списка задач пользователя: %w", err)
	}

	log.Printf("[TaskRepo] Задача %s пользователя '%s' успешно создана", task.ID, task.UserEmail)
	return nil
}

// GetTaskByID находит задачу по ID.
func (r *postgresTaskRepository) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT id, type, data FROM documents WHERE id=$1 AND type=$2`
	var doc document
	if err := r.db.GetContext(ctx, &doc, query, id, docTypeTask); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		log.Printf("[TaskRepo] Ошибка при поиске задачи %s: %v", id, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение задачи: %w", err)
	}
	return doc.decodeTask()
}

// ListTasksByOwner возвращает задачи владельца, самые свежие первыми.
// При равных created_at порядок детерминирован за счет сортировки по ID.
func (r *postgresTaskRepository) ListTasksByOwner(ctx context.Context, ownerEmail string) ([]models.Task, error) {
	query := `SELECT id, type, data FROM documents
	          WHERE type=$1 AND data->>'user_email'=$2
	          ORDER BY data->>'created_at' DESC, id DESC`
	var docs []document
	if err := r.db.SelectContext(ctx, &docs, query, docTypeTask, ownerEmail); err != nil {
		log.Printf("[TaskRepo] Ошибка при получении задач пользователя '%s': %v", ownerEmail, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение задач: %w", err)
	}

	tasks := make([]models.Task, 0, len(docs))
	for i := range docs {
		task, err := docs[i].decodeTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// UpdateTask перезаписывает документ задачи целиком.
func (r *postgresTaskRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	data, err := encodeTask(task)
	if err != nil {
		return err
	}

	query := `UPDATE documents SET data=$2 WHERE id=$1 AND type=$3`
	res, err := r.db.ExecContext(ctx, query, task.ID, data, docTypeTask)
	if err != nil {
		log.Printf("[TaskRepo] Ошибка обновления задачи %s: %v", task.ID, err)
		return fmt.Errorf("ошибка выполнения запроса на обновление задачи: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа обновленных строк: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	log.Printf("[TaskRepo] Задача %s успешно обновлена", task.ID)
	return nil
}

// DeleteTask удаляет документ задачи и убирает ее ID из денормализованного
// списка владельца.
func (r *postgresTaskRepository) DeleteTask(ctx context.Context, id, ownerEmail string) error {
	query := `DELETE FROM documents WHERE id=$1 AND type=$2`
	res, err := r.db.ExecContext(ctx, query, id, docTypeTask)
	if err != nil {
		log.Printf("[TaskRepo] Ошибка удаления задачи %s: %v", id, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление задачи: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа удаленных строк: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	refQuery := `UPDATE documents
	             SET data = jsonb_set(data, '{tasks}',
	                 (SELECT coalesce(jsonb_agg(el), '[]'::jsonb)
	                  FROM jsonb_array_elements_text(coalesce(data->'tasks', '[]'::jsonb)) AS el
	                  WHERE el <> $2))
	             WHERE id=$1 AND type=$3`
	if _, err = r.db.ExecContext(ctx, refQuery, userDocumentID(ownerEmail), id, docTypeUser); err != nil {
		log.Printf("[TaskRepo] Ошибка удаления задачи %s из списка пользователя '%s': %v", id, ownerEmail, err)
		return fmt.Errorf("ошибка обновления списка задач пользователя: %w", err)
	}

	log.Printf("[TaskRepo] Задача %s пользователя '%s' успешно удалена", id, ownerEmail)
	return nil
}
