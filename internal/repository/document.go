package repository

import (
	"encoding/json"
	"fmt"

	"todoserver/internal/models"
)

// Значения дискриминатора type в таблице documents.
const (
	docTypeUser = "user"
	docTypeTask = "task"
)

// document - сырая строка таблицы documents. Поле data не интерпретируется,
// пока вызывающий код явно не попросит декодировать документ в конкретную
// сущность: дискриминатор проверяется на границе хранилища, а не
// принимается на веру.
type document struct {
	ID   string `db:"id"`
	Type string `db:"type"`
	Data []byte `db:"data"`
}

// decodeUser декодирует документ как пользователя.
// Возвращает ошибку, если дискриминатор не совпадает.
func (d *document) decodeUser() (*models.User, error) {
	if d.Type != docTypeUser {
		return nil, fmt.Errorf("документ %s имеет тип %q, ожидался %q", d.ID, d.Type, docTypeUser)
	}
	var user models.User
	if err := json.Unmarshal(d.Data, &user); err != nil {
		return nil, fmt.Errorf("ошибка декодирования документа пользователя %s: %w", d.ID, err)
	}
	return &user, nil
}

// decodeTask декодирует документ как задачу.
// Возвращает ошибку, если дискриминатор не совпадает.
func (d *document) decodeTask() (*models.Task, error) {
	if d.Type != docTypeTask {
		return nil, fmt.Errorf("документ %s имеет тип %q, ожидался %q", d.ID, d.Type, docTypeTask)
	}
	var task models.Task
	if err := json.Unmarshal(d.Data, &task); err != nil {
		return nil, fmt.Errorf("ошибка декодирования документа задачи %s: %w", d.ID, err)
	}
	return &task, nil
}

// encodeUser сериализует пользователя в данные документа.
func encodeUser(user *models.User) ([]byte, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации пользователя %s: %w", user.ID, err)
	}
	return data, nil
}

// encodeTask сериализует задачу в данные документа.
func encodeTask(task *models.Task) ([]byte, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации задачи %s: %w", task.ID, err)
	}
	return data, nil
}
