package models

// DefaultCategory - категория задачи по умолчанию, если клиент ее не указал.
const DefaultCategory = "Общее"

// Task представляет задачу пользователя.
// Поле UserEmail задается один раз при создании и больше не меняется:
// по нему выполняются все проверки владения.
type Task struct {
	ID        string `db:"id" json:"id"`
	UserEmail string `db:"user_email" json:"user_email"`
	Title     string `db:"title" json:"title"`
	Category  string `db:"category" json:"category"`
	Date      string `db:"date" json:"date"`
	Time      string `db:"time" json:"time"`
	Notes     string `db:"notes" json:"notes"`
	Completed bool   `db:"completed" json:"completed"`
	// Метки времени в текстовом сортируемом виде (ISO-8601, UTC).
	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
}

// CreateTaskRequest представляет тело запроса на создание задачи.
// Поле completed намеренно отсутствует: новая задача всегда создается
// незавершенной.
type CreateTaskRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
}

// UpdateTaskRequest представляет тело запроса на частичное обновление задачи.
// Поля-указатели позволяют отличить "поле не передано" (nil, пропускаем)
// от "поле передано пустым" (перезаписываем пустым значением).
type UpdateTaskRequest struct {
	Title     *string `json:"title"`
	Category  *string `json:"category"`
	Date      *string `json:"date"`
	Time      *string `json:"time"`
	Notes     *string `json:"notes"`
	Completed *bool   `json:"completed"`
}

// TaskResponse представляет тело ответа на создание/обновление задачи.
type TaskResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id,omitempty"`
	Task    *Task  `json:"task"`
	Message string `json:"message"`
}

// TaskListResponse представляет тело ответа со списком задач.
type TaskListResponse struct {
	Success bool   `json:"success"`
	Tasks   []Task `json:"tasks"`
	Count   int    `json:"count"`
}
