package models

// User представляет пользователя системы.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
// Тэги `json` используются для (де)сериализации JSON: этими же тэгами
// описывается формат записи в users.json и в JSONB-документе.
type User struct {
	ID       string `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	Username string `db:"username" json:"username"`
	// Хеш пароля - SHA-256 hex без соли. Схема заведомо слабая,
	// сохранена для совместимости с уже существующими записями.
	PasswordHash string `db:"password_hash" json:"password_hash"`
	// Токен текущей сессии. Перезаписывается при каждом входе,
	// поэтому активна всегда только одна сессия.
	SessionToken string `db:"session_token" json:"session_token,omitempty"`
	// Денормализованный список ID задач пользователя. Не является
	// источником истины о владении (им остается поле user_email задачи).
	// Заполняется только документным бэкендом.
	TaskIDs []string `db:"task_ids" json:"tasks,omitempty"`
}

// RegisterRequest представляет тело запроса на регистрацию.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest представляет тело запроса на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse представляет тело ответа при успешной регистрации или входе.
type AuthResponse struct {
	Success      bool   `json:"success"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	SessionToken string `json:"session_token,omitempty"`
	Message      string `json:"message"`
}

// MessageResponse представляет универсальный ответ с сообщением.
// Используется и для ошибок (success=false).
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
