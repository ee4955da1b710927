package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"todoserver/internal/models"
)

// Тип для ключа контекста.
type contextKey string

// IdentityKey - ключ, под которым личность пользователя хранится в контексте.
const IdentityKey contextKey = "identity"

// Схема авторизации. Заголовок обязан начинаться ровно с этого префикса.
const bearerPrefix = "Bearer "

// Identity - личность, разрешенная из токена сессии. Именно она, а не
// какие-либо поля из тела запроса, определяет владельца во всех
// последующих операциях запроса.
type Identity struct {
	UserID   string
	Email    string
	Username string
}

// SessionResolver определяет зависимость middleware от сервиса аутентификации.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// Authenticator возвращает middleware, проверяющее токен сессии.
// Запрос без корректного заголовка Authorization или с неизвестным
// токеном отклоняется с кодом 401.
func Authenticator(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Println("[AuthMiddleware] Заголовок Authorization отсутствует")
				writeUnauthorized(w, "Требуется аутентификация")
				return
			}

			// Строгая проверка схемы: заголовок должен начинаться с "Bearer ".
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				log.Printf("[AuthMiddleware] Неверный формат заголовка Authorization: %s", authHeader)
				writeUnauthorized(w, "Неверный формат токена")
				return
			}

			token := strings.TrimPrefix(authHeader, bearerPrefix)
			user, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				// Любая неудача разрешения - неаутентифицированный запрос,
				// без попыток трактовать токен иначе.
				log.Printf("[AuthMiddleware] Ошибка разрешения токена сессии: %v", err)
				writeUnauthorized(w, "Невалидный токен")
				return
			}

			identity := Identity{
				UserID:   user.ID,
				Email:    user.Email,
				Username: user.Username,
			}
			ctx := context.WithValue(r.Context(), IdentityKey, identity)

			log.Printf("[AuthMiddleware] Пользователь '%s' успешно аутентифицирован", identity.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentityFromContext извлекает личность пользователя из контекста запроса.
// Возвращает личность и true, если она найдена, иначе пустую личность и false.
func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(Identity)
	return identity, ok
}

// writeUnauthorized отправляет ответ 401 в общем JSON-конверте.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	resp := models.MessageResponse{Success: false, Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[AuthMiddleware] Ошибка кодирования ответа 401: %v", err)
	}
}
