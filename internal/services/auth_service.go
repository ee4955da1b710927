package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"

	"github.com/google/uuid"

	"todoserver/internal/models"
	"todoserver/internal/repository"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	// Register создает пользователя и сразу выдает ему токен сессии.
	Register(ctx context.Context, email, password, username string) (*models.User, error)
	// Login проверяет учетные данные и выдает новый токен сессии.
	Login(ctx context.Context, email, password string) (*models.User, error)
	// ResolveSession находит пользователя по предъявленному токену.
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo repository.UserRepository // Зависимость от репозитория пользователей
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// hashPassword возвращает SHA-256 hex-хеш пароля.
// Без соли и без итераций - схема заведомо слабая, но она зафиксирована
// форматом уже сохраненных хешей и потому не меняется.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Register регистрирует нового пользователя и сразу открывает ему сессию.
func (s *authService) Register(ctx context.Context, email, password, username string) (*models.User, error) {
	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashPassword(password),
	}

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			log.Printf("[AuthService] Попытка регистрации с занятым email: %s", email)
			return nil, ErrEmailTaken
		}
		log.Printf("[AuthService] Непредвиденная ошибка репозитория при регистрации '%s': %v", email, err)
		return nil, err
	}

	if err = s.issueSession(ctx, created); err != nil {
		return nil, err
	}

	log.Printf("[AuthService] Пользователь '%s' успешно зарегистрирован (ID %s)", email, created.ID)
	return created, nil
}

// Login аутентифицирует пользователя и выдает новый токен сессии.
// Прежний токен перезаписывается: вход с другого устройства
// завершает предыдущую сессию.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService] Попытка входа несуществующего пользователя: %s", email)
			return nil, ErrUserNotFound
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске '%s': %v", email, err)
		return nil, err
	}

	// Прямое сравнение строк хешей, не в постоянном времени.
	// Сохранено как есть, чтобы не менять семантику принятия пароля.
	if hashPassword(password) != user.PasswordHash {
		log.Printf("[AuthService] Неверный пароль для пользователя: %s", email)
		return nil, ErrInvalidPassword
	}

	if err = s.issueSession(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[AuthService] Пользователь '%s' успешно аутентифицирован", email)
	return user, nil
}

// ResolveSession находит пользователя, чей сохраненный токен равен
// предъявленному. Любая неудача - неаутентифицированный запрос:
// токен никогда не трактуется как email или иной идентификатор.
func (s *authService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService] Предъявлен неизвестный токен сессии")
			return nil, ErrInvalidToken
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске по токену: %v", err)
		return nil, err
	}

	return user, nil
}

// issueSession генерирует новый случайный токен и сохраняет его
// в записи пользователя, перезаписывая прежний.
func (s *authService) issueSession(ctx context.Context, user *models.User) error {
	token := uuid.NewString()
	if err := s.userRepo.UpdateSessionToken(ctx, user.ID, token); err != nil {
		log.Printf("[AuthService] Ошибка сохранения токена сессии для '%s': %v", user.Email, err)
		return err
	}
	user.SessionToken = token
	return nil
}

// Кастомные ошибки сервиса.
var (
	ErrEmailTaken      = errors.New("email уже используется")
	ErrUserNotFound    = errors.New("пользователь не найден")
	ErrInvalidPassword = errors.New("неверный пароль")
	ErrInvalidToken    = errors.New("невалидный токен сессии")
)
