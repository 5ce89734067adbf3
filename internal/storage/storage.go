// storage содержит контракт слоя хранилища пользователей и его ошибки.
//
// Реализация выбирается один раз на старте процесса по явной конфигурации
// (memory для локальной разработки и тестов, postgres для остальных сред),
// а не по инспекции строки подключения в рантайме.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-webapp-starter/internal/models"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/первичный ключ).
	ErrAlreadyExists = errors.New("already exists")
)

// UserUpdate — частичное обновление пользователя.
// Обновляются только поля с ненулевыми указателями; реализация
// обязана обновить updated_at.
type UserUpdate struct {
	Email        *string
	Name         *string
	PasswordHash *string
	Role         *models.Role
}

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ListUsers возвращает всех пользователей в стабильном порядке.
	ListUsers(ctx context.Context) ([]models.User, error)
	// UpdateUser применяет частичное обновление и возвращает итоговую запись.
	UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) (*models.User, error)
	// DeleteUser удаляет пользователя.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// Storage задаёт контракт работы с хранилищем.
type Storage interface {
	UserStorage
	Close()
}
