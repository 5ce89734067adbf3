// memory — потокобезопасное хранилище пользователей в памяти процесса.
// Используется в локальном режиме (без DATABASE_URL) и как дублёр в тестах.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-webapp-starter/internal/models"
	"github.com/pribylovaa/go-webapp-starter/internal/storage"
)

type Storage struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Close — no-op; ресурс не требует освобождения.
func (s *Storage) Close() {}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)

func emailKey(email string) string { return strings.ToLower(email) }

// SaveUser создаёт нового пользователя.
func (s *Storage) SaveUser(_ context.Context, user *models.User) error {
	const op = "storage.memory.SaveUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[user.ID]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	if _, ok := s.byEmail[emailKey(user.Email)]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	s.byID[user.ID] = *user
	s.byEmail[emailKey(user.Email)] = user.ID

	return nil
}

// UserByEmail находит пользователя по email.
func (s *Storage) UserByEmail(_ context.Context, email string) (*models.User, error) {
	const op = "storage.memory.UserByEmail"

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	user := s.byID[id]
	return &user, nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.memory.UserByID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return &user, nil
}

// ListUsers возвращает пользователей, отсортированных по дате создания.
func (s *Storage) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.byID))
	for _, u := range s.byID {
		users = append(users, u)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.String() < users[j].ID.String()
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

// UpdateUser применяет частичное обновление.
func (s *Storage) UpdateUser(_ context.Context, id uuid.UUID, update storage.UserUpdate) (*models.User, error) {
	const op = "storage.memory.UpdateUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if update.Email != nil {
		newKey := emailKey(*update.Email)
		if other, taken := s.byEmail[newKey]; taken && other != id {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		delete(s.byEmail, emailKey(user.Email))
		user.Email = *update.Email
		s.byEmail[newKey] = id
	}

	if update.Name != nil {
		user.Name = *update.Name
	}

	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}

	if update.Role != nil {
		user.Role = *update.Role
	}

	user.UpdatedAt = time.Now().UTC()
	s.byID[id] = user

	return &user, nil
}

// DeleteUser удаляет пользователя.
func (s *Storage) DeleteUser(_ context.Context, id uuid.UUID) error {
	const op = "storage.memory.DeleteUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	delete(s.byEmail, emailKey(user.Email))
	delete(s.byID, id)

	return nil
}
