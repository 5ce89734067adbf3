package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-webapp-starter/internal/models"
	"github.com/pribylovaa/go-webapp-starter/internal/pkg/log"
	"github.com/pribylovaa/go-webapp-starter/internal/storage"
)

// Входные структуры сервисного слоя.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     models.Role
}

// UpdateUserInput — частичный апдейт: обновляются только поля
// с ненулевыми указателями.
type UpdateUserInput struct {
	Email    *string
	Name     *string
	Password *string
	Role     *models.Role
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "service.users.ListUsers"

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// UserByID возвращает пользователя по идентификатору.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service.users.UserByID"

	if id == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// CreateUser создаёт пользователя с заданной ролью (административная операция).
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	const op = "service.users.CreateUser"

	lg := log.From(ctx).With("op", op)

	normEmail, err := validateEmail(input.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := validatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		Name:         name,
		Role:         role,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		lg.Error("save_user_failed", "err", err.Error())

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateUser применяет частичное обновление пользователя.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	const op = "service.users.UpdateUser"

	if id == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	update := storage.UserUpdate{}

	if input.Email != nil {
		normEmail, err := validateEmail(*input.Email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
		}
		update.Email = &normEmail
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
		update.Name = &name
	}

	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		update.PasswordHash = &hashed
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
		update.Role = input.Role
	}

	user, err := s.storage.UpdateUser(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return user, nil
}

// DeleteUser удаляет пользователя.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "service.users.DeleteUser"

	if id == uuid.Nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
