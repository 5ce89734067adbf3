package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-webapp-starter/internal/models"
	"github.com/pribylovaa/go-webapp-starter/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// RegisterUser регистрирует нового пользователя и выпускает access-токен.
func (s *Service) RegisterUser(ctx context.Context, email, name, password string) (*models.User, string, error) {
	const op = "service.auth.RegisterUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := validatePassword(password); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		Name:         name,
		Role:         models.RoleUser,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.issueAccessToken(ctx, user, now)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return user, token, nil
}

// LoginUser выполняет вход по email+пароль.
// Все отказы (нет пользователя, неверный пароль, битый email) дают
// единый ErrInvalidCredentials.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "service.auth.LoginUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.issueAccessToken(ctx, user, s.now())
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return user, token, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword — политика сложности: не короче 8 символов,
// минимум одна буква и одна цифра.
func validatePassword(password string) error {
	const op = "service.auth.validatePassword"

	if len(password) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len(password) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
