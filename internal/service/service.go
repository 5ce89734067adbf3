// service содержит бизнес-логику webapp-starter:
// регистрацию/аутентификацию пользователей, выпуск/проверку access-токенов
// и CRUD-операции над пользователями через интерфейсы из пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Ошибки возвращаются sentinel-значениями и далее маппятся
//     HTTP-слоем в единый JSON-конверт (см. internal/errors).
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/go-webapp-starter/internal/config"
	"github.com/pribylovaa/go-webapp-starter/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// HTTP-слой: 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — access-токен некорректен по формату/подписи/сроку.
	// Единый результат для всех отказов верификации: наружу не сообщается,
	// чем именно токен плох. HTTP-слой: 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmailTaken — e-mail уже занят другим пользователем. HTTP-слой: 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidEmail — e-mail имеет некорректный формат. HTTP-слой: 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политике сложности. HTTP-слой: 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. HTTP-слой: 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrNotFound — пользователь не найден. HTTP-слой: 404.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidArgument — некорректный входной параметр. HTTP-слой: 400.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Service описывает бизнес-логику webapp-starter.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig

	// now подменяется в тестах для контроля iat/exp.
	now func() time.Time
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}
