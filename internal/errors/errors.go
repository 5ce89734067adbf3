// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку (sentinel-значения сервисного слоя,
// csrf-валидатора или собственные ошибки pipeline), а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей (ни stack trace,
//     ни внутренних путей, ни значений токенов в теле не бывает).
//
// APIError.Fields заполняется только для ошибок валидации входных полей.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-webapp-starter/internal/security/csrf"
	"github.com/pribylovaa/go-webapp-starter/internal/service"
	"github.com/pribylovaa/go-webapp-starter/internal/storage"
)

var (
	// ErrUnauthenticated — отсутствует/не разобран bearer-токен. 401.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied — субъект аутентифицирован, но роль не позволяет. 403.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrRateLimited — превышен лимит запросов. 429.
	ErrRateLimited = errors.New("rate limited")
	// ErrBadRequest — непарсибельное тело/параметры запроса. 400.
	ErrBadRequest = errors.New("bad request")
)

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
// Fields — список полевых ошибок валидации (только для 400).
type APIError struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
}

// FieldError — ошибка валидации конкретного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - известные sentinel-ошибки маппятся по таблице ниже;
//   - всё остальное — 500/internal без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return internal()
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, ErrUnauthenticated):
		return respond(http.StatusUnauthorized, "unauthenticated", "unauthenticated", nil)

	case errors.Is(err, csrf.ErrTokenInvalid):
		return respond(http.StatusForbidden, "csrf_invalid", "CSRF token validation failed", nil)

	case errors.Is(err, ErrPermissionDenied):
		return respond(http.StatusForbidden, "permission_denied", "permission denied", nil)

	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return respond(http.StatusNotFound, "not_found", "not found", nil)

	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, storage.ErrAlreadyExists):
		return respond(http.StatusConflict, "already_exists", "already exists", nil)

	case errors.Is(err, service.ErrInvalidEmail):
		return respond(http.StatusBadRequest, "invalid_argument", "invalid argument",
			[]FieldError{{Field: "email", Message: "invalid email format"}})

	case errors.Is(err, service.ErrWeakPassword):
		return respond(http.StatusBadRequest, "invalid_argument", "invalid argument",
			[]FieldError{{Field: "password", Message: "password is too weak"}})

	case errors.Is(err, service.ErrEmptyPassword):
		return respond(http.StatusBadRequest, "invalid_argument", "invalid argument",
			[]FieldError{{Field: "password", Message: "password is required"}})

	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, ErrBadRequest):
		return respond(http.StatusBadRequest, "invalid_argument", "invalid argument", nil)

	case errors.Is(err, ErrRateLimited):
		return respond(http.StatusTooManyRequests, "rate_limited", "too many requests", nil)

	case errors.Is(err, context.DeadlineExceeded):
		return respond(http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded", nil)

	default:
		return internal()
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func respond(status int, code, msg string, fields []FieldError) (int, ErrorResponse) {
	return status, ErrorResponse{Error: APIError{Code: code, Message: msg, Fields: fields}}
}

func internal() (int, ErrorResponse) {
	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{Code: "internal", Message: "internal error"},
	}
}
