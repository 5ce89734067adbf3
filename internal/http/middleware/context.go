package middleware

import (
	"context"

	"github.com/pribylovaa/go-webapp-starter/internal/models"
)

type ctxKey int

const (
	// ctxRequestID — ключ сгенерированного/прокинутого X-Request-Id.
	ctxRequestID ctxKey = iota
	// ctxIdentity — ключ identity аутентифицированного субъекта.
	// Identity едет в контексте явно, запрос не мутируется.
	ctxIdentity
)

// RequestIDFrom возвращает request id запроса, если он есть в контексте.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxRequestID).(string)
	return id, ok
}

// IdentityFrom возвращает identity субъекта, если запрос аутентифицирован.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(ctxIdentity).(*models.Identity)
	return identity, ok
}
