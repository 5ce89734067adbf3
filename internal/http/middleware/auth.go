package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/go-webapp-starter/internal/errors"
	"github.com/pribylovaa/go-webapp-starter/internal/models"
)

// TokenVerifier проверяет access-токен и возвращает identity субъекта.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, accessToken string) (*models.Identity, error)
}

// AuthBearer извлекает Bearer-токен из Authorization, верифицирует его и
// кладёт identity в контекст. Запрос без валидного токена обрывается 401;
// причина отказа (нет токена/битая подпись/истёк) наружу не различается.
func AuthBearer(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
				return
			}

			identity, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает только субъектов с заданной ролью.
// Вешается после AuthBearer.
func RequireRole(role models.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
				return
			}

			if identity.Role != role {
				apierrors.WriteError(w, r, apierrors.ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) || len(auth) <= len(prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}
