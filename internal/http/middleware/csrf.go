package middleware

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-webapp-starter/internal/errors"
	"github.com/pribylovaa/go-webapp-starter/internal/security/csrf"
)

// safeMethods — методы без побочных эффектов: CSRF-проверка не нужна.
var safeMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
}

// CSRF применяет double-submit-валидацию к мутирующим запросам.
// exempt — список ТОЧНЫХ путей-исключений (login/register/health):
// префиксного сопоставления здесь сознательно нет, чтобы опечатка в
// списке не открывала посторонние пути. Новый мутирующий роут защищён
// по умолчанию (fail-closed), новое исключение добавляется только явно.
func CSRF(m *csrf.Manager, exempt map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := safeMethods[r.Method]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			var cookieValue string
			if c, err := r.Cookie(csrf.CookieName); err == nil {
				cookieValue = c.Value
			}

			token := r.Header.Get(csrf.HeaderName)

			if err := m.Validate(r.Context(), cookieValue, token); err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
