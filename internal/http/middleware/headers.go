package middleware

import (
	"net/http"

	"github.com/pribylovaa/go-webapp-starter/internal/security/headers"
)

// SecurityHeaders применяет политику защитных заголовков к каждому ответу.
// Декорация откладывается до первого WriteHeader/Write, когда Content-Type
// уже выставлен: так CSP вешается только на HTML, а Cache-Control видит
// итоговый путь. Ставится самым внешним мидлваром, чтобы покрыть и ответы
// Recover/гвардов.
func SecurityHeaders(p *headers.Policy) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&headerWriter{
				ResponseWriter: w,
				policy:         p,
				path:           r.URL.Path,
			}, r)
		})
	}
}

// headerWriter декорирует заголовки ровно один раз, перед фиксацией статуса.
type headerWriter struct {
	http.ResponseWriter
	policy    *headers.Policy
	path      string
	decorated bool
}

func (w *headerWriter) WriteHeader(code int) {
	if !w.decorated {
		w.policy.Decorate(w.Header(), w.path)
		w.decorated = true
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *headerWriter) Write(p []byte) (int, error) {
	if !w.decorated {
		w.WriteHeader(http.StatusOK)
	}

	return w.ResponseWriter.Write(p)
}
