package middleware

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/go-webapp-starter/internal/security/cors"
)

// CORS обслуживает кросс-доменную договорённость для API-путей:
//   - OPTIONS под apiPrefix — preflight: всегда 204 без тела, с
//     Allow-* заголовками по политике; терминальный ответ, дальше
//     pipeline не идёт (preflight не проходит ни CSRF, ни auth);
//   - остальные запросы под apiPrefix декорируются до вызова обработчика,
//     чтобы заголовки попали в фактический ответ.
//
// Пути вне apiPrefix мидлвар не трогает.
func CORS(p *cors.Policy, apiPrefix string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, apiPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")

			if r.Method == http.MethodOptions {
				p.DecoratePreflight(w.Header(), origin)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			p.Decorate(w.Header(), origin)
			next.ServeHTTP(w, r)
		})
	}
}
