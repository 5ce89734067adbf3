// http собирает request-security pipeline и маршруты сервиса.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-webapp-starter/internal/http/handlers"
	"github.com/pribylovaa/go-webapp-starter/internal/http/middleware"
	"github.com/pribylovaa/go-webapp-starter/internal/models"
	"github.com/pribylovaa/go-webapp-starter/internal/security/cors"
	"github.com/pribylovaa/go-webapp-starter/internal/security/csrf"
	"github.com/pribylovaa/go-webapp-starter/internal/security/headers"
	"github.com/pribylovaa/go-webapp-starter/internal/security/ratelimit"
	"github.com/pribylovaa/go-webapp-starter/internal/service"
)

// APIPrefix — корень публичного REST API.
const APIPrefix = "/api"

// csrfExempt — ТОЧНЫЕ пути, освобождённые от CSRF-проверки.
// Только аутентификационные входы и liveness; любой новый мутирующий
// эндпоинт защищён по умолчанию.
var csrfExempt = map[string]struct{}{
	APIPrefix + "/auth/login":    {},
	APIPrefix + "/auth/register": {},
	APIPrefix + "/health":        {},
}

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration

	Service *service.Service
	CSRF    *csrf.Manager
	CORS    *cors.Policy
	Headers *headers.Policy

	// AuthLimiter — общий лимитер auth-эндпоинтов;
	// LoginLimiter — более строгий, только на login.
	AuthLimiter  *ratelimit.Limiter
	LoginLimiter *ratelimit.Limiter
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
//
// Порядок проверок несущий: preflight обрывается до CSRF, CSRF — до
// auth-гвардов, и только потом запрос достигает бизнес-логики. Декораторы
// (security headers, CORS) стоят снаружи, чтобы покрыть любой ответ,
// включая отказы гвардов и 500 из Recover.
func NewRouter(opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.SecurityHeaders(opts.Headers),  // защитные заголовки на каждый ответ
		middleware.Recover(),                      // безопасно ловим паники
		middleware.RequestID(),                    // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),           // request-scoped логгер в контексте
		middleware.CORS(opts.CORS, APIPrefix),     // preflight short-circuit + декорация API-ответов
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(opts.Service, opts.CSRF)

	root.Route(APIPrefix, func(api chi.Router) {
		api.Use(middleware.CSRF(opts.CSRF, csrfExempt))

		api.Get("/health", h.Health)

		// Публичные auth-эндпоинты под лимитерами.
		api.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.AuthLimiter))
			r.Post("/auth/register", h.Register)
			r.With(middleware.RateLimit(opts.LoginLimiter)).Post("/auth/login", h.Login)
		})

		// Всё остальное — только с валидным bearer-токеном.
		api.Group(func(r chi.Router) {
			r.Use(middleware.AuthBearer(opts.Service))

			r.Post("/auth/logout", h.Logout)

			r.Route("/users", func(r chi.Router) {
				admin := middleware.RequireRole(models.RoleAdmin)

				r.With(admin).Get("/", h.ListUsers)
				r.With(admin).Post("/", h.CreateUser)
				r.Get("/{id}", h.UserByID) // свой профиль или admin — решает хендлер
				r.With(admin).Put("/{id}", h.UpdateUser)
				r.With(admin).Delete("/{id}", h.DeleteUser)
			})
		})
	})

	return root
}
