package middleware

import (
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/pribylovaa/go-webapp-starter/internal/errors"
	"github.com/pribylovaa/go-webapp-starter/internal/security/ratelimit"
)

// RateLimit — гвард на чувствительные эндпоинты: учитывает запрос в
// лимитере и либо пропускает дальше, либо отвечает 429 с Retry-After.
func RateLimit(l *ratelimit.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Check(ratelimit.ClientKey(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
				h.Set("Retry-After", strconv.Itoa(retryAfterSeconds(res.RetryAfter)))
				apierrors.WriteError(w, r, apierrors.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds округляет вверх и никогда не отдаёт меньше секунды.
func retryAfterSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}

	return s
}
