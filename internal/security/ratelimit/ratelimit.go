// ratelimit — лимитер запросов с фиксированным окном на идентификатор
// клиента. Окно сбрасывается заменой записи по прошествии resetAt, а не
// плавным декрементом: всплески на границе окон не сглаживаются.
// Состояние процесс-локально; для multi-instance деплоя счётчики нужно
// выносить во внешний стор.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Result — исход проверки.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// Limiter — фиксированное окно: max запросов за window на идентификатор.
// Каждый уровень чувствительности (общий auth, строгий login) — отдельный
// экземпляр с собственными параметрами.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	max     int
	window  time.Duration

	// now подменяется в тестах.
	now func() time.Time
}

// New создаёт лимитер с заданными параметрами окна.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		entries: make(map[string]*windowEntry),
		max:     max,
		window:  window,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Check учитывает запрос от идентификатора и возвращает решение.
// Первая заявка в окне создаёт запись count=1; прошедший resetAt
// заменяет запись свежим окном вместо декремента.
func (l *Limiter) Check(id string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[id]
	if !ok || now.After(e.resetAt) {
		e = &windowEntry{count: 1, resetAt: now.Add(l.window)}
		l.entries[id] = e

		return Result{
			Allowed:   true,
			Limit:     l.max,
			Remaining: l.max - 1,
			ResetAt:   e.resetAt,
		}
	}

	e.count++
	if e.count > l.max {
		return Result{
			Allowed:    false,
			Limit:      l.max,
			Remaining:  0,
			RetryAfter: e.resetAt.Sub(now),
			ResetAt:    e.resetAt,
		}
	}

	return Result{
		Allowed:   true,
		Limit:     l.max,
		Remaining: l.max - e.count,
		ResetAt:   e.resetAt,
	}
}

// Sweep удаляет записи с истекшим окном.
func (l *Limiter) Sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, id)
		}
	}
}

// Run запускает периодическую уборку до отмены контекста.
// Живёт всё время процесса; отдельной остановки, кроме shutdown, не требует.
func (l *Limiter) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Sweep(now.UTC())
		}
	}
}

// Len — количество активных записей; для тестов.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// ClientKey выводит идентификатор клиента: первый элемент X-Forwarded-For,
// иначе host-часть RemoteAddr, иначе loopback. Заголовку можно доверять
// только за доверенным прокси, который его перезаписывает, — это
// операционное допущение, а не гарантия.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}

	return "127.0.0.1"
}
