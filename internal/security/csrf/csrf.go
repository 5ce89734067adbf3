// csrf реализует защиту от подделки межсайтовых запросов по схеме
// double-submit cookie: секрет выдаётся парой (token для заголовка,
// cookie как ключ серверного стора), и мутирующий запрос валиден, только
// если cookie-ключ находит живую запись с точно тем же token.
//
// Известное ограничение (осознанное, не чинится молча): записи стора не
// привязаны к subject access-токена — любая живая пара (cookie, token)
// взаимозаменяема между сессиями. Привязку к subject нужно добавлять
// на уровне Entry, если потребуется более строгая модель.
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

const (
	// CookieName — имя HTTP-only cookie с ключом стора.
	CookieName = "csrf-token"
	// HeaderName — заголовок, в котором клиент возвращает token.
	HeaderName = "X-CSRF-Token"
)

// ErrTokenInvalid — единый отказ валидации: запись отсутствует, истекла
// или token не совпал. Причина наружу не сообщается.
var ErrTokenInvalid = errors.New("csrf token invalid")

// Entry — серверная часть пары: token и срок жизни.
type Entry struct {
	Token     string
	ExpiresAt time.Time
}

// Store — контракт хранилища CSRF-записей: cookie-значение -> Entry.
// Реализации обязаны быть потокобезопасными: проверка-потом-запись по
// одному ключу конкурентна между запросами.
type Store interface {
	// Get возвращает запись и признак её наличия.
	Get(ctx context.Context, key string) (*Entry, bool, error)
	// Set сохраняет запись с TTL.
	Set(ctx context.Context, key string, e *Entry, ttl time.Duration) error
	// Delete удаляет запись.
	Delete(ctx context.Context, key string) error
	// Sweep удаляет записи, истекшие к моменту now.
	Sweep(ctx context.Context, now time.Time) error
	// Close освобождает ресурсы стора.
	Close() error
}

// Manager выпускает, валидирует и отзывает CSRF-пары поверх Store.
type Manager struct {
	store Store
	ttl   time.Duration

	// now подменяется в тестах.
	now func() time.Time
}

// NewManager создаёт менеджер с заданным TTL записей.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// TTL возвращает срок жизни выдаваемых пар.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue генерирует новую пару (token, cookie) и сохраняет её в сторе.
// Попутно выметает истекшие записи — амортизированная уборка, точной
// TTL-гарантии от неё не требуется.
func (m *Manager) Issue(ctx context.Context) (token, cookie string, err error) {
	const op = "csrf.Issue"

	token, err = randomValue()
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	cookie, err = randomValue()
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	now := m.now()
	_ = m.store.Sweep(ctx, now)

	entry := &Entry{
		Token:     token,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Set(ctx, cookie, entry, m.ttl); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return token, cookie, nil
}

// Validate проверяет пару: cookie-ключ должен находить живую запись,
// token — побайтово совпадать со хранимым.
func (m *Manager) Validate(ctx context.Context, cookie, token string) error {
	const op = "csrf.Validate"

	if cookie == "" || token == "" {
		return fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	entry, ok, err := m.store.Get(ctx, cookie)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !ok || entry == nil {
		return fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	if m.now().After(entry.ExpiresAt) {
		return fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	if subtle.ConstantTimeCompare([]byte(entry.Token), []byte(token)) != 1 {
		return fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	return nil
}

// Revoke удаляет запись стора; используется на logout.
func (m *Manager) Revoke(ctx context.Context, cookie string) error {
	const op = "csrf.Revoke"

	if cookie == "" {
		return nil
	}

	if err := m.store.Delete(ctx, cookie); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// randomValue — 32 криптослучайных байта в base64url без набивки.
func randomValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
