package csrf

import (
	"context"
	"sync"
	"time"
)

// MemoryStore — стор в памяти процесса под мьютексом.
// Процесс-локален: при горизонтальном масштабировании заменяется
// Redis-реализацией того же интерфейса.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore создаёт пустой стор.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}

	return &e, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, e *Entry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = *e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Sweep удаляет истекшие записи; вызывается менеджером на Issue.
func (s *MemoryStore) Sweep(_ context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if now.After(e.ExpiresAt) {
			delete(s.entries, key)
		}
	}

	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len — количество живых записей; для тестов.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
