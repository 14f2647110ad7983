package security

import (
	"context"
	"sync"
	"time"
)

type attempts struct {
	count int
	first time.Time
}

// MemoryStore хранит состояние в памяти процесса.
type MemoryStore struct {
	mu       sync.Mutex
	policy   Policy
	attempts map[string]*attempts
	revoked  map[string]time.Time
	now      func() time.Time
}

// MemoryOption настраивает MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore создаёт хранилище в памяти.
func NewMemoryStore(policy Policy, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		policy:   policy.normalize(),
		attempts: make(map[string]*attempts),
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckRateLimit сообщает, можно ли сейчас пытаться войти.
func (s *MemoryStore) CheckRateLimit(_ context.Context, identifier string) (RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	a, ok := s.attempts[identifier]
	if ok && now.Sub(a.first) >= s.policy.Window {
		delete(s.attempts, identifier)
		ok = false
	}
	if !ok {
		return RateLimitResult{Allowed: true, RemainingAttempts: s.policy.MaxAttempts}, nil
	}
	if a.count >= s.policy.MaxAttempts {
		return RateLimitResult{
			Allowed:        false,
			LockoutMinutes: lockoutMinutes(a.first.Add(s.policy.Window).Sub(now)),
		}, nil
	}
	return RateLimitResult{Allowed: true, RemainingAttempts: s.policy.MaxAttempts - a.count}, nil
}

// RecordFailure учитывает неудачную попытку.
func (s *MemoryStore) RecordFailure(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	a, ok := s.attempts[identifier]
	if !ok || now.Sub(a.first) >= s.policy.Window {
		s.attempts[identifier] = &attempts{count: 1, first: now}
		return nil
	}
	a.count++
	return nil
}

// Reset сбрасывает счётчик после успешного входа.
func (s *MemoryStore) Reset(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, identifier)
	return nil
}

// Revoke добавляет токен в список отозванных до истечения токена и допуска RevocationGrace.
func (s *MemoryStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for t, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, t)
		}
	}
	s.revoked[token] = expiresAt.Add(s.policy.RevocationGrace)
	return nil
}

// IsRevoked проверяет, отозван ли токен.
func (s *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[token]
	return ok, nil
}
