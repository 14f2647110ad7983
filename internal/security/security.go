// Package security хранит состояние защиты входа: счётчики неудачных попыток
// и список отозванных токенов.
//
// MemoryStore живёт внутри процесса: при нескольких экземплярах сервиса у каждого
// свои счётчики и свой список отзыва, а перезапуск их очищает. Для общего
// состояния используется RedisStore с тем же контрактом.
package security

import (
	"context"
	"math"
	"time"
)

// Политика по умолчанию: пять неудач за 15 минут.
const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// DefaultRevocationGrace совпадает с допуском проверки срока JWT.
const DefaultRevocationGrace = 30 * time.Second

// RateLimitResult результат проверки лимита попыток входа.
type RateLimitResult struct {
	Allowed           bool
	RemainingAttempts int
	LockoutMinutes    int
}

// Store интерфейс хранилища лимитов и отзыва токенов.
type Store interface {
	CheckRateLimit(ctx context.Context, identifier string) (RateLimitResult, error)
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Policy параметры лимита.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
	// RevocationGrace сколько отзыв держится после истечения токена.
	// Должен быть не меньше допуска, с которым проверяется срок токена.
	RevocationGrace time.Duration
}

func (p Policy) normalize() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	if p.RevocationGrace <= 0 {
		p.RevocationGrace = DefaultRevocationGrace
	}
	return p
}

// lockoutMinutes округляет оставшееся время блокировки вверх до минуты.
func lockoutMinutes(remaining time.Duration) int {
	if remaining <= 0 {
		return 1
	}
	return int(math.Ceil(remaining.Minutes()))
}
