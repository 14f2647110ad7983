package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptsPrefix = "login_attempts:"
	revokedPrefix  = "revoked_token:"
)

// RedisStore хранит счётчики и отозванные токены в redis,
// поэтому состояние общее для всех экземпляров сервиса.
type RedisStore struct {
	db     *redis.Client
	policy Policy
	now    func() time.Time
}

// NewRedisStore создаёт хранилище поверх клиента redis.
func NewRedisStore(db *redis.Client, policy Policy) *RedisStore {
	return &RedisStore{db: db, policy: policy.normalize(), now: time.Now}
}

// CheckRateLimit сообщает, можно ли сейчас пытаться войти.
func (s *RedisStore) CheckRateLimit(ctx context.Context, identifier string) (RateLimitResult, error) {
	const op = "security.RedisStore.CheckRateLimit"
	key := attemptsPrefix + identifier

	count, err := s.db.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return RateLimitResult{Allowed: true, RemainingAttempts: s.policy.MaxAttempts}, nil
	}
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if count < s.policy.MaxAttempts {
		return RateLimitResult{Allowed: true, RemainingAttempts: s.policy.MaxAttempts - count}, nil
	}

	ttl, err := s.db.TTL(ctx, key).Result()
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return RateLimitResult{Allowed: false, LockoutMinutes: lockoutMinutes(ttl)}, nil
}

// RecordFailure учитывает неудачную попытку. Окно отсчитывается от первой неудачи.
func (s *RedisStore) RecordFailure(ctx context.Context, identifier string) error {
	const op = "security.RedisStore.RecordFailure"
	key := attemptsPrefix + identifier

	count, err := s.db.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 1 {
		if err := s.db.Expire(ctx, key, s.policy.Window).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Reset сбрасывает счётчик после успешного входа.
func (s *RedisStore) Reset(ctx context.Context, identifier string) error {
	const op = "security.RedisStore.Reset"
	if err := s.db.Del(ctx, attemptsPrefix+identifier).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Revoke сохраняет отпечаток токена до истечения токена и допуска RevocationGrace.
func (s *RedisStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	const op = "security.RedisStore.Revoke"
	ttl := expiresAt.Add(s.policy.RevocationGrace).Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.db.Set(ctx, revokedPrefix+fingerprint(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsRevoked проверяет, отозван ли токен.
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "security.RedisStore.IsRevoked"
	n, err := s.db.Exists(ctx, revokedPrefix+fingerprint(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
