// Package jwt реализует генерацию и парсинг JWT токенов сессии.
//
// Maker определяет интерфейс для создания и проверки токенов с идентификатором
// пользователя, email, ролью и типом сессии. MakerImpl — реализация на HS256
// с секретным ключом, сроком жизни и допуском на рассинхронизацию часов.
package jwt

import (
	"time"
)

// Типы токенов: сессии покупателя и администратора не взаимозаменяемы.
const (
	TokenTypeUser  = "user"
	TokenTypeAdmin = "admin"
)

// Значения по умолчанию.
const (
	DefaultTTL    = 24 * time.Hour
	DefaultLeeway = 30 * time.Second
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken подписывает новый токен сессии.
	GenerateToken(userID, email, role, tokenType string) (string, error)
	// ParseToken проверяет подпись, алгоритм, срок и обязательные поля.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey []byte           // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration    // Время жизни токена.
	leeway    time.Duration    // Допуск на расхождение часов при проверке срока.
	now       func() time.Time // Источник времени, подменяется в тестах.
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// WithLeeway задаёт допуск на рассинхронизацию часов.
func WithLeeway(leeway time.Duration) Option {
	return func(m *MakerImpl) {
		m.leeway = leeway
	}
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) *MakerImpl {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	m := &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		leeway:    DefaultLeeway,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
