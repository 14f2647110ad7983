package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, DefaultTTL)

	tests := []struct {
		name      string
		userID    string
		email     string
		role      string
		tokenType string
	}{
		{
			name:      "admin session",
			userID:    "6f1c1f7e-0000-4000-8000-000000000001",
			email:     "admin@vpn.example",
			role:      "admin",
			tokenType: TokenTypeAdmin,
		},
		{
			name:      "customer session",
			userID:    "6f1c1f7e-0000-4000-8000-000000000002",
			email:     "user@vpn.example",
			role:      "user",
			tokenType: TokenTypeUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID, tt.email, tt.role, tt.tokenType)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, tt.tokenType, claims.Type)
			assert.NotEmpty(t, claims.SessionID)
			assert.Equal(t, claims.SessionID, claims.ID)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_SessionIDsAreUnique(t *testing.T) {
	maker := NewJWTMaker("secret", DefaultTTL)

	first, err := maker.GenerateToken("u1", "u1@example.com", "user", TokenTypeUser)
	require.NoError(t, err)
	second, err := maker.GenerateToken("u1", "u1@example.com", "user", TokenTypeUser)
	require.NoError(t, err)

	c1, err := maker.ParseToken(first)
	require.NoError(t, err)
	c2, err := maker.ParseToken(second)
	require.NoError(t, err)
	assert.NotEqual(t, c1.SessionID, c2.SessionID)
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, DefaultTTL)

	validToken, err := maker.GenerateToken("u1", "u1@example.com", "user", TokenTypeUser)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: createExpiredToken(t, secretKey)},
		{name: "wrong secret key", token: createTokenWithWrongSecret(t)},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "HS384 with the same secret", token: createTokenWithMethod(t, jwt.SigningMethodHS384, []byte(secretKey))},
		{name: "alg none", token: createTokenWithMethod(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)},
		{name: "missing email claim", token: createTokenWithoutEmail(t, secretKey)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewJWTMaker("first_secret_key", DefaultTTL)
	maker2 := NewJWTMaker("different_secret_key", DefaultTTL)

	token, err := maker1.GenerateToken("u1", "admin@example.com", "admin", TokenTypeAdmin)
	require.NoError(t, err)

	claims, err := maker2.ParseToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker1.ParseToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func TestJWTMaker_TokenExpiration(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	maker := NewJWTMaker("test_secret_key", DefaultTTL, WithClock(clock.Now))

	token, err := maker.GenerateToken("u1", "u1@example.com", "user", TokenTypeUser)
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	require.NoError(t, err)

	// В пределах допуска на рассинхронизацию токен ещё принимается.
	clock.Advance(24*time.Hour + 20*time.Second)
	_, err = maker.ParseToken(token)
	require.NoError(t, err)

	clock.Advance(11 * time.Second)
	_, err = maker.ParseToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func createExpiredToken(t *testing.T, secretKey string) string {
	maker := NewJWTMaker(secretKey, -time.Hour)
	token, err := maker.GenerateToken("u1", "u1@example.com", "user", TokenTypeUser)
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewJWTMaker("wrong_secret_key", DefaultTTL)
	token, err := wrongMaker.GenerateToken("u1", "u1@example.com", "user", TokenTypeUser)
	require.NoError(t, err)
	return token
}

func createTokenWithMethod(t *testing.T, method jwt.SigningMethod, key any) string {
	claims := CustomClaims{
		UserID: "u1",
		Email:  "u1@example.com",
		Role:   "admin",
		Type:   TokenTypeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func createTokenWithoutEmail(t *testing.T, secretKey string) string {
	claims := CustomClaims{
		UserID: "u1",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	require.NoError(t, err)
	return token
}

func TestReason(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, DefaultTTL)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "expired", token: createExpiredToken(t, secretKey), want: "expired"},
		{name: "wrong secret", token: createTokenWithWrongSecret(t), want: "bad signature"},
		{name: "malformed", token: "invalid.token.here", want: "malformed"},
		{name: "missing claims", token: createTokenWithoutEmail(t, secretKey), want: "missing claims"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := maker.ParseToken(tt.token)
			require.Error(t, err)
			assert.Equal(t, tt.want, Reason(err))
		})
	}
	assert.Empty(t, Reason(nil))
}
