package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMissingClaims возвращается, если в токене нет userId, email или role.
var ErrMissingClaims = errors.New("token is missing required claims")

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserID               string `json:"userId"`
	Email                string `json:"email"`
	Role                 string `json:"role"`
	Type                 string `json:"type"`
	SessionID            string `json:"sessionId"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt, ID (= SessionID)
}

// GenerateToken создает JWT токен сессии, подписывая его секретным ключом по HS256.
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(userID, email, role, tokenType string) (string, error) {
	const op = "jwt.GenerateToken"
	now := j.now()
	sessionID := uuid.NewString()
	claims := CustomClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		Type:      tokenType,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает CustomClaims с данными, если токен корректен.
//
// Принимается только HS256: токены с любым другим алгоритмом (в том числе none)
// отклоняются до проверки подписи.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(j.leeway),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.UserID == "" || claims.Email == "" || claims.Role == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingClaims)
	}
	return claims, nil
}

// Reason кратко описывает причину отказа в токене для журналов.
// Клиенту причина не сообщается.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad signature"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unexpected signing method"
	case errors.Is(err, ErrMissingClaims):
		return "missing claims"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
