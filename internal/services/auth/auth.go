// Package auth содержит логику регистрации, входа и проверки сессий.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/jwt"
	"github.com/magabrotheeeer/vpn-store/internal/lib/metrics"
	"github.com/magabrotheeeer/vpn-store/internal/lib/password"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/security"
	"github.com/magabrotheeeer/vpn-store/internal/storage"
)

// MinPasswordLength минимальная длина пароля при регистрации и смене.
const MinPasswordLength = 6

// Области входа: покупатель и администратор получают разные токены.
const (
	ScopeUser  = jwt.TokenTypeUser
	ScopeAdmin = jwt.TokenTypeAdmin
)

// Результаты входа для метрик.
const (
	resultSuccess            = "success"
	resultInvalidCredentials = "invalid_credentials"
	resultRateLimited        = "rate_limited"
	resultInactive           = "inactive"
	resultWrongScope         = "wrong_scope"
)

var errInvalidCredentials = apperr.AuthRequired("invalid email or password")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	// GetUserByEmail возвращает пользователя по email или storage.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	GetUser(ctx context.Context, id string) (*models.User, error)

	UpdatePassword(ctx context.Context, id, hash string) error
}

// Identity проверенная личность владельца токена.
type Identity struct {
	UserID    string
	Email     string
	Role      string
	Type      string
	ExpiresAt time.Time
}

// IsAdmin сообщает, что у владельца токена роль admin.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// Session результат успешного входа.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	log      *slog.Logger
	users    UserRepository
	jwtMaker jwt.Maker
	limiter  security.Store
	metrics  *metrics.Metrics
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(log *slog.Logger, users UserRepository, jwtMaker jwt.Maker, limiter security.Store, m *metrics.Metrics) *AuthService {
	return &AuthService{
		log:      log,
		users:    users,
		jwtMaker: jwtMaker,
		limiter:  limiter,
		metrics:  m,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится и служит ключом лимита.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает нового пользователя с хэшированием пароля и ролью "user".
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string) (*models.User, error) {
	const op = "auth.Register"

	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" {
		return nil, apperr.Validation("name and email are required")
	}
	if len(rawPassword) < MinPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	user, err := s.users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		IsActive:     true,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, apperr.Conflict("email already registered")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	return user, nil
}

// Login вход покупателя. Учётная запись администратора здесь не принимается.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Session, error) {
	return s.login(ctx, ScopeUser, email, rawPassword)
}

// AdminLogin вход администратора.
func (s *AuthService) AdminLogin(ctx context.Context, email, rawPassword string) (*Session, error) {
	return s.login(ctx, ScopeAdmin, email, rawPassword)
}

// login проверяет по порядку: лимит попыток, пользователя, пароль, активность, роль.
func (s *AuthService) login(ctx context.Context, scope, email, rawPassword string) (*Session, error) {
	const op = "auth.Login"
	log := s.log.With(slog.String("op", op), slog.String("scope", scope))

	identifier := NormalizeEmail(email)
	if identifier == "" || rawPassword == "" {
		return nil, apperr.Validation("email and password are required")
	}

	limit, err := s.limiter.CheckRateLimit(ctx, identifier)
	switch {
	case err != nil:
		log.Warn("rate limit check failed, allowing attempt", sl.Err(err))
	case !limit.Allowed:
		s.metrics.Login(scope, resultRateLimited)
		log.Info("login locked out", slog.Int("lockout_minutes", limit.LockoutMinutes))
		return nil, apperr.RateLimited(limit.LockoutMinutes)
	}

	user, err := s.users.GetUserByEmail(ctx, identifier)
	if errors.Is(err, storage.ErrNotFound) {
		s.recordFailure(ctx, log, scope, identifier)
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if !password.Matches(user.PasswordHash, rawPassword) {
		s.recordFailure(ctx, log, scope, identifier)
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		s.metrics.Login(scope, resultInactive)
		return nil, apperr.AuthRequired("account is disabled")
	}
	switch {
	case scope == ScopeUser && user.IsAdmin():
		s.metrics.Login(scope, resultWrongScope)
		return nil, apperr.Forbidden("admin accounts must use the admin login")
	case scope == ScopeAdmin && !user.IsAdmin():
		s.metrics.Login(scope, resultWrongScope)
		return nil, apperr.AdminRequired()
	}

	if err := s.limiter.Reset(ctx, identifier); err != nil {
		log.Warn("failed to reset login attempts", sl.Err(err))
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Role, scope)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.metrics.Login(scope, resultSuccess)
	log.Info("user logged in", slog.String("user_id", user.ID))
	return &Session{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, log *slog.Logger, scope, identifier string) {
	s.metrics.Login(scope, resultInvalidCredentials)
	if err := s.limiter.RecordFailure(ctx, identifier); err != nil {
		log.Warn("failed to record login failure", sl.Err(err))
	}
}

// Logout отзывает токен до истечения его собственного срока.
// Недействительный токен отзывать не нужно, ошибка хранилища только логируется.
func (s *AuthService) Logout(ctx context.Context, token string) {
	const op = "auth.Logout"
	log := s.log.With(slog.String("op", op))

	if token == "" {
		return
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		log.Debug("logout with unusable token", slog.String("reason", jwt.Reason(err)))
		return
	}
	if err := s.limiter.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		log.Warn("failed to revoke token", sl.Err(err))
		return
	}
	log.Info("session revoked", slog.String("user_id", claims.UserID))
}

// ValidateToken проверяет JWT и список отзыва.
// Любая причина отказа для вызывающего выглядит одинаково: AuthenticationRequired.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	const op = "auth.ValidateToken"
	log := s.log.With(slog.String("op", op))

	if token == "" {
		return nil, apperr.AuthRequired("authentication required")
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		log.Debug("token rejected", slog.String("reason", jwt.Reason(err)))
		return nil, apperr.AuthRequired("invalid or expired token")
	}
	revoked, err := s.limiter.IsRevoked(ctx, token)
	if err != nil {
		log.Warn("revocation check failed", sl.Err(err))
	}
	if revoked {
		log.Debug("token rejected", slog.String("reason", "revoked"))
		return nil, apperr.AuthRequired("invalid or expired token")
	}

	identity := &Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Type:   claims.Type,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Me возвращает сохранённую запись текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	const op = "auth.Me"

	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	return user, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	const op = "auth.ChangePassword"

	if len(next) < MinPasswordLength {
		return apperr.Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !password.Matches(user.PasswordHash, current) {
		return apperr.Validation("current password is incorrect")
	}
	hashed, err := password.GetHash(next)
	if err != nil {
		return apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info("password changed", slog.String("op", op), slog.String("user_id", userID))
	return nil
}

// EnsureAdmin создаёт администратора, если email ещё свободен.
// Существующая учётная запись не меняется. Возвращает true, если запись создана.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, rawPassword string) (bool, error) {
	const op = "auth.EnsureAdmin"

	email = NormalizeEmail(email)
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}
