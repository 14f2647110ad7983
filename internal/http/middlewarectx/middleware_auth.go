// Package middlewarectx содержит HTTP middleware для проверки сессий,
// режима обслуживания и ограничения частоты запросов.
//
// RequireAuth и RequireAdmin извлекают токен из заголовка Authorization или
// cookie сессии, проверяют его и кладут личность владельца в контекст запроса.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/services/auth"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// IdentityKey — ключ для проверенной личности в контексте.
	IdentityKey Key = "identity"
	// TokenKey — ключ для исходного токена в контексте.
	TokenKey Key = "token"
)

// Имена cookie сессий.
const (
	AdminCookie  = "admin_token"
	UserCookie   = "user_token"
	LegacyCookie = "token"
)

// TokenValidator описывает интерфейс сервиса для проверки токена.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.Identity, error)
}

// ExtractToken возвращает токен запроса. Заголовок Authorization важнее cookie,
// среди cookie admin_token важнее user_token, а тот важнее token.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); token != "" {
			return token
		}
	}
	for _, name := range []string{AdminCookie, UserCookie, LegacyCookie} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// IdentityFrom возвращает личность, положенную в контекст RequireAuth.
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*auth.Identity)
	return id, ok && id != nil
}

// TokenFrom возвращает токен, по которому прошла проверка.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(TokenKey).(string)
	return token
}

// WithIdentity кладёт личность и токен в контекст.
func WithIdentity(ctx context.Context, id *auth.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, IdentityKey, id)
	return context.WithValue(ctx, TokenKey, token)
}

// RequireAuth пропускает запрос только с действительным токеном.
func RequireAuth(log *slog.Logger, v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, token, ok := authenticate(log, v, w, r)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id, token)))
		})
	}
}

// RequireAdmin пропускает запрос только с действительным токеном роли admin.
// Без токена ответ 401, с токеном покупателя 403.
func RequireAdmin(log *slog.Logger, v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, token, ok := authenticate(log, v, w, r)
			if !ok {
				return
			}
			if !id.IsAdmin() {
				log.Warn("admin route denied",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("user_id", id.UserID),
					slog.String("path", r.URL.Path),
				)
				response.Fail(w, r, apperr.AdminRequired())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id, token)))
		})
	}
}

func authenticate(log *slog.Logger, v TokenValidator, w http.ResponseWriter, r *http.Request) (*auth.Identity, string, bool) {
	const op = "middlewarectx.authenticate"
	log = log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := ExtractToken(r)
	if token == "" {
		log.Debug("missing token")
		response.Fail(w, r, apperr.AuthRequired("authentication required"))
		return nil, "", false
	}
	id, err := v.ValidateToken(r.Context(), token)
	if err != nil {
		log.Debug("token rejected")
		if !apperr.Is(err, apperr.KindAuthRequired) {
			err = apperr.AuthRequired("invalid or expired token")
		}
		response.Fail(w, r, err)
		return nil, "", false
	}
	return id, token, true
}
