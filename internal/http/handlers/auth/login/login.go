// Package login реализует HTTP-обработчики входа покупателя и администратора.
//
// Обе точки входа принимают одинаковое тело, но выдают токены разных типов и
// кладут их в разные cookie, чтобы сессии покупателя и администратора
// не путались в одном браузере.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/vpn-store/internal/http/cookies"
	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/services/auth"
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	AdminLogin(ctx context.Context, email, password string) (*auth.Session, error)
}

// Handler обрабатывает вход в одной из областей: user или admin.
type Handler struct {
	log      *slog.Logger
	service  Service
	cookies  cookies.Options
	scope    string
	validate *validator.Validate
}

// New создает обработчик входа покупателя.
func New(log *slog.Logger, service Service, c cookies.Options) *Handler {
	return &Handler{log: log, service: service, cookies: c, scope: auth.ScopeUser, validate: validator.New()}
}

// NewAdmin создает обработчик входа администратора.
func NewAdmin(log *slog.Logger, service Service, c cookies.Options) *Handler {
	return &Handler{log: log, service: service, cookies: c, scope: auth.ScopeAdmin, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Вход покупателя или администратора
// @Description Проверяет email и пароль, выставляет cookie сессии и возвращает токен.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.Response "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Неподходящая область входа"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Router /auth/login [post]
// @Router /auth/admin-login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("scope", h.scope),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, apperr.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	login, cookie := h.service.Login, middlewarectx.UserCookie
	if h.scope == auth.ScopeAdmin {
		login, cookie = h.service.AdminLogin, middlewarectx.AdminCookie
	}
	session, err := login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	h.cookies.Set(w, cookie, session.Token, session.ExpiresAt)
	response.OK(w, r, http.StatusOK, map[string]any{
		"user":      session.User,
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
	})
}
