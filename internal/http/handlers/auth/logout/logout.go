// Package logout реализует HTTP-обработчики выхода. Выход всегда успешен:
// cookie стирается, а токен отзывается, если его удалось прочитать.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/cookies"
	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/http/response"
)

// Service описывает интерфейс отзыва токена.
type Service interface {
	Logout(ctx context.Context, token string)
}

// Handler стирает cookie сессии своей области.
type Handler struct {
	log     *slog.Logger
	service Service
	cookies cookies.Options
	cookie  string
}

// New создает обработчик выхода покупателя.
func New(log *slog.Logger, service Service, c cookies.Options) *Handler {
	return &Handler{log: log, service: service, cookies: c, cookie: middlewarectx.UserCookie}
}

// NewAdmin создает обработчик выхода администратора.
func NewAdmin(log *slog.Logger, service Service, c cookies.Options) *Handler {
	return &Handler{log: log, service: service, cookies: c, cookie: middlewarectx.AdminCookie}
}

// ServeHTTP godoc
// @Summary Выход
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия завершена"
// @Router /auth/logout [post]
// @Router /auth/admin-logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := middlewarectx.ExtractToken(r)
	if c, err := r.Cookie(h.cookie); err == nil && c.Value != "" {
		token = c.Value
	}
	h.service.Logout(r.Context(), token)
	h.cookies.Clear(w, h.cookie)

	log.Debug("session cookie cleared", slog.String("cookie", h.cookie))
	response.OK(w, r, http.StatusOK, map[string]any{"message": "logged out"})
}
