// Package me отдаёт текущего пользователя по токену сессии.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс чтения текущего пользователя.
type Service interface {
	Me(ctx context.Context, userID string) (*models.User, error)
}

// Handler обрабатывает GET /auth/me.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, apperr.AuthRequired("authentication required"))
		return
	}
	user, err := h.service.Me(r.Context(), id.UserID)
	if err != nil {
		log.Info("failed to load current user", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{
		"user":      user,
		"scope":     id.Type,
		"expiresAt": id.ExpiresAt,
	})
}
