// Package list реализует список пользователей в админке с поиском по имени и email.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/query"
	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс выборки пользователей.
type Service interface {
	List(ctx context.Context, search string, p models.Pagination) (*models.UserPage, error)
}

// Handler обрабатывает GET /admin/users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param search query string false "Поиск по имени и email"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

	p, err := query.Pagination(r)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	page, err := h.service.List(r.Context(), query.String(r, "search"), p)
	if err != nil {
		h.log.Error("failed to list users",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, page)
}
