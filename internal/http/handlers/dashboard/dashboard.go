// Package dashboard отдаёт сводку для главной страницы админки.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс сборки сводки.
type Service interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

// Handler обрабатывает GET /admin/dashboard.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка админки
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard"

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.log.Error("failed to build dashboard",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, stats)
}
