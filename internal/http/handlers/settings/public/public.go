// Package public отдаёт публичную часть настроек сайта: без номеров счетов
// и телефонов способов оплаты.
package public

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс чтения публичных настроек.
type Service interface {
	Public(ctx context.Context) (*models.PublicSettings, error)
}

// Handler обрабатывает GET /settings.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Публичные настройки сайта
// @Tags Settings
// @Produce  json
// @Success 200 {object} response.Response
// @Router /settings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.public"

	s, err := h.service.Public(r.Context())
	if err != nil {
		h.log.Error("failed to load settings",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, s)
}
