// Package read реализует HTTP-обработчик получения товара по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс чтения товара.
type Service interface {
	Get(ctx context.Context, id string, includeInactive bool) (*models.Product, error)
}

// Handler обрабатывает запросы на получение товара.
type Handler struct {
	log             *slog.Logger
	service         Service
	includeInactive bool
}

// New создает публичный обработчик: неактивный товар отдаётся как 404.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// NewAdmin создает обработчик, который отдаёт и неактивные товары.
func NewAdmin(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, includeInactive: true}
}

// ServeHTTP godoc
// @Summary Товар по ID
// @Tags Products
// @Produce  json
// @Param id path string true "ID товара"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /products/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	product, err := h.service.Get(r.Context(), id, h.includeInactive)
	if err != nil {
		log.Info("failed to read product", slog.String("product_id", id), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"product": product})
}
