// Package remove реализует удаление товара администратором.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
)

// Service описывает интерфейс удаления товара.
type Service interface {
	Delete(ctx context.Context, id string) error
}

// Handler обрабатывает DELETE /admin/products/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление товара
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID товара"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /admin/products/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Info("failed to delete product", slog.String("product_id", id), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"id": id})
}
