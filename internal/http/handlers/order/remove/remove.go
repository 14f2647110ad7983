// Package remove реализует удаление заказа администратором.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
)

// Service описывает интерфейс удаления заказа.
type Service interface {
	Delete(ctx context.Context, adminID, orderID string) error
}

// Handler обрабатывает DELETE /admin/orders/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление заказа
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Router /admin/orders/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, apperr.AuthRequired("authentication required"))
		return
	}
	orderID := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id.UserID, orderID); err != nil {
		log.Info("failed to delete order", slog.String("order_id", orderID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"id": orderID})
}
