// Package read реализует HTTP-обработчик получения заказа вместе с платежом.
package read

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
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс чтения заказа.
type Service interface {
	Get(ctx context.Context, actorID string, isAdmin bool, orderID string) (*models.OrderDetails, error)
}

// Handler обрабатывает GET /orders/{id} и GET /admin/orders/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler. Права определяются ролью из токена.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Заказ по ID
// @Tags Orders
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Router /orders/{id} [get]
// @Router /admin/orders/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.read"

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
	details, err := h.service.Get(r.Context(), id.UserID, id.IsAdmin(), orderID)
	if err != nil {
		log.Info("failed to read order", slog.String("order_id", orderID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, details)
}
