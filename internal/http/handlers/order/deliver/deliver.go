// Package deliver реализует выдачу VPN-доступа по подтверждённому заказу.
package deliver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/services/order"
)

// Request — данные доступа для покупателя.
type Request struct {
	VPNCredentials order.DeliverRequest `json:"vpnCredentials"`
}

// Service описывает интерфейс выдачи доступа.
type Service interface {
	Deliver(ctx context.Context, adminID, orderID string, req order.DeliverRequest) (*models.Order, error)
}

// Handler обрабатывает PUT /admin/orders/{id}/deliver.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Выдача VPN-доступа
// @Description Возможна только для заказа в статусе verified. Письмо покупателю отправляется после записи и не влияет на результат.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Param request body Request true "Данные доступа"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Заказ не подтверждён"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Router /admin/orders/{id}/deliver [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.deliver"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, apperr.AuthRequired("authentication required"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, apperr.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Invalid(w, r, err)
		return
	}

	orderID := chi.URLParam(r, "id")
	delivered, err := h.service.Deliver(r.Context(), id.UserID, orderID, req.VPNCredentials)
	if err != nil {
		log.Info("delivery failed", slog.String("order_id", orderID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"order": delivered})
}
