// Package status реализует ручную правку статуса заказа администратором.
// Переход не проверяется; сервис пишет такую правку в лог отдельным сообщением.
package status

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
)

// Request — целевой статус.
type Request struct {
	Status string `json:"status" validate:"required,oneof=pending_payment payment_submitted verified completed cancelled"`
}

// Service описывает интерфейс правки статуса.
type Service interface {
	OverrideStatus(ctx context.Context, adminID, orderID string, status models.OrderStatus) (*models.Order, error)
}

// Handler обрабатывает PUT /admin/orders/{id}/status.
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
// @Summary Ручная правка статуса заказа
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Param request body Request true "Статус"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неизвестный статус"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Router /admin/orders/{id}/status [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.status"

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
	updated, err := h.service.OverrideStatus(r.Context(), id.UserID, orderID, models.OrderStatus(req.Status))
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"order": updated})
}
