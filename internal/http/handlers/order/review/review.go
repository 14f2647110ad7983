// Package review реализует решение администратора по заявке об оплате.
//
// accept-payment переводит заказ и платёж в verified, reject-payment отменяет
// заказ и отклоняет платёж. Оба перехода возможны только из payment_submitted.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"io"
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

// Request — необязательный комментарий администратора.
type Request struct {
	Notes  string `json:"notes,omitempty" validate:"max=1000"`
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// Service описывает интерфейс проверки платежа.
type Service interface {
	AcceptPayment(ctx context.Context, adminID, orderID, notes string) (*models.OrderDetails, error)
	RejectPayment(ctx context.Context, adminID, orderID, reason string) (*models.OrderDetails, error)
}

// Handler обрабатывает одно из решений: accept или reject.
type Handler struct {
	log      *slog.Logger
	service  Service
	accept   bool
	validate *validator.Validate
}

// NewAccept создает обработчик подтверждения оплаты.
func NewAccept(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, accept: true, validate: validator.New()}
}

// NewReject создает обработчик отклонения оплаты.
func NewReject(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Подтверждение или отклонение оплаты
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Param request body Request false "Комментарий"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Заказ не ожидает проверки"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Router /admin/orders/{id}/accept-payment [put]
// @Router /admin/orders/{id}/reject-payment [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.review"

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
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, apperr.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Invalid(w, r, err)
		return
	}

	orderID := chi.URLParam(r, "id")
	var (
		details *models.OrderDetails
		err     error
	)
	if h.accept {
		details, err = h.service.AcceptPayment(r.Context(), id.UserID, orderID, req.Notes)
	} else {
		details, err = h.service.RejectPayment(r.Context(), id.UserID, orderID, req.Reason)
	}
	if err != nil {
		log.Info("payment review failed", slog.String("order_id", orderID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, details)
}
