// Package submit реализует отправку покупателем заявки об оплате заказа.
//
// Заявка принимается только для собственного заказа в статусе pending_payment.
// Номер транзакции уникален среди всех платежей: повтор отклоняется с кодом
// DuplicateTransaction до записи.
package submit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс приёма заявки об оплате.
type Service interface {
	SubmitPayment(ctx context.Context, actorID string, sub models.PaymentSubmission) (*models.Payment, error)
}

// Handler обрабатывает POST /payment/submit.
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
// @Summary Заявка об оплате
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.PaymentSubmission true "Данные перевода"
// @Success 201 {object} response.Response "Заявка принята"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или повтор номера транзакции"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Failure 409 {object} response.ErrorResponse "Оплата по заказу уже отправлена"
// @Router /payment/submit [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.submit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, apperr.AuthRequired("authentication required"))
		return
	}

	var sub models.PaymentSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, apperr.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(sub); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	payment, err := h.service.SubmitPayment(r.Context(), id.UserID, sub)
	if err != nil {
		log.Info("payment rejected", slog.String("order_id", sub.OrderID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusCreated, map[string]any{
		"paymentId": payment.ID,
		"payment":   payment,
	})
}
