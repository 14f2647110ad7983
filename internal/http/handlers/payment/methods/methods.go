// Package methods отдаёт авторизованному покупателю реквизиты включённых способов оплаты.
package methods

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс чтения способов оплаты.
type Service interface {
	ActivePaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
}

// Handler обрабатывает GET /payment-methods.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Реквизиты для оплаты
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /payment-methods [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.methods"

	methods, err := h.service.ActivePaymentMethods(r.Context())
	if err != nil {
		h.log.Error("failed to load payment methods",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"paymentMethods": methods})
}
