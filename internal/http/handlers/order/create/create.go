// Package create реализует HTTP-обработчик оформления заказа.
//
// Покупатель присылает строки заказа и ожидаемую сумму; цены берутся из каталога,
// поэтому расхождение суммы отклоняется как ошибка валидации.
package create

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
	"github.com/magabrotheeeer/vpn-store/internal/services/order"
)

// Service описывает интерфейс оформления заказа.
type Service interface {
	Create(ctx context.Context, actorID string, req order.CreateRequest) (*models.Order, error)
}

// Handler обрабатывает POST /orders.
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
// @Summary Оформление заказа
// @Tags Orders
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body order.CreateRequest true "Заказ"
// @Success 201 {object} response.Response "Заказ создан"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Заказ на другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Товар недоступен"
// @Router /orders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, apperr.AuthRequired("authentication required"))
		return
	}

	var req order.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, apperr.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), id.UserID, req)
	if err != nil {
		log.Info("order rejected", slog.String("user_id", id.UserID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusCreated, map[string]any{"order": created})
}
