// Package list реализует HTTP-обработчики списка заказов.
//
// Покупатель видит только свои заказы, администратор — все, с фильтром по статусу.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/http/query"
	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/services/order"
)

// Service описывает интерфейс выборки заказов.
type Service interface {
	List(ctx context.Context, q order.Query) (*models.OrderPage, error)
}

// Handler обрабатывает GET /orders и GET /admin/orders.
type Handler struct {
	log     *slog.Logger
	service Service
	all     bool
}

// New создает обработчик списка собственных заказов.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// NewAdmin создает обработчик списка всех заказов.
func NewAdmin(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, all: true}
}

// ServeHTTP godoc
// @Summary Список заказов
// @Tags Orders
// @Produce  json
// @Security BearerAuth
// @Param status query string false "Статус заказа"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Router /orders [get]
// @Router /admin/orders [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, apperr.AuthRequired("authentication required"))
		return
	}
	p, err := query.Pagination(r)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	q := order.Query{
		Status:     models.OrderStatus(query.String(r, "status")),
		Pagination: p,
	}
	if !h.all {
		q.UserID = id.UserID
	}
	page, err := h.service.List(r.Context(), q)
	if err != nil {
		log.Error("failed to list orders", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, page)
}
