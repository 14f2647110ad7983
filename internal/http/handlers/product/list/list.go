// Package list реализует HTTP-обработчик списка товаров каталога.
//
// Поддерживаются поиск по названию и провайдеру, фильтр по категории и пагинация.
// Публичный список содержит только активные товары; админский — все.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/vpn-store/internal/http/query"
	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/services/catalog"
)

// Service описывает интерфейс выборки каталога.
type Service interface {
	List(ctx context.Context, q catalog.Query) (*models.ProductPage, error)
}

// Handler обрабатывает запросы на получение страницы каталога.
type Handler struct {
	log             *slog.Logger
	service         Service
	includeInactive bool
}

// New создает публичный обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// NewAdmin создает обработчик, который показывает и неактивные товары.
func NewAdmin(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, includeInactive: true}
}

// ServeHTTP godoc
// @Summary Список товаров
// @Tags Products
// @Produce  json
// @Param search query string false "Поиск по названию и провайдеру"
// @Param category query string false "Premium или Standard"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы (до 100)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Router /products [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := query.Pagination(r)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	page, err := h.service.List(r.Context(), catalog.Query{
		Search:          query.String(r, "search"),
		Category:        query.String(r, "category"),
		IncludeInactive: h.includeInactive,
		Pagination:      p,
	})
	if err != nil {
		log.Error("failed to list products", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, page)
}
