// Package save реализует создание и изменение товара администратором.
//
// POST создаёт товар, PUT с ID в пути перезаписывает существующий.
// Тело запроса в обоих случаях — полный товар.
package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс записи товаров.
type Service interface {
	Create(ctx context.Context, p models.Product) (*models.Product, error)
	Update(ctx context.Context, p models.Product) (*models.Product, error)
}

// Handler обрабатывает POST /admin/products и PUT /admin/products/{id}.
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
// @Summary Создание или изменение товара
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string false "ID товара (для PUT)"
// @Param request body models.Product true "Товар"
// @Success 200 {object} response.Response "Товар изменён"
// @Success 201 {object} response.Response "Товар создан"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /admin/products [post]
// @Router /admin/products/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.save"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var p models.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, apperr.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(p); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		created, err := h.service.Create(r.Context(), p)
		if err != nil {
			response.Fail(w, r, err)
			return
		}
		response.OK(w, r, http.StatusCreated, map[string]any{"product": created})
		return
	}

	p.ID = id
	updated, err := h.service.Update(r.Context(), p)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"product": updated})
}
