// Package manage реализует чтение и запись полных настроек сайта администратором.
package manage

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/vpn-store/internal/http/response"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Service описывает интерфейс работы с настройками.
type Service interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, next models.Settings) (*models.Settings, error)
}

// Handler обрабатывает GET и PUT /admin/settings.
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
// @Summary Полные настройки сайта
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.Settings false "Новые настройки (PUT)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/settings [get]
// @Router /admin/settings [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.manage"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if r.Method == http.MethodGet {
		s, err := h.service.Get(r.Context())
		if err != nil {
			log.Error("failed to load settings", sl.Err(err))
			response.Fail(w, r, err)
			return
		}
		response.OK(w, r, http.StatusOK, s)
		return
	}

	var next models.Settings
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, apperr.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(next); err != nil {
		response.Invalid(w, r, err)
		return
	}
	saved, err := h.service.Update(r.Context(), next)
	if err != nil {
		log.Info("settings update failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	log.Info("settings updated", slog.Bool("maintenance_mode", saved.MaintenanceMode))
	response.OK(w, r, http.StatusOK, saved)
}
