// Package settings настройки сайта: единственный документ, который создаётся
// со значениями по умолчанию при первом чтении.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/storage"
)

const cacheKey = "settings"

// DefaultCacheTTL используется, если TTL не задан.
const DefaultCacheTTL = 30 * time.Second

// Repository хранилище настроек.
type Repository interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpsertSettings(ctx context.Context, settings models.Settings) (*models.Settings, error)
	InsertDefaultSettings(ctx context.Context, settings models.Settings) (*models.Settings, error)
}

// Cache кэш настроек. Реализуется internal/cache.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service чтение и изменение настроек.
type Service struct {
	log   *slog.Logger
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// NewService создаёт Service. cache может быть nil.
func NewService(log *slog.Logger, repo Repository, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{log: log, repo: repo, cache: cache, ttl: ttl}
}

// Get возвращает настройки. При отсутствии записи сохраняет значения по умолчанию.
func (s *Service) Get(ctx context.Context) (*models.Settings, error) {
	const op = "settings.Get"
	log := s.log.With(slog.String("op", op))

	if s.cache != nil {
		var cached models.Settings
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			log.Warn("settings cache read failed", sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	result, err := s.repo.GetSettings(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		result, err = s.repo.InsertDefaultSettings(ctx, models.DefaultSettings())
		if err == nil {
			log.Info("default settings created")
		}
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if result.PaymentMethods == nil {
		result.PaymentMethods = []models.PaymentMethod{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.ttl); err != nil {
			log.Warn("settings cache write failed", sl.Err(err))
		}
	}
	return result, nil
}

// Update сохраняет настройки целиком и сбрасывает кэш.
func (s *Service) Update(ctx context.Context, next models.Settings) (*models.Settings, error) {
	const op = "settings.Update"
	log := s.log.With(slog.String("op", op))

	if strings.TrimSpace(next.SiteName) == "" {
		return nil, apperr.Validation("site name is required")
	}
	seen := make(map[string]struct{}, len(next.PaymentMethods))
	for _, m := range next.PaymentMethods {
		if m.ID == "" || m.Name == "" {
			return nil, apperr.Validation("payment method id and name are required")
		}
		if _, dup := seen[m.ID]; dup {
			return nil, apperr.Validation(fmt.Sprintf("duplicate payment method id %q", m.ID))
		}
		seen[m.ID] = struct{}{}
	}
	if next.PaymentMethods == nil {
		next.PaymentMethods = []models.PaymentMethod{}
	}

	saved, err := s.repo.UpsertSettings(ctx, next)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
			log.Warn("settings cache invalidation failed", sl.Err(err))
		}
	}
	log.Info("settings updated", slog.Bool("maintenance_mode", saved.MaintenanceMode))
	return saved, nil
}

// Public настройки для анонимного посетителя, без реквизитов оплаты.
func (s *Service) Public(ctx context.Context) (*models.PublicSettings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	public := current.Public()
	return &public, nil
}

// ActivePaymentMethods включённые способы оплаты с реквизитами для оформления заказа.
func (s *Service) ActivePaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return current.ActivePaymentMethods(), nil
}

// MaintenanceMode сообщает, включён ли режим обслуживания.
func (s *Service) MaintenanceMode(ctx context.Context) (bool, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return current.MaintenanceMode, nil
}
