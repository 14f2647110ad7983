// Package catalog витрина товаров: публичный поиск и управление из админки.
package catalog

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

// ProductCacheTTL время жизни товара в кэше.
const ProductCacheTTL = time.Hour

// Repository хранилище товаров.
type Repository interface {
	CreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Cache кэш чтений по id. Реализуется internal/cache.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Query параметры публичного списка.
type Query struct {
	Search          string
	Category        string
	IncludeInactive bool
	models.Pagination
}

// Service операции над каталогом.
type Service struct {
	log   *slog.Logger
	repo  Repository
	cache Cache
}

// NewService создаёт Service. cache может быть nil.
func NewService(log *slog.Logger, repo Repository, cache Cache) *Service {
	return &Service{log: log, repo: repo, cache: cache}
}

func productKey(id string) string {
	return "product:" + id
}

// List возвращает страницу каталога.
// Неактивные товары видны только при IncludeInactive (админка).
func (s *Service) List(ctx context.Context, q Query) (*models.ProductPage, error) {
	const op = "catalog.List"

	if q.Category != "" && q.Category != models.CategoryPremium && q.Category != models.CategoryStandard {
		return nil, apperr.Validation("category must be Premium or Standard")
	}
	p := q.Pagination.Normalize()
	products, total, err := s.repo.ListProducts(ctx, models.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		Category:   q.Category,
		ActiveOnly: !q.IncludeInactive,
		Limit:      p.Limit,
		Offset:     p.Offset(),
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if products == nil {
		products = []*models.Product{}
	}
	return &models.ProductPage{
		Products:   products,
		Total:      total,
		Page:       p.Page,
		TotalPages: p.TotalPages(total),
	}, nil
}

// Get возвращает товар по id. Неактивный товар публично не существует.
func (s *Service) Get(ctx context.Context, id string, includeInactive bool) (*models.Product, error) {
	const op = "catalog.Get"
	log := s.log.With(slog.String("op", op), slog.String("product_id", id))

	var product models.Product
	if s.cache != nil {
		found, err := s.cache.Get(ctx, productKey(id), &product)
		if err != nil {
			log.Warn("product cache read failed", sl.Err(err))
		}
		if found {
			return visible(&product, includeInactive)
		}
	}

	p, err := s.repo.GetProduct(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, productKey(id), p, ProductCacheTTL); err != nil {
			log.Warn("product cache write failed", sl.Err(err))
		}
	}
	return visible(p, includeInactive)
}

func visible(p *models.Product, includeInactive bool) (*models.Product, error) {
	if !p.IsActive && !includeInactive {
		return nil, apperr.NotFound("product not found")
	}
	return p, nil
}

// Create добавляет товар.
func (s *Service) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	const op = "catalog.Create"

	if err := checkProduct(&p); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info("product created", slog.String("op", op), slog.String("product_id", created.ID))
	return created, nil
}

// Update перезаписывает товар и сбрасывает его запись в кэше.
func (s *Service) Update(ctx context.Context, p models.Product) (*models.Product, error) {
	const op = "catalog.Update"

	if err := checkProduct(&p); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateProduct(ctx, p)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	s.invalidate(ctx, op, p.ID)
	s.log.Info("product updated", slog.String("op", op), slog.String("product_id", p.ID))
	return updated, nil
}

// Delete удаляет товар. Уже оформленные заказы хранят копию строки и не меняются.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "catalog.Delete"

	err := s.repo.DeleteProduct(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("product not found")
	}
	if err != nil {
		return apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	s.invalidate(ctx, op, id)
	s.log.Info("product deleted", slog.String("op", op), slog.String("product_id", id))
	return nil
}

func (s *Service) invalidate(ctx context.Context, op, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productKey(id)); err != nil {
		s.log.Warn("product cache invalidation failed",
			slog.String("op", op), slog.String("product_id", id), sl.Err(err))
	}
}

func checkProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Provider = strings.TrimSpace(p.Provider)
	p.Duration = strings.TrimSpace(p.Duration)
	switch {
	case p.Name == "" || p.Provider == "" || p.Duration == "":
		return apperr.Validation("name, provider and duration are required")
	case p.Price <= 0:
		return apperr.Validation("price must be positive")
	case p.OriginalPrice != nil && *p.OriginalPrice < p.Price:
		return apperr.Validation("original price must not be lower than price")
	case p.Category != models.CategoryPremium && p.Category != models.CategoryStandard:
		return apperr.Validation("category must be Premium or Standard")
	case p.Rating < 1 || p.Rating > 5:
		return apperr.Validation("rating must be between 1 and 5")
	case p.Stock < 0:
		return apperr.Validation("stock must not be negative")
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return nil
}
